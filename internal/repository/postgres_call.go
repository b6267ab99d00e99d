package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository/model"
	"gorm.io/gorm"
)

type PostgresCallRepository struct {
	db *gorm.DB
}

func NewPostgresCallRepository(db *gorm.DB) *PostgresCallRepository {
	return &PostgresCallRepository{db: db}
}

func (r *PostgresCallRepository) Create(ctx context.Context, channel *domain.CallChannel) error {
	if channel == nil {
		return errors.New("channel is nil")
	}

	channelModel := &model.DirectCallChannel{
		ID:          channel.ID,
		CreatedByID: channel.CreatedByID,
		AcceptedAt:  channel.AcceptedAt,
		CreatedAt:   channel.CreatedAt,
	}
	for _, m := range channel.Members {
		channelModel.Members = append(channelModel.Members, model.DirectCallMember{
			UserID:    m.UserID,
			ChannelID: channel.ID,
			CreatedAt: channel.CreatedAt,
		})
	}

	if err := r.db.WithContext(ctx).Create(channelModel).Error; err != nil {
		// user_id is the member table's primary key, so a second active
		// membership violates it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCallMemberExists
		}
		return err
	}
	return nil
}

func (r *PostgresCallRepository) GetByMember(ctx context.Context, userID uuid.UUID) (*domain.CallChannel, error) {
	var channel model.DirectCallChannel
	err := r.db.WithContext(ctx).
		Preload("Members.User.Profile").
		Where("id IN (SELECT channel_id FROM direct_call_members WHERE user_id = ?)", userID).
		First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return toDomainCallChannel(&channel), nil
}

func (r *PostgresCallRepository) SetAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.DirectCallChannel{}).
		Where("id = ?", id).
		Update("accepted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCallNotFound
	}
	return nil
}

func (r *PostgresCallRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Memberships go with the channel.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", id).Delete(&model.DirectCallMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.DirectCallChannel{}, "id = ?", id).Error
	})
}

func (r *PostgresCallRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.DirectCallMember{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&model.DirectCallChannel{}).Error
	})
}

func toDomainCallChannel(m *model.DirectCallChannel) *domain.CallChannel {
	channel := &domain.CallChannel{
		ID:          m.ID,
		CreatedByID: m.CreatedByID,
		AcceptedAt:  m.AcceptedAt,
		CreatedAt:   m.CreatedAt,
	}
	for i := range m.Members {
		member := &domain.CallMember{UserID: m.Members[i].UserID}
		if m.Members[i].User.ID != uuid.Nil {
			member.User = toDomainUser(&m.Members[i].User)
		}
		channel.Members = append(channel.Members, member)
	}
	return channel
}
