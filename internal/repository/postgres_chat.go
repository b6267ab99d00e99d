package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository/model"
	"gorm.io/gorm"
)

type PostgresChannelRepository struct {
	db *gorm.DB
}

func NewPostgresChannelRepository(db *gorm.DB) *PostgresChannelRepository {
	return &PostgresChannelRepository{db: db}
}

func (r *PostgresChannelRepository) CreateDirect(ctx context.Context, channel *domain.DirectChannel, memberIDs []uuid.UUID) error {
	if channel == nil {
		return errors.New("channel is nil")
	}

	channelModel := &model.DirectChannel{
		ID:        channel.ID,
		CreatedAt: channel.CreatedAt,
		UpdatedAt: channel.UpdatedAt,
	}
	for _, id := range memberIDs {
		channelModel.Members = append(channelModel.Members, model.DirectChannelMember{
			UserID:    id,
			ChannelID: channel.ID,
			CreatedAt: channel.CreatedAt,
		})
	}
	return r.db.WithContext(ctx).Create(channelModel).Error
}

func (r *PostgresChannelRepository) GetDirect(ctx context.Context, id uuid.UUID) (*domain.DirectChannel, error) {
	var channel model.DirectChannel
	err := r.db.WithContext(ctx).
		Preload("Members.User.Profile").
		First(&channel, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return toDomainDirectChannel(&channel), nil
}

func (r *PostgresChannelRepository) FindDirectBetween(ctx context.Context, a, b uuid.UUID) (*domain.DirectChannel, error) {
	var channel model.DirectChannel
	err := r.db.WithContext(ctx).
		Where("id IN (SELECT channel_id FROM direct_channel_members WHERE user_id = ?)", a).
		Where("id IN (SELECT channel_id FROM direct_channel_members WHERE user_id = ?)", b).
		First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return toDomainDirectChannel(&channel), nil
}

func (r *PostgresChannelRepository) IsDirectMember(ctx context.Context, userID, channelID uuid.UUID) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.DirectChannelMember{}).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Count(&total).Error
	return total > 0, err
}

func (r *PostgresChannelRepository) ListDirect(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.DirectChannel, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.DirectChannel{}).
		Where("id IN (SELECT channel_id FROM direct_channel_members WHERE user_id = ?)", userID).
		Where("id IN (SELECT DISTINCT channel_id FROM direct_messages)")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var channels []model.DirectChannel
	if err := q.Preload("Members.User.Profile").
		Order("updated_at DESC").
		Offset(p.Offset()).Limit(p.Take).
		Find(&channels).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.DirectChannel, 0, len(channels))
	for i := range channels {
		out = append(out, toDomainDirectChannel(&channels[i]))
	}
	return out, total, nil
}

func (r *PostgresChannelRepository) CreateGroupChannel(ctx context.Context, channel *domain.GroupChannel) error {
	return r.db.WithContext(ctx).Create(toModelGroupChannel(channel)).Error
}

func (r *PostgresChannelRepository) GetGroupChannel(ctx context.Context, id uuid.UUID) (*domain.GroupChannel, error) {
	var channel model.GroupChannel
	err := r.db.WithContext(ctx).
		First(&channel, "id = ? AND is_deleted = false", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return toDomainGroupChannel(&channel), nil
}

func (r *PostgresChannelRepository) UpdateGroupChannel(ctx context.Context, channel *domain.GroupChannel) error {
	res := r.db.WithContext(ctx).
		Model(&model.GroupChannel{}).
		Where("id = ? AND is_deleted = false", channel.ID).
		Updates(map[string]any{
			"name":       channel.Name,
			"updated_at": channel.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func (r *PostgresChannelRepository) SoftDeleteGroupChannel(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.GroupChannel{}).
		Where("id = ? AND is_deleted = false", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func (r *PostgresChannelRepository) ListGroupChannels(ctx context.Context, groupID uuid.UUID, p domain.Pagination) ([]*domain.GroupChannel, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.GroupChannel{}).
		Where("group_id = ? AND is_deleted = false", groupID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var channels []model.GroupChannel
	if err := q.Order("name DESC").
		Offset(p.Offset()).Limit(p.Take).
		Find(&channels).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.GroupChannel, 0, len(channels))
	for i := range channels {
		out = append(out, toDomainGroupChannel(&channels[i]))
	}
	return out, total, nil
}

func toDomainDirectChannel(m *model.DirectChannel) *domain.DirectChannel {
	channel := &domain.DirectChannel{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i := range m.Members {
		if m.Members[i].User.ID != uuid.Nil {
			channel.Members = append(channel.Members, toDomainUser(&m.Members[i].User))
		}
	}
	return channel
}

func toModelGroupChannel(c *domain.GroupChannel) *model.GroupChannel {
	return &model.GroupChannel{
		ID:        c.ID,
		GroupID:   c.GroupID,
		Name:      c.Name,
		IsDeleted: c.IsDeleted,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toDomainGroupChannel(m *model.GroupChannel) *domain.GroupChannel {
	return &domain.GroupChannel{
		ID:        m.ID,
		GroupID:   m.GroupID,
		Name:      m.Name,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) CreateDirect(ctx context.Context, msg *domain.Message) error {
	// Message insert and channel bump commit or fail together.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toModelDirectMessage(msg)).Error; err != nil {
			return err
		}
		return tx.Model(&model.DirectChannel{}).
			Where("id = ?", msg.ChannelID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

func (r *PostgresMessageRepository) CreateGroup(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(toModelGroupMessage(msg)).Error
}

func (r *PostgresMessageRepository) GetDirectOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Message, error) {
	var msg model.DirectMessage
	err := r.db.WithContext(ctx).
		First(&msg, "id = ? AND user_id = ? AND is_deleted = false", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return toDomainDirectMessage(&msg), nil
}

func (r *PostgresMessageRepository) GetGroupOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Message, error) {
	var msg model.GroupMessage
	err := r.db.WithContext(ctx).
		First(&msg, "id = ? AND user_id = ? AND is_deleted = false", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return toDomainGroupMessage(&msg), nil
}

func (r *PostgresMessageRepository) SoftDeleteDirect(ctx context.Context, id uuid.UUID) error {
	return r.softDelete(ctx, &model.DirectMessage{}, id)
}

func (r *PostgresMessageRepository) SoftDeleteGroup(ctx context.Context, id uuid.UUID) error {
	return r.softDelete(ctx, &model.GroupMessage{}, id)
}

func (r *PostgresMessageRepository) softDelete(ctx context.Context, table any, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(table).
		Where("id = ? AND is_deleted = false", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) ListDirect(ctx context.Context, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.DirectMessage{}).
		Where("channel_id = ?", channelID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []model.DirectMessage
	if err := q.Preload("User.Profile").
		Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Take).
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, toDomainDirectMessage(&msgs[i]))
	}
	return out, total, nil
}

func (r *PostgresMessageRepository) ListGroup(ctx context.Context, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.GroupMessage{}).
		Where("channel_id = ?", channelID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []model.GroupMessage
	if err := q.Preload("User.Profile").
		Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Take).
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, toDomainGroupMessage(&msgs[i]))
	}
	return out, total, nil
}

func (r *PostgresMessageRepository) LastDirect(ctx context.Context, channelID uuid.UUID) (*domain.Message, error) {
	var msg model.DirectMessage
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return toDomainDirectMessage(&msg), nil
}

func (r *PostgresMessageRepository) LastGroup(ctx context.Context, channelID uuid.UUID) (*domain.Message, error) {
	var msg model.GroupMessage
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return toDomainGroupMessage(&msg), nil
}

func toModelDirectMessage(m *domain.Message) *model.DirectMessage {
	return &model.DirectMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Type:      string(m.Type),
		Value:     m.Value,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
}

func toModelGroupMessage(m *domain.Message) *model.GroupMessage {
	return &model.GroupMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Type:      string(m.Type),
		Value:     m.Value,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
}

func toDomainDirectMessage(m *model.DirectMessage) *domain.Message {
	msg := &domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Type:      domain.MessageType(m.Type),
		Value:     m.Value,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
	if m.User.ID != uuid.Nil {
		msg.User = toDomainUser(&m.User)
	}
	return msg
}

func toDomainGroupMessage(m *model.GroupMessage) *domain.Message {
	msg := &domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Type:      domain.MessageType(m.Type),
		Value:     m.Value,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
	if m.User.ID != uuid.Nil {
		msg.User = toDomainUser(&m.User)
	}
	return msg
}
