package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository/model"
	"gorm.io/gorm"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := toModelUser(user)
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

func (r *PostgresUserRepository) GetByFacebookID(ctx context.Context, facebookID string) (*domain.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "facebook_id = ?", facebookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}

	res := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"full_name":    profile.FullName,
			"avatar_url":   profile.AvatarURL,
			"gender":       (*string)(profile.Gender),
			"phone_number": profile.PhoneNumber,
			"updated_at":   profile.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) BindConnection(ctx context.Context, id uuid.UUID, wsID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("ws_id", wsID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ReleaseConnection(ctx context.Context, id uuid.UUID, wsID string) error {
	// Conditional on ws_id so a stale disconnect leaves a newer binding alone.
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND ws_id = ?", id, wsID).
		Update("ws_id", nil).Error
}

func (r *PostgresUserRepository) ResetPresence(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("ws_id IS NOT NULL").
		Update("ws_id", nil).Error
}

func (r *PostgresUserRepository) Search(ctx context.Context, filter UserSearchFilter, p domain.Pagination) ([]*domain.User, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("users.id <> ?", filter.ExcludeUserID).
		Where("profiles.full_name IS NOT NULL")

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		q = q.Where("profiles.full_name ILIKE ? OR users.email ILIKE ? OR profiles.phone_number ILIKE ?", kw, kw, kw)
	}
	if filter.NotInGroupID != nil {
		q = q.Where("users.id NOT IN (SELECT user_id FROM group_members WHERE group_id = ?)", *filter.NotInGroupID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := q.Preload("Profile").
		Offset(p.Offset()).Limit(p.Take).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return toDomainUsers(users), total, nil
}

func toModelUser(u *domain.User) *model.User {
	m := &model.User{
		ID:           u.ID,
		Provider:     string(u.Provider),
		Email:        u.Email,
		FacebookID:   u.FacebookID,
		RefreshToken: u.RefreshToken,
		WsID:         u.WsID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Profile != nil {
		m.Profile = model.Profile{
			UserID:      u.Profile.UserID,
			FullName:    u.Profile.FullName,
			AvatarURL:   u.Profile.AvatarURL,
			Gender:      (*string)(u.Profile.Gender),
			PhoneNumber: u.Profile.PhoneNumber,
			CreatedAt:   u.Profile.CreatedAt,
			UpdatedAt:   u.Profile.UpdatedAt,
		}
	}
	return m
}

func toDomainUser(m *model.User) *domain.User {
	u := &domain.User{
		ID:           m.ID,
		Provider:     domain.UserProvider(m.Provider),
		Email:        m.Email,
		FacebookID:   m.FacebookID,
		RefreshToken: m.RefreshToken,
		WsID:         m.WsID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Profile.UserID != uuid.Nil {
		u.Profile = toDomainProfile(m.Profile)
	}
	return u
}

func toDomainProfile(m model.Profile) *domain.Profile {
	return &domain.Profile{
		UserID:      m.UserID,
		FullName:    m.FullName,
		AvatarURL:   m.AvatarURL,
		Gender:      (*domain.UserGender)(m.Gender),
		PhoneNumber: m.PhoneNumber,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainUsers(models []model.User) []*domain.User {
	users := make([]*domain.User, 0, len(models))
	for i := range models {
		users = append(users, toDomainUser(&models[i]))
	}
	return users
}
