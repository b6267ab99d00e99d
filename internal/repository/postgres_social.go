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

type PostgresFriendRepository struct {
	db *gorm.DB
}

func NewPostgresFriendRepository(db *gorm.DB) *PostgresFriendRepository {
	return &PostgresFriendRepository{db: db}
}

func (r *PostgresFriendRepository) CreateRequest(ctx context.Context, req *domain.FriendshipRequest) error {
	return r.db.WithContext(ctx).Create(&model.FriendshipRequest{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt,
	}).Error
}

func (r *PostgresFriendRepository) GetRequestBetween(ctx context.Context, a, b uuid.UUID) (*domain.FriendshipRequest, error) {
	var req model.FriendshipRequest
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return toDomainRequest(&req), nil
}

func (r *PostgresFriendRepository) GetPendingRequest(ctx context.Context, from, to uuid.UUID) (*domain.FriendshipRequest, error) {
	var req model.FriendshipRequest
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", from, to, string(domain.FriendshipRequestPending)).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return toDomainRequest(&req), nil
}

func (r *PostgresFriendRepository) AcceptRequest(ctx context.Context, from, to uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FriendshipRequest{}).
			Where("from_user_id = ? AND to_user_id = ? AND status = ?", from, to, string(domain.FriendshipRequestPending)).
			Update("status", string(domain.FriendshipRequestAccepted))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotFound
		}
		return tx.Create([]model.Friendship{
			{FromUserID: from, ToUserID: to, CreatedAt: now},
			{FromUserID: to, ToUserID: from, CreatedAt: now},
		}).Error
	})
}

func (r *PostgresFriendRepository) DeletePendingRequestsBetween(ctx context.Context, a, b uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)) AND status = ?",
			a, b, b, a, string(domain.FriendshipRequestPending)).
		Delete(&model.FriendshipRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *PostgresFriendRepository) ListRequesters(ctx context.Context, to uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error) {
	return r.listRequestUsers(ctx, "to_user_id", to, "FromUser", p)
}

func (r *PostgresFriendRepository) ListRequested(ctx context.Context, from uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error) {
	return r.listRequestUsers(ctx, "from_user_id", from, "ToUser", p)
}

func (r *PostgresFriendRepository) listRequestUsers(ctx context.Context, column string, id uuid.UUID, preload string, p domain.Pagination) ([]*domain.User, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.FriendshipRequest{}).
		Where(column+" = ? AND status = ?", id, string(domain.FriendshipRequestPending))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []model.FriendshipRequest
	if err := q.Preload(preload + ".Profile").
		Offset(p.Offset()).Limit(p.Take).
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*domain.User, 0, len(reqs))
	for i := range reqs {
		if preload == "FromUser" {
			users = append(users, toDomainUser(&reqs[i].FromUser))
		} else {
			users = append(users, toDomainUser(&reqs[i].ToUser))
		}
	}
	return users, total, nil
}

func (r *PostgresFriendRepository) CountRequesters(ctx context.Context, to uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.FriendshipRequest{}).
		Where("to_user_id = ? AND status = ?", to, string(domain.FriendshipRequestPending)).
		Count(&total).Error
	return total, err
}

func (r *PostgresFriendRepository) CountRequested(ctx context.Context, from uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.FriendshipRequest{}).
		Where("from_user_id = ? AND status = ?", from, string(domain.FriendshipRequestPending)).
		Count(&total).Error
	return total, err
}

func (r *PostgresFriendRepository) FriendshipExists(ctx context.Context, from, to uuid.UUID) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("from_user_id = ? AND to_user_id = ?", from, to).
		Count(&total).Error
	return total > 0, err
}

func (r *PostgresFriendRepository) ListFriends(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("from_user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Friendship
	if err := q.Preload("ToUser.Profile").
		Offset(p.Offset()).Limit(p.Take).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, toDomainUser(&rows[i].ToUser))
	}
	return users, total, nil
}

func (r *PostgresFriendRepository) DeleteFriendship(ctx context.Context, a, b uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
			Delete(&model.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrFriendNotFound
		}
		return tx.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
			Delete(&model.FriendshipRequest{}).Error
	})
}

func toDomainRequest(m *model.FriendshipRequest) *domain.FriendshipRequest {
	return &domain.FriendshipRequest{
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Status:     domain.FriendshipRequestStatus(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}

type PostgresGroupRepository struct {
	db *gorm.DB
}

func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	if group == nil {
		return errors.New("group is nil")
	}

	groupModel := &model.Group{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		OwnerID:     group.OwnerID,
		InviteCode:  group.InviteCode,
		Members: []model.GroupMember{
			{UserID: group.OwnerID, GroupID: group.ID, IsOwner: true, CreatedAt: group.CreatedAt},
		},
		CreatedAt: group.CreatedAt,
		UpdatedAt: group.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(groupModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrInviteCodeExists
		}
		return err
	}
	return nil
}

func (r *PostgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return toDomainGroup(&group), nil
}

func (r *PostgresGroupRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).First(&group, "invite_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return toDomainGroup(&group), nil
}

func (r *PostgresGroupRepository) Update(ctx context.Context, group *domain.Group) error {
	res := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("id = ?", group.ID).
		Updates(map[string]any{
			"name":        group.Name,
			"description": group.Description,
			"invite_code": group.InviteCode,
			"updated_at":  group.UpdatedAt,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrInviteCodeExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) CountOwned(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

func (r *PostgresGroupRepository) GetMember(ctx context.Context, userID, groupID uuid.UUID) (*domain.GroupMember, error) {
	var member model.GroupMember
	err := r.db.WithContext(ctx).
		First(&member, "user_id = ? AND group_id = ?", userID, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return toDomainGroupMember(&member), nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, member *domain.GroupMember) error {
	return r.db.WithContext(ctx).Create(&model.GroupMember{
		UserID:    member.UserID,
		GroupID:   member.GroupID,
		IsOwner:   member.IsOwner,
		CreatedAt: member.CreatedAt,
	}).Error
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, userID, groupID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&model.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) ListJoined(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Group, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []model.Group
	if err := q.Offset(p.Offset()).Limit(p.Take).Find(&groups).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Group, 0, len(groups))
	for i := range groups {
		out = append(out, toDomainGroup(&groups[i]))
	}
	return out, total, nil
}

func (r *PostgresGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID, p domain.Pagination) ([]*domain.GroupMember, int64, error) {
	p = p.Normalized()

	q := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ?", groupID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.GroupMember
	if err := q.Preload("User.Profile").
		Order("is_owner DESC").
		Offset(p.Offset()).Limit(p.Take).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.GroupMember, 0, len(members))
	for i := range members {
		m := toDomainGroupMember(&members[i])
		m.User = toDomainUser(&members[i].User)
		out = append(out, m)
	}
	return out, total, nil
}

func (r *PostgresGroupRepository) MemberUsers(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Preload("Profile").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return toDomainUsers(users), nil
}

func (r *PostgresGroupRepository) CountChannels(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.GroupChannel{}).
		Where("group_id = ? AND is_deleted = false", groupID).
		Count(&total).Error
	return total, err
}

func (r *PostgresGroupRepository) CountMembers(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&total).Error
	return total, err
}

func toDomainGroup(m *model.Group) *domain.Group {
	return &domain.Group{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		OwnerID:     m.OwnerID,
		InviteCode:  m.InviteCode,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainGroupMember(m *model.GroupMember) *domain.GroupMember {
	return &domain.GroupMember{
		UserID:    m.UserID,
		GroupID:   m.GroupID,
		IsOwner:   m.IsOwner,
		CreatedAt: m.CreatedAt,
	}
}
