package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailExists   = errors.New("user with email already exists")
	ErrRequestNotFound   = errors.New("friendship request not found")
	ErrFriendNotFound    = errors.New("friendship not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrMemberNotFound    = errors.New("group member not found")
	ErrChannelNotFound   = errors.New("channel not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrCallNotFound      = errors.New("call channel not found")
	ErrCallMemberExists  = errors.New("user already belongs to a call channel")
	ErrInviteCodeExists  = errors.New("invite code already exists")
)

type UserSearchFilter struct {
	ExcludeUserID uuid.UUID
	Keyword       string
	NotInGroupID  *uuid.UUID
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByFacebookID(ctx context.Context, facebookID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error

	// BindConnection overwrites ws_id unconditionally: last write wins.
	BindConnection(ctx context.Context, id uuid.UUID, wsID string) error
	// ReleaseConnection clears ws_id only while it still equals wsID, so a
	// stale disconnect cannot clobber a newer connection's presence.
	ReleaseConnection(ctx context.Context, id uuid.UUID, wsID string) error
	// ResetPresence nulls every ws_id; ran on boot when no live connection
	// can legitimately exist.
	ResetPresence(ctx context.Context) error

	Search(ctx context.Context, filter UserSearchFilter, p domain.Pagination) ([]*domain.User, int64, error)
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, req *domain.FriendshipRequest) error
	// GetRequestBetween matches either direction regardless of status.
	GetRequestBetween(ctx context.Context, a, b uuid.UUID) (*domain.FriendshipRequest, error)
	GetPendingRequest(ctx context.Context, from, to uuid.UUID) (*domain.FriendshipRequest, error)
	// AcceptRequest flips the request to ACCEPTED and creates both
	// friendship rows in one transaction.
	AcceptRequest(ctx context.Context, from, to uuid.UUID) error
	DeletePendingRequestsBetween(ctx context.Context, a, b uuid.UUID) error
	ListRequesters(ctx context.Context, to uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error)
	ListRequested(ctx context.Context, from uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error)
	CountRequesters(ctx context.Context, to uuid.UUID) (int64, error)
	CountRequested(ctx context.Context, from uuid.UUID) (int64, error)
	FriendshipExists(ctx context.Context, from, to uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error)
	// DeleteFriendship removes both directions plus any requests between
	// the pair in one transaction.
	DeleteFriendship(ctx context.Context, a, b uuid.UUID) error
}

type GroupRepository interface {
	// Create inserts the group together with its owner membership.
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	CountOwned(ctx context.Context, ownerID uuid.UUID) (int64, error)
	GetMember(ctx context.Context, userID, groupID uuid.UUID) (*domain.GroupMember, error)
	AddMember(ctx context.Context, member *domain.GroupMember) error
	RemoveMember(ctx context.Context, userID, groupID uuid.UUID) error
	ListJoined(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Group, int64, error)
	ListMembers(ctx context.Context, groupID uuid.UUID, p domain.Pagination) ([]*domain.GroupMember, int64, error)
	// MemberUsers returns every member's user row (ws_id included) for fan-out.
	MemberUsers(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error)
	CountChannels(ctx context.Context, groupID uuid.UUID) (int64, error)
	CountMembers(ctx context.Context, groupID uuid.UUID) (int64, error)
}

type ChannelRepository interface {
	CreateDirect(ctx context.Context, channel *domain.DirectChannel, memberIDs []uuid.UUID) error
	// GetDirect loads the channel with its member user rows (ws_id included).
	GetDirect(ctx context.Context, id uuid.UUID) (*domain.DirectChannel, error)
	FindDirectBetween(ctx context.Context, a, b uuid.UUID) (*domain.DirectChannel, error)
	IsDirectMember(ctx context.Context, userID, channelID uuid.UUID) (bool, error)
	// ListDirect returns the user's non-empty channels ordered by updated_at
	// desc, members preloaded.
	ListDirect(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.DirectChannel, int64, error)

	CreateGroupChannel(ctx context.Context, channel *domain.GroupChannel) error
	GetGroupChannel(ctx context.Context, id uuid.UUID) (*domain.GroupChannel, error)
	UpdateGroupChannel(ctx context.Context, channel *domain.GroupChannel) error
	SoftDeleteGroupChannel(ctx context.Context, id uuid.UUID) error
	ListGroupChannels(ctx context.Context, groupID uuid.UUID, p domain.Pagination) ([]*domain.GroupChannel, int64, error)
}

type MessageRepository interface {
	// CreateDirect persists the message and bumps the channel's updated_at
	// in one transaction.
	CreateDirect(ctx context.Context, msg *domain.Message) error
	CreateGroup(ctx context.Context, msg *domain.Message) error
	// GetDirectOwned returns the message only when it belongs to userID and
	// is not already deleted.
	GetDirectOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Message, error)
	GetGroupOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Message, error)
	SoftDeleteDirect(ctx context.Context, id uuid.UUID) error
	SoftDeleteGroup(ctx context.Context, id uuid.UUID) error
	ListDirect(ctx context.Context, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error)
	ListGroup(ctx context.Context, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error)
	LastDirect(ctx context.Context, channelID uuid.UUID) (*domain.Message, error)
	LastGroup(ctx context.Context, channelID uuid.UUID) (*domain.Message, error)
}

type CallRepository interface {
	// Create inserts the channel with both memberships; ErrCallMemberExists
	// when either user already holds a membership.
	Create(ctx context.Context, channel *domain.CallChannel) error
	// GetByMember loads the channel holding userID's membership, member
	// user rows (ws_id, profile) preloaded.
	GetByMember(ctx context.Context, userID uuid.UUID) (*domain.CallChannel, error)
	SetAccepted(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteAll wipes every call channel; ran on boot.
	DeleteAll(ctx context.Context) error
}
