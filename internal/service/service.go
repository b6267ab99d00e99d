package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
)

// Pusher delivers an event to a single live connection. Fire and forget:
// pushing to a connection id that no longer exists is a silent no-op, there
// is no acknowledgment and no retry.
type Pusher interface {
	Push(wsID string, event string, payload any)
}

// PusherFunc adapts a function to the Pusher interface.
type PusherFunc func(wsID string, event string, payload any)

func (f PusherFunc) Push(wsID string, event string, payload any) { f(wsID, event, payload) }

type AuthInteractor interface {
	SignInWithGoogle(ctx context.Context, code string) (*AuthResult, error)
	SignInWithFacebook(ctx context.Context, accessToken string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
}

type UserInteractor interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	GetUserOverview(ctx context.Context, userID, targetID uuid.UUID) (*UserOverview, error)
	ListUsers(ctx context.Context, userID uuid.UUID, keyword string, notInGroupID *uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error)
}

type FriendInteractor interface {
	RequestFriendship(ctx context.Context, fromUserID, toUserID uuid.UUID) (*domain.FriendshipRequest, error)
	AcceptFriendship(ctx context.Context, fromUserID, toUserID uuid.UUID) error
	CancelFriendshipRequest(ctx context.Context, a, b uuid.UUID) error
	ListRequesters(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error)
	ListRequested(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error)
	CountRequesters(ctx context.Context, userID uuid.UUID) (int64, error)
	CountRequested(ctx context.Context, userID uuid.UUID) (int64, error)
	ListFriends(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*FriendEntry, int64, error)
	Unfriend(ctx context.Context, userID, friendID uuid.UUID) error
}

type GroupInteractor interface {
	CreateGroup(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*domain.Group, error)
	GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*GroupOverview, error)
	UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, name string, description *string) (*domain.Group, error)
	RegenerateInviteCode(ctx context.Context, userID, groupID uuid.UUID) (*domain.Group, error)
	JoinByInviteCode(ctx context.Context, userID uuid.UUID, code string) (*domain.Group, error)
	ListJoined(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Group, int64, error)
	ListMembers(ctx context.Context, userID, groupID uuid.UUID, p domain.Pagination) ([]*GroupMemberEntry, int64, error)
	RemoveMember(ctx context.Context, ownerID, groupID, targetID uuid.UUID) error
	LeaveGroup(ctx context.Context, userID, groupID uuid.UUID) error
}

type ChannelInteractor interface {
	ListDirectChannels(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*DirectChannelEntry, int64, error)
	CreateGroupChannel(ctx context.Context, userID, groupID uuid.UUID, name string) (*domain.GroupChannel, error)
	GetGroupChannel(ctx context.Context, userID, groupID, channelID uuid.UUID) (*domain.GroupChannel, error)
	UpdateGroupChannel(ctx context.Context, userID, groupID, channelID uuid.UUID, name string) (*domain.GroupChannel, error)
	DeleteGroupChannel(ctx context.Context, userID, groupID, channelID uuid.UUID) error
	ListGroupChannels(ctx context.Context, userID, groupID uuid.UUID, p domain.Pagination) ([]*GroupChannelEntry, int64, error)
}

type MessageInteractor interface {
	CreateDirectMessage(ctx context.Context, senderID, channelID uuid.UUID, typ domain.MessageType, value string) (*domain.Message, error)
	CreateGroupMessage(ctx context.Context, senderID, channelID uuid.UUID, typ domain.MessageType, value string) (*domain.Message, error)
	DeleteDirectMessage(ctx context.Context, requesterID, messageID uuid.UUID) error
	DeleteGroupMessage(ctx context.Context, requesterID, messageID uuid.UUID) error
	ListDirectMessages(ctx context.Context, userID, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error)
	ListGroupMessages(ctx context.Context, userID, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error)
}

type CallInteractor interface {
	RequestCall(ctx context.Context, callerID, calleeID uuid.UUID) (*domain.CallChannel, error)
	AcceptCall(ctx context.Context, userID uuid.UUID) (*domain.CallChannel, error)
	CancelCall(ctx context.Context, userID uuid.UUID) error
	RelaySignal(ctx context.Context, userID uuid.UUID, signal *domain.CallSignal) error
	HandleDisconnect(ctx context.Context, userID uuid.UUID)
}

type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserOverview struct {
	Profile                 *domain.Profile `json:"profile"`
	IsOnline                bool            `json:"isOnline"`
	IsFriendship            bool            `json:"isFriendship"`
	FriendshipRequestFromMe bool            `json:"friendshipRequestFromMe"`
	FriendshipRequestToMe   bool            `json:"friendshipRequestToMe"`
	DirectChannelID         *uuid.UUID      `json:"directMessageChannelId"`
}

type FriendEntry struct {
	Profile  *domain.Profile `json:"profile"`
	IsOnline bool            `json:"isOnline"`
}

type GroupOverview struct {
	Group        *domain.Group `json:"group"`
	MemberCount  int64         `json:"memberCount"`
	ChannelCount int64         `json:"channelCount"`
}

type GroupMemberEntry struct {
	Profile  *domain.Profile `json:"profile"`
	IsOnline bool            `json:"isOnline"`
	IsOwner  bool            `json:"isOwner"`
}

type DirectChannelEntry struct {
	Channel     *domain.DirectChannel `json:"channel"`
	Peer        *domain.Profile       `json:"peer"`
	PeerOnline  bool                  `json:"peerOnline"`
	LastMessage *domain.Message       `json:"lastMessage"`
}

type GroupChannelEntry struct {
	Channel     *domain.GroupChannel `json:"channel"`
	LastMessage *domain.Message      `json:"lastMessage"`
}
