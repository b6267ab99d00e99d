package converter

import (
	"time"

	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/service"
)

type ProfileResponse struct {
	UserID      string  `json:"userId"`
	FullName    *string `json:"fullName"`
	AvatarURL   *string `json:"avatarUrl"`
	Gender      *string `json:"gender"`
	PhoneNumber *string `json:"phoneNumber"`
}

type UserResponse struct {
	ID        string           `json:"id"`
	Provider  string           `json:"provider"`
	Email     *string          `json:"email,omitempty"`
	Profile   *ProfileResponse `json:"profile"`
	CreatedAt time.Time        `json:"createdAt"`
}

type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     string    `json:"ownerId"`
	InviteCode  string    `json:"inviteCode"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MessageResponse struct {
	ID        string           `json:"id"`
	ChannelID string           `json:"channelId"`
	UserID    string           `json:"userId"`
	Type      string           `json:"type"`
	Value     string           `json:"value"`
	IsDeleted bool             `json:"isDeleted"`
	Sender    *ProfileResponse `json:"sender,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type DirectChannelResponse struct {
	ID          string           `json:"id"`
	Peer        *ProfileResponse `json:"peer"`
	PeerOnline  bool             `json:"peerOnline"`
	LastMessage *MessageResponse `json:"lastMessage"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type GroupChannelResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"groupId"`
	Name        string           `json:"name"`
	LastMessage *MessageResponse `json:"lastMessage,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Paginated is the envelope every listing endpoint returns.
type Paginated struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Take  int   `json:"take"`
}

func ProfileToApi(p *domain.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	var gender *string
	if p.Gender != nil {
		g := string(*p.Gender)
		gender = &g
	}
	return &ProfileResponse{
		UserID:      p.UserID.String(),
		FullName:    p.FullName,
		AvatarURL:   p.AvatarURL,
		Gender:      gender,
		PhoneNumber: p.PhoneNumber,
	}
}

func ProfilesToApi(profiles []*domain.Profile) []*ProfileResponse {
	out := make([]*ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileToApi(p))
	}
	return out
}

func UserToApi(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID.String(),
		Provider:  string(u.Provider),
		Email:     u.Email,
		Profile:   ProfileToApi(u.Profile),
		CreatedAt: u.CreatedAt,
	}
}

func GroupToApi(g *domain.Group) *GroupResponse {
	if g == nil {
		return nil
	}
	return &GroupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID.String(),
		InviteCode:  g.InviteCode,
		CreatedAt:   g.CreatedAt,
	}
}

func GroupsToApi(groups []*domain.Group) []*GroupResponse {
	out := make([]*GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupToApi(g))
	}
	return out
}

func MessageToApi(m *domain.Message) *MessageResponse {
	if m == nil {
		return nil
	}
	resp := &MessageResponse{
		ID:        m.ID.String(),
		ChannelID: m.ChannelID.String(),
		UserID:    m.UserID.String(),
		Type:      string(m.Type),
		Value:     m.Value,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		resp.Sender = ProfileToApi(m.User.Profile)
	}
	return resp
}

func MessagesToApi(messages []*domain.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageToApi(m))
	}
	return out
}

func DirectChannelToApi(e *service.DirectChannelEntry) *DirectChannelResponse {
	return &DirectChannelResponse{
		ID:          e.Channel.ID.String(),
		Peer:        ProfileToApi(e.Peer),
		PeerOnline:  e.PeerOnline,
		LastMessage: MessageToApi(e.LastMessage),
		UpdatedAt:   e.Channel.UpdatedAt,
	}
}

func GroupChannelToApi(ch *domain.GroupChannel) *GroupChannelResponse {
	if ch == nil {
		return nil
	}
	return &GroupChannelResponse{
		ID:        ch.ID.String(),
		GroupID:   ch.GroupID.String(),
		Name:      ch.Name,
		CreatedAt: ch.CreatedAt,
	}
}
