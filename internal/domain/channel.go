package domain

import (
	"time"

	"github.com/google/uuid"
)

// DirectChannel is the 1:1 conversation container. UpdatedAt is bumped on
// every new message and drives the recency ordering of the channel list.
type DirectChannel struct {
	ID        uuid.UUID `json:"id"`
	Members   []*User   `json:"members,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewDirectChannel() *DirectChannel {
	now := time.Now().UTC()
	return &DirectChannel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GroupChannel is a named message channel inside a group. Deleting one is a
// soft delete, the rows stay behind.
type GroupChannel struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Name      string    `json:"name"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGroupChannel(groupID uuid.UUID, name string) *GroupChannel {
	now := time.Now().UTC()
	return &GroupChannel{
		ID:        uuid.New(),
		GroupID:   groupID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
