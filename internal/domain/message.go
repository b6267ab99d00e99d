package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
)

// Message is a direct or group chat message. Deleted messages keep their row;
// Value is masked to the empty string at read time, never erased at rest.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	ChannelID uuid.UUID   `json:"channel_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Type      MessageType `json:"type"`
	Value     string      `json:"value"`
	IsDeleted bool        `json:"is_deleted"`
	User      *User       `json:"user,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewMessage(channelID, userID uuid.UUID, typ MessageType, value string) *Message {
	return &Message{
		ID:        uuid.New(),
		ChannelID: channelID,
		UserID:    userID,
		Type:      typ,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
}

// Redacted returns a copy safe for listing: deleted messages lose their value.
func (m Message) Redacted() Message {
	if m.IsDeleted {
		m.Value = ""
	}
	return m
}
