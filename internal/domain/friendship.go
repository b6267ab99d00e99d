package domain

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipRequestStatus string

const (
	FriendshipRequestPending  FriendshipRequestStatus = "PENDING"
	FriendshipRequestAccepted FriendshipRequestStatus = "ACCEPTED"
)

type FriendshipRequest struct {
	FromUserID uuid.UUID               `json:"from_user_id"`
	ToUserID   uuid.UUID               `json:"to_user_id"`
	Status     FriendshipRequestStatus `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
}

// Friendship rows are stored in both directions, so listing a user's
// friends is a single scan on from_user_id.
type Friendship struct {
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
