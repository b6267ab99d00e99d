package domain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const inviteCodeLength = 10

const inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	InviteCode  string    `json:"invite_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type GroupMember struct {
	UserID    uuid.UUID `json:"user_id"`
	GroupID   uuid.UUID `json:"group_id"`
	IsOwner   bool      `json:"is_owner"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewGroup(name string, description *string, owner uuid.UUID) *Group {
	now := time.Now().UTC()
	return &Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     owner,
		InviteCode:  GenerateInviteCode(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func GenerateInviteCode() string {
	buf := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf)
}
