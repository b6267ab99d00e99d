package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserProvider string

const (
	UserProviderGoogle   UserProvider = "GOOGLE"
	UserProviderFacebook UserProvider = "FACEBOOK"
)

type UserGender string

const (
	UserGenderMale   UserGender = "MALE"
	UserGenderFemale UserGender = "FEMALE"
)

// User is the identity row. WsID holds the id of the user's live socket
// connection; nil means offline. At most one live connection per user,
// last write wins.
type User struct {
	ID           uuid.UUID    `json:"id"`
	Provider     UserProvider `json:"provider"`
	Email        *string      `json:"email,omitempty"`
	FacebookID   *string      `json:"-"`
	RefreshToken *string      `json:"-"`
	WsID         *string      `json:"-"`
	Profile      *Profile     `json:"profile,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Profile struct {
	UserID      uuid.UUID   `json:"user_id"`
	FullName    *string     `json:"full_name"`
	AvatarURL   *string     `json:"avatar_url"`
	Gender      *UserGender `json:"gender"`
	PhoneNumber *string     `json:"phone_number"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func NewGoogleUser(email string) *User {
	now := time.Now().UTC()
	id := uuid.New()
	return &User{
		ID:        id,
		Provider:  UserProviderGoogle,
		Email:     &email,
		Profile:   &Profile{UserID: id, CreatedAt: now, UpdatedAt: now},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewFacebookUser(facebookID string, fullName string, gender *UserGender) *User {
	now := time.Now().UTC()
	id := uuid.New()
	profile := &Profile{UserID: id, Gender: gender, CreatedAt: now, UpdatedAt: now}
	if fullName != "" {
		profile.FullName = &fullName
	}
	return &User{
		ID:         id,
		Provider:   UserProviderFacebook,
		FacebookID: &facebookID,
		Profile:    profile,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsOnline reports whether the user currently has a live connection bound.
func (u *User) IsOnline() bool {
	return u != nil && u.WsID != nil && *u.WsID != ""
}
