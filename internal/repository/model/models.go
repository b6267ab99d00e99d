package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Provider     string    `gorm:"size:16;not null"`
	Email        *string   `gorm:"size:255;uniqueIndex:idx_users_email,where:email IS NOT NULL"`
	FacebookID   *string   `gorm:"size:64;uniqueIndex:idx_users_facebook_id,where:facebook_id IS NOT NULL"`
	RefreshToken *string   `gorm:"size:1024"`
	WsID         *string   `gorm:"size:64;index"`
	Profile      Profile   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type Profile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName    *string   `gorm:"size:255"`
	AvatarURL   *string   `gorm:"size:512"`
	Gender      *string   `gorm:"size:16"`
	PhoneNumber *string   `gorm:"size:32"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FriendshipRequest struct {
	FromUserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ToUserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Status     string    `gorm:"size:16;not null"`
	FromUser   User      `gorm:"foreignKey:FromUserID"`
	ToUser     User      `gorm:"foreignKey:ToUserID"`
	CreatedAt  time.Time
}

// Friendship is stored in both directions.
type Friendship struct {
	FromUserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ToUserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ToUser     User      `gorm:"foreignKey:ToUserID"`
	CreatedAt  time.Time
}

type Group struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Name        string        `gorm:"size:255;not null"`
	Description *string       `gorm:"size:1024"`
	OwnerID     uuid.UUID     `gorm:"type:uuid;index;not null"`
	InviteCode  string        `gorm:"size:16;uniqueIndex;not null"`
	Members     []GroupMember `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"not null"`
	UpdatedAt   time.Time     `gorm:"not null"`
}

type GroupMember struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	IsOwner   bool      `gorm:"not null"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}

type DirectChannel struct {
	ID        uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Members   []DirectChannelMember `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time             `gorm:"not null"`
	UpdatedAt time.Time             `gorm:"not null;index"`
}

type DirectChannelMember struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}

type DirectMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Type      string    `gorm:"size:16;not null"`
	Value     string    `gorm:"type:text;not null"`
	IsDeleted bool      `gorm:"not null;default:false"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"not null;index"`
}

type GroupChannel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"size:255;not null"`
	IsDeleted bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GroupMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Type      string    `gorm:"size:16;not null"`
	Value     string    `gorm:"type:text;not null"`
	IsDeleted bool      `gorm:"not null;default:false"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"not null;index"`
}

type DirectCallChannel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	CreatedByID uuid.UUID          `gorm:"type:uuid;not null"`
	AcceptedAt  *time.Time         ``
	Members     []DirectCallMember `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"not null"`
}

// UserID alone is the primary key: the schema itself enforces the
// one-active-call-per-user invariant.
type DirectCallMember struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID uuid.UUID `gorm:"type:uuid;index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}
