package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateInviteCode()
		assert.Len(t, code, 10)
		assert.False(t, seen[code], "invite codes should not repeat")
		seen[code] = true
	}
}

func TestMessageRedacted(t *testing.T) {
	msg := NewMessage(uuid.New(), uuid.New(), MessageTypeText, "secret")

	assert.Equal(t, "secret", msg.Redacted().Value)

	msg.IsDeleted = true
	redacted := msg.Redacted()
	assert.Empty(t, redacted.Value)
	assert.True(t, redacted.IsDeleted)
	// the original keeps its value at rest
	assert.Equal(t, "secret", msg.Value)
}

func TestUserIsOnline(t *testing.T) {
	user := NewGoogleUser("alice@example.com")
	assert.False(t, user.IsOnline())

	ws := "ws-1"
	user.WsID = &ws
	assert.True(t, user.IsOnline())

	empty := ""
	user.WsID = &empty
	assert.False(t, user.IsOnline())
}

func TestCallChannelPeer(t *testing.T) {
	caller := uuid.New()
	callee := uuid.New()
	channel := NewCallChannel(caller, callee)

	assert.Equal(t, callee, channel.Peer(caller).UserID)
	assert.Equal(t, caller, channel.Peer(callee).UserID)
	assert.True(t, channel.HasMember(caller))
	assert.False(t, channel.HasMember(uuid.New()))
}

func TestPaginationNormalized(t *testing.T) {
	p := Pagination{}.Normalized()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Take)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, Take: 500}.Normalized()
	assert.Equal(t, 20, p.Take)
	assert.Equal(t, 40, p.Offset())

	p = Pagination{Page: 2, Take: 10}.Normalized()
	assert.Equal(t, 10, p.Offset())
}
