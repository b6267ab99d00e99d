package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pion/webrtc/v3"
)

// CallChannel is the transient record of one ringing or in-progress call
// between exactly two users. A nil AcceptedAt means the call is still
// ringing. There is no rejected state: rejection is modeled as delete.
type CallChannel struct {
	ID          uuid.UUID     `json:"id"`
	CreatedByID uuid.UUID     `json:"created_by_id"`
	AcceptedAt  *time.Time    `json:"accepted_at"`
	Members     []*CallMember `json:"members"`
	CreatedAt   time.Time     `json:"created_at"`
}

type CallMember struct {
	UserID uuid.UUID `json:"user_id"`
	User   *User     `json:"user,omitempty"`
}

func NewCallChannel(callerID, calleeID uuid.UUID) *CallChannel {
	return &CallChannel{
		ID:          uuid.New(),
		CreatedByID: callerID,
		Members: []*CallMember{
			{UserID: callerID},
			{UserID: calleeID},
		},
		CreatedAt: time.Now().UTC(),
	}
}

// Peer returns the member that is not userID, nil for a malformed channel.
func (c *CallChannel) Peer(userID uuid.UUID) *CallMember {
	for _, m := range c.Members {
		if m.UserID != userID {
			return m
		}
	}
	return nil
}

func (c *CallChannel) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CallSignal carries WebRTC negotiation data relayed verbatim between the two
// members of an accepted call.
type CallSignal struct {
	Type      string                     `json:"type"` // "offer", "answer", "ice-candidate"
	SDP       *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	SenderID  uuid.UUID                  `json:"sender_id,omitempty"`
}
