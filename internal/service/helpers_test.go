package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type pushedEvent struct {
	WsID    string
	Event   string
	Payload any
}

// recordingPusher captures every push so tests can assert on fan-out.
type recordingPusher struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (p *recordingPusher) Push(wsID string, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushedEvent{WsID: wsID, Event: event, Payload: payload})
}

func (p *recordingPusher) all() []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushedEvent(nil), p.events...)
}

func (p *recordingPusher) eventsFor(wsID string) []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushedEvent
	for _, e := range p.events {
		if e.WsID == wsID {
			out = append(out, e)
		}
	}
	return out
}

func (p *recordingPusher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func newTestUser(t *testing.T, store *repository.MemoryStore, name string) *domain.User {
	t.Helper()
	user := domain.NewGoogleUser(name + "-" + uuid.NewString()[:8] + "@example.com")
	user.Profile.FullName = &name
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func connectUser(t *testing.T, store *repository.MemoryStore, userID uuid.UUID) string {
	t.Helper()
	wsID := uuid.NewString()
	require.NoError(t, store.Users().BindConnection(context.Background(), userID, wsID))
	return wsID
}
