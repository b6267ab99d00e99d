package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/repository"
	"github.com/ideameet/backend/lib/logger/sl"
)

// PresenceService tracks which socket connection, if any, each user owns.
type PresenceService struct {
	log   *slog.Logger
	users repository.UserRepository
}

func NewPresenceService(log *slog.Logger, users repository.UserRepository) *PresenceService {
	return &PresenceService{log: log, users: users}
}

// Connect binds wsID as the user's live connection. A previous binding is
// overwritten, so a reconnect always wins over the connection it replaces.
func (s *PresenceService) Connect(ctx context.Context, userID uuid.UUID, wsID string) error {
	const op = "service.presence.Connect"

	if err := s.users.BindConnection(ctx, userID, wsID); err != nil {
		s.log.Error("failed to bind connection", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user connected",
		slog.String("user_id", userID.String()),
		slog.String("ws_id", wsID),
	)
	return nil
}

// Disconnect releases wsID. If the user has since reconnected with a new
// socket the stored binding differs and stays untouched.
func (s *PresenceService) Disconnect(ctx context.Context, userID uuid.UUID, wsID string) error {
	const op = "service.presence.Disconnect"

	if err := s.users.ReleaseConnection(ctx, userID, wsID); err != nil {
		s.log.Error("failed to release connection", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user disconnected",
		slog.String("user_id", userID.String()),
		slog.String("ws_id", wsID),
	)
	return nil
}

// Reset clears every presence binding. Called once at startup, before the
// gateway accepts connections.
func (s *PresenceService) Reset(ctx context.Context) error {
	const op = "service.presence.Reset"

	if err := s.users.ResetPresence(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("presence state reset")
	return nil
}
