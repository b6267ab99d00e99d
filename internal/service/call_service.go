package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/metrics"
	"github.com/ideameet/backend/internal/repository"
	"github.com/ideameet/backend/lib/logger/sl"
)

// CallService drives the 1:1 call lifecycle: ring, accept, cancel. Admission
// checks and the channel insert run under a single mutex so two concurrent
// requests cannot both pass the busy check; the sole-membership key on call
// members backstops the same rule in the database.
type CallService struct {
	mu     sync.Mutex
	log    *slog.Logger
	users  repository.UserRepository
	calls  repository.CallRepository
	pusher Pusher
}

func NewCallService(log *slog.Logger, users repository.UserRepository, calls repository.CallRepository, pusher Pusher) *CallService {
	return &CallService{log: log, users: users, calls: calls, pusher: pusher}
}

type callEventPayload struct {
	Channel *domain.CallChannel `json:"channel"`
}

// RequestCall starts ringing calleeID on behalf of callerID. Both users must
// be online and free; the resulting channel is pushed to both sockets.
func (s *CallService) RequestCall(ctx context.Context, callerID, calleeID uuid.UUID) (*domain.CallChannel, error) {
	const op = "service.call.RequestCall"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.users.GetByID(ctx, callerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	callee, err := s.users.GetByID(ctx, calleeID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !callee.IsOnline() {
		return nil, ErrUserOffline
	}
	if _, err := s.calls.GetByMember(ctx, callerID); err == nil {
		return nil, ErrAlreadyInCall
	} else if !errors.Is(err, repository.ErrCallNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.calls.GetByMember(ctx, calleeID); err == nil {
		return nil, ErrAlreadyInCall
	} else if !errors.Is(err, repository.ErrCallNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	channel := domain.NewCallChannel(callerID, calleeID)
	if err := s.calls.Create(ctx, channel); err != nil {
		if errors.Is(err, repository.ErrCallMemberExists) {
			return nil, ErrAlreadyInCall
		}
		s.log.Error("failed to create call channel", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	channel, err = s.calls.GetByMember(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.ActiveCalls.Inc()

	s.log.Info("call requested",
		slog.String("caller_id", callerID.String()),
		slog.String("callee_id", calleeID.String()),
		slog.String("channel_id", channel.ID.String()),
	)

	s.pushToMember(channel, callerID, domain.EventRequestCall)
	s.pushToMember(channel, calleeID, domain.EventRequestCall)

	return channel, nil
}

// AcceptCall marks the caller's ring answered. Only the callee may accept.
func (s *CallService) AcceptCall(ctx context.Context, userID uuid.UUID) (*domain.CallChannel, error) {
	const op = "service.call.AcceptCall"

	s.mu.Lock()
	defer s.mu.Unlock()

	channel, err := s.calls.GetByMember(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return nil, ErrNotInCall
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if channel.CreatedByID == userID {
		return nil, ErrIsCaller
	}

	now := time.Now().UTC()
	if err := s.calls.SetAccepted(ctx, channel.ID, now); err != nil {
		s.log.Error("failed to accept call", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	channel.AcceptedAt = &now

	s.log.Info("call accepted",
		slog.String("user_id", userID.String()),
		slog.String("channel_id", channel.ID.String()),
	)

	for _, m := range channel.Members {
		s.pushToMember(channel, m.UserID, domain.EventAcceptRequestCall)
	}
	return channel, nil
}

// CancelCall ends the user's call whether it is still ringing or already
// accepted. The other member is notified before the channel is deleted.
func (s *CallService) CancelCall(ctx context.Context, userID uuid.UUID) error {
	const op = "service.call.CancelCall"

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelLocked(ctx, op, userID)
}

func (s *CallService) cancelLocked(ctx context.Context, op string, userID uuid.UUID) error {
	channel, err := s.calls.GetByMember(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return ErrNotInCall
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if peer := channel.Peer(userID); peer != nil {
		s.pushToMember(channel, peer.UserID, domain.EventCancelCall)
	}

	if err := s.calls.Delete(ctx, channel.ID); err != nil {
		s.log.Error("failed to delete call channel", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.ActiveCalls.Dec()

	s.log.Info("call cancelled",
		slog.String("user_id", userID.String()),
		slog.String("channel_id", channel.ID.String()),
	)
	return nil
}

// RelaySignal forwards WebRTC negotiation data to the other member of the
// user's accepted call.
func (s *CallService) RelaySignal(ctx context.Context, userID uuid.UUID, signal *domain.CallSignal) error {
	const op = "service.call.RelaySignal"

	channel, err := s.calls.GetByMember(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return ErrNotInCall
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if channel.AcceptedAt == nil {
		return ErrNotInCall
	}

	peer := channel.Peer(userID)
	if peer == nil {
		return ErrNotInCall
	}

	signal.SenderID = userID
	if peer.User.IsOnline() {
		s.pusher.Push(*peer.User.WsID, domain.EventCallSignal, signal)
	}
	return nil
}

// HandleDisconnect tears down whatever call the user is on when their socket
// closes. Not being on a call is the common case and not an error.
func (s *CallService) HandleDisconnect(ctx context.Context, userID uuid.UUID) {
	const op = "service.call.HandleDisconnect"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cancelLocked(ctx, op, userID); err != nil && !errors.Is(err, ErrNotInCall) {
		s.log.Error("failed to tear down call on disconnect",
			slog.String("user_id", userID.String()),
			sl.Err(err),
		)
	}
}

// Reset deletes every call channel. Called once at startup alongside the
// presence reset.
func (s *CallService) Reset(ctx context.Context) error {
	const op = "service.call.Reset"

	if err := s.calls.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.ActiveCalls.Set(0)
	s.log.Info("call state reset")
	return nil
}

func (s *CallService) pushToMember(channel *domain.CallChannel, userID uuid.UUID, event string) {
	for _, m := range channel.Members {
		if m.UserID != userID {
			continue
		}
		if m.User.IsOnline() {
			s.pusher.Push(*m.User.WsID, event, callEventPayload{Channel: channel})
		}
		return
	}
}
