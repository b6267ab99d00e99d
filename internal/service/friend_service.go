package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/ideameet/backend/lib/logger/sl"
)

// FriendService manages friendship requests and friendships. Accepting a
// request also provisions the pair's direct channel if they never had one.
type FriendService struct {
	log      *slog.Logger
	users    repository.UserRepository
	friends  repository.FriendRepository
	channels repository.ChannelRepository
}

func NewFriendService(
	log *slog.Logger,
	users repository.UserRepository,
	friends repository.FriendRepository,
	channels repository.ChannelRepository,
) *FriendService {
	return &FriendService{log: log, users: users, friends: friends, channels: channels}
}

func (s *FriendService) RequestFriendship(ctx context.Context, fromUserID, toUserID uuid.UUID) (*domain.FriendshipRequest, error) {
	const op = "service.friend.RequestFriendship"

	if fromUserID == toUserID {
		return nil, ErrCannotBefriendSelf
	}
	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.friends.GetRequestBetween(ctx, fromUserID, toUserID); err == nil {
		return nil, ErrFriendRequestExists
	} else if !errors.Is(err, repository.ErrRequestNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := &domain.FriendshipRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.FriendshipRequestPending,
	}
	if err := s.friends.CreateRequest(ctx, req); err != nil {
		s.log.Error("failed to create friendship request", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("friendship requested",
		slog.String("from_user_id", fromUserID.String()),
		slog.String("to_user_id", toUserID.String()),
	)
	return req, nil
}

// AcceptFriendship turns fromUserID's pending request into a friendship.
// Only the addressee can accept.
func (s *FriendService) AcceptFriendship(ctx context.Context, fromUserID, toUserID uuid.UUID) error {
	const op = "service.friend.AcceptFriendship"

	if _, err := s.friends.GetPendingRequest(ctx, fromUserID, toUserID); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.friends.AcceptRequest(ctx, fromUserID, toUserID); err != nil {
		s.log.Error("failed to accept friendship request", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.channels.FindDirectBetween(ctx, fromUserID, toUserID); errors.Is(err, repository.ErrChannelNotFound) {
		channel := domain.NewDirectChannel()
		if err := s.channels.CreateDirect(ctx, channel, []uuid.UUID{fromUserID, toUserID}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("friendship accepted",
		slog.String("from_user_id", fromUserID.String()),
		slog.String("to_user_id", toUserID.String()),
	)
	return nil
}

// CancelFriendshipRequest withdraws or declines the pending request between
// the pair, whichever side a is on.
func (s *FriendService) CancelFriendshipRequest(ctx context.Context, a, b uuid.UUID) error {
	const op = "service.friend.CancelFriendshipRequest"

	if err := s.friends.DeletePendingRequestsBetween(ctx, a, b); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FriendService) ListRequesters(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error) {
	const op = "service.friend.ListRequesters"

	users, total, err := s.friends.ListRequesters(ctx, userID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return profilesOf(users), total, nil
}

func (s *FriendService) ListRequested(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error) {
	const op = "service.friend.ListRequested"

	users, total, err := s.friends.ListRequested(ctx, userID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return profilesOf(users), total, nil
}

func (s *FriendService) CountRequesters(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "service.friend.CountRequesters"

	n, err := s.friends.CountRequesters(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *FriendService) CountRequested(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "service.friend.CountRequested"

	n, err := s.friends.CountRequested(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*FriendEntry, int64, error) {
	const op = "service.friend.ListFriends"

	users, total, err := s.friends.ListFriends(ctx, userID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]*FriendEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, &FriendEntry{Profile: u.Profile, IsOnline: u.IsOnline()})
	}
	return entries, total, nil
}

// Unfriend removes the friendship in both directions. The direct channel and
// its history survive.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID uuid.UUID) error {
	const op = "service.friend.Unfriend"

	exists, err := s.friends.FriendshipExists(ctx, userID, friendID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return ErrFriendshipNotFound
	}

	if err := s.friends.DeleteFriendship(ctx, userID, friendID); err != nil {
		s.log.Error("failed to delete friendship", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("friendship removed",
		slog.String("user_id", userID.String()),
		slog.String("friend_id", friendID.String()),
	)
	return nil
}

func profilesOf(users []*domain.User) []*domain.Profile {
	profiles := make([]*domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile)
	}
	return profiles
}
