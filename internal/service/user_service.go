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

type UserService struct {
	log      *slog.Logger
	users    repository.UserRepository
	friends  repository.FriendRepository
	channels repository.ChannelRepository
}

func NewUserService(
	log *slog.Logger,
	users repository.UserRepository,
	friends repository.FriendRepository,
	channels repository.ChannelRepository,
) *UserService {
	return &UserService{log: log, users: users, friends: friends, channels: channels}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	const op = "service.user.GetProfile"

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	const op = "service.user.UpdateProfile"

	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("failed to update profile", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user.Profile, nil
}

// GetUserOverview assembles the "view another user" card: profile, presence,
// and the friendship and direct-channel state between the two users.
func (s *UserService) GetUserOverview(ctx context.Context, userID, targetID uuid.UUID) (*UserOverview, error) {
	const op = "service.user.GetUserOverview"

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	overview := &UserOverview{
		Profile:  target.Profile,
		IsOnline: target.IsOnline(),
	}

	isFriend, err := s.friends.FriendshipExists(ctx, userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	overview.IsFriendship = isFriend

	if !isFriend {
		if _, err := s.friends.GetPendingRequest(ctx, userID, targetID); err == nil {
			overview.FriendshipRequestFromMe = true
		} else if !errors.Is(err, repository.ErrRequestNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := s.friends.GetPendingRequest(ctx, targetID, userID); err == nil {
			overview.FriendshipRequestToMe = true
		} else if !errors.Is(err, repository.ErrRequestNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if channel, err := s.channels.FindDirectBetween(ctx, userID, targetID); err == nil {
		overview.DirectChannelID = &channel.ID
	} else if !errors.Is(err, repository.ErrChannelNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return overview, nil
}

// ListUsers searches profiles by name, the caller excluded. notInGroupID
// narrows the result to users outside that group, for invite pickers.
func (s *UserService) ListUsers(ctx context.Context, userID uuid.UUID, keyword string, notInGroupID *uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error) {
	const op = "service.user.ListUsers"

	users, total, err := s.users.Search(ctx, repository.UserSearchFilter{
		ExcludeUserID: userID,
		Keyword:       keyword,
		NotInGroupID:  notInGroupID,
	}, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	profiles := make([]*domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile)
	}
	return profiles, total, nil
}
