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

// ChannelService lists direct conversations and manages channels inside
// groups.
type ChannelService struct {
	log      *slog.Logger
	channels repository.ChannelRepository
	groups   repository.GroupRepository
	messages repository.MessageRepository
}

func NewChannelService(
	log *slog.Logger,
	channels repository.ChannelRepository,
	groups repository.GroupRepository,
	messages repository.MessageRepository,
) *ChannelService {
	return &ChannelService{log: log, channels: channels, groups: groups, messages: messages}
}

// ListDirectChannels returns the user's conversations, most recently active
// first. Each entry carries the peer's profile, their presence, and the last
// message with deleted values masked.
func (s *ChannelService) ListDirectChannels(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*DirectChannelEntry, int64, error) {
	const op = "service.channel.ListDirectChannels"

	channels, total, err := s.channels.ListDirect(ctx, userID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]*DirectChannelEntry, 0, len(channels))
	for _, ch := range channels {
		entry := &DirectChannelEntry{Channel: ch}
		for _, m := range ch.Members {
			if m.ID != userID {
				entry.Peer = m.Profile
				entry.PeerOnline = m.IsOnline()
				break
			}
		}
		last, err := s.messages.LastDirect(ctx, ch.ID)
		if err != nil && !errors.Is(err, repository.ErrMessageNotFound) {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if last != nil {
			r := last.Redacted()
			entry.LastMessage = &r
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (s *ChannelService) CreateGroupChannel(ctx context.Context, userID, groupID uuid.UUID, name string) (*domain.GroupChannel, error) {
	const op = "service.channel.CreateGroupChannel"

	if err := s.requireMember(ctx, op, userID, groupID); err != nil {
		return nil, err
	}

	channel := domain.NewGroupChannel(groupID, name)
	if err := s.channels.CreateGroupChannel(ctx, channel); err != nil {
		s.log.Error("failed to create group channel", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("group channel created",
		slog.String("channel_id", channel.ID.String()),
		slog.String("group_id", groupID.String()),
	)
	return channel, nil
}

func (s *ChannelService) GetGroupChannel(ctx context.Context, userID, groupID, channelID uuid.UUID) (*domain.GroupChannel, error) {
	const op = "service.channel.GetGroupChannel"

	return s.liveGroupChannel(ctx, op, userID, groupID, channelID)
}

func (s *ChannelService) UpdateGroupChannel(ctx context.Context, userID, groupID, channelID uuid.UUID, name string) (*domain.GroupChannel, error) {
	const op = "service.channel.UpdateGroupChannel"

	channel, err := s.liveGroupChannel(ctx, op, userID, groupID, channelID)
	if err != nil {
		return nil, err
	}

	channel.Name = name
	if err := s.channels.UpdateGroupChannel(ctx, channel); err != nil {
		s.log.Error("failed to update group channel", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return channel, nil
}

// DeleteGroupChannel soft-deletes the channel. Its messages stay behind but
// the channel disappears from listings.
func (s *ChannelService) DeleteGroupChannel(ctx context.Context, userID, groupID, channelID uuid.UUID) error {
	const op = "service.channel.DeleteGroupChannel"

	if _, err := s.liveGroupChannel(ctx, op, userID, groupID, channelID); err != nil {
		return err
	}

	if err := s.channels.SoftDeleteGroupChannel(ctx, channelID); err != nil {
		s.log.Error("failed to delete group channel", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("group channel deleted", slog.String("channel_id", channelID.String()))
	return nil
}

func (s *ChannelService) ListGroupChannels(ctx context.Context, userID, groupID uuid.UUID, p domain.Pagination) ([]*GroupChannelEntry, int64, error) {
	const op = "service.channel.ListGroupChannels"

	if err := s.requireMember(ctx, op, userID, groupID); err != nil {
		return nil, 0, err
	}

	channels, total, err := s.channels.ListGroupChannels(ctx, groupID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]*GroupChannelEntry, 0, len(channels))
	for _, ch := range channels {
		entry := &GroupChannelEntry{Channel: ch}
		last, err := s.messages.LastGroup(ctx, ch.ID)
		if err != nil && !errors.Is(err, repository.ErrMessageNotFound) {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if last != nil {
			r := last.Redacted()
			entry.LastMessage = &r
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (s *ChannelService) requireMember(ctx context.Context, op string, userID, groupID uuid.UUID) error {
	if _, err := s.groups.GetMember(ctx, userID, groupID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *ChannelService) liveGroupChannel(ctx context.Context, op string, userID, groupID, channelID uuid.UUID) (*domain.GroupChannel, error) {
	if err := s.requireMember(ctx, op, userID, groupID); err != nil {
		return nil, err
	}

	channel, err := s.channels.GetGroupChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if channel.GroupID != groupID || channel.IsDeleted {
		return nil, ErrChannelNotFound
	}
	return channel, nil
}
