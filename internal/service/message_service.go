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

// MessageService handles chat messages in direct and group channels. Every
// mutation fans the event out to all online channel members, the author
// included, so each client applies the change from the same push.
type MessageService struct {
	log      *slog.Logger
	channels repository.ChannelRepository
	groups   repository.GroupRepository
	messages repository.MessageRepository
	pusher   Pusher
}

func NewMessageService(
	log *slog.Logger,
	channels repository.ChannelRepository,
	groups repository.GroupRepository,
	messages repository.MessageRepository,
	pusher Pusher,
) *MessageService {
	return &MessageService{
		log:      log,
		channels: channels,
		groups:   groups,
		messages: messages,
		pusher:   pusher,
	}
}

type messagePayload struct {
	ChannelID uuid.UUID       `json:"channelId"`
	Message   *domain.Message `json:"message"`
}

type messageDeletedPayload struct {
	ChannelID uuid.UUID `json:"channelId"`
	MessageID uuid.UUID `json:"messageId"`
}

func (s *MessageService) CreateDirectMessage(ctx context.Context, senderID, channelID uuid.UUID, typ domain.MessageType, value string) (*domain.Message, error) {
	const op = "service.message.CreateDirectMessage"

	channel, err := s.channels.GetDirect(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !directMember(channel, senderID) {
		return nil, ErrChannelNotFound
	}

	msg := domain.NewMessage(channelID, senderID, typ, value)
	if err := s.messages.CreateDirect(ctx, msg); err != nil {
		s.log.Error("failed to create direct message", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attachSender(msg, channel.Members)
	s.fanOut(channel.Members, domain.EventCreateDirectMessage, messagePayload{ChannelID: channelID, Message: msg})
	return msg, nil
}

func (s *MessageService) CreateGroupMessage(ctx context.Context, senderID, channelID uuid.UUID, typ domain.MessageType, value string) (*domain.Message, error) {
	const op = "service.message.CreateGroupMessage"

	channel, err := s.groupChannelFor(ctx, op, senderID, channelID)
	if err != nil {
		return nil, err
	}

	msg := domain.NewMessage(channelID, senderID, typ, value)
	if err := s.messages.CreateGroup(ctx, msg); err != nil {
		s.log.Error("failed to create group message", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.groups.MemberUsers(ctx, channel.GroupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	attachSender(msg, members)
	s.fanOut(members, domain.EventCreateGroupMessage, messagePayload{ChannelID: channelID, Message: msg})
	return msg, nil
}

// DeleteDirectMessage soft-deletes the requester's own message. An already
// deleted message is out of reach, so a second delete reports not found.
func (s *MessageService) DeleteDirectMessage(ctx context.Context, requesterID, messageID uuid.UUID) error {
	const op = "service.message.DeleteDirectMessage"

	msg, err := s.messages.GetDirectOwned(ctx, messageID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.messages.SoftDeleteDirect(ctx, messageID); err != nil {
		s.log.Error("failed to delete direct message", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	channel, err := s.channels.GetDirect(ctx, msg.ChannelID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.fanOut(channel.Members, domain.EventDeleteDirectMessage, messageDeletedPayload{ChannelID: msg.ChannelID, MessageID: msg.ID})
	return nil
}

func (s *MessageService) DeleteGroupMessage(ctx context.Context, requesterID, messageID uuid.UUID) error {
	const op = "service.message.DeleteGroupMessage"

	msg, err := s.messages.GetGroupOwned(ctx, messageID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.messages.SoftDeleteGroup(ctx, messageID); err != nil {
		s.log.Error("failed to delete group message", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	channel, err := s.channels.GetGroupChannel(ctx, msg.ChannelID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	members, err := s.groups.MemberUsers(ctx, channel.GroupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.fanOut(members, domain.EventDeleteGroupMessage, messageDeletedPayload{ChannelID: msg.ChannelID, MessageID: msg.ID})
	return nil
}

func (s *MessageService) ListDirectMessages(ctx context.Context, userID, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	const op = "service.message.ListDirectMessages"

	ok, err := s.channels.IsDirectMember(ctx, userID, channelID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, 0, ErrChannelNotFound
	}

	messages, total, err := s.messages.ListDirect(ctx, channelID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return redactAll(messages), total, nil
}

func (s *MessageService) ListGroupMessages(ctx context.Context, userID, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	const op = "service.message.ListGroupMessages"

	if _, err := s.groupChannelFor(ctx, op, userID, channelID); err != nil {
		return nil, 0, err
	}

	messages, total, err := s.messages.ListGroup(ctx, channelID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return redactAll(messages), total, nil
}

// groupChannelFor loads a live group channel and verifies the user belongs
// to its group.
func (s *MessageService) groupChannelFor(ctx context.Context, op string, userID, channelID uuid.UUID) (*domain.GroupChannel, error) {
	channel, err := s.channels.GetGroupChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if channel.IsDeleted {
		return nil, ErrChannelNotFound
	}
	if _, err := s.groups.GetMember(ctx, userID, channel.GroupID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return channel, nil
}

func (s *MessageService) fanOut(members []*domain.User, event string, payload any) {
	for _, m := range members {
		if m.IsOnline() {
			s.pusher.Push(*m.WsID, event, payload)
		}
	}
}

// attachSender fills in the author's user and profile from the member list
// already loaded for fan-out.
func attachSender(msg *domain.Message, members []*domain.User) {
	for _, m := range members {
		if m.ID == msg.UserID {
			msg.User = m
			return
		}
	}
}

func directMember(channel *domain.DirectChannel, userID uuid.UUID) bool {
	for _, m := range channel.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

func redactAll(messages []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, len(messages))
	for i, m := range messages {
		r := m.Redacted()
		out[i] = &r
	}
	return out
}
