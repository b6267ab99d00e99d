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

const maxOwnedGroups = 10

const inviteCodeRetries = 5

type GroupService struct {
	log    *slog.Logger
	groups repository.GroupRepository
}

func NewGroupService(log *slog.Logger, groups repository.GroupRepository) *GroupService {
	return &GroupService{log: log, groups: groups}
}

func (s *GroupService) CreateGroup(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*domain.Group, error) {
	const op = "service.group.CreateGroup"

	owned, err := s.groups.CountOwned(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if owned >= maxOwnedGroups {
		return nil, ErrTooManyGroups
	}

	group := domain.NewGroup(name, description, ownerID)
	for attempt := 0; ; attempt++ {
		err = s.groups.Create(ctx, group)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrInviteCodeExists) && attempt < inviteCodeRetries {
			group.InviteCode = domain.GenerateInviteCode()
			continue
		}
		s.log.Error("failed to create group", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("group created",
		slog.String("group_id", group.ID.String()),
		slog.String("owner_id", ownerID.String()),
	)
	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*GroupOverview, error) {
	const op = "service.group.GetGroup"

	group, err := s.memberGroup(ctx, op, userID, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.groups.CountMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	channels, err := s.groups.CountChannels(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &GroupOverview{Group: group, MemberCount: members, ChannelCount: channels}, nil
}

func (s *GroupService) UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, name string, description *string) (*domain.Group, error) {
	const op = "service.group.UpdateGroup"

	group, err := s.ownedGroup(ctx, op, userID, groupID)
	if err != nil {
		return nil, err
	}

	group.Name = name
	group.Description = description
	if err := s.groups.Update(ctx, group); err != nil {
		s.log.Error("failed to update group", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return group, nil
}

// RegenerateInviteCode invalidates the current invite link by replacing the
// code. Owner only.
func (s *GroupService) RegenerateInviteCode(ctx context.Context, userID, groupID uuid.UUID) (*domain.Group, error) {
	const op = "service.group.RegenerateInviteCode"

	group, err := s.ownedGroup(ctx, op, userID, groupID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		group.InviteCode = domain.GenerateInviteCode()
		err = s.groups.Update(ctx, group)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrInviteCodeExists) && attempt < inviteCodeRetries {
			continue
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return group, nil
}

// JoinByInviteCode adds the user to the group behind the code. Joining a
// group the user already belongs to returns the group unchanged.
func (s *GroupService) JoinByInviteCode(ctx context.Context, userID uuid.UUID, code string) (*domain.Group, error) {
	const op = "service.group.JoinByInviteCode"

	group, err := s.groups.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.groups.GetMember(ctx, userID, group.ID); err == nil {
		return group, nil
	} else if !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	member := &domain.GroupMember{UserID: userID, GroupID: group.ID}
	if err := s.groups.AddMember(ctx, member); err != nil {
		s.log.Error("failed to add group member", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user joined group",
		slog.String("user_id", userID.String()),
		slog.String("group_id", group.ID.String()),
	)
	return group, nil
}

func (s *GroupService) ListJoined(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Group, int64, error) {
	const op = "service.group.ListJoined"

	groups, total, err := s.groups.ListJoined(ctx, userID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return groups, total, nil
}

func (s *GroupService) ListMembers(ctx context.Context, userID, groupID uuid.UUID, p domain.Pagination) ([]*GroupMemberEntry, int64, error) {
	const op = "service.group.ListMembers"

	if _, err := s.memberGroup(ctx, op, userID, groupID); err != nil {
		return nil, 0, err
	}

	members, total, err := s.groups.ListMembers(ctx, groupID, p.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]*GroupMemberEntry, 0, len(members))
	for _, m := range members {
		entry := &GroupMemberEntry{IsOwner: m.IsOwner}
		if m.User != nil {
			entry.Profile = m.User.Profile
			entry.IsOnline = m.User.IsOnline()
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

// RemoveMember kicks targetID out of the group. Owner only, and the owner
// cannot remove themselves; they leave by deleting the group.
func (s *GroupService) RemoveMember(ctx context.Context, ownerID, groupID, targetID uuid.UUID) error {
	const op = "service.group.RemoveMember"

	if _, err := s.ownedGroup(ctx, op, ownerID, groupID); err != nil {
		return err
	}
	if targetID == ownerID {
		return ErrForbidden
	}

	if err := s.groups.RemoveMember(ctx, targetID, groupID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("group member removed",
		slog.String("group_id", groupID.String()),
		slog.String("user_id", targetID.String()),
	)
	return nil
}

// LeaveGroup removes the caller's own membership. The owner cannot leave.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	const op = "service.group.LeaveGroup"

	group, err := s.memberGroup(ctx, op, userID, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return ErrForbidden
	}

	if err := s.groups.RemoveMember(ctx, userID, groupID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// memberGroup loads the group and verifies the user belongs to it. Outsiders
// get the same not-found answer as for a group that doesn't exist.
func (s *GroupService) memberGroup(ctx context.Context, op string, userID, groupID uuid.UUID) (*domain.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.groups.GetMember(ctx, userID, groupID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return group, nil
}

func (s *GroupService) ownedGroup(ctx context.Context, op string, userID, groupID uuid.UUID) (*domain.Group, error) {
	group, err := s.memberGroup(ctx, op, userID, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != userID {
		return nil, ErrForbidden
	}
	return group, nil
}
