package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
)

type MemoryChannelRepository struct {
	store *MemoryStore
}

func (r *MemoryChannelRepository) CreateDirect(_ context.Context, channel *domain.DirectChannel, memberIDs []uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *channel
	cp.Members = nil
	r.store.directChannels[channel.ID] = &cp
	r.store.directMembers[channel.ID] = append([]uuid.UUID(nil), memberIDs...)
	return nil
}

func (r *MemoryChannelRepository) GetDirect(_ context.Context, id uuid.UUID) (*domain.DirectChannel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.getDirectLocked(id)
}

func (r *MemoryChannelRepository) getDirectLocked(id uuid.UUID) (*domain.DirectChannel, error) {
	channel, ok := r.store.directChannels[id]
	if !ok {
		return nil, ErrChannelNotFound
	}
	cp := *channel
	cp.Members = nil
	for _, userID := range r.store.directMembers[id] {
		if u, ok := r.store.users[userID]; ok {
			ucp := *u
			cp.Members = append(cp.Members, &ucp)
		}
	}
	return &cp, nil
}

func (r *MemoryChannelRepository) FindDirectBetween(_ context.Context, a, b uuid.UUID) (*domain.DirectChannel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for id, memberIDs := range r.store.directMembers {
		var hasA, hasB bool
		for _, m := range memberIDs {
			hasA = hasA || m == a
			hasB = hasB || m == b
		}
		if hasA && hasB {
			return r.getDirectLocked(id)
		}
	}
	return nil, ErrChannelNotFound
}

func (r *MemoryChannelRepository) IsDirectMember(_ context.Context, userID, channelID uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, m := range r.store.directMembers[channelID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryChannelRepository) ListDirect(_ context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.DirectChannel, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var channels []*domain.DirectChannel
	for id, memberIDs := range r.store.directMembers {
		member := false
		for _, m := range memberIDs {
			if m == userID {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		hasMessage := false
		for _, msg := range r.store.directMessages {
			if msg.ChannelID == id {
				hasMessage = true
				break
			}
		}
		if !hasMessage {
			continue
		}
		channel, err := r.getDirectLocked(id)
		if err != nil {
			continue
		}
		channels = append(channels, channel)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].UpdatedAt.After(channels[j].UpdatedAt)
	})
	return paginate(channels, p), int64(len(channels)), nil
}

func (r *MemoryChannelRepository) CreateGroupChannel(_ context.Context, channel *domain.GroupChannel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *channel
	r.store.groupChannels[channel.ID] = &cp
	return nil
}

func (r *MemoryChannelRepository) GetGroupChannel(_ context.Context, id uuid.UUID) (*domain.GroupChannel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	channel, ok := r.store.groupChannels[id]
	if !ok || channel.IsDeleted {
		return nil, ErrChannelNotFound
	}
	cp := *channel
	return &cp, nil
}

func (r *MemoryChannelRepository) UpdateGroupChannel(_ context.Context, channel *domain.GroupChannel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.groupChannels[channel.ID]
	if !ok || existing.IsDeleted {
		return ErrChannelNotFound
	}
	existing.Name = channel.Name
	existing.UpdatedAt = channel.UpdatedAt
	return nil
}

func (r *MemoryChannelRepository) SoftDeleteGroupChannel(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.groupChannels[id]
	if !ok || existing.IsDeleted {
		return ErrChannelNotFound
	}
	existing.IsDeleted = true
	return nil
}

func (r *MemoryChannelRepository) ListGroupChannels(_ context.Context, groupID uuid.UUID, p domain.Pagination) ([]*domain.GroupChannel, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var channels []*domain.GroupChannel
	for _, c := range r.store.groupChannels {
		if c.GroupID == groupID && !c.IsDeleted {
			cp := *c
			channels = append(channels, &cp)
		}
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name > channels[j].Name
	})
	return paginate(channels, p), int64(len(channels)), nil
}

type MemoryMessageRepository struct {
	store *MemoryStore
}

func (r *MemoryMessageRepository) CreateDirect(_ context.Context, msg *domain.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	channel, ok := r.store.directChannels[msg.ChannelID]
	if !ok {
		return ErrChannelNotFound
	}
	cp := *msg
	cp.User = nil
	r.store.directMessages = append(r.store.directMessages, &cp)
	channel.UpdatedAt = msg.CreatedAt
	return nil
}

func (r *MemoryMessageRepository) CreateGroup(_ context.Context, msg *domain.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *msg
	cp.User = nil
	r.store.groupMessages = append(r.store.groupMessages, &cp)
	return nil
}

func (r *MemoryMessageRepository) GetDirectOwned(_ context.Context, id, userID uuid.UUID) (*domain.Message, error) {
	return r.getOwned(r.store.directMessagesRef, id, userID)
}

func (r *MemoryMessageRepository) GetGroupOwned(_ context.Context, id, userID uuid.UUID) (*domain.Message, error) {
	return r.getOwned(r.store.groupMessagesRef, id, userID)
}

func (r *MemoryMessageRepository) getOwned(messages func() []*domain.Message, id, userID uuid.UUID) (*domain.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, msg := range messages() {
		if msg.ID == id && msg.UserID == userID && !msg.IsDeleted {
			cp := *msg
			return &cp, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *MemoryStore) directMessagesRef() []*domain.Message { return s.directMessages }
func (s *MemoryStore) groupMessagesRef() []*domain.Message  { return s.groupMessages }

func (r *MemoryMessageRepository) SoftDeleteDirect(_ context.Context, id uuid.UUID) error {
	return r.softDelete(r.store.directMessagesRef, id)
}

func (r *MemoryMessageRepository) SoftDeleteGroup(_ context.Context, id uuid.UUID) error {
	return r.softDelete(r.store.groupMessagesRef, id)
}

func (r *MemoryMessageRepository) softDelete(messages func() []*domain.Message, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, msg := range messages() {
		if msg.ID == id && !msg.IsDeleted {
			msg.IsDeleted = true
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *MemoryMessageRepository) ListDirect(_ context.Context, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	return r.list(r.store.directMessagesRef, channelID, p)
}

func (r *MemoryMessageRepository) ListGroup(_ context.Context, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	return r.list(r.store.groupMessagesRef, channelID, p)
}

func (r *MemoryMessageRepository) list(messages func() []*domain.Message, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Message
	for _, msg := range messages() {
		if msg.ChannelID != channelID {
			continue
		}
		cp := *msg
		if u, ok := r.store.users[msg.UserID]; ok {
			ucp := *u
			cp.User = &ucp
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, p), int64(len(out)), nil
}

func (r *MemoryMessageRepository) LastDirect(ctx context.Context, channelID uuid.UUID) (*domain.Message, error) {
	return r.last(ctx, r.store.directMessagesRef, channelID)
}

func (r *MemoryMessageRepository) LastGroup(ctx context.Context, channelID uuid.UUID) (*domain.Message, error) {
	return r.last(ctx, r.store.groupMessagesRef, channelID)
}

func (r *MemoryMessageRepository) last(_ context.Context, messages func() []*domain.Message, channelID uuid.UUID) (*domain.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var latest *domain.Message
	for _, msg := range messages() {
		if msg.ChannelID != channelID {
			continue
		}
		if latest == nil || msg.CreatedAt.After(latest.CreatedAt) {
			latest = msg
		}
	}
	if latest == nil {
		return nil, ErrMessageNotFound
	}
	cp := *latest
	if u, ok := r.store.users[latest.UserID]; ok {
		ucp := *u
		cp.User = &ucp
	}
	return &cp, nil
}

type MemoryCallRepository struct {
	store *MemoryStore
}

func (r *MemoryCallRepository) Create(_ context.Context, channel *domain.CallChannel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.calls {
		for _, m := range channel.Members {
			if existing.HasMember(m.UserID) {
				return ErrCallMemberExists
			}
		}
	}
	cp := *channel
	cp.Members = make([]*domain.CallMember, 0, len(channel.Members))
	for _, m := range channel.Members {
		cp.Members = append(cp.Members, &domain.CallMember{UserID: m.UserID})
	}
	r.store.calls[channel.ID] = &cp
	return nil
}

func (r *MemoryCallRepository) GetByMember(_ context.Context, userID uuid.UUID) (*domain.CallChannel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, channel := range r.store.calls {
		if !channel.HasMember(userID) {
			continue
		}
		cp := *channel
		cp.Members = make([]*domain.CallMember, 0, len(channel.Members))
		for _, m := range channel.Members {
			member := &domain.CallMember{UserID: m.UserID}
			if u, ok := r.store.users[m.UserID]; ok {
				ucp := *u
				member.User = &ucp
			}
			cp.Members = append(cp.Members, member)
		}
		return &cp, nil
	}
	return nil, ErrCallNotFound
}

func (r *MemoryCallRepository) SetAccepted(_ context.Context, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	channel, ok := r.store.calls[id]
	if !ok {
		return ErrCallNotFound
	}
	channel.AcceptedAt = &at
	return nil
}

func (r *MemoryCallRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.calls[id]; !ok {
		return ErrCallNotFound
	}
	delete(r.store.calls, id)
	return nil
}

func (r *MemoryCallRepository) DeleteAll(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.calls = make(map[uuid.UUID]*domain.CallChannel)
	return nil
}
