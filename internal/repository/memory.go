package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
)

// MemoryStore backs the in-memory repository implementations used in tests
// and local experiments. One store is shared by all of them so cross-entity
// lookups (fan-out member lists, presence reads) see the same data.
type MemoryStore struct {
	mu sync.RWMutex

	users map[uuid.UUID]*domain.User

	requests    []*domain.FriendshipRequest
	friendships []*domain.Friendship

	groups       map[uuid.UUID]*domain.Group
	groupMembers []*domain.GroupMember

	directChannels map[uuid.UUID]*domain.DirectChannel
	directMembers  map[uuid.UUID][]uuid.UUID
	directMessages []*domain.Message

	groupChannels map[uuid.UUID]*domain.GroupChannel
	groupMessages []*domain.Message

	calls map[uuid.UUID]*domain.CallChannel
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[uuid.UUID]*domain.User),
		groups:         make(map[uuid.UUID]*domain.Group),
		directChannels: make(map[uuid.UUID]*domain.DirectChannel),
		directMembers:  make(map[uuid.UUID][]uuid.UUID),
		groupChannels:  make(map[uuid.UUID]*domain.GroupChannel),
		calls:          make(map[uuid.UUID]*domain.CallChannel),
	}
}

func (s *MemoryStore) Users() *MemoryUserRepository       { return &MemoryUserRepository{s} }
func (s *MemoryStore) Friends() *MemoryFriendRepository   { return &MemoryFriendRepository{s} }
func (s *MemoryStore) Groups() *MemoryGroupRepository     { return &MemoryGroupRepository{s} }
func (s *MemoryStore) Channels() *MemoryChannelRepository { return &MemoryChannelRepository{s} }
func (s *MemoryStore) Messages() *MemoryMessageRepository { return &MemoryMessageRepository{s} }
func (s *MemoryStore) Calls() *MemoryCallRepository       { return &MemoryCallRepository{s} }

func paginate[T any](items []T, p domain.Pagination) []T {
	p = p.Normalized()
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.Take
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type MemoryUserRepository struct {
	store *MemoryStore
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user.Email != nil {
		for _, u := range r.store.users {
			if u.Email != nil && *u.Email == *user.Email {
				return ErrUserEmailExists
			}
		}
	}
	cp := *user
	r.store.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.getLocked(id)
}

func (r *MemoryUserRepository) getLocked(id uuid.UUID) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) GetByFacebookID(_ context.Context, facebookID string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.FacebookID != nil && *u.FacebookID == facebookID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, profile *domain.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[profile.UserID]
	if !ok {
		return ErrUserNotFound
	}
	cp := *profile
	user.Profile = &cp
	return nil
}

func (r *MemoryUserRepository) UpdateRefreshToken(_ context.Context, id uuid.UUID, token *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = token
	return nil
}

func (r *MemoryUserRepository) BindConnection(_ context.Context, id uuid.UUID, wsID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.WsID = &wsID
	return nil
}

func (r *MemoryUserRepository) ReleaseConnection(_ context.Context, id uuid.UUID, wsID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil
	}
	if user.WsID != nil && *user.WsID == wsID {
		user.WsID = nil
	}
	return nil
}

func (r *MemoryUserRepository) ResetPresence(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		u.WsID = nil
	}
	return nil
}

func (r *MemoryUserRepository) Search(_ context.Context, filter UserSearchFilter, p domain.Pagination) ([]*domain.User, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.User
	for _, u := range r.store.users {
		if u.ID == filter.ExcludeUserID {
			continue
		}
		if u.Profile == nil || u.Profile.FullName == nil {
			continue
		}
		if filter.Keyword != "" && !userMatchesKeyword(u, filter.Keyword) {
			continue
		}
		if filter.NotInGroupID != nil && r.store.isGroupMemberLocked(u.ID, *filter.NotInGroupID) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return paginate(matched, p), int64(len(matched)), nil
}

func userMatchesKeyword(u *domain.User, keyword string) bool {
	kw := strings.ToLower(keyword)
	if u.Email != nil && strings.Contains(strings.ToLower(*u.Email), kw) {
		return true
	}
	if u.Profile != nil {
		if u.Profile.FullName != nil && strings.Contains(strings.ToLower(*u.Profile.FullName), kw) {
			return true
		}
		if u.Profile.PhoneNumber != nil && strings.Contains(*u.Profile.PhoneNumber, kw) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) isGroupMemberLocked(userID, groupID uuid.UUID) bool {
	for _, m := range s.groupMembers {
		if m.UserID == userID && m.GroupID == groupID {
			return true
		}
	}
	return false
}

type MemoryFriendRepository struct {
	store *MemoryStore
}

func (r *MemoryFriendRepository) CreateRequest(_ context.Context, req *domain.FriendshipRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *req
	r.store.requests = append(r.store.requests, &cp)
	return nil
}

func (r *MemoryFriendRepository) GetRequestBetween(_ context.Context, a, b uuid.UUID) (*domain.FriendshipRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, req := range r.store.requests {
		if (req.FromUserID == a && req.ToUserID == b) || (req.FromUserID == b && req.ToUserID == a) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, ErrRequestNotFound
}

func (r *MemoryFriendRepository) GetPendingRequest(_ context.Context, from, to uuid.UUID) (*domain.FriendshipRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, req := range r.store.requests {
		if req.FromUserID == from && req.ToUserID == to && req.Status == domain.FriendshipRequestPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, ErrRequestNotFound
}

func (r *MemoryFriendRepository) AcceptRequest(_ context.Context, from, to uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, req := range r.store.requests {
		if req.FromUserID == from && req.ToUserID == to && req.Status == domain.FriendshipRequestPending {
			req.Status = domain.FriendshipRequestAccepted
			now := time.Now().UTC()
			r.store.friendships = append(r.store.friendships,
				&domain.Friendship{FromUserID: from, ToUserID: to, CreatedAt: now},
				&domain.Friendship{FromUserID: to, ToUserID: from, CreatedAt: now},
			)
			return nil
		}
	}
	return ErrRequestNotFound
}

func (r *MemoryFriendRepository) DeletePendingRequestsBetween(_ context.Context, a, b uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.requests[:0]
	removed := false
	for _, req := range r.store.requests {
		between := (req.FromUserID == a && req.ToUserID == b) || (req.FromUserID == b && req.ToUserID == a)
		if between && req.Status == domain.FriendshipRequestPending {
			removed = true
			continue
		}
		kept = append(kept, req)
	}
	r.store.requests = kept
	if !removed {
		return ErrRequestNotFound
	}
	return nil
}

func (r *MemoryFriendRepository) ListRequesters(ctx context.Context, to uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error) {
	return r.listRequestUsers(ctx, to, true, p)
}

func (r *MemoryFriendRepository) ListRequested(ctx context.Context, from uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error) {
	return r.listRequestUsers(ctx, from, false, p)
}

func (r *MemoryFriendRepository) listRequestUsers(_ context.Context, id uuid.UUID, incoming bool, p domain.Pagination) ([]*domain.User, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var users []*domain.User
	for _, req := range r.store.requests {
		if req.Status != domain.FriendshipRequestPending {
			continue
		}
		var otherID uuid.UUID
		if incoming && req.ToUserID == id {
			otherID = req.FromUserID
		} else if !incoming && req.FromUserID == id {
			otherID = req.ToUserID
		} else {
			continue
		}
		if u, ok := r.store.users[otherID]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return paginate(users, p), int64(len(users)), nil
}

func (r *MemoryFriendRepository) CountRequesters(_ context.Context, to uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var total int64
	for _, req := range r.store.requests {
		if req.ToUserID == to && req.Status == domain.FriendshipRequestPending {
			total++
		}
	}
	return total, nil
}

func (r *MemoryFriendRepository) CountRequested(_ context.Context, from uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var total int64
	for _, req := range r.store.requests {
		if req.FromUserID == from && req.Status == domain.FriendshipRequestPending {
			total++
		}
	}
	return total, nil
}

func (r *MemoryFriendRepository) FriendshipExists(_ context.Context, from, to uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, f := range r.store.friendships {
		if f.FromUserID == from && f.ToUserID == to {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryFriendRepository) ListFriends(_ context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.User, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var users []*domain.User
	for _, f := range r.store.friendships {
		if f.FromUserID != userID {
			continue
		}
		if u, ok := r.store.users[f.ToUserID]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return paginate(users, p), int64(len(users)), nil
}

func (r *MemoryFriendRepository) DeleteFriendship(_ context.Context, a, b uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	keptF := r.store.friendships[:0]
	removed := false
	for _, f := range r.store.friendships {
		between := (f.FromUserID == a && f.ToUserID == b) || (f.FromUserID == b && f.ToUserID == a)
		if between {
			removed = true
			continue
		}
		keptF = append(keptF, f)
	}
	r.store.friendships = keptF
	if !removed {
		return ErrFriendNotFound
	}
	keptR := r.store.requests[:0]
	for _, req := range r.store.requests {
		between := (req.FromUserID == a && req.ToUserID == b) || (req.FromUserID == b && req.ToUserID == a)
		if between {
			continue
		}
		keptR = append(keptR, req)
	}
	r.store.requests = keptR
	return nil
}

type MemoryGroupRepository struct {
	store *MemoryStore
}

func (r *MemoryGroupRepository) Create(_ context.Context, group *domain.Group) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, g := range r.store.groups {
		if g.InviteCode == group.InviteCode {
			return ErrInviteCodeExists
		}
	}
	cp := *group
	r.store.groups[group.ID] = &cp
	r.store.groupMembers = append(r.store.groupMembers, &domain.GroupMember{
		UserID:    group.OwnerID,
		GroupID:   group.ID,
		IsOwner:   true,
		CreatedAt: group.CreatedAt,
	})
	return nil
}

func (r *MemoryGroupRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Group, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	group, ok := r.store.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	cp := *group
	return &cp, nil
}

func (r *MemoryGroupRepository) GetByInviteCode(_ context.Context, code string) (*domain.Group, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, g := range r.store.groups {
		if g.InviteCode == code {
			cp := *g
			return &cp, nil
		}
	}
	return nil, ErrGroupNotFound
}

func (r *MemoryGroupRepository) Update(_ context.Context, group *domain.Group) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.groups[group.ID]; !ok {
		return ErrGroupNotFound
	}
	cp := *group
	r.store.groups[group.ID] = &cp
	return nil
}

func (r *MemoryGroupRepository) CountOwned(_ context.Context, ownerID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var total int64
	for _, g := range r.store.groups {
		if g.OwnerID == ownerID {
			total++
		}
	}
	return total, nil
}

func (r *MemoryGroupRepository) GetMember(_ context.Context, userID, groupID uuid.UUID) (*domain.GroupMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, m := range r.store.groupMembers {
		if m.UserID == userID && m.GroupID == groupID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *MemoryGroupRepository) AddMember(_ context.Context, member *domain.GroupMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *member
	r.store.groupMembers = append(r.store.groupMembers, &cp)
	return nil
}

func (r *MemoryGroupRepository) RemoveMember(_ context.Context, userID, groupID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.groupMembers[:0]
	removed := false
	for _, m := range r.store.groupMembers {
		if m.UserID == userID && m.GroupID == groupID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	r.store.groupMembers = kept
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}

func (r *MemoryGroupRepository) ListJoined(_ context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Group, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var groups []*domain.Group
	for _, m := range r.store.groupMembers {
		if m.UserID != userID {
			continue
		}
		if g, ok := r.store.groups[m.GroupID]; ok {
			cp := *g
			groups = append(groups, &cp)
		}
	}
	return paginate(groups, p), int64(len(groups)), nil
}

func (r *MemoryGroupRepository) ListMembers(_ context.Context, groupID uuid.UUID, p domain.Pagination) ([]*domain.GroupMember, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var members []*domain.GroupMember
	for _, m := range r.store.groupMembers {
		if m.GroupID != groupID {
			continue
		}
		cp := *m
		if u, ok := r.store.users[m.UserID]; ok {
			ucp := *u
			cp.User = &ucp
		}
		members = append(members, &cp)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].IsOwner && !members[j].IsOwner
	})
	return paginate(members, p), int64(len(members)), nil
}

func (r *MemoryGroupRepository) MemberUsers(_ context.Context, groupID uuid.UUID) ([]*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var users []*domain.User
	for _, m := range r.store.groupMembers {
		if m.GroupID != groupID {
			continue
		}
		if u, ok := r.store.users[m.UserID]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

func (r *MemoryGroupRepository) CountChannels(_ context.Context, groupID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var total int64
	for _, c := range r.store.groupChannels {
		if c.GroupID == groupID && !c.IsDeleted {
			total++
		}
	}
	return total, nil
}

func (r *MemoryGroupRepository) CountMembers(_ context.Context, groupID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var total int64
	for _, m := range r.store.groupMembers {
		if m.GroupID == groupID {
			total++
		}
	}
	return total, nil
}
