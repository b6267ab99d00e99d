package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupFixture(t *testing.T) (*GroupService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewGroupService(testLogger(), store.Groups())
	return svc, store
}

func TestCreateGroupMakesOwnerMember(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)
	assert.Len(t, group.InviteCode, 10)

	member, err := store.Groups().GetMember(ctx, owner.ID, group.ID)
	require.NoError(t, err)
	assert.True(t, member.IsOwner)
}

func TestCreateGroupLimit(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	for i := 0; i < maxOwnedGroups; i++ {
		_, err := svc.CreateGroup(ctx, owner.ID, fmt.Sprintf("team-%d", i), nil)
		require.NoError(t, err)
	}

	_, err := svc.CreateGroup(ctx, owner.ID, "one too many", nil)
	assert.ErrorIs(t, err, ErrTooManyGroups)
}

func TestJoinByInviteCode(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	joiner := newTestUser(t, store, "joiner")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)

	joined, err := svc.JoinByInviteCode(ctx, joiner.ID, group.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, group.ID, joined.ID)

	member, err := store.Groups().GetMember(ctx, joiner.ID, group.ID)
	require.NoError(t, err)
	assert.False(t, member.IsOwner)
}

func TestJoinByInviteCodeIdempotent(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	joiner := newTestUser(t, store, "joiner")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)

	_, err = svc.JoinByInviteCode(ctx, joiner.ID, group.InviteCode)
	require.NoError(t, err)
	_, err = svc.JoinByInviteCode(ctx, joiner.ID, group.InviteCode)
	require.NoError(t, err)

	n, err := store.Groups().CountMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestJoinByUnknownInviteCode(t *testing.T) {
	svc, store := newGroupFixture(t)

	joiner := newTestUser(t, store, "joiner")
	_, err := svc.JoinByInviteCode(context.Background(), joiner.ID, "nosuchcode")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestRegenerateInviteCodeInvalidatesOldOne(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	joiner := newTestUser(t, store, "joiner")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)
	oldCode := group.InviteCode

	updated, err := svc.RegenerateInviteCode(ctx, owner.ID, group.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldCode, updated.InviteCode)

	_, err = svc.JoinByInviteCode(ctx, joiner.ID, oldCode)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestRegenerateInviteCodeByMemberRejected(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	member := newTestUser(t, store, "member")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)
	_, err = svc.JoinByInviteCode(ctx, member.ID, group.InviteCode)
	require.NoError(t, err)

	_, err = svc.RegenerateInviteCode(ctx, member.ID, group.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetGroupByOutsiderRejected(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	eve := newTestUser(t, store, "eve")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)

	_, err = svc.GetGroup(ctx, eve.ID, group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestRemoveMember(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	member := newTestUser(t, store, "member")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)
	_, err = svc.JoinByInviteCode(ctx, member.ID, group.InviteCode)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(ctx, owner.ID, group.ID, member.ID))

	_, err = store.Groups().GetMember(ctx, member.ID, group.ID)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
}

func TestRemoveMemberByNonOwnerRejected(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	member := newTestUser(t, store, "member")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)
	_, err = svc.JoinByInviteCode(ctx, member.ID, group.InviteCode)
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, member.ID, group.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOwnerCannotLeaveGroup(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)

	err = svc.LeaveGroup(ctx, owner.ID, group.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLeaveGroup(t *testing.T) {
	svc, store := newGroupFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	member := newTestUser(t, store, "member")

	group, err := svc.CreateGroup(ctx, owner.ID, "team", nil)
	require.NoError(t, err)
	_, err = svc.JoinByInviteCode(ctx, member.ID, group.InviteCode)
	require.NoError(t, err)

	require.NoError(t, svc.LeaveGroup(ctx, member.ID, group.ID))

	groups, total, err := svc.ListJoined(ctx, member.ID, domain.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, groups)
}
