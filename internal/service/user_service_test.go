package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewUserService(testLogger(), store.Users(), store.Friends(), store.Channels())
	return svc, store
}

func TestUpdateProfile(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	name := "Alice A."
	phone := "+15550100"

	profile, err := svc.UpdateProfile(ctx, &domain.Profile{
		UserID:      alice.ID,
		FullName:    &name,
		PhoneNumber: &phone,
	})
	require.NoError(t, err)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, name, *profile.FullName)
	require.NotNil(t, profile.PhoneNumber)
	assert.Equal(t, phone, *profile.PhoneNumber)
}

func TestGetUserOverviewStrangers(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	overview, err := svc.GetUserOverview(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, overview.IsFriendship)
	assert.False(t, overview.FriendshipRequestFromMe)
	assert.False(t, overview.FriendshipRequestToMe)
	assert.False(t, overview.IsOnline)
	assert.Nil(t, overview.DirectChannelID)
}

func TestGetUserOverviewPendingRequest(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	require.NoError(t, store.Friends().CreateRequest(ctx, &domain.FriendshipRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Status:     domain.FriendshipRequestPending,
	}))

	fromAlice, err := svc.GetUserOverview(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, fromAlice.FriendshipRequestFromMe)
	assert.False(t, fromAlice.FriendshipRequestToMe)

	fromBob, err := svc.GetUserOverview(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, fromBob.FriendshipRequestFromMe)
	assert.True(t, fromBob.FriendshipRequestToMe)
}

func TestGetUserOverviewFriendWithChannel(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, bob.ID)

	require.NoError(t, store.Friends().CreateRequest(ctx, &domain.FriendshipRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Status:     domain.FriendshipRequestPending,
	}))
	require.NoError(t, store.Friends().AcceptRequest(ctx, alice.ID, bob.ID))

	channel := domain.NewDirectChannel()
	require.NoError(t, store.Channels().CreateDirect(ctx, channel, []uuid.UUID{alice.ID, bob.ID}))

	overview, err := svc.GetUserOverview(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, overview.IsFriendship)
	assert.True(t, overview.IsOnline)
	require.NotNil(t, overview.DirectChannelID)
	assert.Equal(t, channel.ID, *overview.DirectChannelID)
}

func TestGetUserOverviewUnknownTarget(t *testing.T) {
	svc, store := newUserFixture(t)

	alice := newTestUser(t, store, "alice")
	_, err := svc.GetUserOverview(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsersExcludesCaller(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	newTestUser(t, store, "bob")
	newTestUser(t, store, "carol")

	profiles, total, err := svc.ListUsers(ctx, alice.ID, "", nil, domain.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, p := range profiles {
		assert.NotEqual(t, alice.ID, p.UserID)
	}
}

func TestListUsersKeywordFilter(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	newTestUser(t, store, "bob")
	newTestUser(t, store, "bobby")

	profiles, total, err := svc.ListUsers(ctx, alice.ID, "bob", nil, domain.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, profiles, 2)
}

func TestListUsersNotInGroupFilter(t *testing.T) {
	svc, store := newUserFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	insider := newTestUser(t, store, "insider")
	outsider := newTestUser(t, store, "outsider")

	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, store.Groups().Create(ctx, group))
	require.NoError(t, store.Groups().AddMember(ctx, &domain.GroupMember{UserID: insider.ID, GroupID: group.ID}))

	profiles, total, err := svc.ListUsers(ctx, owner.ID, "", &group.ID, domain.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, profiles, 1)
	assert.Equal(t, outsider.ID, profiles[0].UserID)
}
