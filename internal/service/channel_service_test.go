package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChannelFixture(t *testing.T) (*ChannelService, *MessageService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	channelSvc := NewChannelService(testLogger(), store.Channels(), store.Groups(), store.Messages())
	messageSvc := NewMessageService(testLogger(), store.Channels(), store.Groups(), store.Messages(), &recordingPusher{})
	return channelSvc, messageSvc, store
}

func TestListDirectChannelsHidesEmptyConversations(t *testing.T) {
	channelSvc, messageSvc, store := newChannelFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	carol := newTestUser(t, store, "carol")

	withMessages := domain.NewDirectChannel()
	require.NoError(t, store.Channels().CreateDirect(ctx, withMessages, []uuid.UUID{alice.ID, bob.ID}))
	empty := domain.NewDirectChannel()
	require.NoError(t, store.Channels().CreateDirect(ctx, empty, []uuid.UUID{alice.ID, carol.ID}))

	_, err := messageSvc.CreateDirectMessage(ctx, alice.ID, withMessages.ID, domain.MessageTypeText, "hi bob")
	require.NoError(t, err)

	entries, total, err := channelSvc.ListDirectChannels(ctx, alice.ID, domain.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, withMessages.ID, entries[0].Channel.ID)
	require.NotNil(t, entries[0].Peer)
	assert.Equal(t, bob.ID, entries[0].Peer.UserID)
}

func TestListDirectChannelsRedactsDeletedLastMessage(t *testing.T) {
	channelSvc, messageSvc, store := newChannelFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	channel := domain.NewDirectChannel()
	require.NoError(t, store.Channels().CreateDirect(ctx, channel, []uuid.UUID{alice.ID, bob.ID}))

	msg, err := messageSvc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "secret")
	require.NoError(t, err)
	require.NoError(t, messageSvc.DeleteDirectMessage(ctx, alice.ID, msg.ID))

	entries, _, err := channelSvc.ListDirectChannels(ctx, bob.ID, domain.Pagination{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].LastMessage)
	assert.True(t, entries[0].LastMessage.IsDeleted)
	assert.Empty(t, entries[0].LastMessage.Value)
}

func TestListDirectChannelsOrdersByRecency(t *testing.T) {
	channelSvc, messageSvc, store := newChannelFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	carol := newTestUser(t, store, "carol")

	older := domain.NewDirectChannel()
	require.NoError(t, store.Channels().CreateDirect(ctx, older, []uuid.UUID{alice.ID, bob.ID}))
	newer := domain.NewDirectChannel()
	require.NoError(t, store.Channels().CreateDirect(ctx, newer, []uuid.UUID{alice.ID, carol.ID}))

	_, err := messageSvc.CreateDirectMessage(ctx, alice.ID, older.ID, domain.MessageTypeText, "first")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = messageSvc.CreateDirectMessage(ctx, alice.ID, newer.ID, domain.MessageTypeText, "second")
	require.NoError(t, err)

	entries, _, err := channelSvc.ListDirectChannels(ctx, alice.ID, domain.Pagination{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].Channel.ID)
	assert.Equal(t, older.ID, entries[1].Channel.ID)
}

func TestGroupChannelLifecycle(t *testing.T) {
	channelSvc, _, store := newChannelFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, store.Groups().Create(ctx, group))

	channel, err := channelSvc.CreateGroupChannel(ctx, owner.ID, group.ID, "general")
	require.NoError(t, err)

	renamed, err := channelSvc.UpdateGroupChannel(ctx, owner.ID, group.ID, channel.ID, "announcements")
	require.NoError(t, err)
	assert.Equal(t, "announcements", renamed.Name)

	require.NoError(t, channelSvc.DeleteGroupChannel(ctx, owner.ID, group.ID, channel.ID))

	_, err = channelSvc.GetGroupChannel(ctx, owner.ID, group.ID, channel.ID)
	assert.ErrorIs(t, err, ErrChannelNotFound)

	_, total, err := channelSvc.ListGroupChannels(ctx, owner.ID, group.ID, domain.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGroupChannelAccessByOutsiderRejected(t *testing.T) {
	channelSvc, _, store := newChannelFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	eve := newTestUser(t, store, "eve")
	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, store.Groups().Create(ctx, group))

	_, err := channelSvc.CreateGroupChannel(ctx, eve.ID, group.ID, "spy")
	assert.ErrorIs(t, err, ErrGroupNotFound)

	_, _, err = channelSvc.ListGroupChannels(ctx, eve.ID, group.ID, domain.Pagination{})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupChannelWrongGroupRejected(t *testing.T) {
	channelSvc, _, store := newChannelFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, store, "owner")
	groupA := domain.NewGroup("a", nil, owner.ID)
	require.NoError(t, store.Groups().Create(ctx, groupA))
	groupB := domain.NewGroup("b", nil, owner.ID)
	require.NoError(t, store.Groups().Create(ctx, groupB))

	channel, err := channelSvc.CreateGroupChannel(ctx, owner.ID, groupA.ID, "general")
	require.NoError(t, err)

	_, err = channelSvc.GetGroupChannel(ctx, owner.ID, groupB.ID, channel.ID)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}
