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

type chatFixture struct {
	svc    *MessageService
	store  *repository.MemoryStore
	pusher *recordingPusher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	pusher := &recordingPusher{}
	svc := NewMessageService(testLogger(), store.Channels(), store.Groups(), store.Messages(), pusher)
	return &chatFixture{svc: svc, store: store, pusher: pusher}
}

func (f *chatFixture) directChannel(t *testing.T, a, b uuid.UUID) *domain.DirectChannel {
	t.Helper()
	channel := domain.NewDirectChannel()
	require.NoError(t, f.store.Channels().CreateDirect(context.Background(), channel, []uuid.UUID{a, b}))
	return channel
}

func TestCreateDirectMessageFansOutToBothMembers(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	aliceWs := connectUser(t, f.store, alice.ID)
	bobWs := connectUser(t, f.store, bob.ID)
	channel := f.directChannel(t, alice.ID, bob.ID)

	msg, err := f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Value)

	// the author receives the event too
	require.Len(t, f.pusher.eventsFor(aliceWs), 1)
	require.Len(t, f.pusher.eventsFor(bobWs), 1)
	assert.Equal(t, domain.EventCreateDirectMessage, f.pusher.eventsFor(bobWs)[0].Event)
}

func TestCreateDirectMessageCarriesSenderProfile(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	connectUser(t, f.store, alice.ID)
	bobWs := connectUser(t, f.store, bob.ID)
	channel := f.directChannel(t, alice.ID, bob.ID)

	_, err := f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "hello")
	require.NoError(t, err)

	events := f.pusher.eventsFor(bobWs)
	require.Len(t, events, 1)
	payload, ok := events[0].Payload.(messagePayload)
	require.True(t, ok)
	require.NotNil(t, payload.Message.User)
	assert.Equal(t, alice.ID, payload.Message.User.ID)
	require.NotNil(t, payload.Message.User.Profile)
	assert.Equal(t, "alice", *payload.Message.User.Profile.FullName)
}

func TestCreateDirectMessageSkipsOfflineMember(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	aliceWs := connectUser(t, f.store, alice.ID)
	channel := f.directChannel(t, alice.ID, bob.ID)

	_, err := f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "hello")
	require.NoError(t, err)

	all := f.pusher.all()
	require.Len(t, all, 1)
	assert.Equal(t, aliceWs, all[0].WsID)
}

func TestCreateDirectMessageByOutsiderRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	eve := newTestUser(t, f.store, "eve")
	channel := f.directChannel(t, alice.ID, bob.ID)

	_, err := f.svc.CreateDirectMessage(ctx, eve.ID, channel.ID, domain.MessageTypeText, "hi")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestCreateDirectMessageBumpsChannelRecency(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	channel := f.directChannel(t, alice.ID, bob.ID)

	before, err := f.store.Channels().GetDirect(ctx, channel.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "hello")
	require.NoError(t, err)

	after, err := f.store.Channels().GetDirect(ctx, channel.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestDeleteDirectMessageRedactsAndFansOut(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	connectUser(t, f.store, alice.ID)
	bobWs := connectUser(t, f.store, bob.ID)
	channel := f.directChannel(t, alice.ID, bob.ID)

	msg, err := f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "secret")
	require.NoError(t, err)
	f.pusher.reset()

	require.NoError(t, f.svc.DeleteDirectMessage(ctx, alice.ID, msg.ID))

	// the push names the deleted message, nothing more
	events := f.pusher.eventsFor(bobWs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeleteDirectMessage, events[0].Event)
	payload, ok := events[0].Payload.(messageDeletedPayload)
	require.True(t, ok)
	assert.Equal(t, channel.ID, payload.ChannelID)
	assert.Equal(t, msg.ID, payload.MessageID)

	messages, _, err := f.svc.ListDirectMessages(ctx, bob.ID, channel.ID, domain.Pagination{})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsDeleted)
	assert.Empty(t, messages[0].Value)
}

func TestDeleteDirectMessageOfAnotherUserRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	channel := f.directChannel(t, alice.ID, bob.ID)

	msg, err := f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "mine")
	require.NoError(t, err)

	err = f.svc.DeleteDirectMessage(ctx, bob.ID, msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestDeleteDirectMessageTwiceRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	channel := f.directChannel(t, alice.ID, bob.ID)

	msg, err := f.svc.CreateDirectMessage(ctx, alice.ID, channel.ID, domain.MessageTypeText, "once")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDirectMessage(ctx, alice.ID, msg.ID))
	err = f.svc.DeleteDirectMessage(ctx, alice.ID, msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestListDirectMessagesByOutsiderRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.store, "alice")
	bob := newTestUser(t, f.store, "bob")
	eve := newTestUser(t, f.store, "eve")
	channel := f.directChannel(t, alice.ID, bob.ID)

	_, _, err := f.svc.ListDirectMessages(ctx, eve.ID, channel.ID, domain.Pagination{})
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestCreateGroupMessageFansOutToAllMembers(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, f.store, "owner")
	member := newTestUser(t, f.store, "member")
	offline := newTestUser(t, f.store, "offline")
	ownerWs := connectUser(t, f.store, owner.ID)
	memberWs := connectUser(t, f.store, member.ID)

	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, f.store.Groups().Create(ctx, group))
	require.NoError(t, f.store.Groups().AddMember(ctx, &domain.GroupMember{UserID: member.ID, GroupID: group.ID}))
	require.NoError(t, f.store.Groups().AddMember(ctx, &domain.GroupMember{UserID: offline.ID, GroupID: group.ID}))

	channel := domain.NewGroupChannel(group.ID, "general")
	require.NoError(t, f.store.Channels().CreateGroupChannel(ctx, channel))

	_, err := f.svc.CreateGroupMessage(ctx, owner.ID, channel.ID, domain.MessageTypeText, "hello team")
	require.NoError(t, err)

	assert.Len(t, f.pusher.eventsFor(ownerWs), 1)
	require.Len(t, f.pusher.eventsFor(memberWs), 1)
	assert.Len(t, f.pusher.all(), 2)

	payload, ok := f.pusher.eventsFor(memberWs)[0].Payload.(messagePayload)
	require.True(t, ok)
	require.NotNil(t, payload.Message.User)
	assert.Equal(t, owner.ID, payload.Message.User.ID)
	require.NotNil(t, payload.Message.User.Profile)
}

func TestDeleteGroupMessageFansOutMessageID(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, f.store, "owner")
	member := newTestUser(t, f.store, "member")
	connectUser(t, f.store, owner.ID)
	memberWs := connectUser(t, f.store, member.ID)

	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, f.store.Groups().Create(ctx, group))
	require.NoError(t, f.store.Groups().AddMember(ctx, &domain.GroupMember{UserID: member.ID, GroupID: group.ID}))
	channel := domain.NewGroupChannel(group.ID, "general")
	require.NoError(t, f.store.Channels().CreateGroupChannel(ctx, channel))

	msg, err := f.svc.CreateGroupMessage(ctx, owner.ID, channel.ID, domain.MessageTypeText, "oops")
	require.NoError(t, err)
	f.pusher.reset()

	require.NoError(t, f.svc.DeleteGroupMessage(ctx, owner.ID, msg.ID))

	events := f.pusher.eventsFor(memberWs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeleteGroupMessage, events[0].Event)
	payload, ok := events[0].Payload.(messageDeletedPayload)
	require.True(t, ok)
	assert.Equal(t, channel.ID, payload.ChannelID)
	assert.Equal(t, msg.ID, payload.MessageID)
}

func TestCreateGroupMessageByNonMemberRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, f.store, "owner")
	eve := newTestUser(t, f.store, "eve")

	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, f.store.Groups().Create(ctx, group))
	channel := domain.NewGroupChannel(group.ID, "general")
	require.NoError(t, f.store.Channels().CreateGroupChannel(ctx, channel))

	_, err := f.svc.CreateGroupMessage(ctx, eve.ID, channel.ID, domain.MessageTypeText, "hi")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestCreateGroupMessageInDeletedChannelRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	owner := newTestUser(t, f.store, "owner")
	group := domain.NewGroup("team", nil, owner.ID)
	require.NoError(t, f.store.Groups().Create(ctx, group))
	channel := domain.NewGroupChannel(group.ID, "general")
	require.NoError(t, f.store.Channels().CreateGroupChannel(ctx, channel))
	require.NoError(t, f.store.Channels().SoftDeleteGroupChannel(ctx, channel.ID))

	_, err := f.svc.CreateGroupMessage(ctx, owner.ID, channel.ID, domain.MessageTypeText, "hi")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}
