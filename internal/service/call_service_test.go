package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallFixture(t *testing.T) (*CallService, *repository.MemoryStore, *recordingPusher) {
	t.Helper()
	store := repository.NewMemoryStore()
	pusher := &recordingPusher{}
	svc := NewCallService(testLogger(), store.Users(), store.Calls(), pusher)
	return svc, store, pusher
}

func TestRequestCallRingsBothMembers(t *testing.T) {
	svc, store, pusher := newCallFixture(t)
	ctx := context.Background()

	caller := newTestUser(t, store, "alice")
	callee := newTestUser(t, store, "bob")
	callerWs := connectUser(t, store, caller.ID)
	calleeWs := connectUser(t, store, callee.ID)

	channel, err := svc.RequestCall(ctx, caller.ID, callee.ID)
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, caller.ID, channel.CreatedByID)
	assert.Nil(t, channel.AcceptedAt)
	assert.Len(t, channel.Members, 2)

	require.Len(t, pusher.eventsFor(callerWs), 1)
	require.Len(t, pusher.eventsFor(calleeWs), 1)
	assert.Equal(t, domain.EventRequestCall, pusher.eventsFor(calleeWs)[0].Event)
}

func TestRequestCallCalleeOffline(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	caller := newTestUser(t, store, "alice")
	callee := newTestUser(t, store, "bob")
	connectUser(t, store, caller.ID)

	_, err := svc.RequestCall(ctx, caller.ID, callee.ID)
	assert.ErrorIs(t, err, ErrUserOffline)
}

func TestRequestCallUnknownCallee(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	caller := newTestUser(t, store, "alice")
	connectUser(t, store, caller.ID)

	_, err := svc.RequestCall(ctx, caller.ID, domain.NewGoogleUser("ghost@example.com").ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRequestCallWhileBusy(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	carol := newTestUser(t, store, "carol")
	connectUser(t, store, alice.ID)
	connectUser(t, store, bob.ID)
	connectUser(t, store, carol.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.RequestCall(ctx, carol.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyInCall)

	_, err = svc.RequestCall(ctx, alice.ID, carol.ID)
	assert.ErrorIs(t, err, ErrAlreadyInCall)
}

func TestConcurrentRequestsAdmitOneCallPerUser(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	bob := newTestUser(t, store, "bob")
	connectUser(t, store, bob.ID)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		caller := newTestUser(t, store, "caller")
		connectUser(t, store, caller.ID)
		wg.Add(1)
		go func(i int, callerID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.RequestCall(ctx, callerID, bob.ID)
		}(i, caller.ID)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyInCall)
		}
	}
	assert.Equal(t, 1, admitted)
}

func TestAcceptCallByCallerRejected(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, alice.ID)
	connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptCall(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrIsCaller)
}

func TestAcceptCallNotifiesBothMembers(t *testing.T) {
	svc, store, pusher := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	aliceWs := connectUser(t, store, alice.ID)
	bobWs := connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	pusher.reset()

	channel, err := svc.AcceptCall(ctx, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, channel.AcceptedAt)

	require.Len(t, pusher.eventsFor(aliceWs), 1)
	require.Len(t, pusher.eventsFor(bobWs), 1)
	assert.Equal(t, domain.EventAcceptRequestCall, pusher.eventsFor(aliceWs)[0].Event)
}

func TestAcceptCallWithoutCall(t *testing.T) {
	svc, store, _ := newCallFixture(t)

	alice := newTestUser(t, store, "alice")
	_, err := svc.AcceptCall(context.Background(), alice.ID)
	assert.ErrorIs(t, err, ErrNotInCall)
}

func TestCancelCallNotifiesPeerAndFreesBoth(t *testing.T) {
	svc, store, pusher := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, alice.ID)
	bobWs := connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	pusher.reset()

	require.NoError(t, svc.CancelCall(ctx, alice.ID))

	events := pusher.eventsFor(bobWs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCancelCall, events[0].Event)

	// both members are free to call again
	_, err = svc.RequestCall(ctx, bob.ID, alice.ID)
	assert.NoError(t, err)
}

func TestCancelCallWithoutCall(t *testing.T) {
	svc, store, _ := newCallFixture(t)

	alice := newTestUser(t, store, "alice")
	err := svc.CancelCall(context.Background(), alice.ID)
	assert.ErrorIs(t, err, ErrNotInCall)
}

func TestHandleDisconnectEndsCall(t *testing.T) {
	svc, store, pusher := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, alice.ID)
	bobWs := connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	pusher.reset()

	svc.HandleDisconnect(ctx, alice.ID)

	events := pusher.eventsFor(bobWs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCancelCall, events[0].Event)

	_, err = store.Calls().GetByMember(ctx, bob.ID)
	assert.ErrorIs(t, err, repository.ErrCallNotFound)
}

func TestHandleDisconnectWithoutCallIsSilent(t *testing.T) {
	svc, store, pusher := newCallFixture(t)

	alice := newTestUser(t, store, "alice")
	svc.HandleDisconnect(context.Background(), alice.ID)
	assert.Empty(t, pusher.all())
}

func TestRelaySignalForwardsToPeer(t *testing.T) {
	svc, store, pusher := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, alice.ID)
	bobWs := connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptCall(ctx, bob.ID)
	require.NoError(t, err)
	pusher.reset()

	signal := &domain.CallSignal{Type: "offer"}
	require.NoError(t, svc.RelaySignal(ctx, alice.ID, signal))

	events := pusher.eventsFor(bobWs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCallSignal, events[0].Event)
	assert.Equal(t, alice.ID, signal.SenderID)
}

func TestRelaySignalBeforeAcceptRejected(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, alice.ID)
	connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	err = svc.RelaySignal(ctx, alice.ID, &domain.CallSignal{Type: "offer"})
	assert.ErrorIs(t, err, ErrNotInCall)
}

func TestResetDeletesAllCalls(t *testing.T) {
	svc, store, _ := newCallFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	connectUser(t, store, alice.ID)
	connectUser(t, store, bob.ID)

	_, err := svc.RequestCall(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	_, err = store.Calls().GetByMember(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrCallNotFound)
}
