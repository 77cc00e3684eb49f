package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"livechat/internal/app/store"
	"livechat/internal/app/store/storetest"
	"livechat/internal/pkg/errs"
)

func TestHubDeleteMessageBroadcastsGlobally(t *testing.T) {
	ms := store.NewMemory()
	h := newTestHub(t, ms)
	a := online(t, h, "alice")
	anon := connect(t, h)
	drain(a, anon)

	saved, err := ms.SaveMessage(context.Background(), store.Message{Room: "bob:carol", Sender: "bob", Content: "hi"})
	require.NoError(t, err)

	deleted, err := h.DeleteMessage(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, s := range []*Session{a, anon} {
		assert.Equal(t, saved.ID, payloadOf[DeletedPayload](t, recvType(t, s, EventMessageDeleted)).ID)
	}

	deleted, err = h.DeleteMessage(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assertSilent(t, a)
}

func TestHubDeleteMessageWrapsStoreFailure(t *testing.T) {
	cause := errors.New("timeout")
	ms := &storetest.MockMessageStore{}
	ms.On("DeleteMessage", mock.Anything, "m1").Return(false, cause)
	h := newTestHub(t, ms)

	deleted, err := h.DeleteMessage(context.Background(), "m1")

	assert.False(t, deleted)
	assert.True(t, errs.HasCode(err, errs.ErrPersistenceFailure))
	assert.ErrorIs(t, err, cause)
}

func TestHubShutdown(t *testing.T) {
	h := NewHub(store.NewMemory(), 0)
	assert.Equal(t, DefaultGatewayTimeout, h.timeout)

	a, err := h.Connect("")
	require.NoError(t, err)
	require.NoError(t, a.Announce("alice"))
	require.NoError(t, a.Join("bob"))
	require.NoError(t, a.Send("last words"))

	h.Shutdown()

	assert.Equal(t, StateDisconnected, a.State())
	assert.Zero(t, h.Connections())
	assert.Empty(t, h.ListOnline(""))

	_, err = h.Connect("")
	assert.ErrorIs(t, err, ErrHubClosed)

	history, err := h.messages.ListMessages(context.Background(), store.ListOptions{Room: "alice:bob", Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 1, "queued sends complete before shutdown returns")
	assert.Equal(t, "last words", history[0].Content)
}

func TestPresenceRegistry(t *testing.T) {
	var p presence

	p.announce("c1", "alice")
	p.announce("c2", "bob")
	p.announce("c3", "carol")
	p.announce("c1", "alice")

	assert.Equal(t, []string{"alice", "bob", "carol"}, p.list(""))
	assert.Equal(t, 3, p.size())

	assert.True(t, p.remove("c2"))
	assert.False(t, p.remove("c2"))
	assert.Equal(t, []string{"alice", "carol"}, p.list(""))
	assert.Equal(t, []string{"carol"}, p.list("alice"))
}
