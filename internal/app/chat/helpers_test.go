package chat

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"livechat/internal/app/store"
	"livechat/internal/pkg/logx"
)

func init() {
	logx.InitGlobalLoggerWithWriter(io.Discard, zerolog.Disabled)
}

func newTestHub(t *testing.T, ms store.MessageStore) *Hub {
	t.Helper()
	if ms == nil {
		ms = store.NewMemory()
	}
	h := NewHub(ms, time.Second)
	t.Cleanup(h.Shutdown)
	return h
}

func connect(t *testing.T, h *Hub) *Session {
	t.Helper()
	s, err := h.Connect("")
	require.NoError(t, err)
	return s
}

// online connects a session, announces identity and drains the resulting presence events.
func online(t *testing.T, h *Hub, identity string) *Session {
	t.Helper()
	s := connect(t, h)
	require.NoError(t, s.Announce(identity))
	return s
}

func recv(t *testing.T, s *Session) Envelope {
	t.Helper()
	select {
	case data, ok := <-s.Outbound():
		require.True(t, ok, "outbound queue closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Envelope{}
}

func recvType(t *testing.T, s *Session, typ EventType) Envelope {
	t.Helper()
	env := recv(t, s)
	require.Equal(t, typ, env.Type, "payload: %s", env.Payload)
	return env
}

func drain(sessions ...*Session) {
	for _, s := range sessions {
		for done := false; !done; {
			select {
			case _, ok := <-s.Outbound():
				done = !ok
			default:
				done = true
			}
		}
	}
}

func assertSilent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case data, ok := <-s.Outbound():
		if ok {
			t.Fatalf("unexpected event: %s", data)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func payloadOf[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var p T
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	return p
}
