package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T, h *Hub) string {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.Connect("")
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			session.Disconnect()
			return
		}
		client := NewClient(session, conn)
		go client.WritePump()
		client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestClientPumps(t *testing.T) {
	h := newTestHub(t, nil)
	url := newWSServer(t, h)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"announce-online","payload":{"identity":"alice"}}`)))
	assert.Equal(t, EventOnlineUsersChanged, readEnvelope(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join-room","payload":{"peer":"alice"}}`)))
	assert.Equal(t, EventRoomJoined, readEnvelope(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"wave","ref":"1","payload":{}}`)))
	env := readEnvelope(t, conn)
	assert.Equal(t, EventError, env.Type)
	assert.Equal(t, "1", env.Ref)

	assert.Equal(t, []string{"alice"}, h.ListOnline(""))

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return h.Connections() == 0
	}, time.Second, 10*time.Millisecond, "closing the socket disconnects the session")
	assert.Empty(t, h.ListOnline(""))
}

func TestClientClosedOnHubShutdown(t *testing.T) {
	h := NewHub(nil, time.Second)
	url := newWSServer(t, h)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool {
		return h.Connections() == 1
	}, time.Second, 10*time.Millisecond)

	h.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
