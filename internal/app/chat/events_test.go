package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livechat/internal/pkg/errs"
)

func TestDecodeEnvelope(t *testing.T) {
	tcases := []struct {
		name    string
		raw     string
		want    any
		wantErr bool
	}{
		{
			name: "announce",
			raw:  `{"type":"announce-online","payload":{"identity":"alice"}}`,
			want: &AnnouncePayload{Identity: "alice"},
		},
		{
			name: "join by peer",
			raw:  `{"type":"join-room","ref":"r1","payload":{"peer":"bob"}}`,
			want: &JoinPayload{Peer: "bob"},
		},
		{
			name: "join by room",
			raw:  `{"type":"join-room","payload":{"room":"alice:bob"}}`,
			want: &JoinPayload{Room: "alice:bob"},
		},
		{
			name:    "join with both",
			raw:     `{"type":"join-room","payload":{"peer":"bob","room":"alice:bob"}}`,
			wantErr: true,
		},
		{
			name:    "join with neither",
			raw:     `{"type":"join-room","payload":{}}`,
			wantErr: true,
		},
		{
			name: "send",
			raw:  `{"type":"send-message","payload":{"content":"hi"}}`,
			want: &SendPayload{Content: "hi"},
		},
		{
			name:    "delete without id",
			raw:     `{"type":"delete-message","payload":{}}`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"typing","payload":{}}`,
			wantErr: true,
		},
		{
			name:    "missing payload",
			raw:     `{"type":"send-message"}`,
			wantErr: true,
		},
		{
			name:    "payload of wrong shape",
			raw:     `{"type":"send-message","payload":{"content":42}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `hello`,
			wantErr: true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, payload, err := decodeEnvelope([]byte(tc.raw))

			if tc.wantErr {
				assert.True(t, errs.HasCode(err, errs.ErrUnsupportedEvent), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, payload)
		})
	}
}

func TestHandleDrivesSession(t *testing.T) {
	h := newTestHub(t, nil)
	s := connect(t, h)

	require.NoError(t, s.Handle([]byte(`{"type":"announce-online","payload":{"identity":"alice"}}`)))
	recvType(t, s, EventOnlineUsersChanged)

	require.NoError(t, s.Handle([]byte(`{"type":"join-room","payload":{"peer":"bob"}}`)))
	recvType(t, s, EventRoomJoined)

	require.NoError(t, s.Handle([]byte(`{"type":"send-message","payload":{"content":"hi"}}`)))
	msg := payloadOf[MessagePayload](t, recvType(t, s, EventMessageDelivered)).Message
	assert.Equal(t, "alice:bob", msg.Room)

	require.NoError(t, s.Handle([]byte(`{"type":"delete-message","payload":{"id":"`+msg.ID+`"}}`)))
	assert.Equal(t, msg.ID, payloadOf[DeletedPayload](t, recvType(t, s, EventMessageDeleted)).ID)
}

func TestHandleReportsErrorsWithRef(t *testing.T) {
	h := newTestHub(t, nil)
	s := connect(t, h)

	err := s.Handle([]byte(`{"type":"typing","ref":"r7","payload":{}}`))
	require.Error(t, err)

	env := recvType(t, s, EventError)
	assert.Equal(t, "r7", env.Ref)
	assert.Equal(t, errs.ErrUnsupportedEvent, payloadOf[ErrorPayload](t, env).Code)

	err = s.Handle([]byte(`{"type":"send-message","ref":"r8","payload":{"content":"hi"}}`))
	require.Error(t, err)

	env = recvType(t, s, EventError)
	assert.Equal(t, "r8", env.Ref)
	assert.Equal(t, errs.ErrNotInRoom, payloadOf[ErrorPayload](t, env).Code)
	assert.Equal(t, StateConnected, s.State(), "rejected events never mutate state")
}
