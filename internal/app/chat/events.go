/*
Package chat contains the real-time layer: the hub that owns presence and room
membership, the per-connection session state machine, fan-out of events to connected
sessions and the WebSocket client that drives a session.

This file defines the closed event protocol exchanged over a connection.
*/
package chat

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"

	"livechat/internal/app/store"
	"livechat/internal/pkg/errs"
)

// EventType tags every frame exchanged with a client.
type EventType string

// Client to server.
const (
	EventAnnounceOnline EventType = "announce-online"
	EventJoinRoom       EventType = "join-room"
	EventSendMessage    EventType = "send-message"
	EventDeleteMessage  EventType = "delete-message"
)

// Server to client.
const (
	EventOnlineUsersChanged EventType = "online-users-changed"
	EventMessageDelivered   EventType = "message-delivered"
	EventMessageDeleted     EventType = "message-deleted"
	EventRoomJoined         EventType = "room-joined"
	EventError              EventType = "error"
)

// Envelope is the wire frame. Ref is chosen by the client and echoed on error events
// caused by that frame.
type Envelope struct {
	Type    EventType       `json:"type"`
	Ref     string          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AnnouncePayload carries the display name a connection goes online with.
type AnnouncePayload struct {
	Identity string `json:"identity"`
}

// JoinPayload selects a room either by peer identity or by room id, never both.
type JoinPayload struct {
	Peer string `json:"peer,omitempty" validate:"required_without=Room,excluded_with=Room"`
	Room string `json:"room,omitempty" validate:"required_without=Peer,excluded_with=Peer"`
}

// SendPayload carries the text of a new message.
type SendPayload struct {
	Content string `json:"content"`
}

// DeletePayload names the message to retract.
type DeletePayload struct {
	ID string `json:"id" validate:"required,max=128"`
}

// OnlineUsersPayload lists online identities in registration order.
type OnlineUsersPayload struct {
	Users []string `json:"users"`
}

// MessagePayload carries a persisted message.
type MessagePayload struct {
	Message store.Message `json:"message"`
}

// DeletedPayload names a retracted message.
type DeletedPayload struct {
	ID string `json:"id"`
}

// RoomJoinedPayload confirms a join. Peer is empty for a self room.
type RoomJoinedPayload struct {
	Room string `json:"room"`
	Peer string `json:"peer,omitempty"`
}

// ErrorPayload reports a failed operation to its originator.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// outbound is the server side of Envelope with a typed payload.
type outbound struct {
	Type    EventType `json:"type"`
	Ref     string    `json:"ref,omitempty"`
	Payload any       `json:"payload"`
}

var validate = validator.New()

// encodeEvent renders a server event frame.
func encodeEvent(typ EventType, ref string, payload any) ([]byte, error) {
	return json.Marshal(outbound{Type: typ, Ref: ref, Payload: payload})
}

// decodeEnvelope parses a raw client frame and its typed payload.
// Unknown types and malformed or invalid payloads yield ErrUnsupportedEvent.
func decodeEnvelope(raw []byte) (Envelope, any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, nil, errs.Wrap(errs.ErrUnsupportedEvent, err)
	}

	var payload any
	switch env.Type {
	case EventAnnounceOnline:
		payload = &AnnouncePayload{}
	case EventJoinRoom:
		payload = &JoinPayload{}
	case EventSendMessage:
		payload = &SendPayload{}
	case EventDeleteMessage:
		payload = &DeletePayload{}
	default:
		return env, nil, errs.Wrap(errs.ErrUnsupportedEvent, errors.New("unknown event type "+string(env.Type)))
	}

	if len(env.Payload) == 0 {
		return env, nil, errs.Wrap(errs.ErrUnsupportedEvent, errors.New("missing payload"))
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return env, nil, errs.Wrap(errs.ErrUnsupportedEvent, err)
	}
	if err := validate.Struct(payload); err != nil {
		return env, nil, errs.Wrap(errs.ErrUnsupportedEvent, err)
	}

	return env, payload, nil
}

// errorPayload maps err onto the payload reported to a client.
func errorPayload(err error) ErrorPayload {
	customErr := errs.From(err)
	return ErrorPayload{Code: customErr.Code, Message: customErr.Message}
}
