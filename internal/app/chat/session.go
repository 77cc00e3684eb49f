/*
Package chat contains the real-time layer: the hub that owns presence and room
membership, the per-connection session state machine, fan-out of events to connected
sessions and the WebSocket client that drives a session.

This file defines the Session, the state machine behind a single connection:

	Connected -> Identified -> InRoom -> Disconnected

Announcing a different identity leaves every room and returns the session to Identified.

Send and delete are handed to a per-session persistence worker that runs them in
submission order. Disconnect closes the worker's queue without cancelling it, so work
already submitted still completes.
*/
package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"livechat/internal/app/room"
	"livechat/internal/app/store"
	"livechat/internal/pkg/errs"
)

const (
	// MaxContentBytes is the largest accepted message content.
	MaxContentBytes = 5000

	// sendQueueSize is the capacity of a session's outbound queue.
	sendQueueSize = 256

	// jobQueueSize is the capacity of a session's persistence queue.
	jobQueueSize = 64
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateConnected State = iota
	StateIdentified
	StateInRoom
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateIdentified:
		return "identified"
	case StateInRoom:
		return "in_room"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session is one connection's view of the hub.
type Session struct {
	hub *Hub

	// id is the connection id issued by the hub.
	id string

	// verified is the identity proven by a token at connect time, if any.
	verified string

	// Fields below are guarded by hub.mu.
	state    State
	identity string
	active   string
	rooms    map[string]struct{}
	send     chan []byte

	// jobsMu guards sending on and closing jobs.
	jobsMu     sync.Mutex
	jobs       chan func()
	jobsClosed bool

	logger zerolog.Logger
}

func newSession(h *Hub, id, verified string) *Session {
	return &Session{
		hub:      h,
		id:       id,
		verified: verified,
		state:    StateConnected,
		rooms:    make(map[string]struct{}),
		send:     make(chan []byte, sendQueueSize),
		jobs:     make(chan func(), jobQueueSize),
		logger:   h.logger.With().Str("conn_id", id).Logger(),
	}
}

// ID returns the connection id.
func (s *Session) ID() string {
	return s.id
}

// Outbound returns the queue of encoded events for this connection.
// It is closed when the session disconnects.
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Identity returns the announced identity, or "" before the first announce.
func (s *Session) Identity() string {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.identity
}

// ActiveRoom returns the room targeted by Send, or "" before the first join.
func (s *Session) ActiveRoom() string {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.active
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.state
}

// Handle decodes a raw client frame and applies it. Failures are reported to the client
// as an error event echoing the frame's ref, and returned.
func (s *Session) Handle(raw []byte) error {
	env, payload, err := decodeEnvelope(raw)
	if err == nil {
		err = s.dispatch(env.Ref, payload)
	}

	if err != nil {
		s.hub.mu.Lock()
		s.hub.replyError(s, env.Ref, err)
		s.hub.mu.Unlock()
	}

	return err
}

func (s *Session) dispatch(ref string, payload any) error {
	switch p := payload.(type) {
	case *AnnouncePayload:
		return s.announce(p.Identity)
	case *JoinPayload:
		return s.join(p.Peer, p.Room)
	case *SendPayload:
		return s.submitSend(ref, p.Content)
	case *DeletePayload:
		return s.submitDelete(ref, p.ID)
	default:
		return errs.NewError(errs.ErrUnsupportedEvent)
	}
}

// Announce registers identity as this connection's presence and broadcasts the new
// online list. Announcing again overwrites the identity in place.
func (s *Session) Announce(identity string) error {
	return s.announce(identity)
}

// Join subscribes to the room shared with peer and makes it the active room.
func (s *Session) Join(peer string) error {
	return s.join(peer, "")
}

// JoinRoom subscribes to a room by id. The session's identity must be a participant.
func (s *Session) JoinRoom(roomID string) error {
	return s.join("", roomID)
}

// Send validates content and queues it for persistence and delivery to the active room.
// Persistence failures are reported as error events.
func (s *Session) Send(content string) error {
	return s.submitSend("", content)
}

// Delete queues the retraction of a message. Deletion failures are reported as error events.
func (s *Session) Delete(id string) error {
	return s.submitDelete("", id)
}

func (s *Session) announce(identity string) error {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.state == StateDisconnected {
		return errs.NewError(errs.ErrUnknownConnection)
	}
	if !room.ValidIdentity(identity) {
		return errs.NewError(errs.ErrInvalidIdentity)
	}
	if s.verified != "" && identity != s.verified {
		s.logger.Warn().
			Str("verified", s.verified).
			Str("announced", identity).
			Msg("Announce rejected: identity does not match token.")
		return errs.NewError(errs.ErrInvalidIdentity)
	}

	// rooms were derived from the previous identity and stop applying once it changes
	if s.identity != "" && s.identity != identity {
		h.unsubscribeAll(s)
		s.logger.Info().Str("previous", s.identity).Str("identity", identity).Msg("Identity changed, rooms left.")
	}

	s.identity = identity
	s.state = StateIdentified
	if s.active != "" {
		s.state = StateInRoom
	}
	h.presence.announce(s.id, identity)

	s.logger.Info().Str("identity", identity).Msg("Connection announced online.")
	h.broadcastPresence()

	return nil
}

func (s *Session) join(peer, roomID string) error {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.state == StateDisconnected {
		return errs.NewError(errs.ErrUnknownConnection)
	}
	if s.identity == "" {
		return errs.NewError(errs.ErrInvalidIdentity)
	}

	if roomID == "" {
		derived, err := room.Derive(s.identity, peer)
		if err != nil {
			return err
		}
		roomID = derived
	} else {
		var ok bool
		if peer, ok = room.Peer(roomID, s.identity); !ok {
			return errs.NewError(errs.ErrInvalidIdentity)
		}
	}

	h.subscribe(s, roomID)
	s.active = roomID
	s.state = StateInRoom

	if peer == s.identity {
		peer = ""
	}

	s.logger.Info().Str("room", roomID).Msg("Joined room.")
	h.push(s, EventRoomJoined, "", RoomJoinedPayload{Room: roomID, Peer: peer})

	return nil
}

func (s *Session) submitSend(ref, content string) error {
	h := s.hub
	h.mu.Lock()
	state, roomID, sender := s.state, s.active, s.identity
	h.mu.Unlock()

	switch {
	case state == StateDisconnected:
		return errs.NewError(errs.ErrUnknownConnection)
	case state != StateInRoom:
		return errs.NewError(errs.ErrNotInRoom)
	}

	if n := len(content); n == 0 || n > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentInvalid, MaxContentBytes)
	}

	msg := store.Message{Room: roomID, Sender: sender, Content: content}
	return s.submit(func() {
		h.saveAndDeliver(s, ref, msg)
	})
}

func (s *Session) submitDelete(ref, id string) error {
	if id == "" {
		return errs.NewError(errs.ErrUnsupportedEvent)
	}

	h := s.hub
	return s.submit(func() {
		if _, err := h.DeleteMessage(context.Background(), id); err != nil {
			h.mu.Lock()
			h.replyError(s, ref, err)
			h.mu.Unlock()
		}
	})
}

// submit queues job on the persistence worker. It blocks while the queue is full.
func (s *Session) submit(job func()) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if s.jobsClosed {
		return errs.NewError(errs.ErrUnknownConnection)
	}

	s.jobs <- job
	return nil
}

// work runs queued jobs until the queue is closed and drained.
func (s *Session) work() {
	defer s.hub.workers.Done()

	for job := range s.jobs {
		job()
	}

	s.logger.Debug().Msg("Persistence worker drained.")
}

// Disconnect removes presence and memberships, broadcasts the new online list when an
// entry was removed and closes the outbound queue. Jobs already submitted still run.
// Calling it more than once is a no-op.
func (s *Session) Disconnect() {
	h := s.hub
	h.mu.Lock()
	if s.state == StateDisconnected {
		h.mu.Unlock()
		return
	}

	if h.detach(s) {
		h.broadcastPresence()
	}
	h.mu.Unlock()

	s.jobsMu.Lock()
	s.jobsClosed = true
	close(s.jobs)
	s.jobsMu.Unlock()

	s.logger.Info().Msg("Connection disconnected.")
}

// IsUnknownConnection reports whether err means the session has already disconnected.
func IsUnknownConnection(err error) bool {
	return errs.HasCode(err, errs.ErrUnknownConnection)
}
