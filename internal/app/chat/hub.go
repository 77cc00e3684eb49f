/*
Package chat contains the real-time layer: the hub that owns presence and room
membership, the per-connection session state machine, fan-out of events to connected
sessions and the WebSocket client that drives a session.

This file defines the Hub, the single owner of all connection state. One mutex guards
sessions, presence and room membership; every fan-out happens while it is held, so the
order in which clients observe events matches the order of the mutations that caused them.
*/
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"livechat/internal/app/store"
	"livechat/internal/pkg/errs"
	"livechat/internal/pkg/logx"
	"livechat/internal/pkg/randx"
)

// DefaultGatewayTimeout bounds a single store call when none is configured.
const DefaultGatewayTimeout = 5 * time.Second

// ErrHubClosed is returned by Connect after Shutdown.
var ErrHubClosed = errors.New("chat: hub is shut down")

// Hub coordinates every connected session.
type Hub struct {
	// mu guards every field below it and the mutable state of each Session.
	mu sync.Mutex

	// sessions holds connected sessions keyed by connection id.
	sessions map[string]*Session

	// presence is the ordered registry of announced identities.
	presence presence

	// rooms is the reverse membership index: room id to subscribed sessions.
	rooms map[string]map[string]*Session

	// closed is set by Shutdown.
	closed bool

	// workers tracks the persistence worker of every session.
	workers sync.WaitGroup

	// messages is the gateway used by send and delete.
	messages store.MessageStore

	// timeout bounds each gateway call.
	timeout time.Duration

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub persisting through messages.
// A non-positive timeout falls back to DefaultGatewayTimeout.
func NewHub(messages store.MessageStore, timeout time.Duration) *Hub {
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}

	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
		messages: messages,
		timeout:  timeout,
		logger:   logx.Component("hub"),
	}
}

// Connect registers a new connection and returns its session in the Connected state.
// A non-empty verified identity pins the identity the session may announce.
func (h *Hub) Connect(verified string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	s := newSession(h, randx.ConnectionID(), verified)
	h.sessions[s.id] = s

	h.workers.Add(1)
	go s.work()

	h.logger.Debug().
		Str("conn_id", s.id).
		Int("total_connections", len(h.sessions)).
		Msg("Connection registered.")

	return s, nil
}

// ListOnline returns the announced identities in registration order, leaving out every
// entry equal to excluding.
func (h *Hub) ListOnline(excluding string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.presence.list(excluding)
}

// Connections returns the number of connected sessions.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.sessions)
}

// DeleteMessage retracts a message from the store and, when it existed, tells every
// connected session. A missing message reports false without error.
func (h *Hub) DeleteMessage(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	deleted, err := h.messages.DeleteMessage(ctx, id)
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", id).Msg("Failed to delete message.")
		return false, errs.Wrap(errs.ErrPersistenceFailure, err)
	}

	if !deleted {
		h.logger.Debug().Str("message_id", id).Msg("Delete requested for unknown message.")
		return false, nil
	}

	h.mu.Lock()
	h.broadcastGlobal(EventMessageDeleted, DeletedPayload{ID: id})
	h.mu.Unlock()

	return true, nil
}

// saveAndDeliver persists msg and delivers it to every subscriber of its room.
// It runs on the sender's persistence worker and is not bound to the connection lifetime.
func (h *Hub) saveAndDeliver(s *Session, ref string, msg store.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	saved, err := h.messages.SaveMessage(ctx, msg)
	if err != nil {
		h.logger.Error().Err(err).
			Str("conn_id", s.id).
			Str("room", msg.Room).
			Msg("Failed to persist message.")

		h.mu.Lock()
		h.replyError(s, ref, errs.Wrap(errs.ErrPersistenceFailure, err))
		h.mu.Unlock()
		return
	}

	h.mu.Lock()
	h.deliverToRoom(saved.Room, EventMessageDelivered, MessagePayload{Message: saved})
	h.mu.Unlock()
}

// detach removes s from every index and closes its outbound queue.
// It reports whether a presence entry was removed. Callers hold h.mu.
func (h *Hub) detach(s *Session) bool {
	delete(h.sessions, s.id)

	h.unsubscribeAll(s)
	s.rooms = nil

	s.state = StateDisconnected
	close(s.send)

	return h.presence.remove(s.id)
}

// unsubscribeAll drops every membership of s and clears its active room. Callers hold h.mu.
func (h *Hub) unsubscribeAll(s *Session) {
	for roomID := range s.rooms {
		if members, ok := h.rooms[roomID]; ok {
			delete(members, s.id)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
		delete(s.rooms, roomID)
	}
	s.active = ""
}

// subscribe adds s to the members of roomID. Callers hold h.mu.
func (h *Hub) subscribe(s *Session, roomID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[roomID] = members
	}
	members[s.id] = s
	s.rooms[roomID] = struct{}{}
}

// Shutdown disconnects every session and waits for their persistence workers to drain.
// Connect fails afterwards.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Disconnect()
	}

	h.workers.Wait()

	h.logger.Info().Int("disconnected", len(sessions)).Msg("Hub shutdown complete.")
}
