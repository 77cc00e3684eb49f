/*
Package chat contains the real-time layer: the hub that owns presence and room
membership, the per-connection session state machine, fan-out of events to connected
sessions and the WebSocket client that drives a session.

This file defines fan-out. Every function here is called with the hub lock held and
never blocks: a session whose outbound queue is full misses the event.
*/
package chat

// broadcastPresence sends each connected session its own view of the online list,
// which leaves out the session's own identity.
func (h *Hub) broadcastPresence() {
	for _, s := range h.sessions {
		h.push(s, EventOnlineUsersChanged, "", OnlineUsersPayload{Users: h.presence.list(s.identity)})
	}

	h.logger.Debug().Int("online", h.presence.size()).Msg("Presence broadcast.")
}

// deliverToRoom sends an event to every session subscribed to roomID, the sender included.
func (h *Hub) deliverToRoom(roomID string, typ EventType, payload any) {
	data, err := encodeEvent(typ, "", payload)
	if err != nil {
		h.logger.Error().Err(err).Str("room", roomID).Msg("Error marshaling room event.")
		return
	}

	for _, s := range h.rooms[roomID] {
		h.enqueue(s, data)
	}
}

// broadcastGlobal sends an event to every connected session.
func (h *Hub) broadcastGlobal(typ EventType, payload any) {
	data, err := encodeEvent(typ, "", payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(typ)).Msg("Error marshaling broadcast event.")
		return
	}

	for _, s := range h.sessions {
		h.enqueue(s, data)
	}
}

// replyError reports err to the session that caused it.
func (h *Hub) replyError(s *Session, ref string, err error) {
	h.push(s, EventError, ref, errorPayload(err))
}

// push encodes a single event for s.
func (h *Hub) push(s *Session, typ EventType, ref string, payload any) {
	data, err := encodeEvent(typ, ref, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("conn_id", s.id).Msg("Error marshaling event.")
		return
	}
	h.enqueue(s, data)
}

// enqueue writes data to the outbound queue of s without blocking.
// Disconnected sessions are skipped.
func (h *Hub) enqueue(s *Session, data []byte) {
	if s.state == StateDisconnected {
		return
	}

	select {
	case s.send <- data:
	default:
		h.logger.Warn().
			Str("conn_id", s.id).
			Int("queue_len", len(s.send)).
			Msg("Session send queue full, dropping event.")
	}
}
