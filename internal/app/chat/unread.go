package chat

import (
	"encoding/json"

	"livechat/internal/app/room"
)

// View is the state of an observer's chat window.
type View struct {
	// ActiveRoom is the room currently shown.
	ActiveRoom string

	// Open reports whether the chat window is visible at all.
	Open bool
}

// Unread projects a stream of server events into unread counts per peer for observer.
//
// A delivered message counts when someone other than observer sent it and it is not
// visible: the window is closed or shows another room. A later message-deleted event for a
// counted message takes it back. Frames that are not message events, or that fail to
// decode, are ignored.
func Unread(stream []Envelope, view View, observer string) map[string]int {
	counts := make(map[string]int)
	counted := make(map[string]string)

	for _, env := range stream {
		switch env.Type {
		case EventMessageDelivered:
			var p MessagePayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}

			msg := p.Message
			if msg.Sender == observer {
				continue
			}
			if view.Open && msg.Room == view.ActiveRoom {
				continue
			}
			if _, dup := counted[msg.ID]; dup {
				continue
			}

			peer, ok := room.Peer(msg.Room, observer)
			if !ok {
				peer = msg.Sender
			}
			counts[peer]++
			counted[msg.ID] = peer

		case EventMessageDeleted:
			var p DeletedPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}

			peer, ok := counted[p.ID]
			if !ok {
				continue
			}
			delete(counted, p.ID)

			if counts[peer]--; counts[peer] == 0 {
				delete(counts, peer)
			}
		}
	}

	return counts
}
