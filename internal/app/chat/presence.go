package chat

import "github.com/samber/lo"

type presenceEntry struct {
	connID   string
	identity string
}

// presence is the registry of online connections in registration order.
// It is not safe for concurrent use; the hub lock guards it.
type presence struct {
	entries []presenceEntry
}

// announce registers or overwrites the entry of connID. An overwrite keeps the entry's
// original position.
func (p *presence) announce(connID, identity string) {
	for i := range p.entries {
		if p.entries[i].connID == connID {
			p.entries[i].identity = identity
			return
		}
	}
	p.entries = append(p.entries, presenceEntry{connID: connID, identity: identity})
}

// remove deletes the entry of connID and reports whether one existed.
func (p *presence) remove(connID string) bool {
	for i := range p.entries {
		if p.entries[i].connID == connID {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

// list returns every online identity except excluding, in registration order.
func (p *presence) list(excluding string) []string {
	return lo.FilterMap(p.entries, func(e presenceEntry, _ int) (string, bool) {
		return e.identity, e.identity != excluding
	})
}

func (p *presence) size() int {
	return len(p.entries)
}
