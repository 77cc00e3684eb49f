/*
Package room derives the canonical identifier of a two-party conversation.

A room is keyed by the unordered pair of participant identities: both identities are
validated, sorted and joined with Separator, so Derive(a, b) == Derive(b, a).
Separator is rejected inside identities, which keeps distinct pairs from colliding.
*/
package room

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"livechat/internal/pkg/errs"
)

const (
	// Separator joins the two identities of a room id.
	Separator = ":"

	// MaxIdentityBytes bounds the length of a display name.
	MaxIdentityBytes = 64
)

// ValidIdentity reports whether id can be used as a participant identity.
func ValidIdentity(id string) bool {
	if id == "" || len(id) > MaxIdentityBytes || !utf8.ValidString(id) {
		return false
	}
	if strings.TrimSpace(id) != id {
		return false
	}
	if strings.Contains(id, Separator) {
		return false
	}
	return strings.IndexFunc(id, unicode.IsControl) < 0
}

// Derive returns the room shared by identities a and b.
// It fails with errs.ErrInvalidIdentity when either identity is invalid.
func Derive(a, b string) (string, error) {
	if !ValidIdentity(a) || !ValidIdentity(b) {
		return "", errs.NewError(errs.ErrInvalidIdentity)
	}

	if b < a {
		a, b = b, a
	}

	return a + Separator + b, nil
}

// Participants splits a derived room id back into its two identities.
func Participants(roomID string) (string, string, bool) {
	a, b, ok := strings.Cut(roomID, Separator)
	if !ok || !ValidIdentity(a) || !ValidIdentity(b) || b < a {
		return "", "", false
	}
	return a, b, true
}

// Peer returns the identity that shares roomID with self.
func Peer(roomID, self string) (string, bool) {
	a, b, ok := Participants(roomID)
	switch {
	case !ok:
		return "", false
	case a == self:
		return b, true
	case b == self:
		return a, true
	default:
		return "", false
	}
}
