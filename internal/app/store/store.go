/*
Package store defines the Message Store Gateway: the persistence boundary the chat core
calls to save, list and delete message records, and the account lookups used by the
credential check.

Three backends implement it: Postgres (package db), Badger (embedded) and an in-memory
store for tests and local demos.
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrUserExists is returned when registering a username that is already taken.
	ErrUserExists = errors.New("store: username already registered")
)

// Message is the persisted chat message record.
type Message struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions narrows a history query. An empty Room lists every room.
type ListOptions struct {
	Room  string
	Limit int
}

// User is a registered account.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// MessageStore persists chat messages.
type MessageStore interface {
	// SaveMessage stores msg and returns it with ID and CreatedAt assigned when empty.
	SaveMessage(ctx context.Context, msg Message) (Message, error)

	// ListMessages returns the oldest-first history, at most opts.Limit records.
	ListMessages(ctx context.Context, opts ListOptions) ([]Message, error)

	// DeleteMessage removes the message and reports whether it existed.
	DeleteMessage(ctx context.Context, id string) (bool, error)
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, username string) (User, error)
}

// Store is the full gateway a backend provides.
type Store interface {
	MessageStore
	UserStore
	Close() error
}

// Prepare fills the ID and CreatedAt of a message about to be saved.
// Timestamps are truncated to microseconds so every backend round-trips them unchanged.
func Prepare(msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC().Truncate(time.Microsecond)
	return msg
}

// Window trims an oldest-first slice to its newest limit entries.
func Window(msgs []Message, limit int) []Message {
	if limit > 0 && len(msgs) > limit {
		return msgs[len(msgs)-limit:]
	}
	return msgs
}
