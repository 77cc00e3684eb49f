package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory is a process-local Store. Data is lost on restart.
type Memory struct {
	mu       sync.RWMutex
	messages []Message
	users    map[string]User
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]User)}
}

func (m *Memory) SaveMessage(ctx context.Context, msg Message) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	msg = Prepare(msg)

	m.mu.Lock()
	defer m.mu.Unlock()

	// keep the slice ordered by creation time; ties keep arrival order
	i := len(m.messages)
	for i > 0 && m.messages[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	m.messages = slices.Insert(m.messages, i, msg)

	return msg, nil
}

func (m *Memory) ListMessages(ctx context.Context, opts ListOptions) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Message, 0, len(m.messages))
	for _, msg := range m.messages {
		if opts.Room == "" || msg.Room == opts.Room {
			out = append(out, msg)
		}
	}

	return Window(out, opts.Limit), nil
}

func (m *Memory) DeleteMessage(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.messages, func(msg Message) bool { return msg.ID == id })
	if i < 0 {
		return false, nil
	}
	m.messages = slices.Delete(m.messages, i, i+1)

	return true, nil
}

func (m *Memory) CreateUser(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.Username] = user

	return nil
}

func (m *Memory) GetUser(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (m *Memory) Close() error {
	return nil
}
