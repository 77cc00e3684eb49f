package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"livechat/internal/app/store"
)

const (
	insertMessage = `INSERT INTO messages (id, room, sender, content, created_at)
VALUES ($1, $2, $3, $4, $5)`

	// newest first inside the window, flipped back to oldest first by the outer query
	listMessages = `SELECT id, room, sender, content, created_at FROM (
    SELECT id, room, sender, content, created_at FROM messages
    WHERE ($1 = '' OR room = $1)
    ORDER BY created_at DESC, id DESC
    LIMIT $2
) recent ORDER BY created_at ASC, id ASC`

	deleteMessage = `DELETE FROM messages WHERE id = $1`

	insertUser = `INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3)`

	selectUser = `SELECT username, password_hash, created_at FROM users WHERE username = $1`
)

// Store is the Postgres implementation of store.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, migrates the schema and returns the store.
func Open(dsn string) (*Store, error) {
	pool, err := NewPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) SaveMessage(ctx context.Context, msg store.Message) (store.Message, error) {
	msg = store.Prepare(msg)

	_, err := s.pool.Exec(ctx, insertMessage, msg.ID, msg.Room, msg.Sender, msg.Content, msg.CreatedAt)
	if err != nil {
		return store.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context, opts store.ListOptions) ([]store.Message, error) {
	rows, err := s.pool.Query(ctx, listMessages, opts.Room, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Message, error) {
		var (
			m  store.Message
			id uuid.UUID
		)
		if err := row.Scan(&id, &m.Room, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return store.Message{}, err
		}
		m.ID = id.String()
		m.CreatedAt = m.CreatedAt.UTC()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	return msgs, nil
}

// DeleteMessage treats ids that are not UUIDs as missing rather than as query errors.
func (s *Store) DeleteMessage(ctx context.Context, id string) (bool, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}

	tag, err := s.pool.Exec(ctx, deleteMessage, parsed)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, user store.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, insertUser, user.Username, user.PasswordHash, createdAt)
	if IsUniqueViolation(err) {
		return store.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (store.User, error) {
	var u store.User

	err := s.pool.QueryRow(ctx, selectUser, username).Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
