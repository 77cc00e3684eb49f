package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix = "msg:"
	messageIndex  = "msgid:"
	userPrefix    = "user:"
)

// Badger is an embedded Store backed by BadgerDB.
//
// Messages are keyed "msg:{created_at_unix_nano_padded}:{id}" so a prefix scan returns
// them in creation order; "msgid:{id}" points back at that key for deletion.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database at path.
func OpenBadger(path string) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return &Badger{db: db}, nil
}

// NewBadger wraps an already opened database.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func messageKey(msg Message) []byte {
	return fmt.Appendf(nil, "%s%019d:%s", messagePrefix, msg.CreatedAt.UnixNano(), msg.ID)
}

func (b *Badger) SaveMessage(ctx context.Context, msg Message) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	msg = Prepare(msg)

	value, err := json.Marshal(msg)
	if err != nil {
		return Message{}, err
	}

	key := messageKey(msg)
	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set([]byte(messageIndex+msg.ID), key)
	})
	if err != nil {
		return Message{}, err
	}

	return msg, nil
}

// ListMessages walks the message keys newest first and stops once the limit is reached.
func (b *Badger) ListMessages(ctx context.Context, opts ListOptions) ([]Message, error) {
	var out []Message

	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(slices.Clone(prefix), 0xff)); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if opts.Limit > 0 && len(out) == opts.Limit {
				break
			}

			var msg Message
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &msg)
			})
			if err != nil {
				return err
			}

			if opts.Room == "" || msg.Room == opts.Room {
				out = append(out, msg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

func (b *Badger) DeleteMessage(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deleted := false
	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(messageIndex + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete([]byte(messageIndex + id)); err != nil {
			return err
		}

		deleted = true
		return nil
	})

	return deleted, err
}

func (b *Badger) CreateUser(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(user)
	if err != nil {
		return err
	}

	key := []byte(userPrefix + user.Username)
	return b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, value)
	})
}

func (b *Badger) GetUser(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	var user User
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &user)
		})
	})

	return user, err
}

func (b *Badger) Close() error {
	return b.db.Close()
}
