// Package storetest provides test doubles for the store package.
package storetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"livechat/internal/app/store"
)

// MockMessageStore is a testify mock of store.MessageStore.
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) SaveMessage(ctx context.Context, msg store.Message) (store.Message, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(store.Message), args.Error(1)
}

func (m *MockMessageStore) ListMessages(ctx context.Context, opts store.ListOptions) ([]store.Message, error) {
	args := m.Called(ctx, opts)
	if msgs, ok := args.Get(0).([]store.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageStore) DeleteMessage(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var _ store.MessageStore = (*MockMessageStore)(nil)
