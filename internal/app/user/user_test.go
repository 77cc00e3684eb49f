package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"livechat/internal/app/store"
	"livechat/internal/pkg/errs"
)

func newTestService() (*Service, *store.Memory) {
	users := store.NewMemory()
	svc := NewService(users)
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	stored, err := users.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	u, err = svc.Authenticate(ctx, Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, Credentials{Username: "alice", Password: "other-secret"})
	assert.True(t, errs.HasCode(err, errs.ErrUserAlreadyExists))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	tcases := []struct {
		name  string
		creds Credentials
		code  int
	}{
		{name: "missing username", creds: Credentials{Password: "secret1"}, code: errs.ErrInvalidUsername},
		{name: "username with separator", creds: Credentials{Username: "a:b", Password: "secret1"}, code: errs.ErrInvalidUsername},
		{name: "username too long", creds: Credentials{Username: strings.Repeat("u", 65), Password: "secret1"}, code: errs.ErrInvalidUsername},
		{name: "missing password", creds: Credentials{Username: "alice"}, code: errs.ErrInvalidPassword},
		{name: "short password", creds: Credentials{Username: "alice", Password: "123"}, code: errs.ErrInvalidPassword},
		{name: "long password", creds: Credentials{Username: "alice", Password: strings.Repeat("p", 73)}, code: errs.ErrInvalidPassword},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.creds)
			assert.True(t, errs.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	for _, creds := range []Credentials{
		{Username: "alice", Password: "wrong-password"},
		{Username: "bob", Password: "secret1"},
		{Username: "alice"},
		{},
	} {
		_, err := svc.Authenticate(ctx, creds)
		assert.True(t, errs.HasCode(err, errs.ErrInvalidCredentials), "creds %+v", creds)
	}
}

func TestIdentityValidationRegistered(t *testing.T) {
	require.NotPanics(t, func() { newValidator() })

	v := newValidator()
	assert.NoError(t, v.Var("alice", "identity"))
	assert.Error(t, v.Var("a:b", "identity"))
	assert.Error(t, v.Var(" alice", "identity"))
}
