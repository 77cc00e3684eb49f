package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("known code keeps template", func(t *testing.T) {
		err := NewError(ErrUserAlreadyExists)

		assert.Equal(t, ErrUserAlreadyExists, err.Code)
		assert.Equal(t, http.StatusConflict, err.Status)
		assert.Equal(t, "Username already registered.", err.Message)
	})

	t.Run("missing status defaults to 200", func(t *testing.T) {
		err := NewError(ErrNotInRoom)

		assert.Equal(t, http.StatusOK, err.Status)
	})

	t.Run("unknown code falls back to ErrUnknown", func(t *testing.T) {
		err := NewError(424242)

		assert.Equal(t, ErrUnknown, err.Code)
		assert.Equal(t, http.StatusInternalServerError, err.Status)
	})

	t.Run("details fill placeholders", func(t *testing.T) {
		err := NewError(ErrMessageContentInvalid, 5000)

		assert.Equal(t, "Message must be between 1 and 5000 bytes.", err.Message)
	})

	t.Run("templates are not mutated", func(t *testing.T) {
		_ = NewError(ErrMessageContentInvalid, 10)
		err := NewError(ErrMessageContentInvalid, 20)

		assert.Equal(t, "Message must be between 1 and 20 bytes.", err.Message)
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrPersistenceFailure, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, NewError(ErrPersistenceFailure))
	assert.NotErrorIs(t, err, NewError(ErrNotInRoom))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeAndFrom(t *testing.T) {
	var err error = NewError(ErrInvalidIdentity)

	assert.True(t, HasCode(err, ErrInvalidIdentity))
	assert.False(t, HasCode(err, ErrNotInRoom))
	assert.False(t, HasCode(errors.New("plain"), ErrInvalidIdentity))

	assert.Nil(t, From(nil))
	assert.Same(t, err, From(err))

	converted := From(errors.New("boom"))
	require.NotNil(t, converted)
	assert.Equal(t, ErrUnknown, converted.Code)
}
