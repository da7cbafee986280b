package directory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteError(t *testing.T) {
	t.Run("matches its kind", func(t *testing.T) {
		err := fmt.Errorf("get course: %w", &RemoteError{Kind: ErrPlatform, StatusCode: 404, Message: "not found"})

		require.ErrorIs(t, err, ErrPlatform)
		require.NotErrorIs(t, err, ErrDecodeFailure)
		assert.True(t, IsRecoverable(err))
		assert.Equal(t, "not found", Message(err))
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("decode failure is not recoverable", func(t *testing.T) {
		err := &RemoteError{Kind: ErrDecodeFailure, StatusCode: 502}

		assert.False(t, IsRecoverable(err))
		assert.Contains(t, Message(err), "502")
	})

	t.Run("missing field is recoverable", func(t *testing.T) {
		err := &RemoteError{Kind: ErrMissingField, Message: `field "name" is missing`}

		assert.True(t, IsRecoverable(err))
		assert.Equal(t, `expected field is missing: field "name" is missing`, err.Error())
	})

	t.Run("rejected token is not recoverable", func(t *testing.T) {
		err := fmt.Errorf("get course: %w", &RemoteError{Kind: ErrUnauthorized, StatusCode: 401, Message: "Invalid access token."})

		require.ErrorIs(t, err, ErrUnauthorized)
		assert.False(t, IsRecoverable(err))
		assert.Equal(t, "Invalid access token.", Message(err))
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		err := errors.New("connection refused")

		assert.False(t, IsRecoverable(err))
		assert.Equal(t, "connection refused", Message(err))
	})
}
