package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/security"
)

func TestValidateSessionCode(t *testing.T) {
	t.Run("valid codes", func(t *testing.T) {
		for _, code := range []string{"ABC234", "ZZZZZZ", "K7M2PQ"} {
			assert.NoError(t, security.ValidateSessionCode(code), code)
		}
	})

	t.Run("invalid codes", func(t *testing.T) {
		invalid := []string{
			"",
			"abc234", // lowercase
			"ABC23",  // too short
			"ABC2345",
			"ABC0EF", // ambiguous 0
			"ABCOEF", // letter O is excluded from the alphabet
			"ABC1EF",
			"ABCIEF",
			"AB C34",
		}
		for _, code := range invalid {
			assert.Error(t, security.ValidateSessionCode(code), "code %q should be rejected", code)
		}
	})
}

func TestValidateUsername(t *testing.T) {
	t.Run("valid names", func(t *testing.T) {
		for _, name := range []string{"Ann", "Bob Smith", "O'Brien", "Zoë", "user_42", "J.R."} {
			got, err := security.ValidateUsername(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, got)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		got, err := security.ValidateUsername("  Ann  ")
		require.NoError(t, err)
		assert.Equal(t, "Ann", got)
	})

	t.Run("invalid names", func(t *testing.T) {
		invalid := []string{
			"",
			"   ",
			strings.Repeat("a", 51),
			"<script>alert(1)</script>",
			"rm -rf; echo",
			"a|b",
			"back`tick",
		}
		for _, name := range invalid {
			_, err := security.ValidateUsername(name)
			assert.Error(t, err, "name %q should be rejected", name)
		}
	})
}

func TestIsValidMessageType(t *testing.T) {
	valid := []string{
		models.MsgTypeCreateSession,
		models.MsgTypeJoinSession,
		models.MsgTypeStartStopwatch,
		models.MsgTypeStopStopwatch,
		models.MsgTypeResetStopwatch,
		models.MsgTypeLapStopwatch,
	}
	for _, msgType := range valid {
		assert.True(t, security.IsValidMessageType(msgType), msgType)
	}

	// Server-to-client events are not acceptable inbound
	invalid := []string{
		models.MsgTypeSyncState,
		models.MsgTypeUserJoined,
		models.MsgTypeUserLeft,
		models.MsgTypeError,
		models.MsgTypeConnected,
		"",
		"pause_stopwatch",
	}
	for _, msgType := range invalid {
		assert.False(t, security.IsValidMessageType(msgType), msgType)
	}
}

func TestValidateMessageFields(t *testing.T) {
	t.Run("join requires a sessionId", func(t *testing.T) {
		err := security.ValidateMessageFields(&models.WSMessage{Type: models.MsgTypeJoinSession})
		assert.Error(t, err)
	})

	t.Run("join validates the code format", func(t *testing.T) {
		err := security.ValidateMessageFields(&models.WSMessage{
			Type:      models.MsgTypeJoinSession,
			SessionID: "bad!!!",
		})
		assert.Error(t, err)
	})

	t.Run("create allows an empty username", func(t *testing.T) {
		err := security.ValidateMessageFields(&models.WSMessage{Type: models.MsgTypeCreateSession})
		assert.NoError(t, err)
	})

	t.Run("username is validated when present", func(t *testing.T) {
		err := security.ValidateMessageFields(&models.WSMessage{
			Type:     models.MsgTypeCreateSession,
			Username: "<script>",
		})
		assert.Error(t, err)
	})

	t.Run("well formed join passes", func(t *testing.T) {
		err := security.ValidateMessageFields(&models.WSMessage{
			Type:      models.MsgTypeJoinSession,
			SessionID: "ABC234",
			Username:  "Ann",
		})
		assert.NoError(t, err)
	})
}

func TestSanitizeErrorMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "", security.SanitizeErrorMessage(nil))
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		err := errors.New("name too long (max 50 characters)")
		assert.Equal(t, err.Error(), security.SanitizeErrorMessage(err))
	})

	t.Run("internal detail is hidden", func(t *testing.T) {
		internal := []error{
			errors.New("sql: no rows in result set"),
			errors.New("UNIQUE constraint failed: races.id"),
			errors.New("failed to save record"),
			errors.New("database is locked"),
		}
		for _, err := range internal {
			assert.Equal(t, "An error occurred while processing your request",
				security.SanitizeErrorMessage(err), err.Error())
		}
	})
}
