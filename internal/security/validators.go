package security

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxUsernameLength = 50
	MinUsernameLength = 1
)

// SessionCodeAlphabet is the session code symbol set: 32 characters with
// the visually ambiguous glyphs (0/O, 1/I) excluded.
const SessionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	sessionCodeRegex = regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)

	// Display names allow Unicode letters and digits plus a small set of
	// punctuation people actually have in names.
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}\s'\-_.]+$`)

	// Characters with meaning to shells, markup or query syntax.
	dangerousCharsRegex = regexp.MustCompile(`[<>{}[\]\\;|&$()` + "`" + `]`)
)

// ValidateSessionCode checks the exact session code format. It says nothing
// about whether such a session exists.
func ValidateSessionCode(code string) error {
	if code == "" {
		return fmt.Errorf("session code cannot be empty")
	}
	if !sessionCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid session code format (expected 6 characters from %s)", SessionCodeAlphabet)
	}
	return nil
}

// ValidateUsername checks a display name against length and character
// constraints and returns it trimmed. An empty name is not valid here;
// callers that allow anonymous participants skip validation for "".
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return "", fmt.Errorf("name cannot be empty")
	case len(name) < MinUsernameLength:
		return "", fmt.Errorf("name too short (min %d characters)", MinUsernameLength)
	case len(name) > MaxUsernameLength:
		return "", fmt.Errorf("name too long (max %d characters)", MaxUsernameLength)
	case !usernameRegex.MatchString(name):
		return "", fmt.Errorf("name contains invalid characters (allowed: letters, numbers, spaces, apostrophes, hyphens, underscores, dots)")
	case dangerousCharsRegex.MatchString(name):
		return "", fmt.Errorf("name contains potentially dangerous characters")
	}

	for _, r := range name {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("name contains control characters")
		}
	}

	return name, nil
}

// sensitiveErrorPatterns mark error text that would leak storage internals.
var sensitiveErrorPatterns = []string{
	"sql",
	"database",
	"record",
	"collection",
	"pocketbase",
	"constraint",
	"unique",
	"no rows",
}

// SanitizeErrorMessage strips internal detail from an error before it is
// sent to a client.
func SanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	lowered := strings.ToLower(err.Error())
	for _, pattern := range sensitiveErrorPatterns {
		if strings.Contains(lowered, pattern) {
			return "An error occurred while processing your request"
		}
	}

	return err.Error()
}
