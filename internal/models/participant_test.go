package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/splitsync/splitsync/internal/models"
)

func TestDeriveInitial(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Ann", "A"},
		{"lowercase is uppercased", "ann", "A"},
		{"empty name", "", "?"},
		{"whitespace only", "   ", "?"},
		{"leading whitespace trimmed", "  bob", "B"},
		{"unicode letter", "éclair", "É"},
		{"digit kept as is", "7up", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.DeriveInitial(tt.input))
		})
	}
}

func TestNewParticipant(t *testing.T) {
	joined := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := models.NewParticipant("user-1", "Ann", joined)

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "A", p.Initial)
	assert.Equal(t, joined, p.JoinedAt)
}

func TestParticipant_Rename(t *testing.T) {
	joined := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := models.NewParticipant("user-1", "Ann", joined)

	p.Rename("Bob")

	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, "B", p.Initial)
	assert.Equal(t, joined, p.JoinedAt, "rename must not change the join time")
}
