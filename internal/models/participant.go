package models

import (
	"strings"
	"time"
	"unicode"
)

// Participant is one connected identity inside a session. The id is
// connection-scoped and assigned by the server; the display name is
// whatever the client offered, possibly empty.
type Participant struct {
	ID       string
	Name     string
	Initial  string
	JoinedAt time.Time
}

func NewParticipant(id, name string, joinedAt time.Time) *Participant {
	return &Participant{
		ID:       id,
		Name:     name,
		Initial:  DeriveInitial(name),
		JoinedAt: joinedAt,
	}
}

// Rename updates the display name and re-derives the initial. Used on
// reconnect, when the same participant id joins again with a fresh name.
func (p *Participant) Rename(name string) {
	p.Name = name
	p.Initial = DeriveInitial(name)
}

// DeriveInitial returns the single display character for a name: the first
// rune uppercased, or "?" when no name was provided.
func DeriveInitial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	return string(unicode.ToUpper([]rune(name)[0]))
}
