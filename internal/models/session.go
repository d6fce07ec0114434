package models

import (
	"sort"
	"time"
)

// Session is a live collaborative context identified by a short code. It
// holds exactly one stopwatch and the set of participants currently in it.
// The SessionStore is the single writer; everything outside the store sees
// sessions only through Snapshot copies.
type Session struct {
	ID           string
	Participants map[string]*Participant
	Stopwatch    *Stopwatch
	CreatedAt    time.Time
	LastActivity time.Time
}

func NewSession(id string, createdAt time.Time) *Session {
	return &Session{
		ID:           id,
		Participants: make(map[string]*Participant),
		Stopwatch:    NewStopwatch(),
		CreatedAt:    createdAt,
		LastActivity: createdAt,
	}
}

// SessionSnapshot is the full current state of a session, sent to clients
// to re-synchronize their view and handed to the archive when a race is
// saved. Durations and the start baseline are integer milliseconds on the
// wire.
type SessionSnapshot struct {
	ID           string                `json:"id"`
	Participants []ParticipantSnapshot `json:"participants"`
	Stopwatch    StopwatchSnapshot     `json:"stopwatch"`
}

type ParticipantSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Initial string `json:"initial,omitempty"`
}

type StopwatchSnapshot struct {
	IsRunning   bool          `json:"isRunning"`
	StartTime   *int64        `json:"startTime"` // unix ms; null while stopped
	ElapsedTime int64         `json:"elapsedTime"`
	Laps        []LapSnapshot `json:"laps"`
}

type LapSnapshot struct {
	Number int   `json:"number"`
	Time   int64 `json:"time"`
}

// Snapshot deep-copies the session state as of now. Participants are
// ordered by join time (then id) so the roster renders stably instead of
// relying on map iteration order. Laps and participants always serialize
// as arrays, never null.
func (s *Session) Snapshot(now time.Time) *SessionSnapshot {
	members := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		members = append(members, p)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	participants := make([]ParticipantSnapshot, 0, len(members))
	for _, p := range members {
		participants = append(participants, ParticipantSnapshot{
			ID:      p.ID,
			Name:    p.Name,
			Initial: p.Initial,
		})
	}

	laps := s.Stopwatch.Laps()
	sw := StopwatchSnapshot{
		IsRunning:   s.Stopwatch.IsRunning(),
		ElapsedTime: s.Stopwatch.Elapsed(now).Milliseconds(),
		Laps:        make([]LapSnapshot, 0, len(laps)),
	}
	if start, ok := s.Stopwatch.StartTime(); ok {
		ms := start.UnixMilli()
		sw.StartTime = &ms
	}
	for _, lap := range laps {
		sw.Laps = append(sw.Laps, LapSnapshot{Number: lap.Number, Time: lap.Time.Milliseconds()})
	}

	return &SessionSnapshot{
		ID:           s.ID,
		Participants: participants,
		Stopwatch:    sw,
	}
}
