package services

import (
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/splitsync/splitsync/internal/models"
)

// CodeSource produces candidate session codes. The store regenerates on
// collision, so the source itself does not have to be collision-free.
type CodeSource interface {
	Generate() string
}

// SessionStore owns the authoritative in-memory state of every live
// session. It is the single writer: the protocol handler issues store
// operations and reads sessions back only as Snapshot copies, never as
// live references. One mutex makes each operation atomic with respect to
// the session it targets; commands arriving from different connections are
// serialized here in arrival order.
//
// Failure policy: operations on a missing session and invalid stopwatch
// transitions both come back as a false/absent result. The protocol layer
// distinguishes the two for user-facing error text.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	codes    CodeSource
	clock    clockwork.Clock
}

// NewSessionStore builds an isolated store instance. There is no package
// level singleton; callers inject the store wherever it is needed.
func NewSessionStore(codes CodeSource, clock clockwork.Clock) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
		codes:    codes,
		clock:    clock,
	}
}

// CreateSession allocates a fresh code, builds a session holding the single
// initiating participant and a stopped stopwatch, and returns the code.
func (st *SessionStore) CreateSession(participantID, username string) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	code := st.codes.Generate()
	for st.sessions[code] != nil {
		code = st.codes.Generate()
	}

	now := st.clock.Now()
	session := models.NewSession(code, now)
	session.Participants[participantID] = models.NewParticipant(participantID, username, now)
	st.sessions[code] = session

	log.Printf("session created: id=%s participant=%s", code, participantID)
	return code
}

// GetSession returns a snapshot of the session state, or absent. The
// snapshot is a deep copy; mutating it has no effect on the store.
func (st *SessionStore) GetSession(id string) (*models.SessionSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	return session.Snapshot(st.clock.Now()), true
}

// JoinSession adds a participant to an existing session. If the participant
// id is already present (a reconnect), its display identity is refreshed in
// place instead of duplicating the entry. Fails only when the session is
// absent — joining never creates a session as a side effect.
func (st *SessionStore) JoinSession(id, participantID, username string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return false
	}

	now := st.clock.Now()
	if existing, found := session.Participants[participantID]; found {
		existing.Rename(username)
	} else {
		session.Participants[participantID] = models.NewParticipant(participantID, username, now)
	}
	session.LastActivity = now
	return true
}

// RemoveParticipant drops a participant from the session. When the roster
// empties the whole session is deleted; session lifetime is tied to having
// at least one participant. Callers re-query to learn which case occurred.
func (st *SessionStore) RemoveParticipant(id, participantID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return false
	}

	delete(session.Participants, participantID)
	if len(session.Participants) == 0 {
		delete(st.sessions, id)
		log.Printf("session deleted: id=%s (last participant left)", id)
		return true
	}

	session.LastActivity = st.clock.Now()
	return true
}

// StartStopwatch starts the session's timer. Fails if the session is absent
// or the timer is already running.
func (st *SessionStore) StartStopwatch(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return false
	}
	now := st.clock.Now()
	if !session.Stopwatch.Start(now) {
		return false
	}
	session.LastActivity = now
	return true
}

// StopStopwatch stops the session's timer. Fails if the session is absent
// or the timer is already stopped.
func (st *SessionStore) StopStopwatch(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return false
	}
	now := st.clock.Now()
	if !session.Stopwatch.Stop(now) {
		return false
	}
	session.LastActivity = now
	return true
}

// ResetStopwatch forces the timer back to zero and clears laps. Valid from
// any timer state; fails only when the session is absent.
func (st *SessionStore) ResetStopwatch(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return false
	}
	session.Stopwatch.Reset()
	session.LastActivity = st.clock.Now()
	return true
}

// RecordLap appends a lap marker. Absent if the session does not exist or
// the timer is not running.
func (st *SessionStore) RecordLap(id string) (models.Lap, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return models.Lap{}, false
	}
	now := st.clock.Now()
	lap, ok := session.Stopwatch.RecordLap(now)
	if !ok {
		return models.Lap{}, false
	}
	session.LastActivity = now
	return lap, true
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// SweepIdle removes sessions whose last activity is older than maxIdle.
// Sessions with a running stopwatch are never swept: a long-running race
// with silent spectators is still live. Returns the number removed.
func (st *SessionStore) SweepIdle(maxIdle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := st.clock.Now().Add(-maxIdle)
	removed := 0
	for id, session := range st.sessions {
		if session.Stopwatch.IsRunning() {
			continue
		}
		if session.LastActivity.Before(cutoff) {
			delete(st.sessions, id)
			removed++
			log.Printf("session swept: id=%s idle since %s", id, session.LastActivity.Format(time.RFC3339))
		}
	}
	return removed
}
