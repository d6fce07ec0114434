package models

import "time"

// Stopwatch is the per-session timer state machine. Elapsed time is derived
// from wall-clock deltas against a start baseline rather than periodic
// sampling, so every client can compute the same display value locally from
// a broadcast startTime without per-tick traffic. The caller supplies the
// current time; the struct never reads a clock itself.
//
// Invariant: running == true implies startTime is set; running == false
// implies startTime is zero and elapsed holds the frozen duration.
type Stopwatch struct {
	running   bool
	startTime time.Time
	elapsed   time.Duration
	laps      []Lap
}

// Lap is a marker recorded while the stopwatch runs, without interrupting
// it. Time is the duration since the stopwatch start at the moment of
// recording.
type Lap struct {
	Number int
	Time   time.Duration
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{}
}

// Start transitions Stopped → Running. The baseline is backdated by the
// accumulated elapsed time so a restart resumes rather than starting over.
// Returns false if already running.
func (s *Stopwatch) Start(now time.Time) bool {
	if s.running {
		return false
	}
	s.startTime = now.Add(-s.elapsed)
	s.running = true
	return true
}

// Stop transitions Running → Stopped, freezing the elapsed duration.
// Returns false if already stopped.
func (s *Stopwatch) Stop(now time.Time) bool {
	if !s.running {
		return false
	}
	s.elapsed = now.Sub(s.startTime)
	s.running = false
	s.startTime = time.Time{}
	return true
}

// Reset forces Stopped(0) and clears the lap sequence. Valid from any
// state; always succeeds.
func (s *Stopwatch) Reset() {
	s.running = false
	s.startTime = time.Time{}
	s.elapsed = 0
	s.laps = nil
}

// RecordLap appends a lap at the current run time. Laps can only be
// recorded while running.
func (s *Stopwatch) RecordLap(now time.Time) (Lap, bool) {
	if !s.running {
		return Lap{}, false
	}
	lap := Lap{Number: len(s.laps) + 1, Time: now.Sub(s.startTime)}
	s.laps = append(s.laps, lap)
	return lap, true
}

func (s *Stopwatch) IsRunning() bool {
	return s.running
}

// StartTime returns the running baseline and whether one is set.
func (s *Stopwatch) StartTime() (time.Time, bool) {
	if !s.running {
		return time.Time{}, false
	}
	return s.startTime, true
}

// Elapsed returns the effective elapsed duration at now: the live delta
// while running, the frozen value otherwise.
func (s *Stopwatch) Elapsed(now time.Time) time.Duration {
	if s.running {
		return now.Sub(s.startTime)
	}
	return s.elapsed
}

// Laps returns a copy of the recorded laps.
func (s *Stopwatch) Laps() []Lap {
	out := make([]Lap, len(s.laps))
	copy(out, s.laps)
	return out
}
