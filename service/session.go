package service

import (
	"sync"
	"time"
)

// SessionTracker records when the voting session was opened and closed, as
// seen from the committed operations.
type SessionTracker struct {
	startTime time.Time
	endTime   time.Time
	mu        sync.RWMutex
}

type SessionTimes struct {
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Duration  string     `json:"duration,omitempty"`
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{}
}

func (st *SessionTracker) Started(at time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.startTime = at
}

func (st *SessionTracker) Ended(at time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.endTime = at
}

func (st *SessionTracker) Times() SessionTimes {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var times SessionTimes
	if !st.startTime.IsZero() {
		started := st.startTime
		times.StartedAt = &started
	}
	if !st.endTime.IsZero() {
		ended := st.endTime
		times.EndedAt = &ended
	}
	if d := st.duration(); d > 0 {
		times.Duration = d.String()
	}
	return times
}

// Duration is zero until the session has been closed.
func (st *SessionTracker) Duration() time.Duration {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.duration()
}

func (st *SessionTracker) duration() time.Duration {
	if st.startTime.IsZero() || st.endTime.IsZero() {
		return 0
	}
	return st.endTime.Sub(st.startTime)
}
