package state

import (
	"fmt"
	"maps"
	"sync"
	"time"
)

// ServerStatus is what the keepalive poller learns from system/getversion.
type ServerStatus struct {
	CIPVersion string
	Components map[string]string // component name -> version, e.g. "cumulus" -> "11.0.2"
	Compatible bool
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Status              ServerStatus
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the server has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(status *ServerStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		s.snapshot.Status = cloneStatus(*status)
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.HasStatus = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Status = cloneStatus(s.snapshot.Status)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneStatus(st ServerStatus) ServerStatus {
	if st.Components != nil {
		st.Components = maps.Clone(st.Components)
	}
	return st
}
