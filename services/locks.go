package services

import "sync"

// tournamentLocks serializes mutating bracket operations per tournament, so
// concurrent result submissions for the same tournament apply one at a time
// while distinct tournaments proceed in parallel. Locks are created on first
// use and kept for the process lifetime; the footprint is one mutex per
// tournament touched.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[int]*sync.Mutex)}
}

// acquire blocks until the tournament's lock is held and returns the release
// function.
func (t *tournamentLocks) acquire(tournamentID int) func() {
	t.mu.Lock()
	lock, ok := t.locks[tournamentID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[tournamentID] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
