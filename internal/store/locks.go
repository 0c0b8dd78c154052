package store

import "sync"

// lockTable hands out one mutex per student id so that same-student
// transactions serialize while distinct students proceed in parallel.
// Entries are never evicted; the per-student footprint is one mutex.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) forStudent(studentID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[studentID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[studentID] = l
	}
	return l
}
