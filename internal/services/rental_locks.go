package services

import "sync"

// rentalLocks serializes status recomputation per rental inside this process.
// Entries are dropped once nobody holds or waits for them.
type rentalLocks struct {
	mu    sync.Mutex
	locks map[string]*rentalLock
}

type rentalLock struct {
	mu   sync.Mutex
	refs int
}

func newRentalLocks() *rentalLocks {
	return &rentalLocks{locks: make(map[string]*rentalLock)}
}

// Lock blocks until the rental's lock is held and returns its release func.
func (l *rentalLocks) Lock(rentalID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[rentalID]
	if !ok {
		lock = &rentalLock{}
		l.locks[rentalID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, rentalID)
		}
		l.mu.Unlock()
	}
}

func (l *rentalLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
