// Package keylock serializes work on the same key inside one process.
//
// The services use it to run every read-modify-write of a (user, card) pair
// one at a time. Row locks in the database cover multiple processes; on
// SQLite, where those are unavailable, this lock is what keeps concurrent
// reviews of the same card from losing updates.
package keylock

import "sync"

// Locker hands out one mutex per key. Idle keys are released, so the map
// only holds keys with a current holder or waiter.
type Locker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty Locker.
func New[K comparable]() *Locker[K] {
	return &Locker[K]{locks: make(map[K]*entry)}
}

// Lock blocks until the caller holds key and returns the function that
// releases it. The release function must be called exactly once.
func (l *Locker[K]) Lock(key K) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
