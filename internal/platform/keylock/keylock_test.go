package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	user string
	card int64
}

func TestLocker_SerializesSameKey(t *testing.T) {
	l := New[pair]()
	key := pair{"u1", 1}

	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(key)
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.Len(), "idle keys must be released")
}

func TestLocker_DistinctKeysDoNotBlock(t *testing.T) {
	l := New[pair]()

	unlockA := l.Lock(pair{"u1", 1})
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(pair{"u1", 2})
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	l := New[string]()

	unlock := l.Lock("k")
	assert.Equal(t, 1, l.Len())
	unlock()
	unlock()
	assert.Equal(t, 0, l.Len())

	// Still usable afterwards.
	l.Lock("k")()
	assert.Equal(t, 0, l.Len())
}
