// Package spinlock implements a spin lock with progressive backoff for
// synchronising a real-time goroutine with other goroutines.
//
// Mutex satisfies sync.Locker and is a drop-in replacement for
// sync.Mutex at call sites that must not park on a kernel primitive:
// TryLock and Unlock are wait-free (a sync.Mutex unlock may perform a
// futex wake), and Lock spins with progressive backoff instead of
// sleeping. The backoff parameters are tuned for the typical audio-app
// scenario where the real-time goroutine runs a callback every 1-10 ms,
// but are useful elsewhere too.
//
// Mutex is not reentrant; locking it twice on the same goroutine is a
// usage error and will in practice deadlock.
package spinlock

import (
	"sync/atomic"

	"github.com/kolkov/rtsync/internal/rt/backoff"
)

// Mutex is a non-reentrant spin lock. The zero value is an unlocked
// Mutex. A Mutex must not be copied after first use.
type Mutex struct {
	flag atomic.Uint32
}

// Lock acquires the lock, blocking with progressive backoff until it
// can be acquired.
//
// Preconditions: the calling goroutine does not already hold the lock.
func (m *Mutex) Lock() {
	backoff.Wait(m.TryLock)
}

// TryLock attempts to acquire the lock without blocking and reports
// whether it succeeded. Wait-free.
func (m *Mutex) TryLock() bool {
	return m.flag.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Wait-free.
//
// Preconditions: the lock is held by the calling goroutine.
func (m *Mutex) Unlock() {
	m.flag.Store(0)
}
