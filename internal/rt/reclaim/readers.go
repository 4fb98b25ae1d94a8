package reclaim

import (
	"sync/atomic"

	"github.com/kolkov/rtsync/internal/rt/spinlock"
)

// readerRecord is the registration record for one reader handle.
//
// minEpoch is 0 while the reader is idle; while a read access is open
// it holds the container epoch observed at access start. The container
// invariant: a value may only be freed or reused if no registered
// reader has a nonzero minEpoch <= the value's retirement epoch.
type readerRecord struct {
	minEpoch atomic.Uint64
}

// beginAccess publishes the given epoch as the reader's pin.
//
// Panics if the reader already has an open access: read accesses on a
// single reader handle must not nest.
func (r *readerRecord) beginAccess(epoch uint64) {
	if r.minEpoch.Load() != 0 {
		panic("rtsync: reclaim: reader already has an open read access")
	}
	r.minEpoch.Store(epoch)
}

// endAccess clears the pin. Panics on a double close.
func (r *readerRecord) endAccess() {
	if r.minEpoch.Load() == 0 {
		panic("rtsync: reclaim: read access closed twice")
	}
	r.minEpoch.Store(0)
}

// readerSet is the per-instance set of registered reader records,
// guarded by a short-held spin lock. The lock covers registration,
// unregistration and the pin scan only; it is never held across a
// caller-visible operation.
type readerSet struct {
	mu      spinlock.Mutex
	readers []*readerRecord
}

func (s *readerSet) register(r *readerRecord) {
	s.mu.Lock()
	s.readers = append(s.readers, r)
	s.mu.Unlock()
}

func (s *readerSet) unregister(r *readerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.readers {
		if cur == r {
			last := len(s.readers) - 1
			s.readers[i] = s.readers[last]
			s.readers[last] = nil
			s.readers = s.readers[:last]
			return
		}
	}
	panic("rtsync: reclaim: reader closed twice or never registered")
}

// pinned reports whether any registered reader holds an open access
// that could still reference a value retired at the given epoch.
func (s *readerSet) pinned(retireEpoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.readers {
		if e := r.minEpoch.Load(); e != 0 && e <= retireEpoch {
			return true
		}
	}
	return false
}
