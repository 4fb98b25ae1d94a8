package rt

import (
	"github.com/kolkov/rtsync/internal/rt/atomicptr"
	"github.com/kolkov/rtsync/internal/rt/backoff"
	"github.com/kolkov/rtsync/internal/rt/reclaim"
	"github.com/kolkov/rtsync/internal/rt/seqlock"
	"github.com/kolkov/rtsync/internal/rt/spinlock"
)

// Wait blocks until predicate returns true, escalating from tight
// rechecks through CPU pause hints to scheduler yields. It never
// allocates and never parks on a kernel primitive.
func Wait(predicate func() bool) {
	backoff.Wait(predicate)
}

// SpinMutex is a non-reentrant spin lock with progressive backoff.
// TryLock and Unlock are wait-free. The zero value is unlocked.
type SpinMutex = spinlock.Mutex

// AtomicPtr is a wait-free atomic owner of at most one *T.
type AtomicPtr[T any] = atomicptr.Ptr[T]

// MemOrder is the optional per-call memory-ordering hint accepted by
// AtomicPtr operations.
type MemOrder = atomicptr.MemOrder

// Memory-ordering hints. Go's sync/atomic has a single strength; these
// document intent per call site.
const (
	SeqCst  = atomicptr.SeqCst
	Relaxed = atomicptr.Relaxed
	Acquire = atomicptr.Acquire
	Release = atomicptr.Release
	AcqRel  = atomicptr.AcqRel
)

// NewAtomicPtr returns an AtomicPtr owning v. v may be nil.
func NewAtomicPtr[T any](v *T) *AtomicPtr[T] {
	return atomicptr.New(v)
}

// SeqlockObject is a sequence-lock snapshot container for flat values.
type SeqlockObject[T any] = seqlock.Object[T]

// NewSeqlockObject returns a SeqlockObject holding the zero value of T.
// Panics if T contains pointers or internal references.
func NewSeqlockObject[T any]() *SeqlockObject[T] {
	return seqlock.NewObject[T]()
}

// NewSeqlockObjectWith returns a SeqlockObject holding v.
func NewSeqlockObjectWith[T any](v T) *SeqlockObject[T] {
	return seqlock.NewObjectWith(v)
}

// ReclaimObject is an epoch-tracked reader/writer container with
// deferred, explicitly scheduled reclamation.
type ReclaimObject[T any] = reclaim.Object[T]

// ReclaimReader is a registered reader handle for a ReclaimObject.
type ReclaimReader[T any] = reclaim.Reader[T]

// ReadAccess is an open scoped read access to a ReclaimObject.
type ReadAccess[T any] = reclaim.ReadAccess[T]

// WriteAccess is a scoped write handle for a ReclaimObject.
type WriteAccess[T any] = reclaim.WriteAccess[T]

// NewReclaimObject returns a ReclaimObject holding the zero value of T.
func NewReclaimObject[T any]() *ReclaimObject[T] {
	return reclaim.NewObject[T]()
}

// NewReclaimObjectWith returns a ReclaimObject holding v.
func NewReclaimObjectWith[T any](v T) *ReclaimObject[T] {
	return reclaim.NewObjectWith(v)
}

// ReclaimOnWriteObject is the write-blocking, allocation-free variant
// of ReclaimObject.
type ReclaimOnWriteObject[T any] = reclaim.OnWriteObject[T]

// ReclaimOnWriteReader is a registered reader handle for a
// ReclaimOnWriteObject.
type ReclaimOnWriteReader[T any] = reclaim.OnWriteReader[T]

// OnWriteReadAccess is an open scoped read access to a
// ReclaimOnWriteObject.
type OnWriteReadAccess[T any] = reclaim.OnWriteReadAccess[T]

// OnWriteWriteAccess is a scoped write handle for a
// ReclaimOnWriteObject. It holds the writer lock until Publish.
type OnWriteWriteAccess[T any] = reclaim.OnWriteWriteAccess[T]

// NewReclaimOnWriteObject returns a ReclaimOnWriteObject holding the
// zero value of T.
func NewReclaimOnWriteObject[T any]() *ReclaimOnWriteObject[T] {
	return reclaim.NewOnWriteObject[T]()
}

// NewReclaimOnWriteObjectWith returns a ReclaimOnWriteObject holding v.
func NewReclaimOnWriteObjectWith[T any](v T) *ReclaimOnWriteObject[T] {
	return reclaim.NewOnWriteObjectWith(v)
}
