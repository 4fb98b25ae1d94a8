// Package reclaim implements epoch-tracked reader/writer containers
// with wait-free read access.
//
// Two containers share one reader/epoch protocol:
//
//   - Object defers destruction of overwritten values to an explicit,
//     externally scheduled Reclaim call. Writers allocate but never
//     wait on readers.
//   - OnWriteObject keeps a fixed two-slot buffer and reclaims on
//     publish: the writer blocks until no reader still references the
//     displaced slot. No allocation after construction, no Reclaim
//     call, but an update can stall for as long as the slowest reader
//     keeps its access open.
//
// The principle is close to RCU with two differences: reclamation is
// managed per instance, not in a process-global domain, and (for
// Object) it happens only when the user calls Reclaim, for example on
// a timer.
//
// Reads always go through a Reader handle. Opening a read access
// publishes the instance's current epoch into the reader's
// registration record; every retirement is tagged with a strictly
// increasing epoch; a value is freed or reused only once no registered
// reader has a nonzero published epoch at or below the value's
// retirement epoch. A read access opened strictly before a publish
// therefore observes the pre-publish value for its whole scope, and
// that value stays alive until the access closes.
package reclaim

import (
	"sync/atomic"

	"github.com/kolkov/rtsync/internal/rt/atomicptr"
	"github.com/kolkov/rtsync/internal/rt/spinlock"
)

// zombie is one retired value awaiting reclamation.
type zombie[T any] struct {
	epoch uint64 // epoch at retirement
	value *T
}

// Object stores a value of type T and provides concurrent read and
// write access to it. Multiple readers and multiple writers are
// supported; readers are always wait-free and never blocked by
// writers; writers may briefly block other writers on internal
// bookkeeping locks, never on readers.
//
// Overwritten values are moved to a zombie list. Entries no longer
// referenced by any reader are destroyed by Reclaim, which must be
// invoked explicitly on the caller's own schedule; nothing reclaims
// implicitly. Memory grows without bound between Reclaim calls if
// writes outpace reclamation.
//
// An Object must not be copied after first use.
type Object[T any] struct {
	value *atomicptr.Ptr[T]

	readers readerSet

	zombiesMu spinlock.Mutex
	zombies   []zombie[T]

	// epoch starts at 1 so that 0 can mean "no open access" in the
	// reader records. Incremented once per retirement; 64 bits do not
	// overflow within any realistic instance lifetime.
	epoch atomic.Uint64

	// onReclaim, if set, observes every destroyed value.
	onReclaim func(*T)
}

// NewObject returns an Object holding the zero value of T.
func NewObject[T any]() *Object[T] {
	var zero T
	return NewObjectWith(zero)
}

// NewObjectWith returns an Object holding v.
func NewObjectWith[T any](v T) *Object[T] {
	o := &Object[T]{value: atomicptr.New(&v)}
	o.epoch.Store(1)
	return o
}

// OnReclaim installs a hook that is called for each value destroyed by
// Reclaim, before the value is released. Intended for tests and for
// callers that track lifetimes; the hook runs under the zombie-list
// lock and must be short and non-blocking.
//
// Must be called before the Object is shared between goroutines.
func (o *Object[T]) OnReclaim(f func(*T)) {
	o.onReclaim = f
}

// NewReader registers and returns a reader handle. The handle must be
// closed when no longer needed so its registration record stops
// participating in reclamation scans.
func (o *Object[T]) NewReader() *Reader[T] {
	r := &Reader[T]{obj: o, rec: new(readerRecord)}
	o.readers.register(r.rec)
	return r
}

// Update replaces the current value with v. The displaced value is
// retired onto the zombie list, tagged with the current epoch.
//
// Update allocates and is therefore not wait-free. Concurrent writers
// serialize only around the pointer exchange and list append, not
// around each other's allocation. No state changes before the new
// value exists, so an allocation failure (a fatal error in Go) leaves
// the old value installed and reachable.
func (o *Object[T]) Update(v T) {
	o.exchangeAndRetire(&v)
}

// WriteAccess returns a write handle holding an eager copy of the
// current value for in-place mutation. Publish atomically installs the
// mutated copy and retires the displaced value, exactly like Update.
//
// Concurrent write handles each hold their own copy; last Publish
// wins.
func (o *Object[T]) WriteAccess() *WriteAccess[T] {
	cur := *o.value.Load() // safe: values are only freed by Reclaim, and the GC backstops even that
	return &WriteAccess[T]{obj: o, v: &cur}
}

// Reclaim destroys every zombie-list entry that no registered reader
// could still reference, i.e. every entry whose retirement epoch has
// no reader with a nonzero published epoch at or below it.
//
// Reclaim never blocks readers, and blocks writers only for the
// duration of the list scan. It must be called on an independent
// schedule (a timer, a maintenance thread); the containers never call
// it themselves.
func (o *Object[T]) Reclaim() {
	o.zombiesMu.Lock()
	defer o.zombiesMu.Unlock()

	kept := o.zombies[:0]
	for _, z := range o.zombies {
		if o.readers.pinned(z.epoch) {
			kept = append(kept, z)
			continue
		}
		if o.onReclaim != nil {
			o.onReclaim(z.value)
		}
	}
	// Clear the vacated tail so dropped values are not kept live by
	// the backing array.
	for i := len(kept); i < len(o.zombies); i++ {
		o.zombies[i] = zombie[T]{}
	}
	o.zombies = kept
}

// exchangeAndRetire installs newValue and moves the displaced value to
// the zombie list, tagged with the pre-increment epoch.
func (o *Object[T]) exchangeAndRetire(newValue *T) {
	old := o.value.Exchange(newValue)

	o.zombiesMu.Lock()
	retired := o.epoch.Add(1) - 1
	o.zombies = append(o.zombies, zombie[T]{epoch: retired, value: old})
	o.zombiesMu.Unlock()
}

// Reader is a registered reader handle for an Object. A Reader is not
// safe for concurrent use by multiple goroutines; create one per
// reading goroutine.
type Reader[T any] struct {
	obj *Object[T]
	rec *readerRecord
}

// ReadAccess opens a wait-free read access to the current value. The
// returned access must be closed on every path; the referenced value
// is guaranteed alive until then.
func (r *Reader[T]) ReadAccess() ReadAccess[T] {
	// Publish the epoch pin first: any retirement that happens after
	// the value load below gets an epoch >= the pin, so the reclaim
	// condition cannot free what we are about to read.
	r.rec.beginAccess(r.obj.epoch.Load())
	return ReadAccess[T]{rec: r.rec, v: r.obj.value.Load()}
}

// Value returns a copy of the current value; convenience for a
// ReadAccess that only copies. Wait-free as long as copying T is.
func (r *Reader[T]) Value() T {
	a := r.ReadAccess()
	defer a.Close()
	return *a.Get()
}

// Close unregisters the reader. The Reader must have no open read
// access and must not be used afterwards.
func (r *Reader[T]) Close() {
	if r.rec.minEpoch.Load() != 0 {
		panic("rtsync: reclaim: reader closed with an open read access")
	}
	r.obj.readers.unregister(r.rec)
}

// ReadAccess is an open, scoped read access to an Object's value.
type ReadAccess[T any] struct {
	rec *readerRecord
	v   *T
}

// Get returns the accessed value. The pointer is borrowed: it is valid
// until Close and must not be retained beyond it.
func (a ReadAccess[T]) Get() *T {
	return a.v
}

// Close ends the access, allowing the value to be reclaimed once
// retired. Exactly one Close per ReadAccess, on every exit path.
func (a ReadAccess[T]) Close() {
	a.rec.endAccess()
}

// WriteAccess is a scoped write handle holding a private copy of the
// value. Mutate through Get, then Publish exactly once.
type WriteAccess[T any] struct {
	obj *Object[T]
	v   *T
}

// Get returns the mutable private copy.
func (w *WriteAccess[T]) Get() *T {
	if w.v == nil {
		panic("rtsync: reclaim: write access used after Publish")
	}
	return w.v
}

// Publish atomically installs the mutated copy and retires the
// previous value. The handle is dead afterwards.
func (w *WriteAccess[T]) Publish() {
	if w.v == nil {
		panic("rtsync: reclaim: write access published twice")
	}
	v := w.v
	w.v = nil
	w.obj.exchangeAndRetire(v)
}
