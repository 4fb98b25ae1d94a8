package reclaim

import (
	"sync/atomic"

	"github.com/kolkov/rtsync/internal/rt/backoff"
	"github.com/kolkov/rtsync/internal/rt/spinlock"
)

// OnWriteObject has the same reader protocol as Object, but reclaims
// on publish instead of via an explicit Reclaim call: storage is a
// fixed two-slot buffer, and after flipping the current slot the
// writer blocks (with progressive backoff) until no reader still
// references the displaced slot. Only then may the slot be reused.
//
// Compared to Object: no per-update allocation, no zombie list, no
// external reclamation schedule — but an update stalls for as long as
// the slowest reader keeps an access to the old slot open. Unsuitable
// when readers may block arbitrarily while a writer is time-critical.
//
// Readers remain wait-free and are never blocked by writers. Writers
// serialize with each other around the slot flip and the wait. A
// reader whose access opened after a publish pins a later epoch than
// the one that publish retired, so it never blocks that publish.
//
// The design deliberately waits through a single epoch transition
// before reusing a slot; the stress tests exercise the flip/pin race
// directly (see TestOnWriteObjectReaderIsolation).
//
// An OnWriteObject must not be copied after first use.
type OnWriteObject[T any] struct {
	slots   [2]T
	current atomic.Uint32 // index of the slot readers should use

	readers  readerSet
	writerMu spinlock.Mutex

	// epoch starts at 1; 0 means "no open access" in reader records.
	epoch atomic.Uint64
}

// NewOnWriteObject returns an OnWriteObject holding the zero value of T.
func NewOnWriteObject[T any]() *OnWriteObject[T] {
	var zero T
	return NewOnWriteObjectWith(zero)
}

// NewOnWriteObjectWith returns an OnWriteObject holding v. Both slots
// are initialized to v.
func NewOnWriteObjectWith[T any](v T) *OnWriteObject[T] {
	o := &OnWriteObject[T]{slots: [2]T{v, v}}
	o.epoch.Store(1)
	return o
}

// NewReader registers and returns a reader handle.
func (o *OnWriteObject[T]) NewReader() *OnWriteReader[T] {
	r := &OnWriteReader[T]{obj: o, rec: new(readerRecord)}
	o.readers.register(r.rec)
	return r
}

// Update replaces the current value with v.
//
// Update blocks until every reader that could still reference the
// displaced slot has closed its access. It never allocates.
func (o *OnWriteObject[T]) Update(v T) {
	o.writerMu.Lock()
	defer o.writerMu.Unlock()

	writeSlot := o.current.Load() ^ 1
	o.slots[writeSlot] = v
	o.publishAndWait(writeSlot)
}

// WriteAccess returns a write handle over the spare slot, seeded with
// a copy of the current value for in-place mutation. The handle holds
// the writer lock: Publish must be called exactly once, and it blocks
// like Update until the displaced slot is free of readers.
func (o *OnWriteObject[T]) WriteAccess() *OnWriteWriteAccess[T] {
	o.writerMu.Lock()
	writeSlot := o.current.Load() ^ 1
	o.slots[writeSlot] = o.slots[writeSlot^1]
	return &OnWriteWriteAccess[T]{obj: o, slot: writeSlot}
}

// publishAndWait flips the current slot, retires the displaced one at
// the current epoch, and waits until no reader pins the retired epoch.
// Callers hold writerMu.
func (o *OnWriteObject[T]) publishAndWait(writeSlot uint32) {
	o.current.Store(writeSlot)
	retired := o.epoch.Add(1) - 1

	backoff.Wait(func() bool {
		return !o.readers.pinned(retired)
	})
}

// OnWriteReader is a registered reader handle for an OnWriteObject.
// Not safe for concurrent use by multiple goroutines; create one per
// reading goroutine.
type OnWriteReader[T any] struct {
	obj *OnWriteObject[T]
	rec *readerRecord
}

// ReadAccess opens a wait-free read access to the current value. The
// access must be closed on every path; until then the accessed slot
// will not be reused by a writer.
func (r *OnWriteReader[T]) ReadAccess() OnWriteReadAccess[T] {
	// Pin the epoch before resolving the slot: a publish that flips
	// the slot after this point retires an epoch >= the pin, so the
	// writer waits for this access before reusing the slot we load.
	r.rec.beginAccess(r.obj.epoch.Load())
	return OnWriteReadAccess[T]{
		rec:  r.rec,
		obj:  r.obj,
		slot: r.obj.current.Load(),
	}
}

// Value returns a copy of the current value.
func (r *OnWriteReader[T]) Value() T {
	a := r.ReadAccess()
	defer a.Close()
	return *a.Get()
}

// Close unregisters the reader. The Reader must have no open read
// access and must not be used afterwards.
func (r *OnWriteReader[T]) Close() {
	if r.rec.minEpoch.Load() != 0 {
		panic("rtsync: reclaim: reader closed with an open read access")
	}
	r.obj.readers.unregister(r.rec)
}

// OnWriteReadAccess is an open, scoped read access to an
// OnWriteObject's current slot.
type OnWriteReadAccess[T any] struct {
	rec  *readerRecord
	obj  *OnWriteObject[T]
	slot uint32
}

// Get returns the accessed value. The pointer aliases the container's
// slot storage: it is read-only and valid until Close.
func (a OnWriteReadAccess[T]) Get() *T {
	return &a.obj.slots[a.slot]
}

// Close ends the access, allowing the slot to be reused by a later
// publish. Exactly one Close per access, on every exit path.
func (a OnWriteReadAccess[T]) Close() {
	a.rec.endAccess()
}

// OnWriteWriteAccess is a scoped write handle over the spare slot.
// It holds the writer lock from WriteAccess until Publish.
type OnWriteWriteAccess[T any] struct {
	obj  *OnWriteObject[T]
	slot uint32
	done bool
}

// Get returns the mutable spare-slot value.
func (w *OnWriteWriteAccess[T]) Get() *T {
	if w.done {
		panic("rtsync: reclaim: write access used after Publish")
	}
	return &w.obj.slots[w.slot]
}

// Publish flips the mutated slot in, waits for readers of the
// displaced slot, and releases the writer lock. The handle is dead
// afterwards.
func (w *OnWriteWriteAccess[T]) Publish() {
	if w.done {
		panic("rtsync: reclaim: write access published twice")
	}
	w.done = true
	w.obj.publishAndWait(w.slot)
	w.obj.writerMu.Unlock()
}
