// Package seqlock implements a sequence-lock snapshot container for
// small flat values.
//
// Object stores one value of a flat type T (no pointers anywhere in its
// layout) in an array of word-sized atomic cells guarded by a sequence
// counter. A writer bumps the counter to an odd value, stores the
// words, then bumps it back to even; a reader copies the words and
// trusts the copy only if the counter was even and unchanged across the
// copy. The counter is even when idle, odd mid-write, and advances by
// two per completed write.
//
// Store is wait-free; TryLoad is wait-free and may fail; Load retries
// TryLoad until it succeeds. Because every word travels through
// sync/atomic, a torn read can never be observed: a successful load
// returns some previously stored value in full (or the initial value in
// full), never a byte-level mixture.
//
// At most one goroutine may write concurrently; readers are unlimited.
// Concurrent writers must be serialized externally.
package seqlock

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// Object is a sequence-lock snapshot container for values of type T.
//
// T must be flat: built only from booleans, integers, floats, complex
// numbers, and arrays/structs thereof. Types containing pointers,
// strings, slices, maps, channels, funcs or interfaces are rejected at
// construction, because a byte-level copy of such a value could expose
// a torn or dangling internal reference.
type Object[T any] struct {
	seq atomic.Uintptr

	// data covers unsafe.Sizeof(T) rounded up to the word size. The
	// tail word, if any, is always stored zero-padded, so a reader
	// that observes it never sees uninitialized bytes.
	data []atomic.Uintptr

	size      uintptr // unsafe.Sizeof(T)
	fullWords uintptr // words fully covered by T
	tailBytes uintptr // bytes of T in the final partial word, 0 if none
}

// NewObject returns an Object holding the zero value of T.
//
// Panics if T is not flat.
func NewObject[T any]() *Object[T] {
	var zero T
	size := unsafe.Sizeof(zero)

	if typ := reflect.TypeOf(&zero).Elem(); !isFlat(typ) {
		panic(fmt.Sprintf("rtsync: seqlock: type %s is not flat (contains pointers or internal references)", typ))
	}

	o := &Object[T]{
		size:      size,
		fullWords: size / wordSize,
		tailBytes: size % wordSize,
	}
	o.data = make([]atomic.Uintptr, (size+wordSize-1)/wordSize)
	return o
}

// NewObjectWith returns an Object holding v.
//
// Panics if T is not flat.
func NewObjectWith[T any](v T) *Object[T] {
	o := NewObject[T]()
	o.Store(v)
	return o
}

// Store publishes v as the current value. Wait-free.
//
// Preconditions: no other Store is in progress (single writer).
func (o *Object[T]) Store(v T) {
	seq := o.seq.Load()

	// Odd: a write is in progress from here on.
	o.seq.Store(seq + 1)

	o.storeWords(unsafe.Pointer(&v))

	// Even again: the write is complete.
	o.seq.Store(seq + 2)
}

// TryLoad attempts to read a consistent snapshot of the current value.
// Wait-free; fails if a write was in progress or completed during the
// copy.
func (o *Object[T]) TryLoad() (T, bool) {
	var v T

	seq1 := o.seq.Load()
	if seq1&1 != 0 {
		return v, false
	}

	o.loadWords(unsafe.Pointer(&v))

	if o.seq.Load() != seq1 {
		var zero T
		return zero, false
	}
	return v, true
}

// Load returns a consistent snapshot of the current value, retrying
// TryLoad until it succeeds. The retry loop is tight by design: a
// conflicting write window is two atomic stores wide, so a dedicated
// backoff would cost more than the retry.
func (o *Object[T]) Load() T {
	for {
		if v, ok := o.TryLoad(); ok {
			return v
		}
	}
}
