// Package atomicptr implements an atomic owning pointer: a wrapper
// around a single exclusively-owned heap allocation supporting
// wait-free atomic load, exchange and compare-exchange of ownership.
//
// The point of the type is to make atomic pointer swaps available to
// lock-free algorithms without giving up single-owner lifetime
// semantics. Go has no affine types, so ownership is a documented
// contract rather than a compiler-enforced one:
//
//   - a pointer returned by Exchange or a successful CompareExchange is
//     owned by the caller; nobody else will touch it again.
//   - a pointer passed into Exchange, or into CompareExchange that
//     succeeded, has had its ownership moved in; the caller must not
//     use it afterwards.
//   - a pointer returned by Load is NOT owned: it may dangle as soon as
//     a concurrent exchange hands the value to another goroutine that
//     drops it. It is only safe for identity comparison, unless the
//     caller knows by other means that the value is still live (the
//     epoch-tracked containers in internal/rt/reclaim provide exactly
//     that guarantee).
//
// There is no custom destruction hook: an owned value that is dropped
// simply becomes garbage.
package atomicptr

import "sync/atomic"

// Ptr is an atomic owner of at most one *T. The zero value owns nil.
// A Ptr must not be copied after first use.
type Ptr[T any] struct {
	p atomic.Pointer[T]
}

// New returns a Ptr owning v. v may be nil.
func New[T any](v *T) *Ptr[T] {
	p := new(Ptr[T])
	p.p.Store(v)
	return p
}

// Load returns the currently stored address. Wait-free.
//
// The returned pointer is not owned by the caller; see the package
// comment for when it may be dereferenced.
func (p *Ptr[T]) Load(order ...MemOrder) *T {
	return p.p.Load()
}

// Exchange atomically replaces the stored pointer with desired and
// returns the previously stored pointer, transferring its ownership to
// the caller. Wait-free.
func (p *Ptr[T]) Exchange(desired *T, order ...MemOrder) *T {
	return p.p.Swap(desired)
}

// CompareExchange atomically installs desired if the stored address
// equals *expected. Wait-free.
//
// On success it returns (previously stored pointer, true); ownership of
// desired has moved in and ownership of the returned pointer has moved
// out to the caller. On failure it updates *expected to a recently
// observed address and returns (nil, false); the caller retains
// ownership of desired.
func (p *Ptr[T]) CompareExchange(expected **T, desired *T, order ...MemOrder) (*T, bool) {
	old := *expected
	if p.p.CompareAndSwap(old, desired) {
		return old, true
	}
	*expected = p.p.Load()
	return nil, false
}

// CompareExchangeWeak is CompareExchange with a contract that permits
// spurious failure, for use in retry loops.
//
// Go's compare-and-swap has no weak form, so this is currently an alias
// for CompareExchange; callers should still write their loops as if it
// could fail spuriously.
func (p *Ptr[T]) CompareExchangeWeak(expected **T, desired *T, order ...MemOrder) (*T, bool) {
	return p.CompareExchange(expected, desired, order...)
}
