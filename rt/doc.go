// Package rt is the public API of rtsync: low-level synchronization
// primitives for real-time-safe Go.
//
// rtsync targets code that shares mutable state with a goroutine that
// has a deadline — an audio callback, a control loop, a trading hot
// path — where that goroutine must never block on a kernel primitive,
// wait on a slower thread, or trigger memory management. Each
// primitive makes a precise non-blocking guarantee (wait-free or
// lock-free, see below) and confines any unavoidable blocking to the
// non-real-time side.
//
// # Primitives
//
//   - [SpinMutex]: mutual exclusion with wait-free TryLock/Unlock and
//     a progressively backed-off Lock. A drop-in sync.Locker.
//   - [Wait]: the progressive-backoff predicate wait the lock is built
//     on, usable directly.
//   - [AtomicPtr]: a wait-free atomic owner of a single heap value;
//     load/exchange/compare-exchange transfer ownership, not just an
//     address.
//   - [SeqlockObject]: a sequence-lock snapshot container for small
//     flat values. Wait-free single-writer Store, wait-free TryLoad,
//     bounded-retry Load, torn reads impossible.
//   - [ReclaimObject]: a multi-reader multi-writer container with
//     always-wait-free readers. Overwritten values go to a zombie list
//     and are destroyed by an explicit [ReclaimObject.Reclaim] call on
//     the caller's schedule; writers never wait on readers.
//   - [ReclaimOnWriteObject]: same reader contract over a fixed
//     two-slot buffer; a publish blocks the writer until the displaced
//     slot is unreferenced. No allocation, no reclaim call, but a slow
//     reader stalls writers.
//
// # What is safe on the real-time thread
//
// Wait-free (bounded own-steps regardless of other threads):
// SpinMutex.TryLock/Unlock, AtomicPtr operations, SeqlockObject
// Store/TryLoad, opening and closing read accesses, reading through
// them.
//
// Blocking (keep off the deadline path): SpinMutex.Lock (spins,
// yields, never parks), SeqlockObject.Load's retry loop (bounded by
// writer activity), ReclaimObject.Update (allocates),
// ReclaimOnWriteObject updates (wait for readers), Reclaim (bounded by
// zombie count).
//
// None of the blocking operations take a timeout or context; a caller
// that needs a bounded wait layers it externally, e.g. by retrying
// TryLock against a deadline or folding a cancellation flag into the
// predicate passed to [Wait].
//
// # Epoch-based reclamation
//
// The reclaim containers track readers with per-instance epochs, close
// in spirit to RCU but per-object and explicitly scheduled: every
// overwrite retires the old value at a strictly increasing epoch; a
// read access pins the epoch it started at; retired values are
// destroyed (or slots reused) only when no reader pins an epoch at or
// below the retirement epoch. A read access opened before a publish
// therefore observes the pre-publish value for its whole scope.
//
// All state is per-instance. There is no global reclamation domain, no
// background goroutine, and no hidden singleton.
//
// # Project
//
// Repository: https://github.com/kolkov/rtsync
//
// Documentation: https://pkg.go.dev/github.com/kolkov/rtsync/rt
package rt
