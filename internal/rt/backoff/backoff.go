// Package backoff implements progressive-backoff waiting for spin loops.
//
// Wait re-evaluates a caller-supplied predicate, escalating from tight
// rechecks through CPU pause hints to scheduler yields as the wait grows.
// The escalation keeps latency low when the predicate flips quickly
// (typical for a real-time thread handing off work every few ms) while
// not burning a full core when it does not.
//
// The stage parameters are architecture-specific and selected at build
// time (see stages_amd64.go, stages_arm64.go, stages_generic.go):
//
//   - amd64: three stages built around the PAUSE spin-wait hint.
//     Approx. 5x5 ns, 10x40 ns, and 3000x350 ns (~1 ms) per stage round
//     on a ~3 GHz part.
//   - arm64: two stages. There is no cheap short-pause instruction, so
//     the middle stage is skipped; the long stage uses the wait-for-event
//     hint (~1.3 us per WFE when the event register is clear).
//   - everything else: tight rechecks alternated with scheduler yields.
//
// Wait never allocates, never parks on a kernel primitive, and has no
// timeout or cancellation. Callers that need cancellation fold it into
// the predicate and make the predicate return true to bail out.
package backoff

import "runtime"

// Wait blocks until predicate returns true.
//
// The predicate is re-evaluated continuously with progressively longer
// pauses between rechecks. The final stage loops forever, alternating
// pause bursts with runtime.Gosched so other goroutines (including the
// one expected to flip the predicate) can make progress.
//
// The predicate must be safe to call repeatedly and should be cheap;
// it typically wraps a single atomic load.
func Wait(predicate func() bool) {
	// Stage 1: immediate rechecks.
	for i := 0; i < stage1Reps; i++ {
		if predicate() {
			return
		}
	}

	// Stage 2: rechecks separated by a short CPU pause.
	// Compiled out on architectures without one (stage2Reps == 0).
	for i := 0; i < stage2Reps; i++ {
		if predicate() {
			return
		}
		pauseShort()
	}

	// Stage 3: rechecks separated by a long pause, alternated with a
	// scheduler yield roughly every millisecond, forever.
	for {
		for i := 0; i < stage3Reps; i++ {
			if predicate() {
				return
			}
			pauseLong()
		}

		// Waiting longer than expected; let other goroutines recover.
		runtime.Gosched()
	}
}
