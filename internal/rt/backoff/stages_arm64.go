// Copyright 2025 The rtsync Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build arm64

package backoff

// Stage repetition counts for arm64.
//
// arm64 has no short spin-wait hint comparable to amd64's PAUSE, so the
// middle stage is skipped (stage2Reps == 0). The long stage uses WFE,
// which pauses for roughly 1.3 us on Apple Silicon and armv8 phone
// cores when the event register is clear. 2x10 ns (= 20 ns) and
// 750x1333 ns (~ 1 ms) per stage round.
const (
	stage1Reps = 2
	stage2Reps = 0
	stage3Reps = 750
)

// pauseShort is unused on arm64 (stage2Reps == 0); it issues a YIELD so
// the symbol exists and stays harmless if the stage counts are retuned.
//
//go:noescape
//go:nosplit
func pauseShort()

// pauseLong executes a single WFE (wait for event).
//
// WFE stalls the core until the event register is set by an SEV, an
// interrupt, or a cleared exclusive monitor, giving a much longer and
// cheaper pause than a YIELD loop.
//
//go:noescape
//go:nosplit
func pauseLong()
