// Copyright 2025 The rtsync Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package backoff

// Stage repetition counts for amd64.
//
// amd64 has the PAUSE spin-wait hint, so all three stages are used.
// The counts approximate 5x5 ns (= 25 ns), 10x40 ns (= 400 ns), and
// 3000x350 ns (~ 1 ms) per stage round when measured on a 2.9 GHz
// Intel i9. Re-measure with tools/calibrate_backoff.go when retuning.
const (
	stage1Reps = 5
	stage2Reps = 10
	stage3Reps = 3000
)

// pauseShort executes a single PAUSE instruction.
//
// PAUSE hints to the processor that this is a spin-wait loop, avoiding
// the memory-order-violation penalty on loop exit and reducing power
// draw of the spinning core. [Intel SDM, vol. 2B 4-235]
//
//go:noescape
//go:nosplit
func pauseShort()

// pauseLong executes a burst of ten PAUSE instructions.
//
// The burst is unrolled in assembly rather than looping over pauseShort
// so the pause density does not depend on call overhead.
//
//go:noescape
//go:nosplit
func pauseLong()
