// Copyright 2025 The rtsync Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64

package backoff

// Fallback stage parameters for architectures without a pause or
// wait-for-event hint (386, riscv64, wasm, ...).
//
// Stage 2 degenerates into stage 1 and the long stage performs a single
// recheck per round, so the final stage reduces to recheck + yield.
const (
	stage1Reps = 5
	stage2Reps = 0
	stage3Reps = 1
)

func pauseShort() {}

func pauseLong() {}
