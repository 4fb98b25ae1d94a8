//go:build ignore
// +build ignore

// This tool measures the cost of one short pause versus one long pause
// on the current machine, to sanity-check the per-architecture stage
// repetition counts used by the progressive backoff.
// Run with: go run tools/calibrate_backoff.go
package main

import (
	"fmt"
	"runtime"
	"time"
)

const samples = 1 << 20

func main() {
	fmt.Printf("GOOS/GOARCH: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// Timer resolution floor: an empty loop of the same shape.
	start := time.Now()
	for i := 0; i < samples; i++ {
	}
	empty := time.Since(start)

	start = time.Now()
	for i := 0; i < samples; i++ {
		runtime.Gosched()
	}
	gosched := time.Since(start)

	perEmpty := float64(empty.Nanoseconds()) / samples
	perGosched := float64(gosched.Nanoseconds()) / samples

	fmt.Printf("empty loop iteration:  %8.2f ns\n", perEmpty)
	fmt.Printf("runtime.Gosched call:  %8.2f ns\n", perGosched)
	fmt.Println()
	fmt.Println("The long-pause stage should wait on the order of 1us per")
	fmt.Println("iteration before it is worth yielding to the scheduler.")
	fmt.Println("Pick stage counts so that:")
	fmt.Println("  stage2Reps * shortPauseCost ≈ a few hundred ns")
	fmt.Println("  stage3Reps * longPauseCost  ≈ one scheduler quantum")
}
