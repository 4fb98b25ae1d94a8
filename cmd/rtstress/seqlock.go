// seqlock.go implements the 'rtstress seqlock' command.
package main

import (
	"flag"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/rtsync/rt"
)

// triple is the stress value: all fields derive from a single counter,
// so any torn read is detectable as a broken field relation.
type triple struct {
	A, B, C uint64 // invariant: B == 2*A, C == 3*A
}

func seqlockCommand(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("seqlock", flag.ExitOnError)
	d := fs.Duration("d", 5*time.Second, "scenario duration")
	readers := fs.Int("readers", 4, "reader goroutines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return runSeqlock(log, *d, *readers)
}

// runSeqlock runs one writer storing lockstep triples against the
// given number of readers validating every load. Property checked:
// every successful load is some previously stored value in full,
// never a mixture.
func runSeqlock(log zerolog.Logger, d time.Duration, readers int) error {
	obj := rt.NewSeqlockObjectWith(triple{A: 1, B: 2, C: 3})

	var stop atomic.Bool
	time.AfterFunc(d, func() { stop.Store(true) })

	var stores, loads, failedTries atomic.Uint64

	var g errgroup.Group

	g.Go(func() error {
		n := uint64(0)
		for i := uint64(2); !stop.Load(); i++ {
			obj.Store(triple{A: i, B: 2 * i, C: 3 * i})
			n++
		}
		stores.Add(n)
		return nil
	})

	for r := 0; r < readers; r++ {
		g.Go(func() error {
			n, failed := uint64(0), uint64(0)
			for !stop.Load() {
				v, ok := obj.TryLoad()
				if !ok {
					failed++
					continue
				}
				n++
				if v.B != 2*v.A || v.C != 3*v.A {
					return fmt.Errorf("torn read: %+v", v)
				}
			}
			loads.Add(n)
			failedTries.Add(failed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().
		Str("scenario", "seqlock").
		Dur("duration", d).
		Int("readers", readers).
		Uint64("stores", stores.Load()).
		Uint64("loads_ok", loads.Load()).
		Uint64("loads_retried", failedTries.Load()).
		Msg("no torn reads observed")
	return nil
}
