// reclaim.go implements the 'rtstress reclaim' command.
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

func reclaimCommand(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("reclaim", flag.ExitOnError)
	d := fs.Duration("d", 5*time.Second, "scenario duration")
	readers := fs.Int("readers", 4, "reader goroutines")
	writers := fs.Int("writers", 2, "writer goroutines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return runReclaim(log, *d, *readers, *writers)
}

// runReclaim stresses the deferred-reclamation container. Properties
// checked: reader isolation (values observed through an open access
// never change), internal consistency of every observed value, and
// exact reclamation accounting — after all readers close, one final
// Reclaim must destroy every retired value exactly once.
func runReclaim(log zerolog.Logger, d time.Duration, readers, writers int) error {
	type pair struct {
		A, B uint64 // invariant: B == 2*A
	}

	obj := rt.NewReclaimObjectWith(pair{A: 1, B: 2})

	var reclaimed atomic.Uint64
	obj.OnReclaim(func(*pair) { reclaimed.Add(1) })

	var stop atomic.Bool
	time.AfterFunc(d, func() { stop.Store(true) })

	var updates, reads atomic.Uint64

	var g errgroup.Group

	for w := 0; w < writers; w++ {
		seed := uint64(w+1) << 32
		g.Go(func() error {
			n := uint64(0)
			for i := seed; !stop.Load(); i++ {
				obj.Update(pair{A: i, B: 2 * i})
				n++
			}
			updates.Add(n)
			return nil
		})
	}

	for r := 0; r < readers; r++ {
		g.Go(func() error {
			reader := obj.NewReader()
			defer reader.Close()

			n := uint64(0)
			for !stop.Load() {
				a := reader.ReadAccess()
				first := *a.Get()
				if first.B != 2*first.A {
					a.Close()
					return fmt.Errorf("inconsistent value observed: %+v", first)
				}
				// Reader isolation: the access must keep returning
				// the same value no matter how many updates land.
				if again := *a.Get(); again != first {
					a.Close()
					return fmt.Errorf("open access changed value: %+v -> %+v", first, again)
				}
				a.Close()
				n++
			}
			reads.Add(n)
			return nil
		})
	}

	// Reclaimer: ticks independently of writers, as the API demands.
	g.Go(func() error {
		for !stop.Load() {
			obj.Reclaim()
			time.Sleep(500 * time.Microsecond)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// All readers are closed: a final reclaim must account for every
	// update, each destroyed exactly once.
	obj.Reclaim()
	if got, want := reclaimed.Load(), updates.Load(); got != want {
		return fmt.Errorf("reclaimed %d values for %d updates", got, want)
	}

	log.Info().
		Str("scenario", "reclaim").
		Dur("duration", d).
		Int("readers", readers).
		Int("writers", writers).
		Uint64("updates", updates.Load()).
		Uint64("reads", reads.Load()).
		Uint64("reclaimed", reclaimed.Load()).
		Msg("reader isolation and reclamation accounting held")
	return nil
}
