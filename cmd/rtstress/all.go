// all.go implements the 'rtstress all' command.
package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog"
)

func allCommand(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("all", flag.ExitOnError)
	d := fs.Duration("d", 5*time.Second, "duration per scenario")
	readers := fs.Int("readers", 4, "reader goroutines")
	writers := fs.Int("writers", 2, "writer goroutines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := runSeqlock(log, *d, *readers); err != nil {
		return err
	}
	if err := runReclaim(log, *d, *readers, *writers); err != nil {
		return err
	}
	if err := runOnWrite(log, *d, *readers, *writers); err != nil {
		return err
	}
	if err := runSpinlock(log, *d, 2*(*writers)+(*readers)); err != nil {
		return err
	}

	log.Info().Msg("all scenarios passed")
	return nil
}
