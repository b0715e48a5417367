package engine

import (
	"context"
	"time"
)

// Pace drives run to completion, handing every event to emit and waiting
// delay after each committed move so the sequence can be watched. A delay of
// zero drains the run immediately.
//
// If ctx is done first, Pace stops the run, which returns the board to manual
// play, and returns ctx.Err(). If the run is superseded by a restart it
// returns ErrSolveCancelled.
func Pace(ctx context.Context, run *Run, delay time.Duration, emit func(Event)) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for ev, err := range run.Steps() {
		if err != nil {
			return err
		}
		emit(ev)
		// The last move lands with the phase already Solved; nothing follows it.
		if ev.Type != EventDiskMoved || ev.Snapshot.Phase != PhaseAutoSolving {
			continue
		}
		if ctx.Err() != nil {
			return halt(ctx, run, emit)
		}
		if delay <= 0 {
			continue
		}

		if timer == nil {
			timer = time.NewTimer(delay)
		} else {
			timer.Reset(delay)
		}
		select {
		case <-ctx.Done():
			return halt(ctx, run, emit)
		case <-timer.C:
		}
	}
	return nil
}

func halt(ctx context.Context, run *Run, emit func(Event)) error {
	if ev, ok := run.Stop(); ok {
		emit(ev)
	}
	return ctx.Err()
}
