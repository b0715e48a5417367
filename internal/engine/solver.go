package engine

import (
	"iter"
	"slices"
)

// Solve yields the minimal move sequence that transfers n disks from source
// to target: Solve(n-1) onto auxiliary, the largest disk across, then
// Solve(n-1) back on top of it. It yields exactly 2^n - 1 moves.
func Solve(n, source, target, auxiliary int) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		solve(n, source, target, auxiliary, yield)
	}
}

func solve(n, source, target, auxiliary int, yield func(Move) bool) bool {
	if n <= 0 {
		return true
	}
	if !solve(n-1, source, auxiliary, target, yield) {
		return false
	}
	if !yield(Move{From: source, To: target, Disk: n - 1}) {
		return false
	}
	return solve(n-1, auxiliary, target, source, yield)
}

// Moves collects Solve into a slice.
func Moves(n, source, target, auxiliary int) []Move {
	return slices.Collect(Solve(n, source, target, auxiliary))
}

// MinimumMoves returns 2^n - 1, the length of the optimal solution.
func MinimumMoves(n int) int {
	if n <= 0 {
		return 0
	}
	return 1<<n - 1
}

// Run is one auto-solve session. Iterating Steps commits the solver's moves
// one at a time; nothing is committed ahead of the consumer.
type Run struct {
	engine  *Engine
	gen     uint64
	disks   int
	started Event
}

// Started is the solve_started event emitted when the run was created.
func (r *Run) Started() Event {
	return r.started
}

func (r *Run) Generation() uint64 {
	return r.gen
}

// Steps commits the next solver move each time the consumer asks for one and
// yields the resulting events: one disk_moved per move and a final solved.
// If the game was restarted or stopped since the run began, Steps yields
// ErrSolveCancelled once and ends without touching the board.
func (r *Run) Steps() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		cfg := r.engine.config
		for m := range Solve(r.disks, cfg.Source, cfg.Target, cfg.Auxiliary) {
			events, err := r.engine.step(r.gen, m)
			if err != nil {
				yield(Event{}, err)
				return
			}
			for _, ev := range events {
				if !yield(ev, nil) {
					return
				}
			}
		}
	}
}

// Stop ends this run if it is still the current one. A newer run is left
// alone.
func (r *Run) Stop() (Event, bool) {
	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()
	return r.engine.stop(r.gen)
}
