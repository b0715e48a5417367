package engine

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidDiskCount = errors.New("invalid disk count")
	ErrIllegalMove      = errors.New("illegal move")
	ErrSolveCancelled   = errors.New("solve cancelled")
)

// Engine holds the board of one game session. It is safe for concurrent use:
// every mutation happens under a single lock, so moves never interleave.
type Engine struct {
	mu     sync.Mutex
	config Config

	pegs  [PegCount]Peg
	disks int
	moves int
	phase Phase
	held  *Held

	// gen advances on every restart. A solver run only commits moves while
	// the generation it started with is current.
	gen uint64
}

// New creates an idle engine. Call Initialize or AutoSolve to start a game.
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &Engine{config: config}, nil
}

// Config returns the rules the engine was created with.
func (e *Engine) Config() Config {
	return e.config
}

// Initialize starts a new game with n disks stacked on the source peg. Any
// solver run in flight stops issuing moves. On error the state is unchanged.
func (e *Engine) Initialize(n int) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialize(n)
}

func (e *Engine) initialize(n int) (Event, error) {
	if n < e.config.MinDisks || n > e.config.MaxDisks {
		return Event{}, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidDiskCount, n, e.config.MinDisks, e.config.MaxDisks)
	}

	e.pegs = [PegCount]Peg{}
	for rank := n - 1; rank >= 0; rank-- {
		e.pegs[e.config.Source].push(rank)
	}
	e.disks = n
	e.moves = 0
	e.held = nil
	e.gen++
	e.phase = PhasePlaying

	return e.event(EventGameStarted, nil, false), nil
}

// IsLegalMove reports whether disk, currently the top of source, may be moved
// onto target. A move onto the same peg is never legal.
func (e *Engine) IsLegalMove(disk, source, target int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isLegal(disk, source, target)
}

func (e *Engine) isLegal(disk, source, target int) bool {
	if !validPeg(source) || !validPeg(target) || source == target {
		return false
	}
	top, ok := e.pegs[source].Top()
	if !ok || top != disk {
		return false
	}
	return e.pegs[target].Accepts(disk)
}

// CommitMove moves the top disk of source onto target and counts the move.
func (e *Engine) CommitMove(source, target int) ([]Event, error) {
	return e.manual(func() ([]Event, error) {
		return e.commit(source, target, false)
	})
}

// Lift takes the top disk of peg off the board for an interactive drag.
func (e *Engine) Lift(peg int) ([]Event, error) {
	return e.manual(func() ([]Event, error) {
		return e.lift(peg)
	})
}

// Drop releases the held disk over target. A legal drop commits a move; any
// other target, including one off the board, puts the disk back.
func (e *Engine) Drop(target int) ([]Event, error) {
	return e.manual(func() ([]Event, error) {
		return e.drop(target)
	})
}

// RevertMove returns the held disk to the peg it was lifted from. It is not a
// move: MoveCount does not change.
func (e *Engine) RevertMove(disk, originalPeg int) ([]Event, error) {
	return e.manual(func() ([]Event, error) {
		return e.revert(disk, originalPeg)
	})
}

// Cancel puts the held disk back on the peg it was lifted from.
func (e *Engine) Cancel() ([]Event, error) {
	return e.manual(e.cancel)
}

func (e *Engine) cancel() ([]Event, error) {
	if e.held == nil {
		return nil, fmt.Errorf("%w: no disk is held", ErrIllegalMove)
	}
	return e.revert(e.held.Disk, e.held.From)
}

// Apply is the single entry point for manual actions.
func (e *Engine) Apply(action Action) ([]Event, error) {
	return e.manual(func() ([]Event, error) {
		switch action.Type {
		case ActionLift:
			return e.lift(action.Peg)
		case ActionDrop:
			return e.drop(action.Peg)
		case ActionCancel:
			return e.cancel()
		case ActionMove:
			return e.commit(action.From, action.To, false)
		default:
			return nil, fmt.Errorf("%w: unknown action %q", ErrIllegalMove, action.Type)
		}
	})
}

// manual runs f under the lock if the session accepts manual input.
func (e *Engine) manual(f func() ([]Event, error)) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case PhaseIdle:
		return nil, fmt.Errorf("%w: no game in progress", ErrIllegalMove)
	case PhaseAutoSolving:
		return nil, fmt.Errorf("%w: auto-solver is running", ErrIllegalMove)
	case PhaseSolved:
		return nil, fmt.Errorf("%w: puzzle already solved", ErrIllegalMove)
	}
	return f()
}

func (e *Engine) commit(source, target int, solver bool) ([]Event, error) {
	if e.held != nil {
		return nil, fmt.Errorf("%w: disk %d is being dragged", ErrIllegalMove, e.held.Disk)
	}
	if !validPeg(source) || !validPeg(target) {
		return nil, fmt.Errorf("%w: peg out of range (%d -> %d)", ErrIllegalMove, source, target)
	}
	top, ok := e.pegs[source].Top()
	if !ok {
		return nil, fmt.Errorf("%w: peg %d is empty", ErrIllegalMove, source)
	}
	if !e.isLegal(top, source, target) {
		return nil, fmt.Errorf("%w: disk %d cannot go from peg %d to peg %d", ErrIllegalMove, top, source, target)
	}

	e.pegs[source].pop()
	e.pegs[target].push(top)
	return e.place(Move{From: source, To: target, Disk: top}, solver), nil
}

// place counts a move that has just landed and checks for the win.
func (e *Engine) place(m Move, solver bool) []Event {
	e.moves++
	solved := e.solved()
	if solved {
		e.phase = PhaseSolved
	}
	events := []Event{e.event(EventDiskMoved, &m, solver)}
	if solved {
		events = append(events, e.event(EventSolved, nil, solver))
	}
	return events
}

func (e *Engine) lift(peg int) ([]Event, error) {
	if e.held != nil {
		return nil, fmt.Errorf("%w: already holding disk %d", ErrIllegalMove, e.held.Disk)
	}
	if !validPeg(peg) {
		return nil, fmt.Errorf("%w: peg %d out of range", ErrIllegalMove, peg)
	}
	if e.pegs[peg].Empty() {
		return nil, fmt.Errorf("%w: peg %d is empty", ErrIllegalMove, peg)
	}
	disk := e.pegs[peg].pop()
	e.held = &Held{Disk: disk, From: peg}
	return []Event{e.event(EventDiskLifted, &Move{From: peg, To: peg, Disk: disk}, false)}, nil
}

func (e *Engine) drop(target int) ([]Event, error) {
	if e.held == nil {
		return nil, fmt.Errorf("%w: no disk is held", ErrIllegalMove)
	}
	h := *e.held
	if !validPeg(target) || target == h.From || !e.pegs[target].Accepts(h.Disk) {
		return e.revert(h.Disk, h.From)
	}
	e.held = nil
	e.pegs[target].push(h.Disk)
	return e.place(Move{From: h.From, To: target, Disk: h.Disk}, false), nil
}

func (e *Engine) revert(disk, peg int) ([]Event, error) {
	if e.held == nil {
		return nil, fmt.Errorf("%w: no disk is held", ErrIllegalMove)
	}
	if e.held.Disk != disk {
		return nil, fmt.Errorf("%w: disk %d is not held", ErrIllegalMove, disk)
	}
	if e.held.From != peg {
		return nil, fmt.Errorf("%w: disk %d came from peg %d, not %d", ErrIllegalMove, disk, e.held.From, peg)
	}
	e.held = nil
	e.pegs[peg].push(disk)
	return []Event{e.event(EventMoveReverted, &Move{From: peg, To: peg, Disk: disk}, false)}, nil
}

// AutoSolve restarts the game with n disks and hands the board to the solver.
// Any earlier run stops. The returned Run commits the moves as it is iterated.
func (e *Engine) AutoSolve(n int) (*Run, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.initialize(n); err != nil {
		return nil, err
	}
	e.phase = PhaseAutoSolving
	return &Run{
		engine:  e,
		gen:     e.gen,
		disks:   n,
		started: e.event(EventSolveStarted, nil, true),
	}, nil
}

// Stop halts the running solver and returns the board, as it stands, to
// manual play. ok is false when no solver is running.
func (e *Engine) Stop() (ev Event, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stop(e.gen)
}

func (e *Engine) stop(gen uint64) (Event, bool) {
	if e.phase != PhaseAutoSolving || e.gen != gen {
		return Event{}, false
	}
	e.gen++
	e.phase = PhasePlaying
	return e.event(EventSolveStopped, nil, true), true
}

// step commits one solver move if the run that produced it is still current.
func (e *Engine) step(gen uint64, m Move) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen || e.phase != PhaseAutoSolving {
		return nil, ErrSolveCancelled
	}
	if !e.isLegal(m.Disk, m.From, m.To) {
		return nil, fmt.Errorf("%w: solver move of disk %d from peg %d to peg %d", ErrIllegalMove, m.Disk, m.From, m.To)
	}
	return e.commit(m.From, m.To, true)
}

// IsSolved reports whether the source peg is empty and every disk sits on
// the target peg.
func (e *Engine) IsSolved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.solved()
}

func (e *Engine) solved() bool {
	if e.phase == PhaseIdle || e.disks == 0 {
		return false
	}
	return e.pegs[e.config.Source].Empty() && e.pegs[e.config.Target].Len() == e.disks
}

func (e *Engine) MoveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Disks returns the number of disks in the current game, 0 when idle.
func (e *Engine) Disks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disks
}

// Held returns the disk currently lifted by a drag, if any.
func (e *Engine) Held() (Held, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.held == nil {
		return Held{}, false
	}
	return *e.held, true
}

// Pegs returns the ranks on every peg, bottom first.
func (e *Engine) Pegs() [PegCount][]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pegsCopy()
}

func (e *Engine) pegsCopy() [PegCount][]int {
	var out [PegCount][]int
	for i := range e.pegs {
		out[i] = e.pegs[i].Disks()
	}
	return out
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Pegs:       e.pegsCopy(),
		Disks:      e.disks,
		MoveCount:  e.moves,
		Minimum:    MinimumMoves(e.disks),
		Phase:      e.phase,
		Target:     e.config.Target,
		Generation: e.gen,
	}
	if e.held != nil {
		h := *e.held
		s.Held = &h
	}
	return s
}

func (e *Engine) event(typ EventType, m *Move, solver bool) Event {
	return Event{Type: typ, Move: m, Solver: solver, Snapshot: e.snapshot()}
}
