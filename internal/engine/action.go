package engine

// ActionType identifies manual actions sent to Engine.Apply.
type ActionType string

const (
	ActionLift   ActionType = "lift"   // pick up the top disk of Peg
	ActionDrop   ActionType = "drop"   // release the held disk over Peg
	ActionCancel ActionType = "cancel" // put the held disk back where it came from
	ActionMove   ActionType = "move"   // move the top disk of From onto To
)

// Action is a manual input.
type Action struct {
	Type ActionType `json:"type"`
	// Params depend on Type:
	// lift, drop: Peg
	// move: From, To
	Peg  int `json:"peg,omitempty"`
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventGameStarted  EventType = "game_started"
	EventDiskLifted   EventType = "disk_lifted"
	EventDiskMoved    EventType = "disk_moved"
	EventMoveReverted EventType = "move_reverted"
	EventSolveStarted EventType = "solve_started"
	EventSolveStopped EventType = "solve_stopped"
	EventSolved       EventType = "solved"
)

// Move is one disk transfer between pegs.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
	Disk int `json:"disk"`
}

// Held is a disk lifted off the board by an interactive drag.
type Held struct {
	Disk int `json:"disk"`
	From int `json:"from"`
}

// Event is emitted by the engine after state changes. Snapshot is the board
// right after the change.
type Event struct {
	Type     EventType `json:"type"`
	Move     *Move     `json:"move,omitempty"`
	Solver   bool      `json:"solver,omitempty"`
	Snapshot Snapshot  `json:"snapshot"`
}

// Snapshot is a copy of the engine state that is safe to share.
type Snapshot struct {
	Pegs       [PegCount][]int `json:"pegs"`
	Disks      int             `json:"disks"`
	MoveCount  int             `json:"move_count"`
	Minimum    int             `json:"minimum"`
	Phase      Phase           `json:"phase"`
	Target     int             `json:"target"`
	Held       *Held           `json:"held,omitempty"`
	Generation uint64          `json:"generation"`
}
