package protocol

import "hanoi/internal/engine"

// Message types: Server → Client
const (
	MsgRoomUpdate = "room_update"
	MsgState      = "state"
	MsgEvent      = "event"
	MsgSolved     = "solved"
	MsgError      = "error"
)

// Message types: Client → Server
const (
	MsgJoin      = "join"
	MsgNewGame   = "new_game"
	MsgAutoSolve = "auto_solve"
	MsgStopSolve = "stop_solve"
	// Manual moves use the same names as engine ActionType
	MsgLift   = string(engine.ActionLift)
	MsgDrop   = string(engine.ActionDrop)
	MsgCancel = string(engine.ActionCancel)
	MsgMove   = string(engine.ActionMove)
)

// Error codes carried by ErrorMsg.
const (
	CodeInvalidDiskCount = "invalid_disk_count"
	CodeIllegalMove      = "illegal_move"
	CodeBadRequest       = "bad_request"
)

// RoomUpdate is sent to all clients when room membership changes.
type RoomUpdate struct {
	RoomID  string       `json:"room_id"`
	Members []RoomMember `json:"members"`
}

type RoomMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JoinMsg is sent by a player to put a name on their connection.
type JoinMsg struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
}

// GameMsg starts a game, by hand or with the solver, with the given number
// of disks.
type GameMsg struct {
	Disks int `json:"disks"`
}

// PegMsg carries the peg for lift and drop. Peg -1 is a drop off the board.
type PegMsg struct {
	Peg int `json:"peg"`
}

// MoveMsg moves the top disk of From onto To.
type MoveMsg struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SolvedMsg is broadcast once when the puzzle is solved.
type SolvedMsg struct {
	Moves    int  `json:"moves"`
	Minimum  int  `json:"minimum"`
	BySolver bool `json:"by_solver"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
