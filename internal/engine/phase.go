package engine

import "fmt"

// Phase is the state of one game session.
type Phase int

const (
	PhaseIdle        Phase = iota // no game started yet
	PhasePlaying                  // accepting manual moves
	PhaseAutoSolving              // solver owns the board
	PhaseSolved                   // all disks on the target peg
)

var phaseNames = map[Phase]string{
	PhaseIdle:        "Idle",
	PhasePlaying:     "Playing",
	PhaseAutoSolving: "AutoSolving",
	PhaseSolved:      "Solved",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

// MarshalText lets phases appear by name in JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
