package engine

import "fmt"

// Config holds the rules for a game session.
type Config struct {
	MinDisks int
	MaxDisks int

	// Peg roles for the solver and the win check.
	Source    int
	Target    int
	Auxiliary int
}

func DefaultConfig() Config {
	return Config{
		MinDisks:  1,
		MaxDisks:  10,
		Source:    0,
		Target:    2,
		Auxiliary: 1,
	}
}

// Validate checks that the disk bounds make sense and the three peg roles are
// distinct pegs.
func (c Config) Validate() error {
	if c.MinDisks < 1 || c.MaxDisks < c.MinDisks {
		return fmt.Errorf("invalid disk bounds [%d, %d]", c.MinDisks, c.MaxDisks)
	}
	// Past this the move count overflows the solver's int arithmetic long
	// before anyone could watch it.
	if c.MaxDisks > 62 {
		return fmt.Errorf("max disks %d is too large", c.MaxDisks)
	}
	for _, p := range []int{c.Source, c.Target, c.Auxiliary} {
		if !validPeg(p) {
			return fmt.Errorf("peg %d out of range", p)
		}
	}
	if c.Source == c.Target || c.Source == c.Auxiliary || c.Target == c.Auxiliary {
		return fmt.Errorf("source, target and auxiliary pegs must differ")
	}
	return nil
}
