package engine_test

import (
	"iter"

	"hanoi/internal/engine"
)

// iterPull steps run one event at a time.
func iterPull(run *engine.Run) (next func() (engine.Event, error), stop func()) {
	pull, stop := iter.Pull2(run.Steps())
	return func() (engine.Event, error) {
		ev, err, _ := pull()
		return ev, err
	}, stop
}
