package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hanoi/internal/engine"
)

// Config holds all the necessary configuration for a server instance.
type Config struct {
	Port      int
	PublicURL string // base of QR join links; empty means the request host

	DefaultDisks int
	MoveDelay    time.Duration // pause between auto-solver moves
	MaxMembers   int           // per room, 0 for no limit

	Log LogConfig
}

type LogConfig struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	File   string // optional JSON log file, written in addition to stderr
}

// Default returns the configuration used when no file is given. The move
// delay matches a 12-frame, 30ms slide followed by an 80ms pause.
func Default() Config {
	return Config{
		Port:         8080,
		DefaultDisks: 3,
		MoveDelay:    440 * time.Millisecond,
		MaxMembers:   16,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	rules := engine.DefaultConfig()
	if c.DefaultDisks < rules.MinDisks || c.DefaultDisks > rules.MaxDisks {
		errs = append(errs, fmt.Errorf("default_disks %d not in [%d, %d]", c.DefaultDisks, rules.MinDisks, rules.MaxDisks))
	}
	if c.MoveDelay < 0 {
		errs = append(errs, fmt.Errorf("move_delay %s is negative", c.MoveDelay))
	}
	if c.MaxMembers < 0 {
		errs = append(errs, fmt.Errorf("max_members %d is negative", c.MaxMembers))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
