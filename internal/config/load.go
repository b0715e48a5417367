package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclFile is the top-level structure of a config file for decoding. Every
// field is optional; missing ones keep their default.
type hclFile struct {
	Port         *int    `hcl:"port,optional"`
	PublicURL    *string `hcl:"public_url,optional"`
	DefaultDisks *int    `hcl:"default_disks,optional"`
	MoveDelay    *string `hcl:"move_delay,optional"`
	MaxMembers   *int    `hcl:"max_members,optional"`
	Log          *hclLog `hcl:"log,block"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
	File   *string `hcl:"file,optional"`
}

// Load reads an HCL config file and applies it over Default.
func Load(path string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file, path)
}

// Parse is like Load for an in-memory file.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, filename string) (Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := Default()
	set(&cfg.Port, parsed.Port)
	set(&cfg.PublicURL, parsed.PublicURL)
	set(&cfg.DefaultDisks, parsed.DefaultDisks)
	set(&cfg.MaxMembers, parsed.MaxMembers)
	if parsed.MoveDelay != nil {
		d, err := time.ParseDuration(*parsed.MoveDelay)
		if err != nil {
			return Config{}, fmt.Errorf("%s: move_delay: %w", filename, err)
		}
		cfg.MoveDelay = d
	}
	if parsed.Log != nil {
		set(&cfg.Log.Level, parsed.Log.Level)
		set(&cfg.Log.Format, parsed.Log.Format)
		set(&cfg.Log.File, parsed.Log.File)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
