// Package config assembles the detector configuration from defaults, an
// optional YAML file and DEPTHDET_* environment variables. Command-line flags
// are applied last by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/depthdet/internal/logutil"
	"github.com/born-ml/depthdet/internal/model"
)

// Runtime holds execution settings that do not change the network.
type Runtime struct {
	// Threads bounds the CPU backend's worker pool. 0 uses every CPU.
	Threads int `yaml:"threads"`

	Debug bool `yaml:"debug"`
	Trace bool `yaml:"trace"`
}

// File is the layout of a depthdet YAML file.
//
//	model:
//	  classes: 80
//	  reg_max: 16
//	  variant: full
//	  input_size: 640
//	runtime:
//	  threads: 4
type File struct {
	Model   model.Config `yaml:"model"`
	Runtime Runtime      `yaml:"runtime"`
}

// Default returns the built-in settings.
func Default() File {
	return File{Model: model.DefaultConfig()}
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected; an
// empty document yields the defaults.
func Parse(data []byte) (File, error) {
	f := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return f, nil
}

// Load reads path (skipped when empty) and applies the environment. The
// result is not validated so that callers can layer flags on top first.
func Load(path string) (File, error) {
	f := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("read config: %w", err)
		}
		if f, err = Parse(data); err != nil {
			return File{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	f.ApplyEnv(os.LookupEnv)
	return f, nil
}

// Validate checks the model section and the runtime settings.
func (f File) Validate() error {
	if f.Runtime.Threads < 0 {
		return fmt.Errorf("%w: threads must not be negative, got %d", model.ErrInvalidConfig, f.Runtime.Threads)
	}
	return f.Model.Validate()
}

// Environment variables read by ApplyEnv.
const (
	EnvThreads = "DEPTHDET_THREADS"
	EnvDebug   = "DEPTHDET_DEBUG"
)

// ApplyEnv overrides runtime settings from the environment. Malformed values
// are logged and ignored.
func (f *File) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.Trim(v, "\"' ")
	}

	if threads := get(EnvThreads); threads != "" {
		n, err := strconv.Atoi(threads)
		if err != nil || n < 0 {
			slog.Warn("invalid setting, ignoring", EnvThreads, threads, "error", err)
		} else {
			f.Runtime.Threads = n
		}
	}

	if debug := get(EnvDebug); debug != "" {
		// 2 selects trace output; any other non-false value turns on debug.
		if n, err := strconv.Atoi(debug); err == nil && n >= 2 {
			f.Runtime.Debug, f.Runtime.Trace = true, true
		} else if b, err := strconv.ParseBool(debug); err == nil {
			f.Runtime.Debug = b
		} else {
			f.Runtime.Debug = true
		}
	}
}

// LogLevel is the slog level selected by the runtime switches.
func (r Runtime) LogLevel() slog.Level {
	return logutil.Level(r.Debug, r.Trace)
}

// EnvVar describes one environment variable and the value in effect for it.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap describes the environment variables with their effective values.
func (f File) AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		EnvThreads: {EnvThreads, f.Runtime.Threads, "Worker threads for the CPU backend (default: all CPUs)"},
		EnvDebug:   {EnvDebug, f.Runtime.Debug, "Show additional debug information (DEPTHDET_DEBUG=2 adds per-layer trace)"},
	}
}
