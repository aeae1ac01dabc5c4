// Copyright 2026 The redk Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the kernel configuration.
//
// Configuration is read from a TOML file, redk.toml in the boot filesystem,
// and may be overridden with command line flags by host tools. Fields that can
// be set from a flag carry a `flag` tag with the flag name.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"redk.dev/redk/pkg/log"
)

// FileName is the name of the configuration file in the boot filesystem.
const FileName = "redk.toml"

const (
	// DefaultTimerHz is the default timer interrupt rate.
	DefaultTimerHz = 100

	// DefaultUserStackSize is the default size of the user program stack.
	DefaultUserStackSize = 0x20000

	// stackAlign is the required user stack alignment.
	stackAlign = 16
)

// Config holds configuration that is not part of the boot handoff.
type Config struct {
	// Log configures logging.
	Log Log `toml:"log"`

	// Kernel configures the kernel.
	Kernel Kernel `toml:"kernel"`
}

// Log configures logging.
type Log struct {
	// Level is one of "warning", "info" or "debug".
	Level string `toml:"level" flag:"log-level"`

	// Format is "text" for glog-style lines or "json".
	Format string `toml:"format" flag:"log-format"`
}

// Kernel configures the kernel.
type Kernel struct {
	// TimerHz is the rate of the timer interrupt. It must divide 1000.
	TimerHz uint32 `toml:"timer_hz" flag:"timer-hz"`

	// UserStackSize is the size of the stack given to the user program.
	UserStackSize uint32 `toml:"user_stack_size" flag:"user-stack-size"`

	// Executable is the program launched after boot. It overrides the
	// boot command line when set.
	Executable string `toml:"executable" flag:"executable"`

	// TraceSyscalls logs every syscall at debug level.
	TraceSyscalls bool `toml:"trace_syscalls" flag:"trace-syscalls"`

	// StartupMelody plays the startup melody when the devices are up.
	StartupMelody bool `toml:"startup_melody" flag:"startup-melody"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Kernel: Kernel{
			TimerHz:       DefaultTimerHz,
			UserStackSize: DefaultUserStackSize,
			StartupMelody: true,
		},
	}
}

// Parse reads a configuration from r. Keys that are not set keep their
// default value; unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown configuration keys: %v", undecoded)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads the configuration file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks that c is usable.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if hz := c.Kernel.TimerHz; hz == 0 || hz > 1000 || 1000%hz != 0 {
		return fmt.Errorf("timer rate %d Hz does not divide one second into whole milliseconds", hz)
	}
	if s := c.Kernel.UserStackSize; s == 0 || s%stackAlign != 0 {
		return fmt.Errorf("user stack size %#x is not a positive multiple of %d", s, stackAlign)
	}
	return nil
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.Info
	}
	return l
}

// Emitter returns an emitter writing to w in the configured format.
func (c *Config) Emitter(w io.Writer) log.Emitter {
	lw := &log.Writer{Next: w}
	if c.Log.Format == "json" {
		return log.JSONEmitter{Writer: lw}
	}
	return log.GoogleEmitter{Emitter: lw}
}

// String returns c encoded as TOML.
func (c *Config) String() string {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return b.String()
}
