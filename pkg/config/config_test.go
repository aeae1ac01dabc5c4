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

package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"redk.dev/redk/pkg/log"
)

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(`
[log]
level = "debug"

[kernel]
timer_hz = 250
executable = "shell.elf"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Default()
	want.Log.Level = "debug"
	want.Kernel.TimerHz = 250
	want.Kernel.Executable = "shell.elf"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if got := c.LogLevel(); got != log.Debug {
		t.Errorf("LogLevel() = %v, want %v", got, log.Debug)
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		data string
	}{
		{name: "syntax", data: "[log"},
		{name: "unknown key", data: "[kernel]\nstack = 1\n"},
		{name: "level", data: "[log]\nlevel = \"loud\"\n"},
		{name: "format", data: "[log]\nformat = \"xml\"\n"},
		{name: "timer", data: "[kernel]\ntimer_hz = 300\n"},
		{name: "zero timer", data: "[kernel]\ntimer_hz = 0\n"},
		{name: "stack", data: "[kernel]\nuser_stack_size = 100\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if c, err := Parse(strings.NewReader(tc.data)); err == nil {
				t.Errorf("Parse succeeded: %+v", c)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[kernel]\ntrace_syscalls = true\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !c.Kernel.TraceSyscalls {
		t.Errorf("TraceSyscalls not set")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("LoadFile of a missing file succeeded")
	}
}

func TestRoundTrip(t *testing.T) {
	c := Default()
	c.Kernel.Executable = "game"
	c.Log.Format = "json"
	got, err := Parse(strings.NewReader(c.String()))
	if err != nil {
		t.Fatalf("Parse(%q): %v", c.String(), err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFlags(t *testing.T) {
	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(flagSet)
	if err := flagSet.Parse([]string{"-log-level=warning", "-timer-hz=1000", "-trace-syscalls"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// Flags that were not given keep the file value.
	c, err := Parse(strings.NewReader("[kernel]\nexecutable = \"a.out\"\ntimer_hz = 50\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := c.ApplyFlags(flagSet); err != nil {
		t.Fatalf("ApplyFlags: %v", err)
	}
	want := Default()
	want.Log.Level = "warning"
	want.Kernel.TimerHz = 1000
	want.Kernel.TraceSyscalls = true
	want.Kernel.Executable = "a.out"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("ApplyFlags mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"--log-level=warning", "--timer-hz=1000", "--executable=a.out", "--trace-syscalls=true"}, c.ToFlags()); diff != "" {
		t.Errorf("ToFlags mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFlagsInvalid(t *testing.T) {
	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(flagSet)
	if err := flagSet.Parse([]string{"-timer-hz=7"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Default().ApplyFlags(flagSet); err == nil {
		t.Errorf("ApplyFlags accepted a 7 Hz timer")
	}
}

func TestOverrideOutOfRange(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value string
	}{
		{name: "timer-hz", value: "4294967396"},
		{name: "user-stack-size", value: "0x100004000"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			if err := c.Override(tc.name, tc.value); err == nil {
				t.Errorf("Override(%q, %q) succeeded", tc.name, tc.value)
			}
			if diff := cmp.Diff(Default(), c); diff != "" {
				t.Errorf("config changed by a rejected override (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOverride(t *testing.T) {
	c := Default()
	if err := c.Override("user-stack-size", "0x4000"); err != nil {
		t.Fatalf("Override: %v", err)
	}
	if c.Kernel.UserStackSize != 0x4000 {
		t.Errorf("UserStackSize = %#x, want 0x4000", c.Kernel.UserStackSize)
	}
	if err := c.Override("no-such-flag", "1"); err == nil {
		t.Errorf("Override of an unknown flag succeeded")
	}
	if err := c.Override("startup-melody", "maybe"); err == nil {
		t.Errorf("Override with a malformed value succeeded")
	}
}

func TestEmitter(t *testing.T) {
	var b bytes.Buffer
	c := Default()
	c.Log.Format = "json"
	c.Emitter(&b).Emit(0, log.Info, time.Time{}, "hello %d", 1)
	if !strings.Contains(b.String(), `hello 1"`) || !strings.Contains(b.String(), `"level":"info"`) {
		t.Errorf("json emitter wrote %q", b.String())
	}
}
