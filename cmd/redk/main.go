// Copyright 2018 The gVisor Authors.
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

// Binary redk inspects and exercises the kernel on a host: it prints the
// descriptor tables and the syscall ABI, loads executables, and replays
// syscall scripts against a kernel backed by host memory.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"redk.dev/redk/cmd/redk/cmd"
	"redk.dev/redk/pkg/config"
	"redk.dev/redk/pkg/log"
)

var configFile = flag.String("config", "", "path to a TOML configuration file; flags override its values.")

func main() {
	// Register all commands.
	forEachCmd(subcommands.Register)

	// Register with the main command line.
	config.RegisterFlags(flag.CommandLine)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	conf := config.Default()
	if *configFile != "" {
		var err error
		if conf, err = config.LoadFile(*configFile); err != nil {
			cmd.Fatalf("%v", err)
		}
	}
	if err := conf.ApplyFlags(flag.CommandLine); err != nil {
		cmd.Fatalf("%v", err)
	}

	log.SetTarget(conf.Emitter(os.Stderr))
	log.SetLevel(conf.LogLevel())
	log.Debugf("Args: %v", os.Args)
	log.Debugf("Configuration:\n%s", conf)

	os.Exit(int(subcommands.Execute(context.Background(), conf)))
}

// forEachCmd invokes the passed callback for each command supported by redk.
func forEachCmd(cb func(cmd subcommands.Command, group string)) {
	// Help and flags commands are generated automatically.
	cb(subcommands.HelpCommand(), "")
	cb(subcommands.FlagsCommand(), "")
	cb(subcommands.CommandsCommand(), "")

	cb(new(cmd.Tables), "")
	cb(new(cmd.Syscalls), "")
	cb(new(cmd.Load), "")
	cb(new(cmd.Replay), "")
}
