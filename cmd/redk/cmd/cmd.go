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

// Package cmd holds implementations of the redk commands.
package cmd

import (
	"fmt"
	"os"

	"redk.dev/redk/pkg/config"
	"redk.dev/redk/pkg/log"
)

// Fatalf logs to stderr and exits with a failure status code.
func Fatalf(format string, args ...any) {
	// The log may go to a file; also print to stderr so the error is seen.
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	log.Warningf(format, args...)
	os.Exit(128)
}

// configFrom returns the configuration passed to Execute, or the defaults.
func configFrom(args []any) *config.Config {
	for _, a := range args {
		if c, ok := a.(*config.Config); ok {
			return c
		}
	}
	return config.Default()
}
