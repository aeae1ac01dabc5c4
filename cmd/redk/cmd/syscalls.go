// Copyright 2019 The gVisor Authors.
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

package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"redk.dev/redk/pkg/kernel"
	"redk.dev/redk/pkg/syscalls"
)

// Syscalls implements subcommands.Command for the "syscalls" command.
type Syscalls struct {
	output string
}

// SyscallDoc represents a single item of syscall documentation.
type SyscallDoc struct {
	Number uint32   `json:"number"`
	Name   string   `json:"name"`
	Args   []string `json:"args,omitempty"`
	Note   string   `json:"note,omitempty"`
}

type syscallsOutputFunc func(io.Writer, []SyscallDoc) error

// A map of output type names to output functions.
var syscallsOutputMap = map[string]syscallsOutputFunc{
	"table": syscallsTable,
	"json":  syscallsJSON,
	"csv":   syscallsCSV,
}

// Name implements subcommands.Command.Name.
func (*Syscalls) Name() string {
	return "syscalls"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Syscalls) Synopsis() string {
	return "Print the syscall ABI."
}

// Usage implements subcommands.Command.Usage.
func (*Syscalls) Usage() string {
	return `syscalls [options] - Print the syscall ABI.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (s *Syscalls) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.output, "o", "table", "Output format (table, csv, json).")
}

// Execute implements subcommands.Command.Execute.
func (s *Syscalls) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	out, ok := syscallsOutputMap[s.output]
	if !ok {
		Fatalf("Unsupported output format %q", s.output)
	}
	if err := out(os.Stdout, syscallDocs(syscalls.ABI)); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

// syscallDocs returns the documentation of every syscall in t, ordered by
// number.
func syscallDocs(t *kernel.SyscallTable) []SyscallDoc {
	var docs []SyscallDoc
	for _, num := range t.Numbers() {
		sc := t.Table[num]
		docs = append(docs, SyscallDoc{
			Number: num,
			Name:   sc.Name,
			Args:   sc.Args,
			Note:   sc.Note,
		})
	}
	return docs
}

// syscallsTable outputs the syscall info in tabular format.
func syscallsTable(w io.Writer, docs []SyscallDoc) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "NUM\tNAME\tARGS\tNOTE\n"); err != nil {
		return err
	}
	for _, sc := range docs {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", sc.Number, sc.Name, strings.Join(sc.Args, ", "), sc.Note); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// syscallsJSON outputs the syscall info in JSON format.
func syscallsJSON(w io.Writer, docs []SyscallDoc) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(docs)
}

// syscallsCSV outputs the syscall info in CSV format.
func syscallsCSV(w io.Writer, docs []SyscallDoc) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write([]string{"num", "name", "args", "note"}); err != nil {
		return err
	}
	for _, sc := range docs {
		row := []string{strconv.FormatUint(uint64(sc.Number), 10), sc.Name, strings.Join(sc.Args, " "), sc.Note}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
