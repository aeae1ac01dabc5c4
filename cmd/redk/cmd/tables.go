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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"redk.dev/redk/pkg/ring0"
)

// Tables implements subcommands.Command for the "tables" command.
type Tables struct {
	output string
}

// SegmentRow describes one descriptor of the segment table.
type SegmentRow struct {
	Index    int    `json:"index"`
	Selector string `json:"selector"`
	Raw      string `json:"raw"`
	Base     uint32 `json:"base"`
	Limit    uint32 `json:"limit"`
	DPL      int    `json:"dpl"`
	Type     uint8  `json:"type"`
	Present  bool   `json:"present"`
}

// GateRow describes one present interrupt gate.
type GateRow struct {
	Vector   uint32 `json:"vector"`
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Offset   uint32 `json:"offset"`
	DPL      int    `json:"dpl"`
	Type     uint8  `json:"type"`
}

// DescriptorTables is the content of both tables.
type DescriptorTables struct {
	GDT []SegmentRow `json:"gdt"`
	IDT []GateRow    `json:"idt"`
}

var tablesOutputMap = map[string]func(io.Writer, DescriptorTables) error{
	"table": tablesTable,
	"json":  tablesJSON,
}

// Name implements subcommands.Command.Name.
func (*Tables) Name() string {
	return "tables"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Tables) Synopsis() string {
	return "Print the segment and interrupt descriptor tables."
}

// Usage implements subcommands.Command.Usage.
func (*Tables) Usage() string {
	return `tables [options] - Print the segment and interrupt descriptor tables as
the kernel builds them.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (t *Tables) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.output, "o", "table", "Output format (table, json).")
}

// Execute implements subcommands.Command.Execute.
func (t *Tables) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	out, ok := tablesOutputMap[t.output]
	if !ok {
		Fatalf("Unsupported output format %q", t.output)
	}
	if err := out(os.Stdout, describeTables(ring0.New(ring0.KernelOpts{}))); err != nil {
		Fatalf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

// describeTables decodes the descriptor tables of k.
func describeTables(k *ring0.Kernel) DescriptorTables {
	var dt DescriptorTables
	segs := k.Segments()
	for i := range segs {
		d := &segs[i]
		dt.GDT = append(dt.GDT, SegmentRow{
			Index:    i,
			Selector: ring0.SelectorOf(i).String(),
			Raw:      fmt.Sprintf("%#018x", d.Uint64()),
			Base:     d.Base(),
			Limit:    d.Limit(),
			DPL:      d.DPL(),
			Type:     d.Type(),
			Present:  d.Present(),
		})
	}
	gates := k.Gates()
	for _, v := range gates.Present() {
		g := &gates[v]
		dt.IDT = append(dt.IDT, GateRow{
			Vector:   uint32(v),
			Name:     v.String(),
			Selector: g.Selector().String(),
			Offset:   g.Offset(),
			DPL:      g.DPL(),
			Type:     g.Type(),
		})
	}
	return dt
}

// tablesTable outputs the tables in tabular format.
func tablesTable(w io.Writer, dt DescriptorTables) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "INDEX\tSELECTOR\tRAW\tBASE\tLIMIT\tDPL\tTYPE\tPRESENT\n")
	for _, s := range dt.GDT {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%#x\t%#x\t%d\t%#x\t%t\n", s.Index, s.Selector, s.Raw, s.Base, s.Limit, s.DPL, s.Type, s.Present)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	fmt.Fprintf(tw, "VECTOR\tNAME\tSELECTOR\tOFFSET\tDPL\tTYPE\n")
	for _, g := range dt.IDT {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%#x\t%d\t%#x\n", g.Vector, g.Name, g.Selector, g.Offset, g.DPL, g.Type)
	}
	return tw.Flush()
}

// tablesJSON outputs the tables in JSON format.
func tablesJSON(w io.Writer, dt DescriptorTables) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(dt)
}
