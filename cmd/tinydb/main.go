/*
Command tinydb is an interactive shell for a single in-memory table.

Usage:

	tinydb [flags]

The flags are:

	-order n
		maximum number of rows per tree node
	-max-rows n
		maximum number of rows in the table
	-mem-limit bytes
		limit the storage for tree nodes; 0 means unlimited
	-trace level
		trace level, one of "debug", "info" or "error"
	-no-color
		do not color the output

Statements are read line by line from standard input:

	insert <id> <username> <email>
	select
	delete <id>

Lines starting with a period are meta commands; type ".help" for a list.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/tinydb"
	"github.com/npillmayer/tinydb/btree"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the shell and returns an exit code.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	flags := flag.NewFlagSet("tinydb", flag.ContinueOnError)
	flags.SetOutput(errOut)
	order := flags.Int("order", btree.DefaultMaxItems, "maximum number of rows per tree node")
	maxRows := flags.Int("max-rows", tinydb.TableMaxRows, "maximum number of rows in the table")
	memLimit := flags.Int("mem-limit", 0, "limit storage for tree nodes to this many bytes (0 = unlimited)")
	level := flags.String("trace", "error", "trace level [debug|info|error]")
	noColor := flags.Bool("no-color", false, "do not color the output")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(errOut, "tinydb: unexpected arguments %v\n", flags.Args())
		return 2
	}
	setupTracing(*level)

	opts := tinydb.Options{MaxItems: *order, MaxRows: *maxRows}
	if *memLimit > 0 {
		opts.Allocator = btree.NewBudget(*memLimit, nil)
	}
	table, err := tinydb.NewTable(opts)
	if err != nil {
		fmt.Fprintf(errOut, "tinydb: %v\n", err)
		return 1
	}
	defer table.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := traceEvents(ctx, table); err != nil {
		gtrace.CommandTracer.Errorf("cannot subscribe to table events: %v", err)
	}

	interactive, width := terminal(in)
	shell := newShell(table, in, out, interactive && !*noColor)
	shell.printer.LineWidth = width
	if err := shell.run(); err != nil {
		fmt.Fprintf(errOut, "tinydb: %v\n", err)
		return 1
	}
	return 0
}

func setupTracing(level string) {
	l := tracing.TraceLevelFromString(level)
	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(l)
	gtrace.CommandTracer = gologadapter.New()
	gtrace.CommandTracer.SetTraceLevel(l)
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("tinydb.btree").SetTraceLevel(l)
}

// traceEvents logs table changes to the command tracer.
func traceEvents(ctx context.Context, table *tinydb.Table) error {
	events, err := table.Subscribe(ctx, 64)
	if err != nil {
		return err
	}
	tr := gtrace.CommandTracer
	go func() {
		for ev := range events {
			tr.Debugf("table %s: %s %s", ev.Table, ev.Kind, ev.Row)
		}
	}()
	return nil
}

// terminal reports whether in is an interactive terminal, and the line width
// of standard output.
func terminal(in io.Reader) (bool, int) {
	f, ok := in.(*os.File)
	if !ok || !tinydb.IsTerminal(int(f.Fd())) {
		return false, tinydb.DefaultLineWidth
	}
	return true, tinydb.TerminalWidth(int(os.Stdout.Fd()))
}
