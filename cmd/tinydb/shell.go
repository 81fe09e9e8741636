package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/tinydb"
	"github.com/npillmayer/tinydb/html"
)

const prompt = "db > "

// errExit ends the read-eval-print loop.
var errExit = errors.New("exit")

type shell struct {
	table   *tinydb.Table
	in      *bufio.Scanner
	out     io.Writer
	printer *tinydb.Printer
}

func newShell(table *tinydb.Table, in io.Reader, out io.Writer, colored bool) *shell {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return &shell{
		table:   table,
		in:      scanner,
		out:     out,
		printer: tinydb.NewPrinter(out, colored),
	}
}

// run reads and executes lines until end of input or ".exit".
func (sh *shell) run() error {
	for {
		io.WriteString(sh.out, prompt)
		if !sh.in.Scan() {
			return sh.in.Err()
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}
		gtrace.CommandTracer.Debugf("command: %s", line)
		if err := sh.execute(line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func (sh *shell) execute(line string) error {
	if strings.HasPrefix(line, ".") {
		return sh.meta(line)
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "insert":
		sh.insert(fields[1:])
	case "select":
		sh.printer.Rows(sh.table.Rows())
		sh.executed()
	case "delete":
		sh.delete(fields[1:])
	default:
		fmt.Fprintf(sh.out, "Unrecognized keyword at start of '%s'.\n", line)
	}
	return nil
}

func (sh *shell) insert(args []string) {
	if len(args) != 3 {
		sh.syntaxError()
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		sh.syntaxError()
		return
	}
	row, err := tinydb.NewRow(id, args[1], args[2])
	if err == nil {
		err = sh.table.Insert(row)
	}
	sh.report(err)
}

func (sh *shell) delete(args []string) {
	if len(args) != 1 {
		sh.syntaxError()
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		sh.syntaxError()
		return
	}
	if id < 0 {
		sh.report(tinydb.ErrNegativeID)
		return
	}
	if id > int64(^uint32(0)) {
		sh.report(tinydb.ErrRowNotFound)
		return
	}
	_, err = sh.table.Delete(uint32(id))
	sh.report(err)
}

// report prints the outcome of a statement.
func (sh *shell) report(err error) {
	switch {
	case err == nil:
		sh.executed()
	case errors.Is(err, tinydb.ErrStringTooLong):
		sh.printer.Error("String is too long.")
	case errors.Is(err, tinydb.ErrNegativeID):
		sh.printer.Error("ID must be positive.")
	case errors.Is(err, tinydb.ErrTableFull):
		sh.printer.Error("Error: Table full.")
	case errors.Is(err, tinydb.ErrDuplicateKey):
		sh.printer.Error("Error: Duplicate key.")
	case errors.Is(err, tinydb.ErrRowNotFound):
		sh.printer.Error("Error: Row not found.")
	case tinydb.IsOutOfMemory(err):
		sh.printer.Error("Error: Out of memory.")
	case errors.Is(err, tinydb.ErrIllegalArguments):
		sh.syntaxError()
	default:
		sh.printer.Error("Error: " + err.Error())
	}
}

func (sh *shell) executed() {
	io.WriteString(sh.out, "Executed.\n")
}

func (sh *shell) syntaxError() {
	sh.printer.Error("Syntax error. Could not parse statement.")
}

// --- Meta commands ---------------------------------------------------------

func (sh *shell) meta(line string) error {
	switch line {
	case ".exit":
		return errExit
	case ".constants":
		sh.constants()
	case ".btree":
		io.WriteString(sh.out, "Tree:\n")
		sh.table.Dump(sh.out)
	case ".table":
		sh.printer.Table(sh.table.Rows())
	case ".html":
		if err := html.RenderTable(sh.out, sh.table.Rows()); err != nil {
			return err
		}
	case ".help":
		sh.help()
	default:
		fmt.Fprintf(sh.out, "Unrecognized command '%s'\n", line)
	}
	return nil
}

func (sh *shell) constants() {
	io.WriteString(sh.out, "Constants:\n")
	for _, c := range []struct {
		name  string
		value int
	}{
		{"ROW_SIZE", tinydb.RowSize},
		{"ID_SIZE", tinydb.IDSize},
		{"USERNAME_SIZE", tinydb.UsernameSize},
		{"EMAIL_SIZE", tinydb.EmailSize},
		{"PAGE_SIZE", tinydb.PageSize},
		{"ROWS_PER_PAGE", tinydb.RowsPerPage},
		{"TABLE_MAX_ROWS", sh.table.Options().MaxRows},
		{"NODE_MAX_ITEMS", sh.table.Options().MaxItems},
	} {
		fmt.Fprintf(sh.out, "%s: %d\n", c.name, c.value)
	}
}

func (sh *shell) help() {
	io.WriteString(sh.out, `Statements:
  insert <id> <username> <email>
  select
  delete <id>
Meta commands:
  .btree      print the table's tree
  .constants  print the row layout
  .exit       leave the shell
  .help       print this text
  .html       print the table as HTML
  .table      print the table as aligned columns
`)
}
