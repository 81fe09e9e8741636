package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tinydb"
	"github.com/npillmayer/tinydb/btree"
)

// runScript feeds commands to a fresh shell and returns the output lines.
func runScript(t *testing.T, opts tinydb.Options, commands ...string) []string {
	t.Helper()
	table, err := tinydb.NewTable(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()
	var out bytes.Buffer
	sh := newShell(table, strings.NewReader(strings.Join(commands, "\n")+"\n"), &out, false)
	if err := sh.run(); err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	return strings.Split(out.String(), "\n")
}

func expectLines(t *testing.T, got, expected []string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(expected), len(got), strings.Join(got, "\n"))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("line %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestInsertAndRetrieveRow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tinydb")
	defer teardown()

	result := runScript(t, tinydb.Options{},
		"insert 1 user1 person1@example.com",
		"select",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Executed.",
		"db > (1, user1, person1@example.com)",
		"Executed.",
		"db > ",
	})
}

func TestTableFullMessage(t *testing.T) {
	var script []string
	for i := 1; i <= tinydb.TableMaxRows+1; i++ {
		script = append(script, fmt.Sprintf("insert %d user%d person%d@example.com", i, i, i))
	}
	script = append(script, ".exit")
	result := runScript(t, tinydb.Options{}, script...)
	if got := result[len(result)-2]; got != "db > Error: Table full." {
		t.Fatalf("expected table full message, got %q", got)
	}
}

func TestMaximumLengthStrings(t *testing.T) {
	username := strings.Repeat("a", tinydb.UsernameSize)
	email := strings.Repeat("a", tinydb.EmailSize)
	result := runScript(t, tinydb.Options{},
		fmt.Sprintf("insert 1 %s %s", username, email),
		"select",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Executed.",
		fmt.Sprintf("db > (1, %s, %s)", username, email),
		"Executed.",
		"db > ",
	})
}

func TestStringsTooLong(t *testing.T) {
	username := strings.Repeat("a", tinydb.UsernameSize+1)
	email := strings.Repeat("a", tinydb.EmailSize+1)
	result := runScript(t, tinydb.Options{},
		fmt.Sprintf("insert 1 %s %s", username, email),
		"select",
		".exit",
	)
	expectLines(t, result, []string{
		"db > String is too long.",
		"db > Executed.",
		"db > ",
	})
}

func TestNegativeID(t *testing.T) {
	result := runScript(t, tinydb.Options{},
		"insert -1 cstack foo@bar.com",
		"select",
		".exit",
	)
	expectLines(t, result, []string{
		"db > ID must be positive.",
		"db > Executed.",
		"db > ",
	})
}

func TestDuplicateKeyAndDelete(t *testing.T) {
	result := runScript(t, tinydb.Options{},
		"insert 1 user1 person1@example.com",
		"insert 1 user1 person1@example.com",
		"insert 2 user2 person2@example.com",
		"delete 1",
		"delete 1",
		"select",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Executed.",
		"db > Error: Duplicate key.",
		"db > Executed.",
		"db > Executed.",
		"db > Error: Row not found.",
		"db > (2, user2, person2@example.com)",
		"Executed.",
		"db > ",
	})
}

func TestRowsAreSorted(t *testing.T) {
	result := runScript(t, tinydb.Options{MaxItems: 3},
		"insert 3 user3 person3@example.com",
		"insert 1 user1 person1@example.com",
		"insert 2 user2 person2@example.com",
		"select",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Executed.",
		"db > Executed.",
		"db > Executed.",
		"db > (1, user1, person1@example.com)",
		"(2, user2, person2@example.com)",
		"(3, user3, person3@example.com)",
		"Executed.",
		"db > ",
	})
}

func TestSyntaxErrors(t *testing.T) {
	result := runScript(t, tinydb.Options{},
		"insert 1 user1",
		"insert x user1 person1@example.com",
		"delete",
		"update 1",
		".foo",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Syntax error. Could not parse statement.",
		"db > Syntax error. Could not parse statement.",
		"db > Syntax error. Could not parse statement.",
		"db > Unrecognized keyword at start of 'update 1'.",
		"db > Unrecognized command '.foo'",
		"db > ",
	})
}

func TestOutOfMemoryMessage(t *testing.T) {
	result := runScript(t, tinydb.Options{Allocator: btree.NewBudget(0, nil)},
		"insert 1 user1 person1@example.com",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Error: Out of memory.",
		"db > ",
	})
}

func TestMetaCommands(t *testing.T) {
	result := runScript(t, tinydb.Options{MaxItems: 3},
		"insert 3 user3 person3@example.com",
		"insert 1 user1 person1@example.com",
		"insert 2 user2 person2@example.com",
		"insert 4 user4 person4@example.com",
		".constants",
		".btree",
		".exit",
	)
	expectLines(t, result, []string{
		"db > Executed.",
		"db > Executed.",
		"db > Executed.",
		"db > Executed.",
		"db > Constants:",
		"ROW_SIZE: 291",
		"ID_SIZE: 4",
		"USERNAME_SIZE: 32",
		"EMAIL_SIZE: 255",
		"PAGE_SIZE: 4096",
		"ROWS_PER_PAGE: 14",
		"TABLE_MAX_ROWS: 1400",
		"NODE_MAX_ITEMS: 3",
		"db > Tree:",
		"- internal (size 1) [3]",
		"  - leaf (size 2) [1 2]",
		"  - leaf (size 1) [4]",
		"db > ",
	})
}

func TestHTMLAndTableOutput(t *testing.T) {
	result := runScript(t, tinydb.Options{},
		"insert 1 user1 person1@example.com",
		".html",
		".table",
		".exit",
	)
	if !strings.HasPrefix(result[1], "db > <table>") ||
		!strings.Contains(result[1], "<td>person1@example.com</td>") {
		t.Fatalf("unexpected HTML output %q", result[1])
	}
	expectLines(t, result[2:], []string{
		"db > id | username | email",
		"1  | user1    | person1@example.com",
		"db > ",
	})
}

func TestEndOfInput(t *testing.T) {
	result := runScript(t, tinydb.Options{}, "select")
	expectLines(t, result, []string{
		"db > Executed.",
		"db > ",
	})
}

func TestRunFlags(t *testing.T) {
	var out, errOut bytes.Buffer
	in := strings.NewReader("insert 1 a b\ninsert 2 c d\ninsert 3 e f\n.constants\n.exit\n")
	if code := run([]string{"-max-rows", "2", "-order", "4", "-no-color"}, in, &out, &errOut); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}
	s := out.String()
	if !strings.Contains(s, "db > Error: Table full.") {
		t.Fatalf("row limit not applied:\n%s", s)
	}
	if !strings.Contains(s, "TABLE_MAX_ROWS: 2\nNODE_MAX_ITEMS: 4\n") {
		t.Fatalf("options not applied:\n%s", s)
	}
	if code := run([]string{"-order", "2"}, strings.NewReader(""), &out, &errOut); code != 1 {
		t.Fatalf("expected exit code 1 for invalid order, got %d", code)
	}
	if code := run([]string{"-bogus"}, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Fatalf("expected exit code 2 for unknown flag, got %d", code)
	}
	if code := run([]string{"test.db"}, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Fatalf("expected exit code 2 for positional argument, got %d", code)
	}
}

