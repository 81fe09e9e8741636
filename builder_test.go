package tinydb

import (
	"errors"
	"slices"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuilderEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tinydb")
	defer teardown()

	b := &Builder{}
	table, err := b.Table()
	if err != nil {
		t.Fatal(err)
	}
	if table.Count() != 0 {
		t.Fatalf("expected empty table, has %d rows", table.Count())
	}
	if err := b.Add(userRow(1)); !errors.Is(err, ErrTableCompleted) {
		t.Fatalf("expected ErrTableCompleted, got %v", err)
	}
}

func TestBuilderSortsRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tinydb")
	defer teardown()

	b := NewBuilder(Options{MaxItems: 3})
	for _, id := range []int{40, 7, 23, 1, 99, 15, 3, 64, 31, 12} {
		if err := b.Add(userRow(id)); err != nil {
			t.Fatal(err)
		}
	}
	table, err := b.Table()
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{1, 3, 7, 12, 15, 23, 31, 40, 64, 99}
	if got := ids(slices.Collect(table.Rows())); !slices.Equal(got, want) {
		t.Fatalf("unexpected rows %v", got)
	}
	if err := table.Check(); err != nil {
		t.Fatal(err)
	}
	again, _ := b.Table()
	if again != table {
		t.Fatalf("builder did not return the same table")
	}
}

func TestBuilderLastDuplicateWins(t *testing.T) {
	b := NewBuilder(Options{})
	first := Row{ID: 5, Username: "first", Email: "first@example.com"}
	last := Row{ID: 5, Username: "last", Email: "last@example.com"}
	b.Add(first, userRow(2), last)
	if b.Len() != 3 {
		t.Fatalf("expected 3 staged rows, got %d", b.Len())
	}
	table, err := b.Table()
	if err != nil {
		t.Fatal(err)
	}
	if table.Count() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Count())
	}
	if row, _ := table.Get(5); row != last {
		t.Fatalf("expected last staged row, got %+v", row)
	}
}

func TestBuilderLargeLoad(t *testing.T) {
	b := NewBuilder(Options{MaxItems: 4})
	for id := 500; id > 0; id-- {
		b.Add(userRow(id))
	}
	table, err := b.Table()
	if err != nil {
		t.Fatal(err)
	}
	if table.Count() != 500 {
		t.Fatalf("expected 500 rows, got %d", table.Count())
	}
	if err := table.Check(); err != nil {
		t.Fatal(err)
	}
	// bulk loaded tables behave like any other table
	if err := table.Insert(userRow(501)); err != nil {
		t.Fatal(err)
	}
	for id := 1; id <= 250; id++ {
		if _, err := table.Delete(uint32(id)); err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
	}
	if err := table.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestBuilderRejects(t *testing.T) {
	b := NewBuilder(Options{MaxRows: 3})
	if err := b.Add(Row{ID: 1, Username: string(make([]byte, UsernameSize+1))}); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
	b.Add(userRow(1), userRow(2), userRow(3), userRow(4))
	if _, err := b.Table(); !errors.Is(err, ErrTableFull) {
		t.Fatalf("expected ErrTableFull, got %v", err)
	}
	b.Reset()
	b.Add(userRow(1), userRow(2), userRow(3))
	if table, err := b.Table(); err != nil || table.Count() != 3 {
		t.Fatalf("build after reset failed: %v", err)
	}
	var nilBuilder *Builder
	if err := nilBuilder.Add(userRow(1)); !errors.Is(err, ErrIllegalArguments) {
		t.Fatalf("expected ErrIllegalArguments, got %v", err)
	}
}

func TestBuilderAddRecords(t *testing.T) {
	page := make([]byte, 0, 3*RowSize)
	for _, id := range []int{3, 1, 2} {
		record, _ := userRow(id).Encode()
		page = append(page, record...)
	}
	b := NewBuilder(Options{})
	if err := b.AddRecords(page); err != nil {
		t.Fatal(err)
	}
	if err := b.AddRecords(page[:RowSize+1]); !errors.Is(err, ErrIllegalArguments) {
		t.Fatalf("expected ErrIllegalArguments for partial record, got %v", err)
	}
	table, _ := b.Table()
	rows := slices.Collect(table.Rows())
	if !slices.Equal(ids(rows), []uint32{1, 2, 3}) || rows[1] != userRow(2) {
		t.Fatalf("unexpected rows %v", rows)
	}
}
