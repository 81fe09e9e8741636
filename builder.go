package tinydb

import (
	"cmp"
	"fmt"
	"slices"
)

// Builder stages rows and bulk-loads them into a new Table.
//
// Rows may be added in any order. When the table is built, rows are sorted
// by id and appended to the tree in ascending order, which only touches the
// right spine of the tree. This is cheaper than inserting rows one at a time
// and the natural way of restoring a table from a sorted source.
// If a row id is staged more than once, the row added last wins.
//
// The empty instance is a valid builder using default options, but clients
// may use NewBuilder.
type Builder struct {
	opts  Options
	rows  []Row
	done  bool
	dirty bool
	table *Table
}

// NewBuilder creates a new and empty table builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Table returns the table built from all staged rows.
//
// It is illegal to continue adding rows after Table has been called, but
// Table may be called multiple times and returns the same table.
func (b *Builder) Table() (*Table, error) {
	if b == nil {
		return nil, ErrIllegalArguments
	}
	if b.table == nil || b.dirty {
		table, err := b.buildTable()
		if err != nil {
			return nil, err
		}
		b.table = table
		b.dirty = false
	}
	b.done = true
	if b.table.Count() == 0 {
		T().Debugf("table builder: table is empty")
	}
	return b.table, nil
}

// Reset drops the staged rows and prepares the builder for a fresh build.
// A table already returned by Table is not affected.
func (b *Builder) Reset() {
	b.rows = nil
	b.done = false
	b.dirty = false
	b.table = nil
}

// Len returns the number of staged rows, including duplicates.
func (b *Builder) Len() int {
	return len(b.rows)
}

// Add stages rows.
func (b *Builder) Add(rows ...Row) error {
	if b == nil {
		return ErrIllegalArguments
	}
	if b.done {
		return ErrTableCompleted
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", row.ID, err)
		}
	}
	b.rows = append(b.rows, rows...)
	if len(rows) > 0 {
		b.dirty = true
	}
	return nil
}

// AddRecords stages rows from serialized records, each of RowSize bytes.
// Records may be given back to back in a single page buffer.
func (b *Builder) AddRecords(page []byte) error {
	if len(page)%RowSize != 0 {
		return fmt.Errorf("%w: page of %d bytes does not hold whole rows", ErrIllegalArguments, len(page))
	}
	rows := make([]Row, 0, len(page)/RowSize)
	for i := 0; i < len(page); i += RowSize {
		row, err := DecodeRow(page[i : i+RowSize])
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return b.Add(rows...)
}

func (b *Builder) buildTable() (*Table, error) {
	rows := b.orderedRows()
	table, err := NewTable(b.opts)
	if err != nil {
		return nil, err
	}
	if len(rows) > table.opts.MaxRows {
		table.Close()
		return nil, ErrTableFull
	}
	record := make([]byte, RowSize)
	for _, row := range rows {
		if err := row.EncodeTo(record); err != nil {
			table.Close()
			return nil, err
		}
		if _, _, err := table.tree.Load(record); err != nil {
			table.Close()
			return nil, fmt.Errorf("tinydb: bulk load of row %d: %w", row.ID, err)
		}
	}
	T().Debugf("table builder: loaded %d rows, tree height %d", len(rows), table.tree.Height())
	return table, nil
}

// orderedRows sorts staged rows by id and drops all but the last row staged
// for any id.
func (b *Builder) orderedRows() []Row {
	if len(b.rows) == 0 {
		return nil
	}
	rows := slices.Clone(b.rows)
	slices.SortStableFunc(rows, func(x, y Row) int {
		return cmp.Compare(x.ID, y.ID)
	})
	out := rows[:0]
	for i, row := range rows {
		if i+1 < len(rows) && rows[i+1].ID == row.ID {
			continue
		}
		out = append(out, row)
	}
	return out
}
