package tinydb

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/guiguan/caster"
	"github.com/npillmayer/tinydb/btree"
)

// Table is an in-memory set of rows, ordered and unique by id.
//
// Tables are safe for concurrent use. Iterators work on a snapshot taken when
// iteration starts, therefore clients may modify a table while iterating
// over it.
type Table struct {
	mu     sync.RWMutex
	id     uuid.UUID
	opts   Options
	tree   *btree.Tree
	cast   *caster.Caster // broadcaster for change events
	closed bool
}

// NewTable creates an empty table.
func NewTable(opts Options) (*Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()
	tree, err := btree.New(opts.treeConfig())
	if err != nil {
		return nil, err
	}
	return newTable(opts, tree), nil
}

func newTable(opts Options, tree *btree.Tree) *Table {
	t := &Table{
		id:   uuid.New(),
		opts: opts,
		tree: tree,
		cast: caster.New(nil),
	}
	T().Debugf("tinydb: created table %s", t.id)
	return t
}

// ID identifies the table instance. Snapshots get an ID of their own.
func (t *Table) ID() uuid.UUID {
	return t.id
}

// Options returns the effective table options.
func (t *Table) Options() Options {
	return t.opts
}

// Count returns the number of rows.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Count()
}

// Insert adds a row. Rows are unique by id; inserting an id which is
// already present fails with ErrDuplicateKey and leaves the table unchanged.
// Inserting beyond the row limit fails with ErrTableFull.
func (t *Table) Insert(row Row) error {
	record, err := row.Encode()
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.insertRecord(record); err != nil {
		return err
	}
	T().Debugf("tinydb: inserted row %d", row.ID)
	t.publish(Event{Table: t.id, Kind: RowInserted, Row: row})
	return nil
}

func (t *Table) insertRecord(record []byte) error {
	if t.closed {
		return ErrTableClosed
	}
	if t.tree.Has(record) {
		return ErrDuplicateKey
	}
	if t.tree.Count() >= t.opts.MaxRows {
		return ErrTableFull
	}
	if _, _, err := t.tree.Set(record); err != nil {
		return fmt.Errorf("tinydb: insert row %d: %w", rowID(record), err)
	}
	return nil
}

// Upsert inserts a row or replaces the row with the same id. It returns the
// replaced row, if any.
func (t *Table) Upsert(row Row) (prev Row, replaced bool, err error) {
	record, err := row.Encode()
	if err != nil {
		return Row{}, false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return Row{}, false, ErrTableClosed
	}
	if !t.tree.Has(record) && t.tree.Count() >= t.opts.MaxRows {
		return Row{}, false, ErrTableFull
	}
	old, replaced, err := t.tree.Set(record)
	if err != nil {
		return Row{}, false, fmt.Errorf("tinydb: upsert row %d: %w", row.ID, err)
	}
	if !replaced {
		t.publish(Event{Table: t.id, Kind: RowInserted, Row: row})
		return Row{}, false, nil
	}
	if prev, err = DecodeRow(old); err != nil {
		T().Errorf("tinydb: corrupt record for id %d: %v", row.ID, err)
	}
	t.publish(Event{Table: t.id, Kind: RowUpdated, Row: row})
	return prev, true, nil
}

// Delete removes the row with the given id and returns it.
func (t *Table) Delete(id uint32) (Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return Row{}, ErrTableClosed
	}
	record, found, err := t.tree.Delete(idKey(id))
	if err != nil {
		return Row{}, fmt.Errorf("tinydb: delete row %d: %w", id, err)
	}
	if !found {
		return Row{}, ErrRowNotFound
	}
	row, err := DecodeRow(record)
	if err != nil {
		return Row{}, err
	}
	T().Debugf("tinydb: deleted row %d", id)
	t.publish(Event{Table: t.id, Kind: RowDeleted, Row: row})
	return row, nil
}

// Get returns the row with the given id.
func (t *Table) Get(id uint32) (Row, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	record, ok := t.tree.Get(idKey(id))
	if !ok {
		return Row{}, false
	}
	row, err := DecodeRow(record)
	if err != nil {
		T().Errorf("tinydb: corrupt record for id %d: %v", id, err)
		return Row{}, false
	}
	return row, true
}

// Rows returns an iterator over all rows in ascending id order.
func (t *Table) Rows() iter.Seq[Row] {
	return t.scan(func(tree *btree.Tree) iter.Seq[[]byte] { return tree.All() })
}

// RowsFrom returns an iterator over all rows with id >= from, in ascending
// order.
func (t *Table) RowsFrom(from uint32) iter.Seq[Row] {
	return t.scan(func(tree *btree.Tree) iter.Seq[[]byte] { return tree.Ascend(idKey(from)) })
}

// RowsDescending returns an iterator over all rows in descending id order.
func (t *Table) RowsDescending() iter.Seq[Row] {
	return t.scan(func(tree *btree.Tree) iter.Seq[[]byte] { return tree.Backward() })
}

// scan iterates over a private copy of the tree, so no lock is held while
// the consumer runs.
func (t *Table) scan(records func(*btree.Tree) iter.Seq[[]byte]) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		t.mu.RLock()
		if t.closed {
			t.mu.RUnlock()
			return
		}
		snap := t.tree.Copy()
		t.mu.RUnlock()
		defer snap.Release()
		for record := range records(snap) {
			row, err := DecodeRow(record)
			if err != nil {
				T().Errorf("tinydb: corrupt record: %v", err)
				return
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Snapshot returns an independent table with the current content, in
// constant time. Storage is shared until either table is modified.
// Subscribers of t do not receive events of the snapshot.
func (t *Table) Snapshot() (*Table, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return nil, ErrTableClosed
	}
	return newTable(t.opts, t.tree.Copy()), nil
}

// Clear removes all rows.
func (t *Table) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTableClosed
	}
	t.tree.Clear()
	t.publish(Event{Table: t.id, Kind: TableCleared})
	return nil
}

// Close releases the table's storage and ends all subscriptions. Further
// operations fail with ErrTableClosed.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTableClosed
	}
	t.closed = true
	t.tree.Release()
	t.cast.Close()
	T().Debugf("tinydb: closed table %s", t.id)
	return nil
}

// OutOfMemory reports whether the most recent modification failed for lack
// of memory.
func (t *Table) OutOfMemory() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.NoMemory()
}

// IsOutOfMemory reports whether err signals an allocation failure.
func IsOutOfMemory(err error) bool {
	return errors.Is(err, btree.ErrNoMemory)
}

// Height returns the height of the table's tree.
func (t *Table) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Height()
}

// Dump writes an outline of the table's tree, labelling rows by id.
func (t *Table) Dump(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.tree.Dump(w, idLabel)
}

// ToDot writes the table's tree in Graphviz DOT format.
func (t *Table) ToDot(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.tree.ToDot(w, idLabel)
}

// Check validates the table's tree.
func (t *Table) Check() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Check()
}

func idLabel(record []byte) string {
	return strconv.FormatUint(uint64(rowID(record)), 10)
}
