package tinydb

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Row layout. Rows are fixed-width records: a 4-byte id followed by two
// NUL-padded string columns.
const (
	IDSize         = 4
	UsernameSize   = 32
	EmailSize      = 255
	IDOffset       = 0
	UsernameOffset = IDOffset + IDSize
	EmailOffset    = UsernameOffset + UsernameSize
	RowSize        = IDSize + UsernameSize + EmailSize
)

// Table geometry. A table holds at most TableMaxRows rows by default, the
// number of rows fitting into TableMaxPages pages of PageSize bytes.
const (
	PageSize      = 4096
	TableMaxPages = 100
	RowsPerPage   = PageSize / RowSize
	TableMaxRows  = RowsPerPage * TableMaxPages
)

// Row is a single table row.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// NewRow creates a validated row. Ids must be in the range of uint32.
func NewRow(id int64, username, email string) (Row, error) {
	if id < 0 {
		return Row{}, ErrNegativeID
	}
	if id > math.MaxUint32 {
		return Row{}, fmt.Errorf("%w: id %d out of range", ErrIllegalArguments, id)
	}
	row := Row{ID: uint32(id), Username: username, Email: email}
	if err := row.Validate(); err != nil {
		return Row{}, err
	}
	return row, nil
}

// Validate checks that the string columns fit into their fixed-width slots.
func (r Row) Validate() error {
	if len(r.Username) > UsernameSize || len(r.Email) > EmailSize {
		return ErrStringTooLong
	}
	if strings.IndexByte(r.Username, 0) >= 0 || strings.IndexByte(r.Email, 0) >= 0 {
		return fmt.Errorf("%w: NUL byte in string column", ErrIllegalArguments)
	}
	return nil
}

// Encode serializes a row into a new buffer of RowSize bytes.
func (r Row) Encode() ([]byte, error) {
	buf := make([]byte, RowSize)
	if err := r.EncodeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeTo serializes a row into buf, which must hold exactly RowSize bytes.
// Unused column space is zeroed.
func (r Row) EncodeTo(buf []byte) error {
	if len(buf) != RowSize {
		return ErrIllegalArguments
	}
	if err := r.Validate(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[IDOffset:], r.ID)
	putColumn(buf[UsernameOffset:UsernameOffset+UsernameSize], r.Username)
	putColumn(buf[EmailOffset:EmailOffset+EmailSize], r.Email)
	return nil
}

func putColumn(col []byte, s string) {
	n := copy(col, s)
	clear(col[n:])
}

// DecodeRow deserializes a record of RowSize bytes.
func DecodeRow(buf []byte) (Row, error) {
	if len(buf) != RowSize {
		return Row{}, ErrIllegalArguments
	}
	return Row{
		ID:       rowID(buf),
		Username: column(buf[UsernameOffset : UsernameOffset+UsernameSize]),
		Email:    column(buf[EmailOffset : EmailOffset+EmailSize]),
	}, nil
}

func column(col []byte) string {
	if i := bytes.IndexByte(col, 0); i >= 0 {
		col = col[:i]
	}
	return string(col)
}

// String formats a row as "(id, username, email)".
func (r Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

// --- Keys ------------------------------------------------------------------

func rowID(record []byte) uint32 {
	return binary.LittleEndian.Uint32(record[IDOffset:])
}

// idKey creates a search key for a row id. Only the id prefix of a record
// takes part in comparison, so a key need not be a full record.
func idKey(id uint32) []byte {
	key := make([]byte, IDSize)
	binary.LittleEndian.PutUint32(key, id)
	return key
}

// compareRecords orders records by id.
func compareRecords(a, b []byte, _ any) int {
	return cmp.Compare(rowID(a), rowID(b))
}
