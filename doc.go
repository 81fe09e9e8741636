/*
Package tinydb is a small in-memory row store on top of a copy-on-write B-tree.

Tinydb

Rows consist of a numeric id, a user name and an e-mail address. They are
serialized into fixed-width records of RowSize bytes, in the same layout a
page-based toy database would put them on disk, and kept in a btree.Tree
ordered by id. The tree does all the heavy lifting: ordered iteration,
balanced inserts and deletes, and O(1) snapshots.

A Table offers the row-level operations (insert, delete, lookup, select),
enforces a row limit, and broadcasts change events to subscribers.
Snapshots of a table are independent tables which share storage with their
origin until either one is modified.

Tables are usually filled one row at a time. For restoring from a sorted
source, a Builder stages rows and bulk-loads them, which is cheaper than
inserting them one by one.

A Printer renders rows for a console, honouring the display width of
East-Asian characters. Package html converts rows to and from HTML tables.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

*/
package tinydb

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to a global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// TableError is an error type for the tinydb module
type TableError string

func (e TableError) Error() string {
	return string(e)
}

// ErrTableFull is flagged when an insert would exceed the table's row limit.
const ErrTableFull = TableError("table full")

// ErrDuplicateKey is flagged when a row with the same id is already present.
const ErrDuplicateKey = TableError("duplicate key")

// ErrStringTooLong is flagged when a user name or e-mail address does not fit
// into its column.
const ErrStringTooLong = TableError("string is too long")

// ErrNegativeID is flagged for row ids below zero.
const ErrNegativeID = TableError("id must be positive")

// ErrRowNotFound is flagged if no row with a given id exists.
const ErrRowNotFound = TableError("row not found")

// ErrTableClosed is flagged for operations on a closed table.
const ErrTableClosed = TableError("table has been closed")

// ErrTableCompleted signals that a table builder has already completed its
// table and it's illegal to further add rows.
const ErrTableCompleted = TableError("forbidden to add rows; table has been completed")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = TableError("illegal arguments")
