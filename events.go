package tinydb

import (
	"context"

	"github.com/google/uuid"
)

// EventKind tells what happened to a table.
type EventKind int8

// Kinds of change events.
const (
	RowInserted EventKind = iota + 1
	RowUpdated
	RowDeleted
	TableCleared
)

func (k EventKind) String() string {
	switch k {
	case RowInserted:
		return "insert"
	case RowUpdated:
		return "update"
	case RowDeleted:
		return "delete"
	case TableCleared:
		return "clear"
	}
	return "unknown"
}

// Event describes a change of a table. Row is the zero row for TableCleared.
type Event struct {
	Table uuid.UUID
	Kind  EventKind
	Row   Row
}

// Subscribe registers for change events of the table. Events are delivered
// in the order the changes happened, on a channel buffering up to capacity
// events. The channel is closed when ctx is done or the table is closed.
//
// Subscribers have to keep up: once a subscriber's buffer is full, further
// modifications of the table wait for it. A subscriber must therefore not
// modify the table while it is not receiving events.
func (t *Table) Subscribe(ctx context.Context, capacity uint) (<-chan Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return nil, ErrTableClosed
	}
	msgs, ok := t.cast.Sub(ctx, capacity)
	if !ok {
		return nil, ErrTableClosed
	}
	events := make(chan Event, capacity)
	go func() {
		defer close(events)
		for msg := range msgs {
			ev, ok := msg.(Event)
			if !ok {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				// drain until the caster drops the subscription
				for range msgs {
				}
				return
			}
		}
	}()
	return events, nil
}

// publish broadcasts ev to all subscribers. It must be called with the
// table's write lock held, so that events are ordered as the changes are.
func (t *Table) publish(ev Event) {
	if !t.cast.Pub(ev) {
		T().Debugf("tinydb: table %s closed, dropping %s event", t.id, ev.Kind)
	}
}
