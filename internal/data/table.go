package data

import (
	"fmt"

	"github.com/udisondev/gamekit/internal/event"
)

// Row is a table row addressed by name.
type Row interface {
	RowName() string
}

// Table is a named set of rows of one type.
// Rows may be replaced at runtime (hot reload); holders of row pointers
// subscribe with OnChanged and re-resolve.
//
// Not safe for concurrent use, mutate only from the world tick goroutine.
type Table[T Row] struct {
	name    string
	rows    map[string]*T
	order   []string
	changed event.Signal[struct{}]
}

// NewTable builds a table from rows. Duplicate row names are rejected.
func NewTable[T Row](name string, rows []T) (*Table[T], error) {
	t := &Table[T]{name: name}
	if err := t.fill(rows); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[T]) fill(rows []T) error {
	byName := make(map[string]*T, len(rows))
	order := make([]string, 0, len(rows))
	for i := range rows {
		name := rows[i].RowName()
		if name == "" {
			return fmt.Errorf("table %s: row %d has empty name", t.name, i)
		}
		if _, dup := byName[name]; dup {
			return fmt.Errorf("table %s: duplicate row %q", t.name, name)
		}
		row := rows[i]
		byName[name] = &row
		order = append(order, name)
	}
	t.rows = byName
	t.order = order
	return nil
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

// FindRow returns the row with the given name.
func (t *Table[T]) FindRow(name string) (*T, bool) {
	row, ok := t.rows[name]
	return row, ok
}

// Rows returns all rows in load order.
func (t *Table[T]) Rows() []*T {
	out := make([]*T, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.rows[name])
	}
	return out
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	return len(t.rows)
}

// Replace swaps the table contents and notifies subscribers.
// On error the previous contents are kept.
func (t *Table[T]) Replace(rows []T) error {
	prevRows, prevOrder := t.rows, t.order
	if err := t.fill(rows); err != nil {
		t.rows, t.order = prevRows, prevOrder
		return err
	}
	t.changed.Emit(struct{}{})
	return nil
}

// OnChanged subscribes fn to content replacement. The returned func unsubscribes.
func (t *Table[T]) OnChanged(fn func()) func() {
	h := t.changed.Subscribe(func(struct{}) { fn() })
	return func() { t.changed.Unsubscribe(h) }
}
