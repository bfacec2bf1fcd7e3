// Package journal models captured change records and the typed column
// access used by row transformers.
package journal

import (
	"bytes"
	"fmt"
	"strings"
)

type Operation string

const (
	Insert Operation = "INSERT"
	Update Operation = "UPDATE"
	Delete Operation = "DELETE"
)

// ParseOperation accepts the operation names in any letter case.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToUpper(strings.TrimSpace(s))); op {
	case Insert, Update, Delete:
		return op, nil
	default:
		return "", fmt.Errorf("journal: unknown operation %q", s)
	}
}

// Column is one named raw value. Names keep the casing they were captured with.
type Column struct {
	Name  string
	Value any
}

// Entry is a single captured change record.
type Entry struct {
	Op      Operation
	Columns []Column
}

// Lookup returns the value stored under exactly name.
func (e *Entry) Lookup(name string) (any, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Set overwrites the column called name, or appends it when absent.
func (e *Entry) Set(name string, v any) {
	for i := range e.Columns {
		if e.Columns[i].Name == name {
			e.Columns[i].Value = v
			return
		}
	}
	e.Columns = append(e.Columns, Column{Name: name, Value: v})
}

func (e Entry) clone() Entry {
	cols := make([]Column, len(e.Columns))
	for i, c := range e.Columns {
		if b, ok := c.Value.([]byte); ok && b != nil {
			c.Value = bytes.Clone(b)
		}
		cols[i] = c
	}
	return Entry{Op: e.Op, Columns: cols}
}

// Batch is an ordered run of entries captured from one table.
type Batch struct {
	ID      string
	Table   string
	Entries []Entry
}

// Clone returns a deep copy; byte payloads are not shared with the original.
func (b Batch) Clone() Batch {
	out := Batch{ID: b.ID, Table: b.Table}
	if b.Entries != nil {
		out.Entries = make([]Entry, len(b.Entries))
		for i, e := range b.Entries {
			out.Entries[i] = e.clone()
		}
	}
	return out
}

// Patch is a derived value to be written into row Row under Column.
// Column is the physical name, already in the batch's identifier case.
type Patch struct {
	Row    int
	Column string
	Value  any
}

// Apply writes every patch into b in order. It validates all row indexes
// before touching any entry.
func (b *Batch) Apply(patches []Patch) error {
	for _, p := range patches {
		if p.Row < 0 || p.Row >= len(b.Entries) {
			return fmt.Errorf("journal: patch row %d out of range [0,%d)", p.Row, len(b.Entries))
		}
	}
	for _, p := range patches {
		b.Entries[p.Row].Set(p.Column, p.Value)
	}
	return nil
}
