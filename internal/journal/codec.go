package journal

import (
	"encoding/json"
	"fmt"
)

// Value kinds carried on the wire. JSON alone cannot tell an int32 from an
// int64 or a string from base64 bytes, so every column names its kind.
const (
	KindNull   = "null"
	KindString = "string"
	KindInt32  = "int32"
	KindInt64  = "int64"
	KindBool   = "bool"
	KindBytes  = "bytes"
)

type wireColumn struct {
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

type wireRow struct {
	Op      Operation    `json:"op"`
	Columns []wireColumn `json:"columns"`
}

type wireBatch struct {
	ID    string    `json:"id,omitempty"`
	Table string    `json:"table"`
	Rows  []wireRow `json:"rows"`
}

// EncodeBatch renders b in the typed JSON envelope exchanged with the
// capture and replay stages.
func EncodeBatch(b Batch) ([]byte, error) {
	wb := wireBatch{ID: b.ID, Table: b.Table, Rows: make([]wireRow, len(b.Entries))}
	for i, e := range b.Entries {
		row := wireRow{Op: e.Op, Columns: make([]wireColumn, len(e.Columns))}
		for j, c := range e.Columns {
			wc, err := encodeColumn(c)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			row.Columns[j] = wc
		}
		wb.Rows[i] = row
	}
	return json.Marshal(wb)
}

func encodeColumn(c Column) (wireColumn, error) {
	wc := wireColumn{Name: c.Name}
	var v any
	switch x := c.Value.(type) {
	case nil:
		wc.Kind = KindNull
		return wc, nil
	case string:
		wc.Kind, v = KindString, x
	case int32:
		wc.Kind, v = KindInt32, x
	case int64:
		wc.Kind, v = KindInt64, x
	case int:
		wc.Kind, v = KindInt64, int64(x)
	case bool:
		wc.Kind, v = KindBool, x
	case []byte:
		if x == nil {
			wc.Kind = KindNull
			return wc, nil
		}
		wc.Kind, v = KindBytes, x
	default:
		return wc, fmt.Errorf("journal: column %q: unsupported value type %T", c.Name, c.Value)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return wc, err
	}
	wc.Value = raw
	return wc, nil
}

// DecodeBatch parses the envelope produced by EncodeBatch.
func DecodeBatch(data []byte) (Batch, error) {
	var wb wireBatch
	if err := json.Unmarshal(data, &wb); err != nil {
		return Batch{}, fmt.Errorf("journal: decode batch: %w", err)
	}
	if wb.Table == "" {
		return Batch{}, fmt.Errorf("journal: decode batch: missing table")
	}
	b := Batch{ID: wb.ID, Table: wb.Table, Entries: make([]Entry, len(wb.Rows))}
	for i, r := range wb.Rows {
		op, err := ParseOperation(string(r.Op))
		if err != nil {
			return Batch{}, fmt.Errorf("row %d: %w", i, err)
		}
		e := Entry{Op: op, Columns: make([]Column, len(r.Columns))}
		for j, wc := range r.Columns {
			v, err := decodeColumn(wc)
			if err != nil {
				return Batch{}, fmt.Errorf("row %d: %w", i, err)
			}
			e.Columns[j] = Column{Name: wc.Name, Value: v}
		}
		b.Entries[i] = e
	}
	return b, nil
}

func decodeColumn(wc wireColumn) (any, error) {
	var err error
	switch wc.Kind {
	case KindNull, "":
		return nil, nil
	case KindString:
		var v string
		err = json.Unmarshal(wc.Value, &v)
		if err == nil {
			return v, nil
		}
	case KindInt32:
		var v int32
		err = json.Unmarshal(wc.Value, &v)
		if err == nil {
			return v, nil
		}
	case KindInt64:
		var v int64
		err = json.Unmarshal(wc.Value, &v)
		if err == nil {
			return v, nil
		}
	case KindBool:
		var v bool
		err = json.Unmarshal(wc.Value, &v)
		if err == nil {
			return v, nil
		}
	case KindBytes:
		var v []byte
		err = json.Unmarshal(wc.Value, &v)
		if err == nil {
			return v, nil
		}
	default:
		return nil, fmt.Errorf("journal: column %q: unknown kind %q", wc.Name, wc.Kind)
	}
	return nil, fmt.Errorf("journal: column %q: %w", wc.Name, err)
}
