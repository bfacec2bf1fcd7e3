package transform

import (
	"fmt"

	"datasync/internal/journal"
)

// VersionAdvice is the static metadata attached to every transformer.
type VersionAdvice struct {
	Version string // target schema version, e.g. "5.6.0"
	Table   string
}

func (a VersionAdvice) String() string { return a.Table + "@" + a.Version }

type Transformer interface {
	Advice() VersionAdvice
	Transform(b journal.Batch, c *Context) ([]journal.Patch, error)
}

// DecodePolicy decides what happens to a row whose payload cannot be decoded.
type DecodePolicy string

const (
	DecodeAbort   DecodePolicy = "abort"
	DecodeSkipRow DecodePolicy = "skip_row"
)

func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch p := DecodePolicy(s); p {
	case "", DecodeAbort:
		return DecodeAbort, nil
	case DecodeSkipRow:
		return p, nil
	default:
		return "", fmt.Errorf("transform: unknown decode policy %q", s)
	}
}

// Context is shared by every transformer run over one batch. It is built
// once per batch and not modified afterwards.
type Context struct {
	LowerCase bool
	Decode    DecodePolicy

	// OnSkip, when set, observes rows left untouched under DecodeSkipRow.
	OnSkip func(row int, err error)
}

// Column returns the physical name of a canonical column for this batch.
func (c *Context) Column(logical string) string {
	return journal.ColumnName(logical, c.LowerCase)
}

// Skip reports whether a row-level decode failure should be tolerated, and
// records it if so.
func (c *Context) Skip(row int, err error) bool {
	if c.Decode != DecodeSkipRow {
		return false
	}
	if c.OnSkip != nil {
		c.OnSkip(row, err)
	}
	return true
}

// RowError attributes a failure to one row of the batch.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// UnknownTableError is returned by Registry.Lookup. The pipeline treats it
// as an empty chain, not a failure.
type UnknownTableError struct {
	Table   string
	Version string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("transform: no transformer for table %q at version %q", e.Table, e.Version)
}
