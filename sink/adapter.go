package sink

import (
	"context"
	"fmt"

	"datasync/internal/journal"
)

// Adapter is the common behaviour every sink exposes. Push may be called
// from several partitions' goroutines at once.
type Adapter interface {
	Configure(any) error                       // driver-specific YAML ⇒ struct
	Push(context.Context, journal.Batch) error // hand one rewritten batch downstream
	Close() error                              // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
