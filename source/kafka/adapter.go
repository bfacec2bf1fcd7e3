package kafka

import (
	"context"

	"datasync/internal/journal"
)

// EmitFunc hands one decoded batch to the pipeline. A non-nil error stops
// the source without committing the batch's offset.
type EmitFunc func(context.Context, journal.Batch) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, EmitFunc) error
	Close() error
}
