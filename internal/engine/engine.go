package engine

import (
	"context"
)

// batchRunner is the part of *pipeline.Runner the engine drives.
type batchRunner interface {
	Wait() error
	Close() error
}

type Engine struct {
	runner batchRunner
}

// Run blocks until the source stops, either because ctx was cancelled or
// because a batch failed. Resources are released in both cases.
func (e *Engine) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- e.runner.Wait() }()

	select {
	case err := <-done:
		_ = e.runner.Close()
		return err
	case <-ctx.Done():
		err := <-done
		_ = e.runner.Close()
		return err
	}
}
