package pipeline

import (
	"context"
	"errors"
	"fmt"

	"datasync/internal/journal"
	"datasync/internal/logging"
	"datasync/internal/target"
	"datasync/sink"
	"datasync/source/kafka"
)

// Runner moves batches from the source through the pipeline to every sink.
type Runner struct {
	source   kafka.Adapter
	sinks    []sink.Adapter
	pipeline *Pipeline
	target   target.CaseResolver
	closers  []func() error

	done chan error
}

func NewRunner(p *Pipeline, t target.CaseResolver) *Runner {
	return &Runner{pipeline: p, target: t}
}

func (r *Runner) AddSink(s sink.Adapter)    { r.sinks = append(r.sinks, s) }
func (r *Runner) SetSource(s kafka.Adapter) { r.source = s }

// OnClose registers a release hook run by Close after sources and sinks.
func (r *Runner) OnClose(fn func() error) { r.closers = append(r.closers, fn) }

/*──────── batch routing ───────*/
func (r *Runner) handleBatch(ctx context.Context, b journal.Batch) error {
	out, err := r.pipeline.Run(ctx, b, r.target)
	if err != nil {
		return err
	}
	for _, s := range r.sinks {
		if err := s.Push(ctx, out); err != nil {
			return fmt.Errorf("sink: batch %q: %w", b.ID, err)
		}
	}
	return nil
}

// Start launches the source. Its terminal error is delivered by Wait.
func (r *Runner) Start(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	if len(r.sinks) == 0 {
		return errors.New("runner: no sinks configured")
	}
	r.done = make(chan error, 1)
	go func() { r.done <- r.source.Run(ctx, r.handleBatch) }()
	return nil
}

// Wait blocks until the source stops. Cancellation is not reported as an error.
func (r *Runner) Wait() error {
	if r.done == nil {
		return nil
	}
	err := <-r.done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, s := range r.sinks {
		errs = append(errs, s.Close())
	}
	for _, fn := range r.closers {
		errs = append(errs, fn())
	}
	if err := errors.Join(errs...); err != nil {
		logging.L().Warn("runner: close", "err", err)
		return err
	}
	return nil
}
