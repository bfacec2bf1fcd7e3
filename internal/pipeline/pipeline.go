package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"datasync/internal/journal"
	"datasync/internal/logging"
	"datasync/internal/target"
	"datasync/internal/telemetry"
	"datasync/internal/transform"
)

// SyncError aborts a batch. Row is -1 when the failure is not tied to a row.
type SyncError struct {
	BatchID     string
	Table       string
	Transformer string
	Row         int
	Err         error
}

func (e *SyncError) Error() string {
	msg := fmt.Sprintf("sync: batch %q table %s", e.BatchID, e.Table)
	if e.Transformer != "" {
		msg += " transformer " + e.Transformer
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	return msg + ": " + e.Err.Error()
}

func (e *SyncError) Unwrap() error { return e.Err }

// Pipeline applies the registered transformers to whole batches. It holds no
// per-batch state and may be shared by concurrent callers.
type Pipeline struct {
	registry    *transform.Registry
	version     string
	fromVersion string
	decode      transform.DecodePolicy
}

type Option func(*Pipeline)

// WithUpgradeFrom chains every transformer after from up to the target version.
func WithUpgradeFrom(from string) Option { return func(p *Pipeline) { p.fromVersion = from } }

func WithDecodePolicy(d transform.DecodePolicy) Option { return func(p *Pipeline) { p.decode = d } }

func New(reg *transform.Registry, targetVersion string, opts ...Option) *Pipeline {
	p := &Pipeline{registry: reg, version: targetVersion, decode: transform.DecodeAbort}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) chain(table string) []transform.Transformer {
	if p.fromVersion != "" {
		return p.registry.Chain(table, p.fromVersion, p.version)
	}
	// An unknown table is not a failure: nothing to derive for it.
	t, err := p.registry.Lookup(table, p.version)
	if err != nil {
		return nil
	}
	return []transform.Transformer{t}
}

// Run returns a rewritten copy of b. The input batch is never modified. On
// error no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, b journal.Batch, cr target.CaseResolver) (journal.Batch, error) {
	start := time.Now()
	log := logging.ForBatch(b)

	chain := p.chain(b.Table)
	if len(chain) == 0 {
		log.Debug("no transformer registered, passing batch through", "version", p.version)
		telemetry.BatchesTotal.WithLabelValues(b.Table, telemetry.ResultPassThrough).Inc()
		return b, nil
	}

	lower, err := cr.LowerCaseIdentifiers(ctx, b.Table)
	if err != nil {
		return journal.Batch{}, p.fail(b, "", err)
	}
	tc := &transform.Context{
		LowerCase: lower,
		Decode:    p.decode,
		OnSkip: func(row int, err error) {
			log.Warn("skipping row with undecodable payload", "row", row, "err", err)
			telemetry.RowsSkipped.WithLabelValues(b.Table, "payload_decode").Inc()
		},
	}

	out := b.Clone()
	for _, t := range chain {
		name := t.Advice().String()
		patches, err := t.Transform(out, tc)
		if err != nil {
			return journal.Batch{}, p.fail(b, name, err)
		}
		if err := out.Apply(patches); err != nil {
			return journal.Batch{}, p.fail(b, name, err)
		}
		telemetry.RowsDerived.WithLabelValues(b.Table, name).Add(float64(len(patches)))
		log.Debug("transformer applied", "transformer", name, "patches", len(patches))
	}

	telemetry.BatchesTotal.WithLabelValues(b.Table, telemetry.ResultOK).Inc()
	telemetry.BatchDuration.WithLabelValues(b.Table).Observe(time.Since(start).Seconds())
	return out, nil
}

func (p *Pipeline) fail(b journal.Batch, transformer string, err error) error {
	se := &SyncError{BatchID: b.ID, Table: b.Table, Transformer: transformer, Row: -1, Err: err}
	var re *transform.RowError
	if errors.As(err, &re) {
		se.Row, se.Err = re.Row, re.Err
	}
	telemetry.BatchesTotal.WithLabelValues(b.Table, telemetry.ResultFailed).Inc()
	logging.ForBatch(b).Error("batch transform aborted", "transformer", transformer, "row", se.Row, "err", se.Err)
	return se
}
