// datasync/sink/stdout/driver.go
package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"datasync/internal/journal"
	"datasync/sink"
)

/* ────────── public YAML config ────────── */
type Config struct {
	Pretty        bool `yaml:"pretty"`          // indent each batch
	ValueMaxBytes int  `yaml:"value_max_bytes"` // 0 = print whole batch
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config

	mu  sync.Mutex // serializes writes to out
	out io.Writer
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	if d.out == nil {
		d.out = os.Stdout
	}
	return nil
}

func (d *driver) Push(_ context.Context, b journal.Batch) error {
	raw, err := journal.EncodeBatch(b)
	if err != nil {
		return fmt.Errorf("stdout-sink: %w", err)
	}
	if d.cfg.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		raw = buf.Bytes()
	}
	if n := d.cfg.ValueMaxBytes; n > 0 && len(raw) > n {
		raw = append(raw[:n:n], "…"...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = fmt.Fprintf(d.out, "[sink] %s rows=%d %s\n", b.Table, len(b.Entries), raw)
	return err
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
