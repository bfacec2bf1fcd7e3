package pipeline

import (
	"context"
	"errors"
	"testing"

	"datasync/internal/journal"
	"datasync/internal/payload"
	"datasync/source/kafka"
)

type fakeSource struct {
	batches []journal.Batch
	closed  bool
}

func (f *fakeSource) Configure(kafka.Config) error { return nil }
func (f *fakeSource) Run(ctx context.Context, emit kafka.EmitFunc) error {
	for _, b := range f.batches {
		if err := emit(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
func (f *fakeSource) Close() error { f.closed = true; return nil }

type captureSink struct {
	pushed []journal.Batch
	err    error
}

func (c *captureSink) Configure(any) error { return nil }
func (c *captureSink) Push(_ context.Context, b journal.Batch) error {
	if c.err != nil {
		return c.err
	}
	c.pushed = append(c.pushed, b)
	return nil
}
func (c *captureSink) Close() error { return nil }

func TestRunner_TransformsAndForwards(t *testing.T) {
	r := NewRunner(New(testRegistry(t), "5.6.0"), &countingResolver{})
	src := &fakeSource{batches: []journal.Batch{
		{ID: "a", Table: "IDN_AUTH_SESSION_STORE", Entries: []journal.Entry{
			sessionRow(t, journal.Insert, "DEFAULT", 5, 1, payload.CacheEntry{ValidityPeriod: 9}),
		}},
		{ID: "b", Table: "UNRELATED"},
	}}
	cs := &captureSink{}
	r.SetSource(src)
	r.AddSink(cs)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(cs.pushed) != 2 {
		t.Fatalf("expected 2 pushed batches, got %d", len(cs.pushed))
	}
	if v, _ := cs.pushed[0].Entries[0].Lookup("EXPIRY_TIME"); v != int64(10) {
		t.Fatalf("want expiry 10, got %v", v)
	}
}

func TestRunner_FailFastStopsSource(t *testing.T) {
	r := NewRunner(New(testRegistry(t), "5.6.0"), &countingResolver{})
	bad := journal.Batch{ID: "bad", Table: "IDN_AUTH_SESSION_STORE", Entries: []journal.Entry{
		{Op: journal.Insert, Columns: []journal.Column{{Name: "SESSION_OBJECT", Value: []byte("x")}}},
	}}
	cs := &captureSink{}
	r.SetSource(&fakeSource{batches: []journal.Batch{bad, {ID: "next", Table: "UNRELATED"}}})
	r.AddSink(cs)

	_ = r.Start(context.Background())
	err := r.Wait()
	var se *SyncError
	if !errors.As(err, &se) || se.BatchID != "bad" {
		t.Fatalf("want SyncError for batch bad, got %v", err)
	}
	if len(cs.pushed) != 0 {
		t.Fatalf("expected nothing pushed after failure, got %d", len(cs.pushed))
	}
}

func TestRunner_SinkErrorPropagates(t *testing.T) {
	r := NewRunner(New(testRegistry(t), "5.6.0"), &countingResolver{})
	boom := errors.New("replay stage down")
	r.SetSource(&fakeSource{batches: []journal.Batch{{ID: "x", Table: "UNRELATED"}}})
	r.AddSink(&captureSink{err: boom})
	_ = r.Start(context.Background())
	if err := r.Wait(); !errors.Is(err, boom) {
		t.Fatalf("want sink error, got %v", err)
	}
}

func TestRunner_StartRequiresSourceAndSinks(t *testing.T) {
	r := NewRunner(New(testRegistry(t), "5.6.0"), &countingResolver{})
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error without source")
	}
	r.SetSource(&fakeSource{})
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error without sinks")
	}
}

func TestRunner_CloseRunsHooks(t *testing.T) {
	r := NewRunner(New(testRegistry(t), "5.6.0"), &countingResolver{})
	src := &fakeSource{}
	r.SetSource(src)
	hook := false
	r.OnClose(func() error { hook = true; return nil })
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !src.closed || !hook {
		t.Fatalf("close incomplete: source=%t hook=%t", src.closed, hook)
	}
}
