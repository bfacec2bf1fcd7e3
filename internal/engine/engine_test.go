package engine

import (
	"context"
	"errors"
	"testing"
)

type fakeRunner struct {
	wait   chan error
	closed bool
}

func (f *fakeRunner) Wait() error  { return <-f.wait }
func (f *fakeRunner) Close() error { f.closed = true; return nil }

func TestEngineRun_ReturnsRunnerFailure(t *testing.T) {
	boom := errors.New("batch aborted")
	fr := &fakeRunner{wait: make(chan error, 1)}
	fr.wait <- boom
	err := (&Engine{runner: fr}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want runner error, got %v", err)
	}
	if !fr.closed {
		t.Fatal("runner not closed")
	}
}

func TestEngineRun_CancelWaitsForSource(t *testing.T) {
	fr := &fakeRunner{wait: make(chan error)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go func() { fr.wait <- nil }()
	if err := (&Engine{runner: fr}).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !fr.closed {
		t.Fatal("runner not closed")
	}
}

func TestBootstrap_RequiresPipeline(t *testing.T) {
	if _, err := Bootstrap(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without pipeline file")
	}
}
