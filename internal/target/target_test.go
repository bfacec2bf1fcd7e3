package target

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeRow struct {
	found bool
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.found
	return nil
}

type fakeQuerier struct {
	row  fakeRow
	args []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestPostgres_ProbesLowerCasedName(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{found: true}}
	lower, err := NewPostgres(q).LowerCaseIdentifiers(context.Background(), "IDN_AUTH_SESSION_STORE")
	if err != nil {
		t.Fatalf("LowerCaseIdentifiers: %v", err)
	}
	if !lower {
		t.Fatal("want lower-case convention")
	}
	if len(q.args) != 1 || q.args[0] != "idn_auth_session_store" {
		t.Fatalf("unexpected probe args %v", q.args)
	}
}

func TestPostgres_ProbeError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("conn reset")}}
	if _, err := NewPostgres(q).LowerCaseIdentifiers(context.Background(), "T"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStatic(t *testing.T) {
	if lower, _ := Static(true).LowerCaseIdentifiers(context.Background(), "T"); !lower {
		t.Fatal("want true")
	}
}

// safeQuerier records every lookup under a lock, like a pool serving
// several callers at once.
type safeQuerier struct {
	mu     sync.Mutex
	tables []string
}

func (q *safeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.mu.Lock()
	q.tables = append(q.tables, args[0].(string))
	q.mu.Unlock()
	return fakeRow{found: true}
}

func TestPostgres_ConcurrentLookups(t *testing.T) {
	q := &safeQuerier{}
	p := NewPostgres(q)
	tables := []string{"IDN_AUTH_SESSION_STORE", "IDN_AUTH_TEMP_SESSION_STORE", "A", "B", "C", "D", "E", "F"}

	var wg sync.WaitGroup
	errs := make(chan error, len(tables))
	for _, table := range tables {
		wg.Add(1)
		go func(table string) {
			defer wg.Done()
			if _, err := p.LowerCaseIdentifiers(context.Background(), table); err != nil {
				errs <- err
			}
		}(table)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("LowerCaseIdentifiers: %v", err)
	}
	if len(q.tables) != len(tables) {
		t.Fatalf("want %d lookups, got %d", len(tables), len(q.tables))
	}
	for _, got := range q.tables {
		if got != strings.ToLower(got) {
			t.Fatalf("lookup sent unlowered name %q", got)
		}
	}
}

func TestConnect_RejectsBadDSN(t *testing.T) {
	if _, err := Connect(context.Background(), "postgres://user@localhost:notaport/db"); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}
