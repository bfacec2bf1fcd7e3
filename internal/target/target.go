// Package target reports the identifier case convention of the store the
// rewritten batches are replayed into.
package target

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseResolver reports whether the target keeps the given table's
// identifiers in lower case.
type CaseResolver interface {
	LowerCaseIdentifiers(ctx context.Context, table string) (bool, error)
}

// Static is a fixed convention taken from configuration.
type Static bool

func (s Static) LowerCaseIdentifiers(context.Context, string) (bool, error) { return bool(s), nil }

// Querier is the subset of *pgxpool.Pool the probe needs. Batches from
// different partitions probe concurrently, so it must be safe for
// concurrent use; a bare *pgx.Conn is not.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// Postgres probes information_schema. PostgreSQL folds unquoted identifiers
// to lower case, so a table created without quotes is found under its
// lower-cased name; one created quoted in upper case is not.
type Postgres struct {
	db Querier
}

func NewPostgres(db Querier) *Postgres { return &Postgres{db: db} }

const lowerCaseProbe = `
SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_name = $1 AND table_schema = ANY (current_schemas(false))
)`

func (p *Postgres) LowerCaseIdentifiers(ctx context.Context, table string) (bool, error) {
	var found bool
	if err := p.db.QueryRow(ctx, lowerCaseProbe, strings.ToLower(table)).Scan(&found); err != nil {
		return false, fmt.Errorf("target: probe identifier case for %s: %w", table, err)
	}
	return found, nil
}

// Connect opens a connection pool for the probe and checks it is reachable.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("target: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("target: ping: %w", err)
	}
	return pool, nil
}
