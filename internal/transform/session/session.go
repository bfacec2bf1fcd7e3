// Package session derives EXPIRY_TIME for rows of the authentication
// session store tables.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"datasync/internal/journal"
	"datasync/internal/payload"
	"datasync/internal/transform"
)

// Policy resolves a validity period for rows whose payload carries none.
type Policy interface {
	Resolve(category string, tenant int64) (time.Duration, error)
}

var errExpiryOverflow = errors.New("expiry time overflows")

// Expiries returns one EXPIRY_TIME patch per live row with a payload.
// TIME_CREATED and the returned expiry are both nanoseconds.
//
// DELETE rows and rows without a session object are skipped before any
// column is read; they carry no lifetime to compute.
func Expiries(b journal.Batch, c *transform.Context, p Policy) ([]journal.Patch, error) {
	var patches []journal.Patch
	for i := range b.Entries {
		e := &b.Entries[i]
		if e.Op == journal.Delete {
			continue
		}

		blob, err := journal.Get[[]byte](e, journal.ColumnSessionObject, c.LowerCase)
		if err != nil {
			return nil, &transform.RowError{Row: i, Err: err}
		}
		obj, err := payload.Decode(blob)
		if err != nil {
			if c.Skip(i, err) {
				continue
			}
			return nil, &transform.RowError{Row: i, Err: fmt.Errorf("column %s: %w", c.Column(journal.ColumnSessionObject), err)}
		}
		if obj == nil {
			continue
		}

		created, err := journal.Int64(e, journal.ColumnTimeCreated, c.LowerCase)
		if err != nil {
			return nil, &transform.RowError{Row: i, Err: err}
		}

		validity := payload.ValidityOf(obj)
		if validity == 0 {
			category, err := journal.Get[string](e, journal.ColumnSessionType, c.LowerCase)
			if err != nil {
				return nil, &transform.RowError{Row: i, Err: err}
			}
			tenant, err := journal.Int64(e, journal.ColumnTenantID, c.LowerCase)
			if err != nil {
				return nil, &transform.RowError{Row: i, Err: err}
			}
			if validity, err = p.Resolve(category, tenant); err != nil {
				return nil, &transform.RowError{Row: i, Err: err}
			}
		}

		if created > math.MaxInt64-int64(validity) {
			return nil, &transform.RowError{Row: i, Err: errExpiryOverflow}
		}
		patches = append(patches, journal.Patch{
			Row:    i,
			Column: c.Column(journal.ColumnExpiryTime),
			Value:  created + int64(validity),
		})
	}
	return patches, nil
}
