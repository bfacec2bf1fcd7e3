// Package v560 holds the transformers for the 5.6.0 schema.
package v560

import (
	"datasync/internal/journal"
	"datasync/internal/transform"
	"datasync/internal/transform/session"
)

const Version = "5.6.0"

// SessionStore fills EXPIRY_TIME, introduced in 5.6.0, for
// IDN_AUTH_SESSION_STORE rows captured from older schemas.
type SessionStore struct {
	policy session.Policy
}

func NewSessionStore(p session.Policy) *SessionStore { return &SessionStore{policy: p} }

func (*SessionStore) Advice() transform.VersionAdvice {
	return transform.VersionAdvice{Version: Version, Table: "IDN_AUTH_SESSION_STORE"}
}

func (s *SessionStore) Transform(b journal.Batch, c *transform.Context) ([]journal.Patch, error) {
	return session.Expiries(b, c, s.policy)
}
