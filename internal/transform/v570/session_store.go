// Package v570 holds the transformers for the 5.7.0 schema.
package v570

import (
	"datasync/internal/journal"
	"datasync/internal/transform"
	"datasync/internal/transform/session"
)

const Version = "5.7.0"

// SessionStore recomputes EXPIRY_TIME for IDN_AUTH_SESSION_STORE rows.
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

// TempSessionStore fills EXPIRY_TIME for IDN_AUTH_TEMP_SESSION_STORE, the
// table 5.7.0 splits off for short-lived authentication contexts. Its policy
// is expected to resolve the temporary cleanup timeout for every category.
type TempSessionStore struct {
	policy session.Policy
}

func NewTempSessionStore(p session.Policy) *TempSessionStore { return &TempSessionStore{policy: p} }

func (*TempSessionStore) Advice() transform.VersionAdvice {
	return transform.VersionAdvice{Version: Version, Table: "IDN_AUTH_TEMP_SESSION_STORE"}
}

func (s *TempSessionStore) Transform(b journal.Batch, c *transform.Context) ([]journal.Patch, error) {
	return session.Expiries(b, c, s.policy)
}
