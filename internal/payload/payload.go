// Package payload decodes the opaque session objects stored in journal rows.
//
// A payload is a three byte header ("SO" + format version) followed by a
// protobuf-encoded envelope naming the payload shape and carrying that
// shape's body. Only the shapes declared here are accepted; anything else
// fails with ErrUnknownShape rather than being decoded reflectively.
package payload

import "time"

// Shape names a known payload variant.
type Shape string

const (
	ShapeCacheEntry            Shape = "CacheEntry"
	ShapeSessionContext        Shape = "SessionContext"
	ShapeAuthenticationContext Shape = "AuthenticationContext"
)

// Payload is implemented by every decoded variant.
type Payload interface {
	Shape() Shape
}

// Expiring is implemented by variants that carry their own validity period.
type Expiring interface {
	Validity() time.Duration
}

// CacheEntry wraps a cached value together with the period it stays valid.
type CacheEntry struct {
	ValidityPeriod time.Duration
	Value          []byte
}

func (CacheEntry) Shape() Shape              { return ShapeCacheEntry }
func (c CacheEntry) Validity() time.Duration { return c.ValidityPeriod }

type SessionContext struct {
	SessionID  string
	RememberMe bool
}

func (SessionContext) Shape() Shape { return ShapeSessionContext }

type AuthenticationContext struct {
	ContextID    string
	TenantDomain string
}

func (AuthenticationContext) Shape() Shape { return ShapeAuthenticationContext }

// ValidityOf returns the embedded validity period of p, or zero when the
// shape carries none.
func ValidityOf(p Payload) time.Duration {
	if e, ok := p.(Expiring); ok {
		return e.Validity()
	}
	return 0
}
