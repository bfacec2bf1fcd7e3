// Package expiry computes how long a captured session stays valid when the
// session object does not say so itself.
//
// Resolution walks an ordered list of tiers and the first tier that yields a
// duration wins. Configuration collaborators hand out plain counts in their
// own units (minutes, seconds); every tier converts to time.Duration, whose
// unit is the nanosecond, before returning.
package expiry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// InvalidTenant is the tenant id carried by rows that belong to no tenant.
const InvalidTenant int64 = -1

var (
	// ErrInvalidTenant is returned by a TenantDirectory for InvalidTenant.
	ErrInvalidTenant = errors.New("invalid tenant")
	ErrNoPolicy      = errors.New("no expiry policy applies")
)

// CategoryRegistry knows which session categories are temporary.
type CategoryRegistry interface {
	// IsTemporary reports false with a nil error for unknown categories.
	IsTemporary(manager, category string) (bool, error)
	TempCleanupMinutes() (int64, error)
}

type TenantDirectory interface {
	TenantDomain(tenant int64) (string, error)
	RememberMeSeconds(domain string) (int64, error)
}

type GlobalConfig interface {
	CleanupMinutes() (int64, error)
}

// Request is the input every tier sees.
type Request struct {
	Category string
	Tenant   int64
}

// Tier is one source of a validity duration. ok=false passes to the next tier.
type Tier struct {
	Name    string
	Resolve func(Request) (d time.Duration, ok bool, err error)
}

// ResolutionError means a collaborator failed or returned something unusable.
// Guessing a lifetime instead would keep sessions alive too long or too short.
type ResolutionError struct {
	Tier     string
	Category string
	Tenant   int64
	Err      error
}

func (e *ResolutionError) Error() string {
	if e.Tier == "" {
		return fmt.Sprintf("expiry: category %q tenant %d: %v", e.Category, e.Tenant, e.Err)
	}
	return fmt.Sprintf("expiry: tier %s: category %q tenant %d: %v", e.Tier, e.Category, e.Tenant, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver is immutable once built and safe for concurrent use as long as
// its collaborators are.
type Resolver struct {
	tiers []Tier
}

func New(tiers ...Tier) *Resolver {
	return &Resolver{tiers: append([]Tier(nil), tiers...)}
}

// Standard builds the temporary-category, tenant, global chain.
func Standard(manager string, cats CategoryRegistry, tenants TenantDirectory, global GlobalConfig) *Resolver {
	return New(
		TemporaryCategoryTier(manager, cats),
		TenantTier(tenants),
		GlobalTier(global),
	)
}

// Tiers lists tier names in evaluation order.
func (r *Resolver) Tiers() []string {
	names := make([]string, len(r.tiers))
	for i, t := range r.tiers {
		names[i] = t.Name
	}
	return names
}

func (r *Resolver) Resolve(category string, tenant int64) (time.Duration, error) {
	req := Request{Category: category, Tenant: tenant}
	for _, t := range r.tiers {
		d, ok, err := t.Resolve(req)
		if err != nil {
			return 0, &ResolutionError{Tier: t.Name, Category: category, Tenant: tenant, Err: err}
		}
		if ok {
			return d, nil
		}
	}
	return 0, &ResolutionError{Category: category, Tenant: tenant, Err: ErrNoPolicy}
}

func TemporaryCategoryTier(manager string, cats CategoryRegistry) Tier {
	return Tier{
		Name: "temporary-category",
		Resolve: func(req Request) (time.Duration, bool, error) {
			temp, err := cats.IsTemporary(manager, req.Category)
			if err != nil || !temp {
				return 0, false, err
			}
			mins, err := cats.TempCleanupMinutes()
			if err != nil {
				return 0, false, err
			}
			d, err := toDuration(mins, time.Minute)
			return d, err == nil, err
		},
	}
}

// TempCleanupTier always yields the temporary cleanup timeout, for stores
// whose rows are temporary regardless of category.
func TempCleanupTier(cats CategoryRegistry) Tier {
	return Tier{
		Name: "temp-cleanup",
		Resolve: func(Request) (time.Duration, bool, error) {
			mins, err := cats.TempCleanupMinutes()
			if err != nil {
				return 0, false, err
			}
			d, err := toDuration(mins, time.Minute)
			return d, err == nil, err
		},
	}
}

func TenantTier(tenants TenantDirectory) Tier {
	return Tier{
		Name: "tenant",
		Resolve: func(req Request) (time.Duration, bool, error) {
			if req.Tenant == InvalidTenant {
				return 0, false, nil
			}
			domain, err := tenants.TenantDomain(req.Tenant)
			if err != nil {
				return 0, false, err
			}
			secs, err := tenants.RememberMeSeconds(domain)
			if err != nil {
				return 0, false, err
			}
			d, err := toDuration(secs, time.Second)
			return d, err == nil, err
		},
	}
}

func GlobalTier(global GlobalConfig) Tier {
	return Tier{
		Name: "global",
		Resolve: func(Request) (time.Duration, bool, error) {
			mins, err := global.CleanupMinutes()
			if err != nil {
				return 0, false, err
			}
			d, err := toDuration(mins, time.Minute)
			return d, err == nil, err
		},
	}
}

func toDuration(n int64, unit time.Duration) (time.Duration, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative timeout %d × %s", n, unit)
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("timeout %d × %s overflows", n, unit)
	}
	return time.Duration(n) * unit, nil
}
