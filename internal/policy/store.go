// Package policy serves the cache-category, tenant and global timeout
// settings consumed by the expiry resolver from a loaded Config.
package policy

import (
	"fmt"

	"datasync/internal/expiry"
)

type cacheKey struct{ manager, name string }

// Store is read-only after NewStore and safe for concurrent readers.
// The super tenant resolves to carbon.super unless configured otherwise.
type Store struct {
	tempCleanup       int64
	cleanup           int64
	defaultRememberMe int64

	caches  map[cacheKey]bool
	tenants map[int64]string
	domains map[string]int64
}

var (
	_ expiry.CategoryRegistry = (*Store)(nil)
	_ expiry.TenantDirectory  = (*Store)(nil)
	_ expiry.GlobalConfig     = (*Store)(nil)
)

// NewStore takes cfg as given; start from DefaultConfig for the stock
// timeouts.
func NewStore(cfg Config) (*Store, error) {
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		tempCleanup:       cfg.TempCleanupMinutes,
		cleanup:           cfg.CleanupMinutes,
		defaultRememberMe: cfg.DefaultRememberMeSeconds,
		caches:            make(map[cacheKey]bool, len(cfg.Caches)),
		tenants:           make(map[int64]string, len(cfg.Tenants)),
		domains:           make(map[string]int64, len(cfg.Domains)),
	}
	for _, c := range cfg.Caches {
		s.caches[cacheKey{c.Manager, c.Name}] = c.Temporary
	}
	for _, t := range cfg.Tenants {
		s.tenants[t.ID] = t.Domain
	}
	if _, ok := s.tenants[SuperTenantID]; !ok {
		s.tenants[SuperTenantID] = SuperTenantDomain
	}
	for _, d := range cfg.Domains {
		s.domains[d.Domain] = d.RememberMeSeconds
	}
	return s, nil
}

func (s *Store) IsTemporary(manager, category string) (bool, error) {
	return s.caches[cacheKey{manager, category}], nil
}

func (s *Store) TempCleanupMinutes() (int64, error) { return s.tempCleanup, nil }

func (s *Store) CleanupMinutes() (int64, error) { return s.cleanup, nil }

func (s *Store) TenantDomain(tenant int64) (string, error) {
	if tenant == expiry.InvalidTenant {
		return "", expiry.ErrInvalidTenant
	}
	d, ok := s.tenants[tenant]
	if !ok {
		return "", fmt.Errorf("policy: tenant %d is not in the directory", tenant)
	}
	return d, nil
}

// RememberMeSeconds falls back to the configured default for domains
// without an explicit setting.
func (s *Store) RememberMeSeconds(domain string) (int64, error) {
	if v, ok := s.domains[domain]; ok {
		return v, nil
	}
	return s.defaultRememberMe, nil
}
