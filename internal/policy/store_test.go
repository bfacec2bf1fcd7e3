package policy

import (
	"errors"
	"testing"

	"datasync/internal/expiry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Caches = []CacheConfig{{Name: "TempAuthnCache", Temporary: true}, {Name: "AppAuthFrameworkSessionContextCache"}}
	cfg.Tenants = []TenantConfig{{ID: -1234, Domain: "carbon.super"}, {ID: 5, Domain: "wso2.com"}}
	cfg.Domains = []DomainConfig{{Domain: "wso2.com", RememberMeSeconds: 7200}}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStore_Categories(t *testing.T) {
	s := newTestStore(t)
	if temp, _ := s.IsTemporary(DefaultCacheManager, "TempAuthnCache"); !temp {
		t.Fatal("TempAuthnCache should be temporary")
	}
	if temp, _ := s.IsTemporary(DefaultCacheManager, "AppAuthFrameworkSessionContextCache"); temp {
		t.Fatal("listed non-temporary cache reported temporary")
	}
	if temp, _ := s.IsTemporary("OtherManager", "TempAuthnCache"); temp {
		t.Fatal("category must be scoped to its cache manager")
	}
	if temp, err := s.IsTemporary(DefaultCacheManager, "Unlisted"); temp || err != nil {
		t.Fatalf("unlisted category: got %t, %v", temp, err)
	}
}

func TestStore_Tenants(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.TenantDomain(expiry.InvalidTenant); !errors.Is(err, expiry.ErrInvalidTenant) {
		t.Fatalf("want ErrInvalidTenant, got %v", err)
	}
	d, err := s.TenantDomain(5)
	if err != nil || d != "wso2.com" {
		t.Fatalf("want wso2.com, got %q (%v)", d, err)
	}
	if _, err := s.TenantDomain(42); err == nil {
		t.Fatal("expected error for unknown tenant")
	}
	if v, _ := s.RememberMeSeconds("wso2.com"); v != 7200 {
		t.Fatalf("want 7200, got %d", v)
	}
	if v, _ := s.RememberMeSeconds("carbon.super"); v != DefaultRememberMeSeconds {
		t.Fatalf("want default remember-me, got %d", v)
	}
}

func TestStore_DrivesStandardResolver(t *testing.T) {
	s := newTestStore(t)
	r := expiry.Standard(DefaultCacheManager, s, s, s)
	d, err := r.Resolve("AppAuthFrameworkSessionContextCache", -1234)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := int64(DefaultRememberMeSeconds) * 1e9; int64(d) != want {
		t.Fatalf("want %d, got %d", want, int64(d))
	}
}

func TestStore_SuperTenantWithoutConfig(t *testing.T) {
	s, err := NewStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	d, err := s.TenantDomain(SuperTenantID)
	if err != nil || d != SuperTenantDomain {
		t.Fatalf("want %s, got %q (%v)", SuperTenantDomain, d, err)
	}
	r := expiry.Standard(DefaultCacheManager, s, s, s)
	got, err := r.Resolve("AppAuthFrameworkSessionContextCache", SuperTenantID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := int64(DefaultRememberMeSeconds) * 1e9; int64(got) != want {
		t.Fatalf("want %d, got %d", want, int64(got))
	}
}

func TestStore_SuperTenantOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tenants = []TenantConfig{{ID: SuperTenantID, Domain: "root.example"}}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if d, _ := s.TenantDomain(SuperTenantID); d != "root.example" {
		t.Fatalf("configured domain ignored, got %q", d)
	}
}

func TestStore_ZeroTimeoutsKept(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TempCleanupMinutes = 0
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if v, _ := s.TempCleanupMinutes(); v != 0 {
		t.Fatalf("want 0, got %d", v)
	}
}
