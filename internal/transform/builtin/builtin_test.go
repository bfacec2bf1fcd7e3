package builtin

import (
	"testing"

	"datasync/internal/policy"
)

func TestRegistry_KnownTables(t *testing.T) {
	store, err := policy.NewStore(policy.DefaultConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	r, err := Registry(store, policy.DefaultCacheManager)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if got := r.TransformersFor("IDN_AUTH_SESSION_STORE"); len(got) != 2 {
		t.Fatalf("want 2 session store transformers, got %d", len(got))
	}
	if _, ok := r.Select("IDN_AUTH_TEMP_SESSION_STORE", "5.7.0"); !ok {
		t.Fatal("temp session store not registered for 5.7.0")
	}
	if _, ok := r.Select("IDN_AUTH_TEMP_SESSION_STORE", "5.6.0"); ok {
		t.Fatal("temp session store must not exist before 5.7.0")
	}
}
