// Package builtin assembles the transformer registry shipped with the engine.
package builtin

import (
	"datasync/internal/expiry"
	"datasync/internal/policy"
	"datasync/internal/transform"
	"datasync/internal/transform/v560"
	"datasync/internal/transform/v570"
)

// Registry wires every known transformer to resolvers backed by store.
func Registry(store *policy.Store, cacheManager string) (*transform.Registry, error) {
	sessions := expiry.Standard(cacheManager, store, store, store)
	temp := expiry.New(expiry.TempCleanupTier(store))

	return transform.NewRegistry(
		v560.NewSessionStore(sessions),
		v570.NewSessionStore(sessions),
		v570.NewTempSessionStore(temp),
	)
}
