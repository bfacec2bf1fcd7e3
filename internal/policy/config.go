package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultCacheManager       = "IdentityApplicationManagementCacheManager"
	DefaultTempCleanupMinutes = 40
	DefaultCleanupMinutes     = 20160
	DefaultRememberMeSeconds  = 1209600
	SuperTenantID             = -1234
	SuperTenantDomain         = "carbon.super"
	envPrefix                 = "DATASYNC_POLICY__"
)

type CacheConfig struct {
	Manager   string `koanf:"manager"`
	Name      string `koanf:"name"`
	Temporary bool   `koanf:"temporary"`
}

type TenantConfig struct {
	ID     int64  `koanf:"id"`
	Domain string `koanf:"domain"`
}

type DomainConfig struct {
	Domain            string `koanf:"domain"`
	RememberMeSeconds int64  `koanf:"remember_me_seconds"`
}

type Config struct {
	CacheManager             string `koanf:"cache_manager"`
	TempCleanupMinutes       int64  `koanf:"temp_cleanup_minutes"`
	CleanupMinutes           int64  `koanf:"cleanup_minutes"`
	DefaultRememberMeSeconds int64  `koanf:"default_remember_me_seconds"`

	Caches  []CacheConfig  `koanf:"caches"`
	Tenants []TenantConfig `koanf:"tenants"`
	Domains []DomainConfig `koanf:"domains"`
}

// DefaultConfig holds the stock timeouts. Keys present in the file or the
// environment override them, an explicit 0 included.
func DefaultConfig() Config {
	return Config{
		CacheManager:             DefaultCacheManager,
		TempCleanupMinutes:       DefaultTempCleanupMinutes,
		CleanupMinutes:           DefaultCleanupMinutes,
		DefaultRememberMeSeconds: DefaultRememberMeSeconds,
	}
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `DATASYNC_POLICY__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("policy schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider(envPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.CacheManager == "" {
		c.CacheManager = DefaultCacheManager
	}
	for i := range c.Caches {
		if c.Caches[i].Manager == "" {
			c.Caches[i].Manager = c.CacheManager
		}
	}
}

// Validate rejects timeouts the resolver could never use.
func (c Config) Validate() error {
	if c.TempCleanupMinutes < 0 || c.CleanupMinutes < 0 || c.DefaultRememberMeSeconds < 0 {
		return fmt.Errorf("policy: timeouts must not be negative")
	}
	seen := make(map[int64]bool, len(c.Tenants))
	for _, t := range c.Tenants {
		if t.Domain == "" {
			return fmt.Errorf("policy: tenant %d has no domain", t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("policy: tenant %d listed twice", t.ID)
		}
		seen[t.ID] = true
	}
	for _, d := range c.Domains {
		if d.RememberMeSeconds < 0 {
			return fmt.Errorf("policy: domain %q: remember_me_seconds must not be negative", d.Domain)
		}
	}
	for _, cc := range c.Caches {
		if cc.Name == "" {
			return fmt.Errorf("policy: cache entry without name")
		}
	}
	return nil
}
