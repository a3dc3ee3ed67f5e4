// Package config provides configuration loading for the Tableside client.
package config

import "time"

// Config is the client configuration, loaded from tableside.yaml and
// TABLESIDE_* environment variables.
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Log         LogConfig         `mapstructure:"log"`
	Menu        MenuConfig        `mapstructure:"menu"`
}

// APIConfig points the client at the restaurant API.
type APIConfig struct {
	// Addr is the API base URL, e.g. https://api.tableside.example.
	Addr string `mapstructure:"addr" validate:"required,url"`

	// Timeout bounds every request. Default: 10s.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// CredentialsConfig locates the persistent credential store.
type CredentialsConfig struct {
	// Path is the credentials file location. Empty means the default
	// per-profile path under the home directory. When set it must be
	// absolute, relative paths would silently depend on the working
	// directory the client happens to start in.
	Path string `mapstructure:"path" validate:"omitempty,abs_path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// MenuConfig tunes the client-side menu cache.
type MenuConfig struct {
	// CacheTTL is how long menu responses are reused. Zero disables
	// the cache. Default: 5m.
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"min=0"`
}

// SetDefaults fills unset fields with defaults.
func (c *Config) SetDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Menu.CacheTTL == 0 {
		c.Menu.CacheTTL = 5 * time.Minute
	}
}
