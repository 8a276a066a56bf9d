package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for the terminal client.
type Config struct {
	// Currency symbol used when rendering amounts.
	Currency string `toml:"currency"`
	// StaleTTLSeconds controls how long view data stays fresh before a tab
	// switch triggers a refetch.
	StaleTTLSeconds int `toml:"stale_ttl_seconds"`

	Servers map[string]ServerConfig `toml:"servers"`
}

// ServerConfig holds connection details for one kasegi server.
type ServerConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout for this server profile.
func (s ServerConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// StaleTTL returns how long loaded view data is considered fresh.
func (c *Config) StaleTTL() time.Duration {
	if c.StaleTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.StaleTTLSeconds) * time.Second
}

// DefaultPath returns the default config file path using XDG conventions.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "kasegi", "config.toml")
}

// Default returns the configuration used when no config file exists: a
// single local server profile.
func Default() *Config {
	return &Config{
		Currency: "¥",
		Servers: map[string]ServerConfig{
			"local": {URL: "http://localhost:8787"},
		},
	}
}

// LoadFrom reads and parses the config file at the given path. A missing
// file falls back to Default.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if cfg.Currency == "" {
		cfg.Currency = "¥"
	}
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("config has no servers defined")
	}
	for name, server := range cfg.Servers {
		if server.URL == "" {
			return nil, fmt.Errorf("server %q has no url", name)
		}
	}
	return &cfg, nil
}

// ServerNames returns the sorted list of server profile names.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
