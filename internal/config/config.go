package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SMARTIE_*). Nested keys are separated
// by a double underscore: SMARTIE_ENDPOINT__ASK_URL -> endpoint.ask_url.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("SMARTIE_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "SMARTIE_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Endpoint.AskURL == "" {
		return fmt.Errorf("endpoint.ask_url is required")
	}
	if err := validateURL(c.Endpoint.AskURL); err != nil {
		return fmt.Errorf("invalid endpoint.ask_url: %w", err)
	}

	if c.Endpoint.LocationURL != "" {
		if err := validateURL(c.Endpoint.LocationURL); err != nil {
			return fmt.Errorf("invalid endpoint.location_url: %w", err)
		}
	}

	if _, err := c.RequestTimeout(); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	return nil
}

// RequestTimeout parses Endpoint.Timeout. An empty value yields
// DefaultTimeout; zero disables the timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Endpoint.Timeout == "" {
		return DefaultTimeout, nil
	}
	if c.Endpoint.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Endpoint.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid endpoint.timeout %q: %w", c.Endpoint.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("endpoint.timeout must be non-negative")
	}
	return d, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
