package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCourts(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateServe checks the settings only the webhook daemon needs.
func (c *Config) ValidateServe() error {
	if c.Line.ChannelSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/courtq/config.toml"
		}
		return fmt.Errorf("line.channel_secret is required. Set CHANNEL_SECRET env var or edit %s (create with 'courtq config init')", defaultPath)
	}
	if c.Line.ChannelAccessToken == "" {
		return errors.New("line.channel_access_token is required. Set CHANNEL_ACCESS_TOKEN env var or edit the config file")
	}
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind must be set")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendSQLite:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr must be set when store.backend is redis")
		}
		if c.Store.RedisDB < 0 {
			return errors.New("store.redis_db must be non-negative")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendSQLite, BackendRedis, c.Store.Backend)
	}
	return nil
}

func (c *Config) validateCourts() error {
	if len(c.Courts.Names) == 0 {
		return errors.New("courts.names must list at least one court")
	}
	seen := make(map[string]struct{}, len(c.Courts.Names))
	for _, name := range c.Courts.Names {
		if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
			return fmt.Errorf("courts.names entry %q must be a single letter A-Z", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("courts.names lists %q more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
