package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeLine()
	c.normalizeStore()
	c.normalizeCourts()
	c.normalizeNotify()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("COURTQ_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLine() {
	c.Line.ChannelSecret = strings.TrimSpace(c.Line.ChannelSecret)
	if c.Line.ChannelSecret == "" {
		if value, ok := os.LookupEnv("CHANNEL_SECRET"); ok {
			c.Line.ChannelSecret = strings.TrimSpace(value)
		}
	}
	c.Line.ChannelAccessToken = strings.TrimSpace(c.Line.ChannelAccessToken)
	if c.Line.ChannelAccessToken == "" {
		if value, ok := os.LookupEnv("CHANNEL_ACCESS_TOKEN"); ok {
			c.Line.ChannelAccessToken = strings.TrimSpace(value)
		}
	}
	c.Line.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Line.APIBaseURL), "/")
	if c.Line.APIBaseURL == "" {
		c.Line.APIBaseURL = defaultLineAPIBaseURL
	}
	if c.Line.RequestTimeout <= 0 {
		c.Line.RequestTimeout = defaultLineRequestTimeout
	}
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.RedisAddr = strings.TrimSpace(c.Store.RedisAddr)
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = defaultRedisAddr
	}
	if c.Store.RedisPassword == "" {
		if value, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
			c.Store.RedisPassword = value
		}
	}
	c.Store.KeyPrefix = strings.Trim(strings.TrimSpace(c.Store.KeyPrefix), ":")
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = defaultKeyPrefix
	}
	if c.Store.LockTTLMs <= 0 {
		c.Store.LockTTLMs = defaultLockTTLMillis
	}
}

func (c *Config) normalizeCourts() {
	if len(c.Courts.Names) == 0 {
		c.Courts.Names = append([]string(nil), defaultCourtNames...)
		return
	}
	names := make([]string, 0, len(c.Courts.Names))
	for _, name := range c.Courts.Names {
		normalized := strings.ToUpper(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		names = append(names, normalized)
	}
	c.Courts.Names = names
}

func (c *Config) normalizeNotify() {
	c.Notify.RedisAddr = strings.TrimSpace(c.Notify.RedisAddr)
	if c.Notify.RedisAddr == "" {
		c.Notify.RedisAddr = c.Store.RedisAddr
	}
	if c.Notify.Concurrency <= 0 {
		c.Notify.Concurrency = defaultNotifyConcurrency
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
