package testsupport

import (
	"path/filepath"
	"testing"

	"courtq/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp data directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Line.ChannelSecret = "test-secret"
	cfgVal.Line.ChannelAccessToken = "test-token"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCourts overrides the configured court names.
func WithCourts(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Courts.Names = append([]string(nil), names...)
	}
}

// WithLineAPI points the LINE client at a test server.
func WithLineAPI(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Line.APIBaseURL = baseURL
	}
}

// WithAPIToken sets the bearer token guarding the read API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.APIToken = token
	}
}

// WithRedisStore switches the store backend to Redis at addr.
func WithRedisStore(addr string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = config.BackendRedis
		b.cfg.Store.RedisAddr = addr
		b.cfg.Notify.RedisAddr = addr
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
