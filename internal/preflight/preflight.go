package preflight

import (
	"context"

	"courtq/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local readiness checks for the given config.
// The LINE API check is left to callers because it needs network egress.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data directory (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	if cfg.Store.Backend == config.BackendRedis {
		results = append(results, CheckRedis(ctx, "Queue store Redis", cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB))
	}

	// Notify Redis (only when it is a distinct server from the store)
	if cfg.Notify.Enabled && notifyUsesDistinctRedis(cfg) {
		results = append(results, CheckRedis(ctx, "Notify Redis", cfg.Notify.RedisAddr, "", 0))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func notifyUsesDistinctRedis(cfg *config.Config) bool {
	return cfg.Store.Backend != config.BackendRedis || cfg.Notify.RedisAddr != cfg.Store.RedisAddr
}
