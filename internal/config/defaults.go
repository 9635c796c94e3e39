package config

const (
	defaultDataDir            = "~/.local/share/courtq"
	defaultServerBind         = "127.0.0.1:8080"
	defaultLineAPIBaseURL     = "https://api.line.me"
	defaultLineRequestTimeout = 10
	defaultStoreBackend       = BackendSQLite
	defaultRedisAddr          = "127.0.0.1:6379"
	defaultKeyPrefix          = "courtq"
	defaultLockTTLMillis      = 5000
	defaultNotifyConcurrency  = 2
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

var defaultCourtNames = []string{"A", "B", "C", "D"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	names := make([]string, len(defaultCourtNames))
	copy(names, defaultCourtNames)
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Line: Line{
			APIBaseURL:     defaultLineAPIBaseURL,
			RequestTimeout: defaultLineRequestTimeout,
		},
		Store: Store{
			Backend:   defaultStoreBackend,
			RedisAddr: defaultRedisAddr,
			KeyPrefix: defaultKeyPrefix,
			LockTTLMs: defaultLockTTLMillis,
		},
		Courts: Courts{
			Names: names,
		},
		Notify: Notify{
			RedisAddr:   defaultRedisAddr,
			Concurrency: defaultNotifyConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
