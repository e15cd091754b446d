package config

const (
	defaultHost           = "localhost"
	defaultPort           = 9091
	defaultRPCPath        = "/transmission/rpc"
	defaultTimeoutSeconds = 5
	defaultSessionStore   = StoreFile
	defaultSessionPath    = "~/.cache/trctl/session_id"
	defaultRedisPrefix    = "trctl:"
	defaultLogLevel       = "warn"
	defaultLogFormat      = "text"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Daemon: Daemon{
			Host:           defaultHost,
			Port:           defaultPort,
			RPCPath:        defaultRPCPath,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Session: Session{
			Store:       defaultSessionStore,
			Path:        defaultSessionPath,
			RedisPrefix: defaultRedisPrefix,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
