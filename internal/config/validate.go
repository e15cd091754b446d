package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDaemon() error {
	if c.Daemon.Host == "" {
		return errors.New("daemon.host must be set")
	}
	if c.Daemon.Port <= 0 || c.Daemon.Port > 65535 {
		return fmt.Errorf("daemon.port must be between 1 and 65535, got %d", c.Daemon.Port)
	}
	if c.Daemon.TimeoutSeconds <= 0 {
		return fmt.Errorf("daemon.timeout_seconds must be positive, got %d", c.Daemon.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateSession() error {
	switch c.Session.Store {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if c.Session.Path == "" {
			return fmt.Errorf("session.path must be set for the %s store", c.Session.Store)
		}
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url must be set for the redis store")
		}
	default:
		return fmt.Errorf("session.store must be one of memory, file, sqlite, redis; got %q", c.Session.Store)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}
	return nil
}
