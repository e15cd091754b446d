package config

import "strings"

func (c *Config) normalize() error {
	c.Daemon.Host = strings.TrimSpace(c.Daemon.Host)
	c.Daemon.RPCPath = strings.TrimSpace(c.Daemon.RPCPath)
	if c.Daemon.RPCPath != "" && !strings.HasPrefix(c.Daemon.RPCPath, "/") {
		c.Daemon.RPCPath = "/" + c.Daemon.RPCPath
	}

	c.Session.Store = strings.ToLower(strings.TrimSpace(c.Session.Store))
	if c.Session.Store == "" {
		c.Session.Store = defaultSessionStore
	}
	if c.Session.Store == StoreFile || c.Session.Store == StoreSQLite {
		path, err := expandPath(strings.TrimSpace(c.Session.Path))
		if err != nil {
			return err
		}
		c.Session.Path = path
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}
