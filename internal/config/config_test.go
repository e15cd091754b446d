package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfxdev/go-transmission/internal/config"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	// Keep a developer's .env out of the way.
	t.Chdir(home)
	return home
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolateHome(t)

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(home, ".config", "trctl", "config.toml"), resolved)

	assert.Equal(t, "localhost", cfg.Daemon.Host)
	assert.Equal(t, 9091, cfg.Daemon.Port)
	assert.Equal(t, "/transmission/rpc", cfg.Daemon.RPCPath)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, config.StoreFile, cfg.Session.Store)
	assert.Equal(t, filepath.Join(home, ".cache", "trctl", "session_id"), cfg.Session.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	home := isolateHome(t)

	path := filepath.Join(home, "trctl.toml")
	content := `
[daemon]
host = "seedbox.lan"
port = 9092
username = "admin"
rpc_path = "rpc"

[session]
store = "SQLite"
path = "~/state/trctl.db"

[logging]
level = "DEBUG"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TRANSMISSION_PASSWORD", "from-env")
	t.Setenv("TRANSMISSION_PORT", "9999")

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, "seedbox.lan", cfg.Daemon.Host)
	assert.Equal(t, 9999, cfg.Daemon.Port)
	assert.Equal(t, "admin", cfg.Daemon.Username)
	assert.Equal(t, "from-env", cfg.Daemon.Password)
	assert.Equal(t, "/rpc", cfg.Daemon.RPCPath)
	assert.Equal(t, config.StoreSQLite, cfg.Session.Store)
	assert.Equal(t, filepath.Join(home, "state", "trctl.db"), cfg.Session.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadReadsDotEnv(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("TRANSMISSION_HOST=dotenv-host\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TRANSMISSION_HOST") })

	cfg, _, _, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-host", cfg.Daemon.Host)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	home := isolateHome(t)

	_, _, _, err := config.Load(filepath.Join(home, "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[daemon]\nhots = \"typo\"\n"), 0o600))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"empty host", func(c *config.Config) { c.Daemon.Host = "" }, "daemon.host"},
		{"bad port", func(c *config.Config) { c.Daemon.Port = 70000 }, "daemon.port"},
		{"zero timeout", func(c *config.Config) { c.Daemon.TimeoutSeconds = 0 }, "daemon.timeout_seconds"},
		{"unknown store", func(c *config.Config) { c.Session.Store = "etcd" }, "session.store"},
		{"file without path", func(c *config.Config) { c.Session.Path = "" }, "session.path"},
		{"redis without url", func(c *config.Config) { c.Session.Store = config.StoreRedis }, "session.redis_url"},
		{"memory needs nothing", func(c *config.Config) { c.Session.Store = config.StoreMemory; c.Session.Path = "" }, ""},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateSampleMatchesDefaults(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, config.CreateSample(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var sample config.Config
	require.NoError(t, toml.Unmarshal(data, &sample))

	defaults := config.Default()
	assert.Equal(t, defaults.Daemon, sample.Daemon)
	assert.Equal(t, defaults.Session, sample.Session)
	assert.Equal(t, defaults.Logging, sample.Logging)

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "localhost", cfg.Daemon.Host)
}

func TestExpandPath(t *testing.T) {
	home := isolateHome(t)

	got, err := config.ExpandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a", "b"), got)

	got, err = config.ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
