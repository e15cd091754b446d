package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Session store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Daemon holds the connection to transmission-daemon.
type Daemon struct {
	Host           string `toml:"host" env:"TRANSMISSION_HOST"`
	Port           int    `toml:"port" env:"TRANSMISSION_PORT"`
	Username       string `toml:"username" env:"TRANSMISSION_USERNAME"`
	Password       string `toml:"password" env:"TRANSMISSION_PASSWORD"`
	HTTPS          bool   `toml:"https" env:"TRANSMISSION_HTTPS"`
	RPCPath        string `toml:"rpc_path" env:"TRANSMISSION_RPC_PATH"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"TRANSMISSION_TIMEOUT_SECONDS"`
	CheckNetwork   bool   `toml:"check_network" env:"TRANSMISSION_CHECK_NETWORK"`
}

// Session selects where the session id is persisted.
type Session struct {
	Store       string `toml:"store" env:"TRANSMISSION_SESSION_STORE"`
	Path        string `toml:"path" env:"TRANSMISSION_SESSION_PATH"`
	RedisURL    string `toml:"redis_url" env:"TRANSMISSION_REDIS_URL"`
	RedisPrefix string `toml:"redis_prefix" env:"TRANSMISSION_REDIS_PREFIX"`
}

// Logging configures the CLI logger.
type Logging struct {
	Level  string `toml:"level" env:"TRANSMISSION_LOG_LEVEL"`
	Format string `toml:"format" env:"TRANSMISSION_LOG_FORMAT"`
}

// Config is the full trctl configuration.
type Config struct {
	Daemon  Daemon  `toml:"daemon"`
	Session Session `toml:"session"`
	Logging Logging `toml:"logging"`
}

// RequestTimeout returns the per-attempt timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Daemon.TimeoutSeconds) * time.Second
}

// DefaultConfigPath returns ~/.config/trctl/config.toml (or the platform
// equivalent).
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "trctl", "config.toml"), nil
}

// Load reads configuration from path, or from the default location when
// path is empty. A missing default file is not an error. It returns the
// resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	// The .env file is optional.
	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath resolves ~ and relative paths.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
