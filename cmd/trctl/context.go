package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jfxdev/go-transmission"
	"github.com/jfxdev/go-transmission/internal/config"
	"github.com/jfxdev/go-transmission/internal/logging"
	"github.com/jfxdev/go-transmission/tokenstore"
)

type commandContext struct {
	configFlag *string
	debugFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		debugFlag:  debugFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) debug() bool {
	return c.debugFlag != nil && *c.debugFlag
}

func (c *commandContext) logger(stderr io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.debug() {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: stderr,
		Attrs:  []slog.Attr{slog.String("app", "trctl")},
	})
}

// withClient opens the configured session store, builds a client and
// hands it to fn. The store is closed with the client.
func (c *commandContext) withClient(cmd *cobra.Command, fn func(context.Context, *transmission.Client) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	clientConfig := transmission.Config{
		Host:           cfg.Daemon.Host,
		Port:           cfg.Daemon.Port,
		Username:       cfg.Daemon.Username,
		Password:       cfg.Daemon.Password,
		HTTPS:          cfg.Daemon.HTTPS,
		RPCPath:        cfg.Daemon.RPCPath,
		RequestTimeout: cfg.RequestTimeout(),
		Store:          store,
		Logger:         logger,
		OnProtocolViolation: func(err *transmission.ClientError) {
			fmt.Fprintf(stderr, "!!! transmission-daemon violated the session-id handshake: %v\n", err)
		},
	}
	if cfg.Daemon.CheckNetwork {
		clientConfig.Network = transmission.NewDialChecker(cfg.Daemon.Host, cfg.Daemon.Port, cfg.RequestTimeout())
	}

	client, err := transmission.New(clientConfig)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

func openStore(ctx context.Context, cfg *config.Config) (transmission.TokenStore, error) {
	switch cfg.Session.Store {
	case config.StoreMemory:
		return tokenstore.NewMemoryStore(""), nil
	case config.StoreFile:
		return tokenstore.NewFileStore(cfg.Session.Path)
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Session.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
		return tokenstore.NewSQLiteStore(ctx, cfg.Session.Path)
	case config.StoreRedis:
		return tokenstore.NewRedisStore(ctx, cfg.Session.RedisURL, cfg.Session.RedisPrefix)
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
