package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"yaps/internal/config"
	"yaps/internal/util"
	"yaps/pkg/kv"
	"yaps/pkg/store"
)

// cli holds what the root command opens for a single invocation.
type cli struct {
	configPath string
	// logOut receives log output; nil means stderr.
	logOut io.Writer

	cfg     config.FileConfig
	logger  *slog.Logger
	backend kv.Store
}

func (c *cli) close() {
	if c.backend == nil {
		return
	}
	if err := c.backend.Close(); err != nil && c.logger != nil {
		c.logger.Warn("close backend failed", "err", err)
	}
	c.backend = nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "yaps",
		Short: "Anonymous campus discussions from the terminal",
		Long: `yaps keeps course discussions and college confessions in a local store.

Sign in with a college email, pick your college and courses, then read and
post anonymously. A fresh store is seeded with demo data on first use.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.ConfigPath, "path to config file")

	root.AddCommand(
		newStatusCmd(),
		newLoginCmd(),
		newRegisterCmd(),
		newProfileCmd(),
		newLogoutCmd(),
		newCollegesCmd(),
		newCoursesCmd(),
		newCommentsCmd(),
		newConfessionsCmd(),
		newResetCmd(),
	)
	return root
}

// setup is what app launch does: load config, open the store, seed it if
// needed, and attach the session to the command context.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = util.InitLogger(cfg.LogLevel, cfg.LogFormat, c.logOut)

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	c.backend = backend

	src, err := cfg.FixtureSource()
	if err != nil {
		return err
	}
	st := store.New(backend, store.WithLogger(c.logger))
	if _, err := st.InitializeStorage(cmd.Context(), src); err != nil {
		return err
	}
	cmd.SetContext(store.WithSession(cmd.Context(), st.Session()))
	return nil
}

func openBackend(cfg config.FileConfig) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil
	case config.BackendRedis:
		timeout, err := config.ParseRedisTimeout(cfg.RedisTimeout)
		if err != nil {
			return nil, err
		}
		return kv.NewRedisStore(kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   cfg.RedisPrefix,
			Timeout:  timeout,
		}), nil
	case config.BackendPostgres:
		st, err := kv.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	default:
		st, err := kv.NewSQLiteStore(cfg.DataPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	}
}

var errNoSession = errors.New("no session attached to command")

func sessionOf(cmd *cobra.Command) (*store.Session, error) {
	sess, ok := store.SessionFrom(cmd.Context())
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}
