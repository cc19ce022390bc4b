package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/core/config"
	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/http"
	"github.com/abdul-hamid-achik/respext/packages/logging"
	"github.com/abdul-hamid-achik/respext/packages/output"
	"github.com/abdul-hamid-achik/respext/packages/store"
)

// app holds what a command needs, built from config files, the environment
// and flags, in increasing precedence.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     store.Store
	host      *store.Host
	sender    *store.Sender
	extractor *extract.Extractor
	registry  *extract.Registry
	formatter output.Formatter
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}

	envCfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	cfg = cfg.Merge(envCfg)

	flagCfg := &config.Config{
		Database:  databaseFlag,
		BodyDir:   bodyDirFlag,
		Proxy:     proxyFlag,
		LogLevel:  logLevelFlag,
		LogFormat: logFormatFlag,
	}
	if noColorFlag {
		flagCfg.NoColor = config.BoolPtr(true)
	}
	if insecureFlag {
		flagCfg.ValidateSSL = config.BoolPtr(false)
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid timeout: %w", err))
		}
		flagCfg.Timeout = int(d.Milliseconds())
	}
	cfg = cfg.Merge(flagCfg)

	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return cfg, nil
}

// newApp opens the store and wires the extraction stack.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.LoggingConfig())

	formatter, err := output.New(outputFlag, cmd.OutOrStdout(), cfg.GetNoColor())
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}

	if dir := sqliteDir(cfg.Database); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, withExitCode(ExitConfigError, fmt.Errorf("failed to create database directory: %w", err))
		}
	}
	s, err := store.Open(cfg.Database)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	clientOpts := []http.ClientOption{
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithLogger(logger),
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}

	sender := store.NewSender(s, cfg.BodyDir,
		store.WithClient(http.NewClient(clientOpts...)),
		store.WithRate(cfg.SendRate),
		store.WithLogger(logger))
	host := store.NewHost(s, sender)
	extractor := extract.New(host, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     s,
		host:      host,
		sender:    sender,
		extractor: extractor,
		registry:  extract.NewRegistry(extractor.Definitions()...),
		formatter: formatter,
	}, nil
}

// sqliteDir returns the directory of a SQLite database file, if any.
func sqliteDir(connStr string) string {
	path := strings.TrimSpace(connStr)
	switch {
	case path == "memory", path == ":memory:", path == "":
		return ""
	case strings.HasPrefix(path, "sqlite://"):
		path = strings.TrimPrefix(path, "sqlite://")
	case strings.HasPrefix(path, "sqlite:"):
		path = strings.TrimPrefix(path, "sqlite:")
	}
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
