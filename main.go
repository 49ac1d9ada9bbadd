package main

import (
	"context"
	"fmt"
	"os"

	"quill/app/config"
	"quill/app/external"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const cliVersion = "1.0.0"

var (
	// Global flags
	configFile string
	verbose    bool

	settings = config.New()
	cfg      *config.Config
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "quill - blog server with a merged external feed",
	Long: `quill serves a JSON blog API over an in-memory store.

The feed merges local posts with posts from an external source, filtered by
category, searched and sorted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(settings, configFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "quill version %s\n", cliVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(serveCmd, browseCmd, versionCmd)
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// newSource wires the external client to the configured category cache.
// The returned func releases the cache.
func newSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*external.Source, func(), error) {
	var cache external.Cache = external.NewMemoryCache(cfg.CacheTTL)
	closer := func() {}
	if cfg.RedisAddr != "" {
		redisCache, err := external.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis category cache", zap.String("addr", cfg.RedisAddr))
		cache = redisCache
		closer = func() { _ = redisCache.Close() }
	}

	client := external.NewClient(cfg.ExternalBaseURL, cfg.ExternalTimeout)
	return external.NewSource(client, cache, cfg.ExternalBatch, logger), closer, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
