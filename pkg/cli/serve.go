package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/engine"
	"github.com/getmockd/mockrest/pkg/fixtures"
	"github.com/getmockd/mockrest/pkg/logging"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock API server (foreground)",
		Long: `Start the mock API server. Resources are seeded from the embedded fixtures,
or from <resource>.json files under --fixtures-dir, and are reset to them on
every start. Nothing is persisted.`,
		Example: `  # Start with defaults (http://0.0.0.0:3000/api)
  mockrest serve

  # Custom port, routes at the root, compact JSON
  mockrest serve --port 8080 --prefix / --no-pretty

  # Override some fixtures and limit each client to 20 requests per second
  mockrest serve --fixtures-dir ./fixtures --rate-limit 20

  # Start from a config file
  mockrest serve --config mockrest.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveServeConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntP("port", "p", config.DefaultPort, "HTTP server port")
	f.String("host", config.DefaultHost, "Interface to bind")
	f.String("prefix", config.DefaultPrefix, "Path prefix for resource routes (\"/\" for none)")
	f.StringP("config", "c", "", "Path to a YAML or JSON config file")
	f.String("fixtures-dir", "", "Directory of <resource>.json files overriding the embedded fixtures")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-format", "text", "Log format: text, json")
	f.Float64("rate-limit", 0, "Per-client requests per second (0 disables)")
	f.Bool("no-pretty", false, "Write compact JSON responses")
	return cmd
}

// resolveServeConfig loads defaults, the config file and the environment,
// then applies every flag the user set explicitly.
func resolveServeConfig(cmd *cobra.Command) (*config.ServerConfiguration, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	setFlag := func(name, key string, apply func()) {
		if flags.Changed(name) {
			apply()
			cfg.SetSource(key, config.SourceFlag)
		}
	}
	setFlag("port", "port", func() { cfg.Port, _ = flags.GetInt("port") })
	setFlag("host", "host", func() { cfg.Host, _ = flags.GetString("host") })
	setFlag("prefix", "prefix", func() { cfg.Prefix, _ = flags.GetString("prefix") })
	setFlag("fixtures-dir", "fixturesDir", func() { cfg.FixturesDir, _ = flags.GetString("fixtures-dir") })
	setFlag("log-level", "log", func() { cfg.Log.Level, _ = flags.GetString("log-level") })
	setFlag("log-format", "log", func() { cfg.Log.Format, _ = flags.GetString("log-format") })
	setFlag("rate-limit", "rateLimit", func() {
		rps, _ := flags.GetFloat64("rate-limit")
		cfg.ApplyRateLimit(rps)
	})
	setFlag("no-pretty", "prettyJSON", func() {
		compact, _ := flags.GetBool("no-pretty")
		cfg.PrettyJSON = !compact
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runServe starts the server and blocks until ctx is done.
func runServe(ctx context.Context, cfg *config.ServerConfiguration, out io.Writer) error {
	logger, closer, err := logging.NewWithFile(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: os.Stderr,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.ConfigFile != "" {
		logger.Info("loaded config file", "path", cfg.ConfigFile)
	}

	store, loader, err := fixtures.Build(cfg.FixturesDir, logger)
	if err != nil {
		return fmt.Errorf("loading fixtures: %w", err)
	}
	for _, name := range store.List() {
		logger.Debug("resource ready", "resource", name, "records", store.Get(name).Count(), "source", loader.Source(name))
	}
	for _, p := range fixtures.CheckIntegrity(store) {
		logger.Warn("fixture reference problem", "problem", p.String())
	}

	srv, err := engine.NewServer(cfg, store, engine.WithLogger(logger), engine.WithServerVersion(Version))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		_ = srv.Stop()
		return err
	}

	printServeStartupMessage(out, cfg, srv.Addr(), store.Overview().TotalItems, len(store.List()))

	<-ctx.Done()
	fmt.Fprintln(out, "\nShutting down...")
	return srv.Stop()
}

func printServeStartupMessage(out io.Writer, cfg *config.ServerConfiguration, addr string, records, resources int) {
	fmt.Fprintf(out, "mockrest %s listening on http://%s%s\n", Version, addr, cfg.NormalizedPrefix())
	fmt.Fprintf(out, "  %d resources, %d records\n", resources, records)
	fmt.Fprintf(out, "  OpenAPI: http://%s/openapi.json\n", addr)
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		fmt.Fprintf(out, "  Rate limit: %g req/s per client\n", cfg.RateLimit.RequestsPerSecond)
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")
}
