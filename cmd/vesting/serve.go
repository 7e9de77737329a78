package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/vesting-engine/api"
	"github.com/warp/vesting-engine/config"
	"github.com/warp/vesting-engine/obs"
	"github.com/warp/vesting-engine/store/sqlite"
)

var (
	serveConfigPath string
	servePort       int
	serveDBPath     string
	serveLogLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the vesting HTTP API.

Settings come from --config (TOML) over built-in defaults; explicit flags
override both. On SIGINT/SIGTERM the server stops accepting connections,
waits for active requests up to shutdown_timeout, and closes the database.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to a TOML config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP server port")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", `SQLite database path (":memory:" for in-memory)`)
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = serveDBPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", zap.String("db", cfg.DBPath), zap.Error(err))
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(registry)

	handler := api.NewHandler(store, logger, metrics)
	if policy, _ := cfg.RoundingPolicy(); policy.Valid() {
		handler.GrantFactory.DefaultPolicy = policy
	}
	if err := handler.SyncGrantCount(cmd.Context()); err != nil {
		logger.Warn("failed to count stored grants", zap.Error(err))
	}

	monitor := api.NewVestingMonitor(store, handler)
	monitor.CheckInterval = cfg.MonitorInterval.Duration
	lock, owner, err := lockMonitor(cfg.DBPath)
	if err != nil {
		logger.Warn("vest monitor lock unavailable", zap.Error(err))
	}
	if lock != nil {
		defer lock.Unlock()
	}
	if !owner {
		monitor.Enabled = false
		logger.Info("vest monitor runs in another process", zap.String("db", cfg.DBPath))
	}
	monitor.Start()
	defer monitor.Stop()

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(handler, api.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			Gatherer:       registry,
		}),
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
