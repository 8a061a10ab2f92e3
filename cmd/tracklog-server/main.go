package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/core/service"
	"github.com/yndnr/tracklog-go/internal/infra/buildinfo"
	"github.com/yndnr/tracklog-go/internal/infra/confloader"
	"github.com/yndnr/tracklog-go/internal/infra/shutdown"
	"github.com/yndnr/tracklog-go/internal/server/config"
	"github.com/yndnr/tracklog-go/internal/server/httpserver"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
	"github.com/yndnr/tracklog-go/internal/telemetry/logger"
	"github.com/yndnr/tracklog-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tracklog-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()

	info := buildinfo.Get()
	log.Info("starting tracklog-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()

	locations, data, err := initStores(cfg, log.Slog(), metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	dir, err := buildDirectory(cfg)
	if err != nil {
		return fmt.Errorf("init directory: %w", err)
	}
	tracking := service.NewTrackingService(locations, data, dir, &service.TrackingServiceConfig{
		Logger: log.Slog(),
	})

	proxies, err := cfg.Server.HTTP.TrustedProxyPrefixes()
	if err != nil {
		return fmt.Errorf("init http: %w", err)
	}
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Tracking:       tracking,
		Logger:         log.Slog(),
		Metrics:        metrics,
		RateLimit:      cfg.Server.RateLimit,
		TrustedProxies: proxies,
		Ready:          storesReady(locations.Dir(), data.Dir()),
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	var certs *httpserver.CertReloader
	if cfg.Server.HTTP.TLSCertFile != "" {
		certs, err = httpserver.NewCertReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("init tls: %w", err)
		}
		httpServer.UseTLS(certs)
	}

	reloader := &configReloader{
		path:     *configFile,
		tracking: tracking,
		certs:    certs,
		logger:   log.Slog(),
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	shutdownHandler.OnReload(reloader.reloadAll)

	// Hooks run in reverse order: the watcher stops before the HTTP server.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	watcher, err := reloader.watch()
	if err != nil {
		log.Warn("config watcher disabled", "error", err)
	} else if watcher != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr, "tls", certs != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Shutdown()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-shutdownHandler.Done()
		cancel()
	}()
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger creates the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, io.Closer, error) {
	log, closer, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     os.Stderr,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(log)
	return log, closer, nil
}

// initStores opens the location and data stores and exports their file counts.
func initStores(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Registry) (*service.LocationStore, *service.DataStore, error) {
	locations, err := snapshot.New[domain.LocationSnapshot](snapshot.Config{
		Name:      "location",
		Dir:       cfg.Storage.LocationDir,
		Window:    cfg.Storage.LocationWindow,
		WriteMode: cfg.Storage.WriteMode,
		Observer:  metrics,
		Logger:    log,
	})
	if err != nil {
		return nil, nil, err
	}

	data, err := snapshot.New[domain.UserDataSnapshot](snapshot.Config{
		Name:      "data",
		Dir:       cfg.Storage.DataDir,
		Window:    cfg.Storage.DataWindow,
		WriteMode: cfg.Storage.WriteMode,
		Observer:  metrics,
		Logger:    log,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := metrics.RegisterStoreFiles("location", fileCount(locations.Files)); err != nil {
		return nil, nil, err
	}
	if err := metrics.RegisterStoreFiles("data", fileCount(data.Files)); err != nil {
		return nil, nil, err
	}
	return locations, data, nil
}

func fileCount(files func() ([]snapshot.FileRef, error)) func() (int, error) {
	return func() (int, error) {
		refs, err := files()
		return len(refs), err
	}
}

// storesReady reports not ready while a store directory is missing.
func storesReady(dirs ...string) func() error {
	return func() error {
		for _, dir := range dirs {
			fi, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !fi.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
		}
		return nil
	}
}
