package main

import (
	"fmt"
	"log/slog"

	"github.com/yndnr/tracklog-go/internal/core/geofence"
	"github.com/yndnr/tracklog-go/internal/core/service"
	"github.com/yndnr/tracklog-go/internal/infra/confloader"
	"github.com/yndnr/tracklog-go/internal/server/config"
	"github.com/yndnr/tracklog-go/internal/server/httpserver"
	"github.com/yndnr/tracklog-go/internal/telemetry/logger"
)

// buildDirectory assembles the runtime user directory from configuration.
func buildDirectory(cfg *config.ServerConfig) (*service.Directory, error) {
	verifier, err := service.NewPasswordVerifier(cfg.Security.Password, cfg.Security.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	return &service.Directory{
		Verifier: verifier,
		Users:    cfg.Users,
		Places:   geofence.New(cfg.NamedPlaces()),
	}, nil
}

// configReloader applies configuration changes that do not need a restart:
// users, places, the tracker password, the log level and TLS certificates.
// Listen address and storage settings are only read at startup.
type configReloader struct {
	path     string
	tracking *service.TrackingService
	certs    *httpserver.CertReloader
	logger   *slog.Logger
}

// watch starts a file watcher for the config file and TLS files.
// It returns nil when there is nothing to watch.
func (r *configReloader) watch() (*confloader.Watcher, error) {
	if r.path == "" && r.certs == nil {
		return nil, nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(r.logger))
	if err != nil {
		return nil, err
	}

	tlsFiles := map[string]bool{}
	if r.certs != nil {
		certFile, keyFile := r.certs.Files()
		tlsFiles[certFile], tlsFiles[keyFile] = true, true
	}
	for path := range tlsFiles {
		if err := w.Watch(path); err != nil {
			w.Stop()
			return nil, err
		}
	}
	if r.path != "" {
		if err := w.Watch(r.path); err != nil {
			w.Stop()
			return nil, err
		}
	}

	w.OnChange(func(path string) {
		if tlsFiles[path] {
			r.reloadCerts()
			return
		}
		r.reloadConfig()
	})
	w.StartAsync()
	return w, nil
}

func (r *configReloader) reloadAll() {
	r.reloadConfig()
	r.reloadCerts()
}

// reloadConfig re-reads the config file. An invalid file is logged and the
// running configuration is kept.
func (r *configReloader) reloadConfig() {
	cfg, err := loadConfig(r.path)
	if err != nil {
		r.logger.Error("config reload failed, keeping previous configuration", "error", err)
		return
	}
	dir, err := buildDirectory(cfg)
	if err != nil {
		r.logger.Error("config reload failed, keeping previous configuration", "error", err)
		return
	}

	r.tracking.SetDirectory(dir)
	logger.SetLevel(cfg.Log.Level)
	r.logger.Info("configuration reloaded",
		"users", len(cfg.Users),
		"places", len(cfg.Places),
		"log_level", cfg.Log.Level)
}

func (r *configReloader) reloadCerts() {
	if r.certs == nil {
		return
	}
	if err := r.certs.Reload(); err != nil {
		r.logger.Error("tls reload failed, keeping previous certificate", "error", err)
		return
	}
	r.logger.Info("tls certificate reloaded")
}
