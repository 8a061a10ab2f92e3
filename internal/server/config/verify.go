package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	if err := verifyPlaces(cfg.Places); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if _, err := cfg.HTTP.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if cfg.RateLimit.Rate < 0 {
		return errors.New("server.rate_limit.rate must not be negative")
	}
	if cfg.RateLimit.Rate > 0 && cfg.RateLimit.Burst < 1 {
		return errors.New("server.rate_limit.burst must be at least 1")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.LocationDir == "" {
		return errors.New("storage.location_dir is required")
	}
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if filepath.Clean(cfg.LocationDir) == filepath.Clean(cfg.DataDir) {
		return errors.New("storage.location_dir and storage.data_dir must differ")
	}
	if cfg.LocationWindow <= 0 {
		return errors.New("storage.location_window must be positive")
	}
	if cfg.DataWindow <= 0 {
		return errors.New("storage.data_window must be positive")
	}
	switch cfg.WriteMode {
	case "", snapshot.WriteAtomic, snapshot.WriteTruncate:
	default:
		return fmt.Errorf("storage.write_mode %q is not one of atomic, truncate", cfg.WriteMode)
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.Password == "" && cfg.PasswordHash == "" {
		return errors.New("security.password or security.password_hash is required")
	}
	return nil
}

func verifyPlaces(places map[string]domain.Place) error {
	names := make([]string, 0, len(places))
	for name := range places {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := places[name]
		if p.Radius <= 0 {
			return fmt.Errorf("places.%s.radius must be positive", name)
		}
		if err := domain.ValidateCoordinates(p.Lat, p.Long); err != nil {
			return fmt.Errorf("places.%s: %w", name, err)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	if cfg.File != "" && cfg.MaxSizeMB < 0 {
		return errors.New("log.max_size_mb must not be negative")
	}
	return nil
}
