package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// ServerConfig is the root configuration for tracklog-server.
type ServerConfig struct {
	Server   ServerSection           `koanf:"server"`
	Storage  StorageSection          `koanf:"storage"`
	Security SecuritySection         `koanf:"security"`
	Places   map[string]domain.Place `koanf:"places"`
	Users    map[string]domain.User  `koanf:"users"`
	Log      LogSection              `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP      HTTPConfig      `koanf:"http"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
	// TrustedProxies lists proxy addresses or CIDR prefixes whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is treated as
// a single-host prefix.
func (c *HTTPConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("server.http.trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("server.http.trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// RateLimitConfig configures per-client request limiting.
// A zero Rate disables limiting.
type RateLimitConfig struct {
	Rate  float64 `koanf:"rate"` // requests per second
	Burst int     `koanf:"burst"`
}

// StorageSection configures the snapshot stores.
type StorageSection struct {
	LocationDir    string             `koanf:"location_dir"`
	DataDir        string             `koanf:"data_dir"`
	LocationWindow time.Duration      `koanf:"location_window"`
	DataWindow     time.Duration      `koanf:"data_window"`
	WriteMode      snapshot.WriteMode `koanf:"write_mode"`
}

// SecuritySection configures the shared tracker password.
// PasswordHash (argon2id) takes precedence over Password.
type SecuritySection struct {
	Password     string `koanf:"password"`
	PasswordHash string `koanf:"password_hash"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File enables rotating file output in addition to stderr.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// NamedPlaces returns the configured places with Name set from their key.
func (c *ServerConfig) NamedPlaces() map[string]domain.Place {
	out := make(map[string]domain.Place, len(c.Places))
	for name, p := range c.Places {
		p.Name = name
		out[name] = p
	}
	return out
}
