package config

import (
	"time"

	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:8000"

	DefaultRateLimit = 10
	DefaultRateBurst = 20

	DefaultLocationDir    = "/var/lib/tracklog/location"
	DefaultDataDir        = "/var/lib/tracklog/data"
	DefaultLocationWindow = 12 * time.Hour
	DefaultDataWindow     = 12 * time.Hour
	DefaultWriteMode      = snapshot.WriteAtomic

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 5
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
			RateLimit: RateLimitConfig{
				Rate:  DefaultRateLimit,
				Burst: DefaultRateBurst,
			},
		},
		Storage: StorageSection{
			LocationDir:    DefaultLocationDir,
			DataDir:        DefaultDataDir,
			LocationWindow: DefaultLocationWindow,
			DataWindow:     DefaultDataWindow,
			WriteMode:      DefaultWriteMode,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}
