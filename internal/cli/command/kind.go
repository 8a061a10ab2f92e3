package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklog-go/internal/server/config"
)

// Store kinds.
const (
	kindLocation = "location"
	kindData     = "data"
)

func kindFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kind",
		Aliases: []string{"k"},
		Usage:   "Store kind: location or data",
		Value:   kindLocation,
	}
}

func dirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Store directory (defaults to the configured one for --kind)",
	}
}

func parseKind(s string) (string, error) {
	switch s {
	case kindLocation, kindData:
		return s, nil
	default:
		return "", fmt.Errorf("unknown store kind %q (want location or data)", s)
	}
}

// storeDir resolves the directory for kind, preferring an explicit --dir.
func storeDir(c *cli.Context, cfg *config.ServerConfig, kind string) string {
	if dir := c.String("dir"); dir != "" {
		return dir
	}
	if kind == kindData {
		return cfg.Storage.DataDir
	}
	return cfg.Storage.LocationDir
}

func storeWindow(cfg *config.ServerConfig, kind string) time.Duration {
	if kind == kindData {
		return cfg.Storage.DataWindow
	}
	return cfg.Storage.LocationWindow
}

// batchTime converts a batch or file timestamp to a time.
func batchTime(ms uint64) time.Time {
	return time.UnixMilli(int64(ms))
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
