package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklog-go/internal/cli/output"
	"github.com/yndnr/tracklog-go/internal/infra/buildinfo"
	"github.com/yndnr/tracklog-go/internal/infra/confloader"
	"github.com/yndnr/tracklog-go/internal/server/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tracklog-cli",
		Usage:   "Inspect and write tracklog snapshot stores",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LatestCommand(),
			FilesCommand(),
			ShowCommand(),
			RecordCommand(),
			HashPasswordCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "tracklog-server configuration file",
			EnvVars: []string{"TRACKLOG_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "location-dir",
			Usage: "Location store directory (overrides config)",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Data store directory (overrides config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// loadConfig returns the server configuration with flag overrides applied.
// Without --config the defaults are used. The result is not verified: the
// CLI needs no password to read a store.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if dir := c.String("location-dir"); dir != "" {
		cfg.Storage.LocationDir = dir
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	return cfg, nil
}

// render writes data in the format selected by the global flags.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, data)
}
