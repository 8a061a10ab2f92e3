package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// ShowCommand returns the show command.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show every batch in one snapshot file",
		Flags: []cli.Flag{
			kindFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Snapshot file to show",
				Required: true,
			},
		},
		Action: showAction,
	}
}

func showAction(c *cli.Context) error {
	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return err
	}
	path := c.String("file")
	if path == "" {
		return errors.New("--file is required")
	}

	if kind == kindData {
		return showFile(c, path, dataColumns)
	}
	return showFile(c, path, locationColumns)
}

func showFile[P any](c *cli.Context, path string, cols columns[P]) error {
	log, err := snapshot.ReadFile[P](path)
	if err != nil {
		return err
	}
	if err := validateBatchKeys(path, log); err != nil {
		return err
	}
	return render(c, batchView[P]{log: log, cols: cols})
}
