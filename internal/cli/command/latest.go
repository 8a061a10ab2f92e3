package command

import (
	"errors"
	"io/fs"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// LatestCommand returns the latest command.
func LatestCommand() *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Show the latest state of every entity in a store",
		Flags: []cli.Flag{
			kindFlag(),
			dirFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Show both stores (ignores --kind and --dir)",
			},
		},
		Action: latestAction,
	}
}

func latestAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.Bool("all") {
		var res latestAll
		var g errgroup.Group
		g.Go(func() error {
			m, err := readLatest[domain.LocationSnapshot](cfg.Storage.LocationDir)
			res.Location = locationView(m)
			return err
		})
		g.Go(func() error {
			m, err := readLatest[domain.UserDataSnapshot](cfg.Storage.DataDir)
			res.Data = dataView(m)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		return render(c, res)
	}

	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return err
	}
	dir := storeDir(c, cfg, kind)

	if kind == kindData {
		m, err := readLatest[domain.UserDataSnapshot](dir)
		if err != nil {
			return err
		}
		return render(c, dataView(m))
	}
	m, err := readLatest[domain.LocationSnapshot](dir)
	if err != nil {
		return err
	}
	return render(c, locationView(m))
}

// readLatest returns the latest entity map of dir, empty when the store
// has no batches yet or was never created.
func readLatest[P any](dir string) (snapshot.EntityMap[P], error) {
	m, ok, err := snapshot.LatestEntityMap[P](dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if !ok || err != nil {
		return snapshot.EntityMap[P]{}, nil
	}
	return m, nil
}
