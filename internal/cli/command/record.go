package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/core/geofence"
	"github.com/yndnr/tracklog-go/internal/server/config"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// RecordCommand returns the record subcommand group. It writes through the
// same store code as the server, without authentication.
func RecordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Write one update to a store",
		Subcommands: []*cli.Command{
			{
				Name:   "location",
				Usage:  "Record a location update",
				Flags:  recordFlags(),
				Action: recordLocation,
			},
			{
				Name:  "data",
				Usage: "Record a user data update",
				Flags: append(recordFlags(),
					&cli.UintFlag{
						Name:     "battery",
						Usage:    "Battery level, 0-100",
						Required: true,
					},
					&cli.StringFlag{Name: "first-name", Usage: "First name (defaults to the configured user)"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name (defaults to the configured user)"},
					&cli.StringFlag{Name: "avatar", Usage: "Avatar (defaults to the configured user)"},
				),
				Action: recordData,
			},
		},
	}
}

func recordFlags() []cli.Flag {
	return []cli.Flag{
		dirFlag(),
		&cli.StringFlag{
			Name:     "user",
			Aliases:  []string{"u"},
			Usage:    "Entity (user) ID",
			Required: true,
		},
		&cli.Float64Flag{Name: "lat", Usage: "Latitude", Required: true},
		&cli.Float64Flag{Name: "long", Usage: "Longitude", Required: true},
		&cli.StringFlag{
			Name:  "address",
			Usage: "Place name (defaults to the configured place containing the point)",
		},
		&cli.DurationFlag{
			Name:  "window",
			Usage: "File window (defaults to the configured one)",
		},
		&cli.StringFlag{
			Name:  "time",
			Usage: "Update time as RFC 3339 or Unix milliseconds (defaults to now)",
		},
	}
}

type recordedUpdate struct {
	Store  string `json:"store"`
	Entity string `json:"entity"`
	Time   string `json:"time"`
	Dir    string `json:"dir"`
}

func recordLocation(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	loc, err := locationFromFlags(c, cfg)
	if err != nil {
		return err
	}
	return writeUpdate(c, cfg, kindLocation, loc)
}

func recordData(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	battery := c.Uint("battery")
	if battery > domain.MaxBattery {
		return domain.ErrInvalidBattery.WithDetails(fmt.Sprintf("battery %d", battery))
	}
	loc, err := locationFromFlags(c, cfg)
	if err != nil {
		return err
	}

	userID := c.String("user")
	user, ok := cfg.Users[userID]
	if !ok && !(c.IsSet("first-name") && c.IsSet("last-name") && c.IsSet("avatar")) {
		return domain.ErrUnknownUser.WithDetails("user " + userID + " not in config; set --first-name, --last-name and --avatar")
	}
	if c.IsSet("first-name") {
		user.FirstName = c.String("first-name")
	}
	if c.IsSet("last-name") {
		user.LastName = c.String("last-name")
	}
	if c.IsSet("avatar") {
		user.Avatar = c.String("avatar")
	}

	snap := domain.NewUserDataSnapshot(domain.NewUserDataSnapshotLocation(loc, uint8(battery)), user)
	return writeUpdate(c, cfg, kindData, snap)
}

func locationFromFlags(c *cli.Context, cfg *config.ServerConfig) (domain.LocationSnapshot, error) {
	lat, long := c.Float64("lat"), c.Float64("long")

	if c.IsSet("address") {
		if err := domain.ValidateCoordinates(lat, long); err != nil {
			return domain.LocationSnapshot{}, err
		}
		return domain.NewLocationSnapshot(lat, long, &domain.Place{Name: c.String("address")}), nil
	}

	place, err := geofence.New(cfg.NamedPlaces()).Resolve(lat, long)
	if err != nil {
		return domain.LocationSnapshot{}, err
	}
	return domain.NewLocationSnapshot(lat, long, place), nil
}

func writeUpdate[P any](c *cli.Context, cfg *config.ServerConfig, kind string, payload P) error {
	now, err := parseTime(c.String("time"))
	if err != nil {
		return err
	}
	window := storeWindow(cfg, kind)
	if c.IsSet("window") {
		window = c.Duration("window")
	}

	dir := storeDir(c, cfg, kind)
	store, err := snapshot.New[P](snapshot.Config{
		Name:      kind,
		Dir:       dir,
		Window:    window,
		WriteMode: cfg.Storage.WriteMode,
	})
	if err != nil {
		return err
	}
	if err := store.Update(c.String("user"), payload, now); err != nil {
		return err
	}

	return render(c, recordedUpdate{
		Store:  kind,
		Entity: c.String("user"),
		Time:   now.UTC().Format(time.RFC3339Nano),
		Dir:    dir,
	})
}

// parseTime accepts RFC 3339 or decimal Unix milliseconds. Empty means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --time %q: want RFC 3339 or Unix milliseconds", s)
	}
	return t, nil
}
