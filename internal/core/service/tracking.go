package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/core/geofence"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// LocationStore is the snapshot store behind location updates.
type LocationStore = snapshot.Store[domain.LocationSnapshot]

// DataStore is the snapshot store behind user data updates.
type DataStore = snapshot.Store[domain.UserDataSnapshot]

// Directory is the configuration a request is checked against.
// A Directory is immutable once published to a TrackingService.
type Directory struct {
	Verifier *PasswordVerifier
	Users    map[string]domain.User
	Places   *geofence.Resolver
}

// TrackingService records location and user data updates.
type TrackingService struct {
	locations *LocationStore
	data      *DataStore
	clock     clock.Clock
	logger    *slog.Logger

	dir atomic.Pointer[Directory]
}

// TrackingServiceConfig holds optional dependencies for TrackingService.
type TrackingServiceConfig struct {
	// Clock defaults to the wall clock.
	Clock  clock.Clock
	Logger *slog.Logger
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(locations *LocationStore, data *DataStore, dir *Directory, cfg *TrackingServiceConfig) *TrackingService {
	if cfg == nil {
		cfg = &TrackingServiceConfig{}
	}
	s := &TrackingService{
		locations: locations,
		data:      data,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if dir == nil {
		dir = &Directory{}
	}
	s.dir.Store(dir)
	return s
}

// SetDirectory publishes a new Directory. Requests already in flight keep
// the one they started with.
func (s *TrackingService) SetDirectory(dir *Directory) {
	if dir == nil {
		dir = &Directory{}
	}
	s.dir.Store(dir)
}

// Directory returns the current Directory.
func (s *TrackingService) Directory() *Directory {
	return s.dir.Load()
}

// UpdateLocationRequest is a location ping from a tracker.
type UpdateLocationRequest struct {
	Password string
	UserID   string
	Lat      float64
	Long     float64
}

// UpdateDataRequest is a location ping carrying the battery level.
type UpdateDataRequest struct {
	Password string
	UserID   string
	Lat      float64
	Long     float64
	Battery  uint8
}

// UpdateLocation records the user's position in the location store.
func (s *TrackingService) UpdateLocation(ctx context.Context, req *UpdateLocationRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.dir.Load()

	if _, err := s.authorize(dir, req.Password, req.UserID); err != nil {
		return err
	}
	place, err := s.locate(dir, req.Lat, req.Long)
	if err != nil {
		return err
	}

	snap := domain.NewLocationSnapshot(req.Lat, req.Long, place)
	if err := s.locations.Update(req.UserID, snap, s.clock.Now()); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// UpdateData records the user's position, battery and profile in the user
// data store.
func (s *TrackingService) UpdateData(ctx context.Context, req *UpdateDataRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.dir.Load()

	user, err := s.authorize(dir, req.Password, req.UserID)
	if err != nil {
		return err
	}
	if req.Battery > domain.MaxBattery {
		return domain.ErrInvalidBattery.WithDetails("battery must be 0-100")
	}
	place, err := s.locate(dir, req.Lat, req.Long)
	if err != nil {
		return err
	}

	loc := domain.NewUserDataSnapshotLocation(domain.NewLocationSnapshot(req.Lat, req.Long, place), req.Battery)
	snap := domain.NewUserDataSnapshot(loc, user)
	if err := s.data.Update(req.UserID, snap, s.clock.Now()); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// LatestLocations returns the most recent location of every user. The map
// is empty if nothing was recorded yet.
func (s *TrackingService) LatestLocations(ctx context.Context, password string) (snapshot.EntityMap[domain.LocationSnapshot], error) {
	return readLatest(ctx, s, password, s.locations)
}

// LatestData returns the most recent user data of every user.
func (s *TrackingService) LatestData(ctx context.Context, password string) (snapshot.EntityMap[domain.UserDataSnapshot], error) {
	return readLatest(ctx, s, password, s.data)
}

func readLatest[P any](ctx context.Context, s *TrackingService, password string, store *snapshot.Store[P]) (snapshot.EntityMap[P], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.dir.Load().Verifier.Verify(password) {
		return nil, domain.ErrUnauthorized
	}
	m, ok, err := store.ReadLatest()
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	if !ok {
		return snapshot.EntityMap[P]{}, nil
	}
	return m, nil
}

func (s *TrackingService) authorize(dir *Directory, password, userID string) (domain.User, error) {
	if !dir.Verifier.Verify(password) {
		return domain.User{}, domain.ErrUnauthorized
	}
	user, ok := dir.Users[userID]
	if !ok {
		s.logger.Warn("update for unknown user", "user_id", userID)
		return domain.User{}, domain.ErrUnknownUser.WithDetails("user " + userID)
	}
	return user, nil
}

func (s *TrackingService) locate(dir *Directory, lat, long float64) (*domain.Place, error) {
	place, err := dir.Places.Resolve(lat, long)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		s.logger.Error("place lookup failed", "lat", lat, "long", long, "error", err)
		return nil, domain.ErrInternalServer.WithCause(err)
	}
	return place, nil
}
