// Package domain defines the core domain models for tracklog.
package domain

import "strconv"

// MaxBattery is the highest accepted battery level (percent).
const MaxBattery = 100

// LocationSnapshot is the payload of the location store.
//
// Coordinates are kept as decimal strings so files round-trip exactly.
// Address is the name of the place the entity was in, or null.
type LocationSnapshot struct {
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
	Address   *string `json:"address"`
}

// NewLocationSnapshot builds a LocationSnapshot from raw coordinates and the
// place (if any) containing them.
func NewLocationSnapshot(lat, long float64, place *Place) LocationSnapshot {
	s := LocationSnapshot{
		Latitude:  formatCoordinate(lat),
		Longitude: formatCoordinate(long),
	}
	if place != nil && place.Name != "" {
		name := place.Name
		s.Address = &name
	}
	return s
}

// UserDataSnapshotLocation is the location part of a UserDataSnapshot.
type UserDataSnapshotLocation struct {
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
	Address   *string `json:"address"`
	Battery   uint8   `json:"battery"`
}

// NewUserDataSnapshotLocation extends a location with a battery level.
func NewUserDataSnapshotLocation(loc LocationSnapshot, battery uint8) UserDataSnapshotLocation {
	return UserDataSnapshotLocation{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Address:   copyString(loc.Address),
		Battery:   battery,
	}
}

// UserDataSnapshot is the payload of the user data store.
type UserDataSnapshot struct {
	Location  UserDataSnapshotLocation `json:"location"`
	Avatar    string                   `json:"avatar"`
	FirstName string                   `json:"firstName"`
	LastName  string                   `json:"lastName"`
}

// NewUserDataSnapshot combines a location with the user's profile.
func NewUserDataSnapshot(loc UserDataSnapshotLocation, user User) UserDataSnapshot {
	return UserDataSnapshot{
		Location:  loc,
		Avatar:    user.Avatar,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
