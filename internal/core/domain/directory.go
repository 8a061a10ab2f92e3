// Package domain defines the core domain models for tracklog.
package domain

import "fmt"

// User is a tracked person.
type User struct {
	FirstName string `json:"first_name" koanf:"first_name"`
	LastName  string `json:"last_name" koanf:"last_name"`
	Avatar    string `json:"avatar" koanf:"avatar"`
}

// Place is a named circle on the map. Name is filled from the config key.
type Place struct {
	Name   string  `json:"name" koanf:"-"`
	Lat    float64 `json:"lat" koanf:"lat"`
	Long   float64 `json:"long" koanf:"long"`
	Radius float64 `json:"radius" koanf:"radius"` // metres
}

// ValidateCoordinates checks that lat/long are finite and in range.
func ValidateCoordinates(lat, long float64) error {
	if lat != lat || long != long {
		return ErrInvalidCoordinate.WithDetails("coordinate is NaN")
	}
	if lat < -90 || lat > 90 {
		return ErrInvalidCoordinate.WithDetails(fmt.Sprintf("latitude %v", lat))
	}
	if long < -180 || long > 180 {
		return ErrInvalidCoordinate.WithDetails(fmt.Sprintf("longitude %v", long))
	}
	return nil
}
