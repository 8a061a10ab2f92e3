// Package geofence maps coordinates to the configured named places.
package geofence

import (
	"sort"

	geo "github.com/kellydunn/golang-geo"

	"github.com/yndnr/tracklog-go/internal/core/domain"
)

// Resolver finds the place containing a coordinate.
//
// Places are checked in name order and the first circle containing the
// point wins, so overlapping places resolve deterministically.
type Resolver struct {
	places []domain.Place
	points []*geo.Point
}

// New builds a Resolver. The map key is used as the place name.
func New(places map[string]domain.Place) *Resolver {
	names := make([]string, 0, len(places))
	for name := range places {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &Resolver{
		places: make([]domain.Place, 0, len(names)),
		points: make([]*geo.Point, 0, len(names)),
	}
	for _, name := range names {
		p := places[name]
		p.Name = name
		r.places = append(r.places, p)
		r.points = append(r.points, geo.NewPoint(p.Lat, p.Long))
	}
	return r
}

// Resolve returns the place containing (lat, long), or nil when the point is
// outside every place.
func (r *Resolver) Resolve(lat, long float64) (*domain.Place, error) {
	if err := domain.ValidateCoordinates(lat, long); err != nil {
		return nil, err
	}
	if r == nil || len(r.places) == 0 {
		return nil, nil
	}
	pt := geo.NewPoint(lat, long)
	for i, center := range r.points {
		// GreatCircleDistance is in kilometres.
		if center.GreatCircleDistance(pt)*1000 <= r.places[i].Radius {
			p := r.places[i]
			return &p, nil
		}
	}
	return nil, nil
}

// Places returns the configured places in check order.
func (r *Resolver) Places() []domain.Place {
	if r == nil {
		return nil
	}
	out := make([]domain.Place, len(r.places))
	copy(out, r.places)
	return out
}
