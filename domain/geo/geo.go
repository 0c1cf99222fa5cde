// Package geo holds coordinates and great-circle distance math.
package geo

import (
	"fmt"
	"math"

	"github.com/helixml/compset/domain/errs"
)

// EarthRadiusKm is the mean Earth radius used for Haversine distances.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the length of one degree of latitude on the same sphere.
const kmPerDegreeLat = EarthRadiusKm * math.Pi / 180

// boxPadding widens bounding boxes slightly so great-circle paths that bow
// towards the pole still fall inside.
const boxPadding = 1.01

// ErrInvalidLocation indicates coordinates outside the valid range.
var ErrInvalidLocation = fmt.Errorf("%w: invalid location", errs.ErrValidation)

// Location is a WGS84 coordinate pair.
type Location struct {
	latitude  float64
	longitude float64
}

// NewLocation creates a validated Location.
func NewLocation(lat, lon float64) (Location, error) {
	l := Location{latitude: lat, longitude: lon}
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	return l, nil
}

// ReconstructLocation recreates a stored Location without validation.
func ReconstructLocation(lat, lon float64) Location {
	return Location{latitude: lat, longitude: lon}
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 { return l.latitude }

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 { return l.longitude }

// Validate checks the coordinates are finite and within range.
func (l Location) Validate() error {
	switch {
	case math.IsNaN(l.latitude) || math.IsInf(l.latitude, 0),
		math.IsNaN(l.longitude) || math.IsInf(l.longitude, 0):
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidLocation)
	case l.latitude < -90 || l.latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, l.latitude)
	case l.longitude < -180 || l.longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, l.longitude)
	}
	return nil
}

// DistanceKm returns the Haversine great-circle distance to other.
func (l Location) DistanceKm(other Location) float64 {
	lat1 := radians(l.latitude)
	lat2 := radians(other.latitude)
	dLat := lat2 - lat1
	dLon := radians(other.longitude - l.longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Offset returns the location moved by the given kilometres north and east.
// It is accurate for the short distances used in tests and fixtures.
func (l Location) Offset(northKm, eastKm float64) Location {
	lat := l.latitude + northKm/kmPerDegreeLat
	lon := l.longitude + eastKm/(kmPerDegreeLat*math.Cos(radians(l.latitude)))
	return Location{latitude: lat, longitude: lon}
}

// BoundingBox is an inclusive latitude/longitude rectangle. When the
// box crosses the antimeridian MinLon is greater than MaxLon and the
// longitude range is [MinLon, 180] plus [-180, MaxLon].
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// CrossesAntimeridian reports whether the longitude range wraps past ±180.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.MinLon > b.MaxLon
}

// Contains reports whether l falls inside the box.
func (b BoundingBox) Contains(l Location) bool {
	if l.latitude < b.MinLat || l.latitude > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return l.longitude >= b.MinLon || l.longitude <= b.MaxLon
	}
	return l.longitude >= b.MinLon && l.longitude <= b.MaxLon
}

// ErrInvalidRadius indicates a non-positive search radius.
var ErrInvalidRadius = fmt.Errorf("%w: radius must be positive", errs.ErrValidation)

// Box returns a rectangle that contains every point within radiusKm of l.
// A circle reaching a pole spans every longitude; one reaching past ±180
// wraps to the other side.
func (l Location) Box(radiusKm float64) BoundingBox {
	radiusKm *= boxPadding
	dLat := radiusKm / kmPerDegreeLat
	box := BoundingBox{
		MinLat: math.Max(-90, l.latitude-dLat),
		MaxLat: math.Min(90, l.latitude+dLat),
		MinLon: -180,
		MaxLon: 180,
	}
	if math.Abs(l.latitude)+dLat >= 90 {
		return box
	}

	// Widest longitude offset of a spherical cap of angular radius r
	// centred at latitude φ: asin(sin r / cos φ). Below the pole check
	// the ratio stays under 1.
	ratio := math.Sin(radiusKm/EarthRadiusKm) / math.Cos(radians(l.latitude))
	dLon := math.Asin(math.Min(1, ratio)) * 180 / math.Pi
	box.MinLon = l.longitude - dLon
	box.MaxLon = l.longitude + dLon
	if box.MinLon < -180 {
		box.MinLon += 360
	}
	if box.MaxLon > 180 {
		box.MaxLon -= 360
	}
	return box
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
