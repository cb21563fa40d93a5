// Package geo provides the minimal spherical geometry needed by the hazard
// engine: geographic points, great-circle distances, rupture surfaces and
// per-site bounding boxes for disaggregation.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0

// Point is a geographic location. Depth is in kilometers, positive downward;
// surface points have Depth 0.
type Point struct {
	Longitude float64
	Latitude  float64
	Depth     float64
}

// NewPoint validates coordinates and returns a surface point.
func NewPoint(lon, lat float64) (Point, error) {
	if lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	return Point{Longitude: lon, Latitude: lat}, nil
}

// GreatCircleDistance returns the haversine distance in km between the
// surface projections of p and other.
func (p Point) GreatCircleDistance(other Point) float64 {
	lat1 := p.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (other.Longitude - p.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Distance returns the 3D distance in km between p and other, accounting
// for the depth difference.
func (p Point) Distance(other Point) float64 {
	horiz := p.GreatCircleDistance(other)
	vert := p.Depth - other.Depth
	return math.Sqrt(horiz*horiz + vert*vert)
}
