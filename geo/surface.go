package geo

// Surface is the rupture surface abstraction consumed by distance
// calculations and by the disaggregation side channel.
type Surface interface {
	// JoynerBooreDistances returns, for each target point, the shortest
	// distance in km to the surface projection of the rupture.
	JoynerBooreDistances(targets []Point) []float64

	// RuptureDistances returns, for each target point, the shortest 3D
	// distance in km to the rupture.
	RuptureDistances(targets []Point) []float64

	// ClosestPoints returns, for each target point, the point on the
	// surface projection closest to it.
	ClosestPoints(targets []Point) []Point
}

// PointSurface models a rupture collapsed to a single point, which is the
// geometry used by point sources. All distances degenerate to distances
// from the hypocenter.
type PointSurface struct {
	Hypocenter Point
}

func (s PointSurface) JoynerBooreDistances(targets []Point) []float64 {
	dists := make([]float64, len(targets))
	for i, t := range targets {
		dists[i] = s.Hypocenter.GreatCircleDistance(t)
	}
	return dists
}

func (s PointSurface) RuptureDistances(targets []Point) []float64 {
	dists := make([]float64, len(targets))
	for i, t := range targets {
		dists[i] = s.Hypocenter.Distance(t)
	}
	return dists
}

func (s PointSurface) ClosestPoints(targets []Point) []Point {
	pts := make([]Point, len(targets))
	surface := Point{Longitude: s.Hypocenter.Longitude, Latitude: s.Hypocenter.Latitude}
	for i := range targets {
		pts[i] = surface
	}
	return pts
}
