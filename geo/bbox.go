package geo

// BoundingBox accumulates, for one site, the extremal rupture distances and
// closest-point coordinates seen during a calculation. It is the data the
// disaggregation phase later uses to size its coordinate bins. The engine
// treats it as a write-only sink.
type BoundingBox struct {
	SiteID int

	MinDist float64
	MaxDist float64
	West    float64
	East    float64
	South   float64
	North   float64

	seen bool
}

// NewBoundingBox returns an empty bounding box for the given site.
func NewBoundingBox(siteID int) *BoundingBox {
	return &BoundingBox{SiteID: siteID}
}

// Update widens the box with one or more (distance, longitude, latitude)
// observations. Slices must be the same length.
func (bb *BoundingBox) Update(dists, lons, lats []float64) {
	for i := range dists {
		if !bb.seen {
			bb.MinDist, bb.MaxDist = dists[i], dists[i]
			bb.West, bb.East = lons[i], lons[i]
			bb.South, bb.North = lats[i], lats[i]
			bb.seen = true
			continue
		}
		if dists[i] < bb.MinDist {
			bb.MinDist = dists[i]
		}
		if dists[i] > bb.MaxDist {
			bb.MaxDist = dists[i]
		}
		if lons[i] < bb.West {
			bb.West = lons[i]
		}
		if lons[i] > bb.East {
			bb.East = lons[i]
		}
		if lats[i] < bb.South {
			bb.South = lats[i]
		}
		if lats[i] > bb.North {
			bb.North = lats[i]
		}
	}
}

// Empty reports whether the box has received no observations.
func (bb *BoundingBox) Empty() bool {
	return !bb.seen
}
