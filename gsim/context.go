// Package gsim provides ground-shaking intensity model evaluation: the
// rupture/site/distance contexts GMPEs consume, a context maker with
// maximum-distance filtering, and concrete attenuation models.
package gsim

import (
	"errors"

	"tremor/core"
	"tremor/geo"
)

// ErrFarAwayRupture signals that a rupture is beyond the maximum distance
// from every candidate site. It is not a failure: callers skip the rupture.
var ErrFarAwayRupture = errors.New("rupture too far from all sites")

// SiteContext carries the site parameters of the subset of sites a rupture
// can affect.
type SiteContext struct {
	Sites        *core.SiteCollection
	Vs30         []float64
	Vs30Measured []bool
}

// RuptureContext carries the rupture parameters needed by GMPEs.
type RuptureContext struct {
	Mag        float64
	Hypocenter geo.Point
}

// DistanceContext carries per-site distances to the rupture, aligned with
// the SiteContext's sites.
type DistanceContext struct {
	// RJB is the Joyner-Boore distance in km (to the surface projection).
	RJB []float64
	// RRup is the closest 3D distance to the rupture in km.
	RRup []float64
}

// ContextMaker builds the context triple for a rupture against a site
// collection, dropping sites beyond MaxDistance.
type ContextMaker struct {
	// MaxDistance in km; zero or negative disables distance filtering.
	MaxDistance float64
}

// MakeContexts returns the contexts restricted to sites within range of the
// rupture, or ErrFarAwayRupture when no site qualifies.
func (cm ContextMaker) MakeContexts(sites *core.SiteCollection, rup core.Rupture) (*SiteContext, *RuptureContext, *DistanceContext, error) {
	locs := sites.Locations()
	rjb := rup.Surface().JoynerBooreDistances(locs)

	sub := sites
	if cm.MaxDistance > 0 {
		mask := make([]bool, len(rjb))
		for i, d := range rjb {
			mask[i] = d <= cm.MaxDistance
		}
		filtered, err := sites.Filter(mask)
		if err != nil {
			return nil, nil, nil, err
		}
		if filtered == nil {
			return nil, nil, nil, ErrFarAwayRupture
		}
		sub = filtered
	}

	subLocs := sub.Locations()
	sctx := &SiteContext{
		Sites:        sub,
		Vs30:         make([]float64, sub.Len()),
		Vs30Measured: make([]bool, sub.Len()),
	}
	for i, s := range sub.Sites() {
		sctx.Vs30[i] = s.Vs30
		sctx.Vs30Measured[i] = s.Vs30Measured
	}
	rctx := &RuptureContext{Mag: rup.Magnitude(), Hypocenter: rup.Hypocenter()}
	dctx := &DistanceContext{
		RJB:  rup.Surface().JoynerBooreDistances(subLocs),
		RRup: rup.Surface().RuptureDistances(subLocs),
	}
	return sctx, rctx, dctx, nil
}
