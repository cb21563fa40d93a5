package calc

import (
	"tremor/core"
	"tremor/geo"
)

// SourceSiteFilter restricts the sites a source can affect. It returns the
// qualifying subset and true, or nil and false when no site qualifies and
// the source should be skipped entirely. A nil filter passes everything
// through unchanged.
type SourceSiteFilter func(src core.Source, sites *core.SiteCollection) (*core.SiteCollection, bool)

// RuptureSiteFilter is the rupture-level counterpart, applied lazily to
// each rupture as the source's iterator produces it.
type RuptureSiteFilter func(rup core.Rupture, sites *core.SiteCollection) (*core.SiteCollection, bool)

// Positioned is implemented by sources with a representative location,
// which is what distance-based source filtering needs.
type Positioned interface {
	Position() geo.Point
}

// SourceSiteDistanceFilter keeps the sites within maxDistance km of the
// source's representative location. Sources without a position pass
// through unfiltered; their ruptures are still subject to the rupture-level
// filter and to the context maker's own distance cut.
func SourceSiteDistanceFilter(maxDistance float64) SourceSiteFilter {
	return func(src core.Source, sites *core.SiteCollection) (*core.SiteCollection, bool) {
		pos, ok := src.(Positioned)
		if !ok || maxDistance <= 0 {
			return sites, true
		}
		origin := pos.Position()
		mask := make([]bool, sites.Len())
		for i, loc := range sites.Locations() {
			mask[i] = origin.GreatCircleDistance(loc) <= maxDistance
		}
		sub, err := sites.Filter(mask)
		if err != nil || sub == nil {
			return nil, false
		}
		return sub, true
	}
}

// RuptureSiteDistanceFilter keeps the sites within maxDistance km of the
// rupture surface (Joyner-Boore distance).
func RuptureSiteDistanceFilter(maxDistance float64) RuptureSiteFilter {
	return func(rup core.Rupture, sites *core.SiteCollection) (*core.SiteCollection, bool) {
		if maxDistance <= 0 {
			return sites, true
		}
		dists := rup.Surface().JoynerBooreDistances(sites.Locations())
		mask := make([]bool, len(dists))
		for i, d := range dists {
			mask[i] = d <= maxDistance
		}
		sub, err := sites.Filter(mask)
		if err != nil || sub == nil {
			return nil, false
		}
		return sub, true
	}
}
