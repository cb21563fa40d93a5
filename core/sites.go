package core

import (
	"fmt"

	"tremor/geo"
)

// Site is a location of interest with its soil parameters.
type Site struct {
	// ID is the stable integer site id (sid) within the full collection.
	ID       int
	Location geo.Point
	// Vs30 is the average shear-wave velocity in the top 30m, in m/s.
	Vs30         float64
	Vs30Measured bool
}

// SiteCollection is an ordered, fixed-size set of sites. A collection may be
// a filtered view of a larger one; in that case it remembers the positions
// of its sites in the complete collection so that values computed on the
// subset can be expanded back to full size.
//
// Filtering never changes site ids: a site keeps its sid across any number
// of Filter calls.
type SiteCollection struct {
	sites   []Site
	indices []int // positions in the complete collection; nil when complete
	total   int   // size of the complete collection
}

// NewSiteCollection builds a complete collection, assigning sequential sids.
func NewSiteCollection(sites []Site) *SiteCollection {
	owned := make([]Site, len(sites))
	copy(owned, sites)
	for i := range owned {
		owned[i].ID = i
	}
	return &SiteCollection{sites: owned, total: len(owned)}
}

// Len returns the number of sites in this (possibly filtered) view.
func (sc *SiteCollection) Len() int { return len(sc.sites) }

// TotalLen returns the size of the complete collection this view belongs to.
func (sc *SiteCollection) TotalLen() int { return sc.total }

// Sites returns the sites of this view in order.
func (sc *SiteCollection) Sites() []Site { return sc.sites }

// SIDs returns the site ids of this view in order.
func (sc *SiteCollection) SIDs() []int {
	sids := make([]int, len(sc.sites))
	for i, s := range sc.sites {
		sids[i] = s.ID
	}
	return sids
}

// Locations returns the site locations of this view in order.
func (sc *SiteCollection) Locations() []geo.Point {
	pts := make([]geo.Point, len(sc.sites))
	for i, s := range sc.sites {
		pts[i] = s.Location
	}
	return pts
}

// Filter returns the view restricted to the sites where mask is true, or
// nil when no site passes. mask must have Len() entries.
func (sc *SiteCollection) Filter(mask []bool) (*SiteCollection, error) {
	if len(mask) != len(sc.sites) {
		return nil, fmt.Errorf("mask length %d does not match collection length %d",
			len(mask), len(sc.sites))
	}
	var sites []Site
	var indices []int
	for i, keep := range mask {
		if !keep {
			continue
		}
		sites = append(sites, sc.sites[i])
		indices = append(indices, sc.position(i))
	}
	if len(sites) == 0 {
		return nil, nil
	}
	if len(sites) == sc.total {
		return &SiteCollection{sites: sites, total: sc.total}, nil
	}
	return &SiteCollection{sites: sites, indices: indices, total: sc.total}, nil
}

func (sc *SiteCollection) position(i int) int {
	if sc.indices == nil {
		return i
	}
	return sc.indices[i]
}

// Expand scatters per-site values computed on this view back to the size of
// the complete collection, writing fill at the positions of sites not in the
// view. For no-exceedance probabilities fill must be 1.0: a site out of a
// rupture's range has probability one of not exceeding any level.
func (sc *SiteCollection) Expand(values []float64, fill float64) ([]float64, error) {
	if len(values) != len(sc.sites) {
		return nil, fmt.Errorf("got %d values for %d sites", len(values), len(sc.sites))
	}
	if sc.indices == nil && sc.total == len(values) {
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	}
	out := make([]float64, sc.total)
	for i := range out {
		out[i] = fill
	}
	for i, v := range values {
		out[sc.position(i)] = v
	}
	return out, nil
}

// ExpandRows is Expand for per-site rows of per-level values: missing sites
// get a row of fill sized like the first input row.
func (sc *SiteCollection) ExpandRows(rows [][]float64, fill float64) ([][]float64, error) {
	if len(rows) != len(sc.sites) {
		return nil, fmt.Errorf("got %d rows for %d sites", len(rows), len(sc.sites))
	}
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	out := make([][]float64, sc.total)
	for i := range out {
		row := make([]float64, width)
		for j := range row {
			row[j] = fill
		}
		out[i] = row
	}
	for i, row := range rows {
		copy(out[sc.position(i)], row)
	}
	return out, nil
}
