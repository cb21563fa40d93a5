package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tremor/core"
	"tremor/geo"
)

func spreadSites() *core.SiteCollection {
	return core.NewSiteCollection([]core.Site{
		{Location: geo.Point{Longitude: 0, Latitude: 0}, Vs30: 760},
		{Location: geo.Point{Longitude: 0.5, Latitude: 0}, Vs30: 760}, // ~55 km
		{Location: geo.Point{Longitude: 10, Latitude: 0}, Vs30: 760},  // ~1110 km
	})
}

func TestSourceSiteDistanceFilter(t *testing.T) {
	src := &core.PointSource{
		SrcID: 1, Name: "p", TRT: "trt",
		Location: geo.Point{Longitude: 0, Latitude: 0},
		MFD:      core.TruncatedGRMFD{AValue: 4, BValue: 1, MinMag: 5, MaxMag: 6, BinWidth: 0.5},
		TimeSpan: 50,
	}
	sites := spreadSites()

	sub, ok := SourceSiteDistanceFilter(100)(src, sites)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, sub.SIDs())

	// no site in range: skip the source
	farSrc := *src
	farSrc.Location = geo.Point{Longitude: 90, Latitude: 0}
	_, ok = SourceSiteDistanceFilter(100)(&farSrc, sites)
	assert.False(t, ok)

	// disabled distance passes everything
	sub, ok = SourceSiteDistanceFilter(0)(src, sites)
	require.True(t, ok)
	assert.Equal(t, 3, sub.Len())
}

func TestSourceSiteDistanceFilter_UnpositionedSource(t *testing.T) {
	src := &stubSource{id: 1, name: "s", trt: "trt"}
	sites := spreadSites()

	sub, ok := SourceSiteDistanceFilter(1)(src, sites)
	require.True(t, ok)
	assert.Equal(t, 3, sub.Len())
}

func TestRuptureSiteDistanceFilter(t *testing.T) {
	rup := newStubRupture(0.5, geo.Point{Longitude: 0, Latitude: 0})
	sites := spreadSites()

	sub, ok := RuptureSiteDistanceFilter(100)(rup, sites)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, sub.SIDs())

	farRup := newStubRupture(0.5, geo.Point{Longitude: 90, Latitude: 0})
	_, ok = RuptureSiteDistanceFilter(100)(farRup, sites)
	assert.False(t, ok)
}
