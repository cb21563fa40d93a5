package calc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tremor/core"
	"tremor/geo"
	"tremor/gsim"
	"tremor/performance"
)

// stubRupture carries its single-occurrence exceedance probability in PoE.
// Magnitude echoes it so the stub evaluator can read it back from the
// rupture context; ProbabilityNoExceedance maps each poe to 1-poe.
type stubRupture struct {
	PoE  float64
	Hypo geo.Point
}

func (r *stubRupture) Magnitude() float64    { return r.PoE }
func (r *stubRupture) Hypocenter() geo.Point { return r.Hypo }
func (r *stubRupture) Surface() geo.Surface  { return geo.PointSurface{Hypocenter: r.Hypo} }

func (r *stubRupture) ProbabilityNoExceedance(poes [][]float64) [][]float64 {
	out := make([][]float64, len(poes))
	for s, row := range poes {
		o := make([]float64, len(row))
		for l, poe := range row {
			o[l] = 1 - poe
		}
		out[s] = o
	}
	return out
}

func newStubRupture(poe float64, hypo geo.Point) *stubRupture {
	return &stubRupture{PoE: poe, Hypo: hypo}
}

type stubSource struct {
	id       int
	name     string
	trt      string
	ruptures []core.Rupture
}

func (s *stubSource) ID() int                    { return s.id }
func (s *stubSource) SourceID() string           { return s.name }
func (s *stubSource) TectonicRegionType() string { return s.trt }
func (s *stubSource) IterRuptures() core.RuptureIterator {
	return core.SliceRuptureIterator(s.ruptures)
}

// poeGMPE returns, for every site at level index l, mag/(l+1), where the
// stub ruptures put their exceedance probability in the magnitude slot.
// Scaling down with the level index keeps curves monotonic over levels.
// failOn injects an evaluator failure for one specific probability.
type poeGMPE struct {
	failOn  float64
	failErr error
}

func (g *poeGMPE) Name() string { return "poe-stub" }

func (g *poeGMPE) PoEs(sctx *gsim.SiteContext, rctx *gsim.RuptureContext,
	dctx *gsim.DistanceContext, imt string, levels []float64,
	trunc float64) ([][]float64, error) {

	base := rctx.Mag
	if g.failErr != nil && base == g.failOn {
		return nil, g.failErr
	}
	width := len(levels)
	if width == 0 {
		width = 1
	}
	out := make([][]float64, sctx.Sites.Len())
	for s := range out {
		row := make([]float64, width)
		for l := range row {
			row[l] = base / float64(l+1)
		}
		out[s] = row
	}
	return out, nil
}

func oneSite(t *testing.T) *core.SiteCollection {
	t.Helper()
	return core.NewSiteCollection([]core.Site{{Location: geo.Point{}, Vs30: 760}})
}

func singleLevelIMTLs() core.IMTLevels {
	return core.IMTLevels{"PGA": {0.1}}
}

func TestHazardCurvesPerTRT_TwoRuptureScenario(t *testing.T) {
	// pne 0.9 and 0.8 for one site/IMT/level: accumulator 0.72, output 0.28
	sites := oneSite(t)
	src := &stubSource{id: 1, name: "src-a", trt: "Active Shallow Crust",
		ruptures: []core.Rupture{
			newStubRupture(0.1, geo.Point{}),
			newStubRupture(0.2, geo.Point{}),
		}}

	mon := performance.NewRecorder()
	curves, err := HazardCurvesPerTRT([]core.Source{src}, sites,
		singleLevelIMTLs(), []gsim.GMPE{&poeGMPE{}}, Params{}, nil, mon)
	require.NoError(t, err)
	require.Len(t, curves, 1)

	assert.InDelta(t, 0.28, curves[0].Values("PGA")[0][0], 1e-12)
	assert.Equal(t, int64(2), mon.EffRuptures())
	require.Len(t, mon.CalcTimes(), 1)
	assert.Equal(t, 1, mon.CalcTimes()[0].SourceID)
}

func TestCalcHazardCurves_TwoRegionComposition(t *testing.T) {
	// regions producing exceedance 0.1 and 0.2 compose to 1-0.9*0.8 = 0.28
	sites := oneSite(t)
	sources := []core.Source{
		&stubSource{id: 1, name: "a", trt: "trt-1",
			ruptures: []core.Rupture{newStubRupture(0.1, geo.Point{})}},
		&stubSource{id: 2, name: "b", trt: "trt-2",
			ruptures: []core.Rupture{newStubRupture(0.2, geo.Point{})}},
	}
	gsimByTRT := map[string]gsim.GMPE{"trt-1": &poeGMPE{}, "trt-2": &poeGMPE{}}

	curves, err := CalcHazardCurves(sources, sites, singleLevelIMTLs(), gsimByTRT, Params{})
	require.NoError(t, err)
	assert.InDelta(t, 0.28, curves.Values("PGA")[0][0], 1e-12)
}

func TestCalcHazardCurves_UnboundTRTFailsBeforeComputing(t *testing.T) {
	sites := oneSite(t)
	sources := []core.Source{
		&stubSource{id: 1, name: "a", trt: "trt-1",
			ruptures: []core.Rupture{newStubRupture(0.1, geo.Point{})}},
		&stubSource{id: 2, name: "b", trt: "trt-unbound",
			ruptures: []core.Rupture{newStubRupture(0.2, geo.Point{})}},
	}
	_, err := CalcHazardCurves(sources, sites, singleLevelIMTLs(),
		map[string]gsim.GMPE{"trt-1": &poeGMPE{}}, Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trt-unbound")
}

func TestHazardCurvesPerTRT_RangeAndMonotonicity(t *testing.T) {
	sites := oneSite(t)
	imtls := core.IMTLevels{"PGA": {0.01, 0.1, 0.5, 1.0}}
	src := &stubSource{id: 1, name: "src", trt: "trt",
		ruptures: []core.Rupture{
			newStubRupture(0.3, geo.Point{}),
			newStubRupture(0.6, geo.Point{}),
		}}

	curves, err := HazardCurvesPerTRT([]core.Source{src}, sites, imtls,
		[]gsim.GMPE{&poeGMPE{}}, Params{}, nil, nil)
	require.NoError(t, err)

	row := curves[0].Values("PGA")[0]
	for l, v := range row {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		if l > 0 {
			assert.LessOrEqual(t, v, row[l-1],
				"exceedance probability must not increase with the level")
		}
	}
}

func TestHazardCurvesPerTRT_CompositionCommutativity(t *testing.T) {
	sites := oneSite(t)
	imtls := singleLevelIMTLs()
	mkSource := func(id int, poes ...float64) core.Source {
		rups := make([]core.Rupture, len(poes))
		for i, p := range poes {
			rups[i] = newStubRupture(p, geo.Point{})
		}
		return &stubSource{id: id, name: fmt.Sprintf("s%d", id), trt: "trt", ruptures: rups}
	}
	all := []core.Source{mkSource(1, 0.1, 0.2), mkSource(2, 0.3), mkSource(3, 0.15, 0.05)}

	full, err := HazardCurvesPerTRT(all, sites, imtls,
		[]gsim.GMPE{&poeGMPE{}}, Params{}, nil, nil)
	require.NoError(t, err)

	part1, err := HazardCurvesPerTRT(all[:1], sites, imtls,
		[]gsim.GMPE{&poeGMPE{}}, Params{}, nil, nil)
	require.NoError(t, err)
	part2, err := HazardCurvesPerTRT(all[1:], sites, imtls,
		[]gsim.GMPE{&poeGMPE{}}, Params{}, nil, nil)
	require.NoError(t, err)

	composed, err := core.AggCurves(part1[0], part2[0])
	require.NoError(t, err)
	assert.InDelta(t, full[0].Values("PGA")[0][0], composed.Values("PGA")[0][0], 1e-12)
}

func TestHazardCurvesPerTRT_FilterPassThroughEquivalence(t *testing.T) {
	sites := oneSite(t)
	imtls := singleLevelIMTLs()
	src := func() core.Source {
		return &stubSource{id: 1, name: "s", trt: "trt",
			ruptures: []core.Rupture{
				newStubRupture(0.2, geo.Point{}),
				newStubRupture(0.4, geo.Point{}),
			}}
	}

	identitySrc := SourceSiteFilter(func(s core.Source, sc *core.SiteCollection) (*core.SiteCollection, bool) {
		return sc, true
	})
	identityRup := RuptureSiteFilter(func(r core.Rupture, sc *core.SiteCollection) (*core.SiteCollection, bool) {
		return sc, true
	})

	plain, err := HazardCurvesPerTRT([]core.Source{src()}, sites, imtls,
		[]gsim.GMPE{&poeGMPE{}}, Params{}, nil, nil)
	require.NoError(t, err)
	filtered, err := HazardCurvesPerTRT([]core.Source{src()}, sites, imtls,
		[]gsim.GMPE{&poeGMPE{}},
		Params{SourceFilter: identitySrc, RuptureFilter: identityRup}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, plain[0].Values("PGA")[0][0], filtered[0].Values("PGA")[0][0])
}

func TestHazardCurvesPerTRT_FarAwaySourceContributesNothing(t *testing.T) {
	sites := oneSite(t)
	far := geo.Point{Longitude: 20, Latitude: 20}
	src := &stubSource{id: 7, name: "remote", trt: "trt",
		ruptures: []core.Rupture{
			newStubRupture(0.5, far),
			newStubRupture(0.9, far),
		}}

	mon := performance.NewRecorder()
	curves, err := HazardCurvesPerTRT([]core.Source{src}, sites,
		singleLevelIMTLs(), []gsim.GMPE{&poeGMPE{}},
		Params{MaxDistance: 100}, nil, mon)
	require.NoError(t, err)

	assert.Equal(t, 0.0, curves[0].Values("PGA")[0][0])
	assert.Equal(t, int64(0), mon.EffRuptures())
	// the source still ran and recorded its time
	assert.Len(t, mon.CalcTimes(), 1)
}

func TestHazardCurvesPerTRT_ErrorAttribution(t *testing.T) {
	sites := oneSite(t)
	boom := errors.New("evaluator exploded")
	srcs := []core.Source{
		&stubSource{id: 1, name: "good-source", trt: "trt",
			ruptures: []core.Rupture{newStubRupture(0.1, geo.Point{})}},
		&stubSource{id: 2, name: "bad-source", trt: "trt",
			ruptures: []core.Rupture{newStubRupture(0.77, geo.Point{})}},
	}

	_, err := HazardCurvesPerTRT(srcs, sites, singleLevelIMTLs(),
		[]gsim.GMPE{&poeGMPE{failOn: 0.77, failErr: boom}}, Params{}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source id=bad-source")
	assert.NotContains(t, err.Error(), "good-source")
	assert.ErrorIs(t, err, boom)
}

func TestCalcHazardCurves_ErrorLeavesNoResult(t *testing.T) {
	sites := oneSite(t)
	boom := errors.New("boom")
	src := &stubSource{id: 1, name: "bad", trt: "trt",
		ruptures: []core.Rupture{newStubRupture(0.5, geo.Point{})}}

	curves, err := CalcHazardCurves([]core.Source{src}, sites,
		singleLevelIMTLs(),
		map[string]gsim.GMPE{"trt": &poeGMPE{failOn: 0.5, failErr: boom}}, Params{})
	require.Error(t, err)
	assert.Nil(t, curves)
}

func TestHazardCurvesPerTRT_MultipleGSIMs(t *testing.T) {
	sites := oneSite(t)
	src := &stubSource{id: 1, name: "s", trt: "trt",
		ruptures: []core.Rupture{newStubRupture(0.25, geo.Point{})}}

	curves, err := HazardCurvesPerTRT([]core.Source{src}, sites,
		singleLevelIMTLs(), []gsim.GMPE{&poeGMPE{}, &poeGMPE{}},
		Params{}, nil, nil)
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, curves[0].Values("PGA")[0][0], curves[1].Values("PGA")[0][0])
}

func TestHazardCurvesPerTRT_BoundingBoxSink(t *testing.T) {
	sites := oneSite(t)
	bb := geo.NewBoundingBox(0)
	src := &stubSource{id: 1, name: "s", trt: "trt",
		ruptures: []core.Rupture{
			newStubRupture(0.2, geo.Point{Longitude: 0.2, Latitude: 0.1}),
		}}

	_, err := HazardCurvesPerTRT([]core.Source{src}, sites,
		singleLevelIMTLs(), []gsim.GMPE{&poeGMPE{}},
		Params{MaxDistance: 100}, []*geo.BoundingBox{bb}, nil)
	require.NoError(t, err)

	require.False(t, bb.Empty())
	assert.Greater(t, bb.MaxDist, 0.0)
	assert.InDelta(t, 0.2, bb.East, 1e-9)
	assert.InDelta(t, 0.1, bb.North, 1e-9)
}

func TestHazardCurvesPerTRT_EmptySourceList(t *testing.T) {
	sites := oneSite(t)
	curves, err := HazardCurvesPerTRT(nil, sites, singleLevelIMTLs(),
		[]gsim.GMPE{&poeGMPE{}}, Params{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, curves[0].Values("PGA")[0][0])
}
