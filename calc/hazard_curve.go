// Package calc implements the probabilistic seismic hazard curve
// calculation: the probability that ground motion exceeds each intensity
// level at each site within a reference time span is
//
//	P(X>=x|T) = 1 - prod_i prod_j Pij(X<x|T)
//
// where the products run over sources i and their ruptures j, under the
// assumption that sources are independent and ruptures within a source are
// independent.
package calc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tremor/core"
	"tremor/geo"
	"tremor/gsim"
	"tremor/metrics"
	"tremor/performance"
)

// Params carries the optional knobs of a hazard calculation. The zero value
// means: intensity distribution collapsed to the median, no distance cut,
// pass-through filters.
type Params struct {
	// TruncationLevel bounds the intensity distribution at that many
	// standard deviations. Zero collapses it to the median; use
	// gsim.NoTruncation for the full distribution.
	TruncationLevel float64
	// MaxDistance in km; zero or negative disables distance filtering in
	// the context maker and the bounding-box updates.
	MaxDistance float64
	// SourceFilter and RuptureFilter default to pass-through when nil.
	SourceFilter  SourceSiteFilter
	RuptureFilter RuptureSiteFilter
	// Logger defaults to a no-op logger when nil.
	Logger *zap.SugaredLogger
}

func (p *Params) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}

// CalcHazardCurves computes hazard curves for the given sites from a set of
// seismic sources and one ground-shaking model per tectonic region type.
//
// Sources are grouped by tectonic region type, each group's curves are
// computed with the GSIM bound to that region, and the per-region exceedance
// curves are composed under independence. The returned accumulator holds
// exceedance probabilities for every site and IMT.
//
// A tectonic region type with no bound GSIM is a configuration error,
// detected before any computation starts.
func CalcHazardCurves(sources []core.Source, sites *core.SiteCollection,
	imtls core.IMTLevels, gsimByTRT map[string]gsim.GMPE, p Params) (*core.Curves, error) {

	// group sources by TRT preserving relative order; regions iterate in
	// first-seen order so a run is reproducible
	var trts []string
	groups := make(map[string][]core.Source)
	for _, src := range sources {
		trt := src.TectonicRegionType()
		if _, seen := groups[trt]; !seen {
			trts = append(trts, trt)
		}
		groups[trt] = append(groups[trt], src)
	}
	for _, trt := range trts {
		if _, ok := gsimByTRT[trt]; !ok {
			return nil, fmt.Errorf("no GSIM bound to tectonic region type %q", trt)
		}
	}

	log := p.logger()
	curves := core.ZeroCurves(sites.TotalLen(), imtls)
	for _, trt := range trts {
		t0 := time.Now()
		regionCurves, err := HazardCurvesPerTRT(
			groups[trt], sites, imtls, []gsim.GMPE{gsimByTRT[trt]}, p, nil, nil)
		if err != nil {
			return nil, err
		}
		metrics.RegionComputeDuration.Observe(time.Since(t0).Seconds())
		curves, err = core.AggCurves(curves, regionCurves[0])
		if err != nil {
			return nil, err
		}
		log.Debugw("computed region hazard curves",
			"trt", trt, "sources", len(groups[trt]), "elapsed", time.Since(t0))
	}
	return curves, nil
}

// HazardCurvesPerTRT computes hazard curves for sources that all belong to
// one tectonic region type, once per given GSIM. The returned list holds one
// exceedance-probability accumulator per GSIM, in input order, each covering
// the full site collection.
//
// bbs, when non-empty, receives per-site bounding-box updates for
// disaggregation; it has no effect on the returned curves. mon, when nil,
// defaults to the no-op monitor.
//
// Any failure while processing a source is returned wrapped with that
// source's identifier and aborts the computation; accumulated state is not
// rolled back, so callers must discard everything on error.
func HazardCurvesPerTRT(sources []core.Source, sites *core.SiteCollection,
	imtls core.IMTLevels, gsims []gsim.GMPE, p Params,
	bbs []*geo.BoundingBox, mon performance.Monitor) ([]*core.Curves, error) {

	curves, err := hazardCurvesNoExceedance(
		context.Background(), sources, sites, imtls, gsims, p, bbs, mon)
	if err != nil {
		return nil, err
	}
	for _, c := range curves {
		c.Invert()
	}
	return curves, nil
}

// hazardCurvesNoExceedance runs the per-source loop and returns the running
// no-exceedance accumulators, one per GSIM, without the final inversion.
// ctx is checked between sources: a source's rupture loop is an
// uninterruptible unit so that its timing record stays consistent.
func hazardCurvesNoExceedance(ctx context.Context, sources []core.Source,
	sites *core.SiteCollection, imtls core.IMTLevels, gsims []gsim.GMPE,
	p Params, bbs []*geo.BoundingBox, mon performance.Monitor) ([]*core.Curves, error) {

	if mon == nil {
		mon = performance.Nop{}
	}
	cmaker := gsim.ContextMaker{MaxDistance: p.MaxDistance}
	imts := imtls.IMTs()
	curves := make([]*core.Curves, len(gsims))
	for i := range gsims {
		curves[i] = core.OnesCurves(sites.TotalLen(), imtls)
	}

	var bbBySID map[int]*geo.BoundingBox
	if len(bbs) > 0 {
		bbBySID = make(map[int]*geo.BoundingBox, len(bbs))
		for _, bb := range bbs {
			bbBySID[bb.SiteID] = bb
		}
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		srcSites := sites
		if p.SourceFilter != nil {
			sub, ok := p.SourceFilter(src, sites)
			if !ok {
				continue
			}
			srcSites = sub
		}
		t0 := time.Now()
		if err := processSource(src, srcSites, imts, imtls, gsims, cmaker,
			p, curves, bbBySID, mon); err != nil {
			return nil, fmt.Errorf("source id=%s: %w", src.SourceID(), err)
		}
		elapsed := time.Since(t0)
		mon.AddCalcTime(src.ID(), elapsed)
		metrics.SourceComputeDuration.Observe(elapsed.Seconds())
		metrics.SourcesProcessed.WithLabelValues(src.TectonicRegionType()).Inc()
	}
	return curves, nil
}

// processSource folds one source's ruptures into the running accumulators.
func processSource(src core.Source, srcSites *core.SiteCollection,
	imts []string, imtls core.IMTLevels, gsims []gsim.GMPE,
	cmaker gsim.ContextMaker, p Params, curves []*core.Curves,
	bbBySID map[int]*geo.BoundingBox, mon performance.Monitor) error {

	it := src.IterRuptures()
	for {
		rup, ok := it.Next()
		if !ok {
			return nil
		}
		rupSites := srcSites
		if p.RuptureFilter != nil {
			sub, keep := p.RuptureFilter(rup, srcSites)
			if !keep {
				continue
			}
			rupSites = sub
		}

		ctxTimer := mon.Scope("making contexts")
		sctx, rctx, dctx, err := cmaker.MakeContexts(rupSites, rup)
		ctxTimer.Stop()
		if errors.Is(err, gsim.ErrFarAwayRupture) {
			continue
		}
		if err != nil {
			return err
		}
		mon.AddEffRuptures(1)
		metrics.EffectiveRuptures.WithLabelValues(src.TectonicRegionType()).Inc()

		if bbBySID != nil {
			updateBoundingBoxes(bbBySID, sctx, dctx, rup, p.MaxDistance)
		}

		pneTimer := mon.Scope("computing poes")
		err = applyRupture(rup, sctx, rctx, dctx, imts, imtls, gsims, p, curves)
		pneTimer.Stop()
		if err != nil {
			return err
		}
	}
}

// applyRupture multiplies one rupture's expanded no-exceedance
// probabilities into every GSIM's accumulator, for every IMT.
func applyRupture(rup core.Rupture, sctx *gsim.SiteContext,
	rctx *gsim.RuptureContext, dctx *gsim.DistanceContext,
	imts []string, imtls core.IMTLevels, gsims []gsim.GMPE, p Params,
	curves []*core.Curves) error {

	for i, g := range gsims {
		for _, imt := range imts {
			poes, err := g.PoEs(sctx, rctx, dctx, imt, imtls[imt], p.TruncationLevel)
			if err != nil {
				return err
			}
			pno := rup.ProbabilityNoExceedance(poes)
			// sites out of this rupture's range keep probability one
			// of no exceedance
			expanded, err := sctx.Sites.ExpandRows(pno, 1.0)
			if err != nil {
				return err
			}
			if err := curves[i].Mul(imt, expanded); err != nil {
				return err
			}
		}
	}
	return nil
}

// updateBoundingBoxes records the rupture's distance and closest surface
// point for every in-scope site below the maximum distance. Sites at or
// beyond the threshold are skipped.
func updateBoundingBoxes(bbBySID map[int]*geo.BoundingBox,
	sctx *gsim.SiteContext, dctx *gsim.DistanceContext,
	rup core.Rupture, maxDistance float64) {

	closest := rup.Surface().ClosestPoints(sctx.Sites.Locations())
	for i, site := range sctx.Sites.Sites() {
		bb, ok := bbBySID[site.ID]
		if !ok {
			continue
		}
		dist := dctx.RJB[i]
		if maxDistance > 0 && dist >= maxDistance {
			continue
		}
		bb.Update([]float64{dist},
			[]float64{closest[i].Longitude}, []float64{closest[i].Latitude})
	}
}
