package calc

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tremor/core"
	"tremor/geo"
	"tremor/gsim"
	"tremor/performance"
)

// CalcHazardCurvesParallel is CalcHazardCurves with each region's
// per-source loop spread across workers goroutines. Regions themselves are
// composed strictly one after another, after all of a region's workers have
// finished.
func CalcHazardCurvesParallel(ctx context.Context, sources []core.Source,
	sites *core.SiteCollection, imtls core.IMTLevels,
	gsimByTRT map[string]gsim.GMPE, p Params, workers int,
	mon *performance.Recorder) (*core.Curves, error) {

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

	curves := core.ZeroCurves(sites.TotalLen(), imtls)
	for _, trt := range trts {
		regionCurves, err := HazardCurvesPerTRTParallel(ctx, groups[trt],
			sites, imtls, []gsim.GMPE{gsimByTRT[trt]}, p, workers, nil, mon)
		if err != nil {
			return nil, err
		}
		curves, err = core.AggCurves(curves, regionCurves[0])
		if err != nil {
			return nil, err
		}
	}
	return curves, nil
}

// HazardCurvesPerTRTParallel is HazardCurvesPerTRT with the per-source loop
// spread across workers goroutines. Each worker owns private no-exceedance
// accumulators and a private monitor; worker results combine
// multiplicatively, calc times concatenate and counters sum, so the result
// equals the serial one up to floating point rounding regardless of
// scheduling.
//
// A single failing source cancels the remaining workers and fails the whole
// region. Cancellation is observed between sources: one source's rupture
// loop always runs to completion so its timing record stays consistent.
func HazardCurvesPerTRTParallel(ctx context.Context, sources []core.Source,
	sites *core.SiteCollection, imtls core.IMTLevels, gsims []gsim.GMPE,
	p Params, workers int, bbs []*geo.BoundingBox,
	mon *performance.Recorder) ([]*core.Curves, error) {

	// bounding boxes are not synchronized for concurrent update, so a
	// disaggregation run stays serial
	if workers <= 1 || len(sources) <= 1 || len(bbs) > 0 {
		var m performance.Monitor
		if mon != nil {
			m = mon
		}
		return HazardCurvesPerTRT(sources, sites, imtls, gsims, p, bbs, m)
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	chunks := make([][]core.Source, workers)
	for i, src := range sources {
		w := i % workers
		chunks[w] = append(chunks[w], src)
	}

	results := make([][]*core.Curves, workers)
	monitors := make([]*performance.Recorder, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			local := performance.NewRecorder()
			curves, err := hazardCurvesNoExceedance(
				gctx, chunks[w], sites, imtls, gsims, p, nil, local)
			if err != nil {
				return err
			}
			results[w] = curves
			monitors[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := make([]*core.Curves, len(gsims))
	for i := range gsims {
		combined[i] = core.OnesCurves(sites.TotalLen(), imtls)
	}
	for w := 0; w < workers; w++ {
		for i := range gsims {
			if err := combined[i].MulCurves(results[w][i]); err != nil {
				return nil, err
			}
		}
		if mon != nil {
			mon.Merge(monitors[w])
		}
	}
	for _, c := range combined {
		c.Invert()
	}
	return combined, nil
}
