package gsim

import (
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// coeffs are the per-IMT coefficients of the built-in attenuation models:
//
//	ln(median) = C1 + C2*(M - 6) - C3*ln(sqrt(RJB^2 + C4^2)) + CS*ln(vs30ref/vs30)
//
// with a lognormal aleatory sigma.
type coeffs struct {
	C1, C2, C3, C4, CS, Sigma float64
}

// coeffCacheSize bounds the interpolated-coefficient cache. Calculations
// rarely use more than a handful of spectral periods.
const coeffCacheSize = 64

// attenuationModel is a simple magnitude/distance attenuation GMPE with a
// coefficient table anchored at fixed spectral periods. Coefficients for
// intermediate SA periods are interpolated in log-period space and cached.
type attenuationModel struct {
	name    string
	vs30Ref float64
	pga     coeffs
	pgv     *coeffs
	sa      map[float64]coeffs
	periods []float64 // sorted anchor periods

	cache *lru.Cache[string, coeffs]
}

func newAttenuationModel(name string, vs30Ref float64, pga coeffs, pgv *coeffs, sa map[float64]coeffs) *attenuationModel {
	periods := make([]float64, 0, len(sa))
	for p := range sa {
		periods = append(periods, p)
	}
	sort.Float64s(periods)
	cache, _ := lru.New[string, coeffs](coeffCacheSize)
	return &attenuationModel{
		name:    name,
		vs30Ref: vs30Ref,
		pga:     pga,
		pgv:     pgv,
		sa:      sa,
		periods: periods,
		cache:   cache,
	}
}

func (m *attenuationModel) Name() string { return m.name }

// coefficients resolves the coefficient set for an IMT name, interpolating
// SA anchors when needed.
func (m *attenuationModel) coefficients(imt string) (coeffs, error) {
	if c, ok := m.cache.Get(imt); ok {
		return c, nil
	}
	parsed, err := ParseIMT(imt)
	if err != nil {
		return coeffs{}, err
	}
	var c coeffs
	switch parsed.Kind {
	case "PGA":
		c = m.pga
	case "PGV":
		if m.pgv == nil {
			return coeffs{}, fmt.Errorf("%s does not support PGV", m.name)
		}
		c = *m.pgv
	case "SA":
		c, err = m.interpolateSA(parsed.Period)
		if err != nil {
			return coeffs{}, err
		}
	}
	m.cache.Add(imt, c)
	return c, nil
}

func (m *attenuationModel) interpolateSA(period float64) (coeffs, error) {
	if len(m.periods) == 0 {
		return coeffs{}, fmt.Errorf("%s has no spectral acceleration coefficients", m.name)
	}
	lo, hi := m.periods[0], m.periods[len(m.periods)-1]
	if period < lo || period > hi {
		return coeffs{}, fmt.Errorf("%s: SA period %g outside supported range [%g, %g]",
			m.name, period, lo, hi)
	}
	if c, ok := m.sa[period]; ok {
		return c, nil
	}
	i := sort.SearchFloat64s(m.periods, period)
	p0, p1 := m.periods[i-1], m.periods[i]
	c0, c1 := m.sa[p0], m.sa[p1]
	// interpolate in log-period, the conventional spacing of response
	// spectra anchors
	w := (math.Log(period) - math.Log(p0)) / (math.Log(p1) - math.Log(p0))
	lerp := func(a, b float64) float64 { return a + w*(b-a) }
	return coeffs{
		C1:    lerp(c0.C1, c1.C1),
		C2:    lerp(c0.C2, c1.C2),
		C3:    lerp(c0.C3, c1.C3),
		C4:    lerp(c0.C4, c1.C4),
		CS:    lerp(c0.CS, c1.CS),
		Sigma: lerp(c0.Sigma, c1.Sigma),
	}, nil
}

func (m *attenuationModel) PoEs(sctx *SiteContext, rctx *RuptureContext, dctx *DistanceContext,
	imt string, levels []float64, truncationLevel float64) ([][]float64, error) {
	c, err := m.coefficients(imt)
	if err != nil {
		return nil, err
	}
	numSites := sctx.Sites.Len()
	if len(dctx.RJB) != numSites {
		return nil, fmt.Errorf("%s: %d distances for %d sites", m.name, len(dctx.RJB), numSites)
	}
	out := make([][]float64, numSites)
	for s := 0; s < numSites; s++ {
		r := math.Sqrt(dctx.RJB[s]*dctx.RJB[s] + c.C4*c.C4)
		lnMean := c.C1 + c.C2*(rctx.Mag-6) - c.C3*math.Log(r)
		if sctx.Vs30[s] > 0 {
			lnMean += c.CS * math.Log(m.vs30Ref/sctx.Vs30[s])
		}
		if len(levels) == 0 {
			// no explicit levels: a single scalar slot, always exceeded
			out[s] = []float64{1}
			continue
		}
		row := make([]float64, len(levels))
		for l, level := range levels {
			if level <= 0 {
				row[l] = 1
				continue
			}
			z := (math.Log(level) - lnMean) / c.Sigma
			row[l] = truncNormSurvival(z, truncationLevel)
		}
		out[s] = row
	}
	return out, nil
}

// Built-in models. The crustal model attenuates faster and saturates lower
// than the stable-region model, which is the qualitative contrast between
// active shallow crust and stable continental regions.
func init() {
	Register("simple-crustal", func() GMPE {
		return newAttenuationModel("simple-crustal", 760,
			coeffs{C1: 0.5, C2: 1.2, C3: 1.1, C4: 8, CS: 0.35, Sigma: 0.65},
			&coeffs{C1: 3.8, C2: 1.3, C3: 1.0, C4: 7, CS: 0.40, Sigma: 0.60},
			map[float64]coeffs{
				0.05: {C1: 0.9, C2: 1.15, C3: 1.12, C4: 8, CS: 0.25, Sigma: 0.68},
				0.2:  {C1: 1.1, C2: 1.25, C3: 1.05, C4: 8, CS: 0.45, Sigma: 0.70},
				1.0:  {C1: 0.1, C2: 1.45, C3: 0.95, C4: 7, CS: 0.60, Sigma: 0.72},
				3.0:  {C1: -1.2, C2: 1.60, C3: 0.90, C4: 6, CS: 0.65, Sigma: 0.75},
			})
	})
	Register("simple-stable", func() GMPE {
		return newAttenuationModel("simple-stable", 2000,
			coeffs{C1: 0.8, C2: 1.1, C3: 0.95, C4: 9, CS: 0.20, Sigma: 0.70},
			nil,
			map[float64]coeffs{
				0.05: {C1: 1.2, C2: 1.05, C3: 0.98, C4: 9, CS: 0.15, Sigma: 0.72},
				0.2:  {C1: 1.3, C2: 1.15, C3: 0.92, C4: 9, CS: 0.25, Sigma: 0.73},
				1.0:  {C1: 0.2, C2: 1.35, C3: 0.85, C4: 8, CS: 0.35, Sigma: 0.76},
			})
	})
}
