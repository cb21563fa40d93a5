package gsim

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Truncation level sentinels. A positive truncation level bounds the
// intensity distribution at that many standard deviations; zero collapses
// it to the median; NoTruncation keeps the full distribution.
const NoTruncation = -1.0

// GMPE is a ground motion prediction equation: it maps evaluation contexts
// and an IMT with its levels to per-site, per-level probabilities that a
// single occurrence of the rupture exceeds each level.
//
// The returned matrix is [site][level], aligned with the SiteContext's
// sites. When levels is empty the result has a single column of ones (any
// ground motion exceeds the zero level).
type GMPE interface {
	Name() string
	PoEs(sctx *SiteContext, rctx *RuptureContext, dctx *DistanceContext,
		imt string, levels []float64, truncationLevel float64) ([][]float64, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() GMPE{}
)

// Register makes a GMPE constructor available under its name. Intended to
// be called from init functions of model files.
func Register(name string, factory func() GMPE) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New instantiates a registered GMPE by name.
func New(name string) (GMPE, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown GMPE %q (registered: %v)", name, Registered())
	}
	return factory(), nil
}

// Registered returns the sorted names of all registered GMPEs.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normSurvival is the survival function of the standard normal.
func normSurvival(z float64) float64 {
	return 0.5 * math.Erfc(z/math.Sqrt2)
}

// truncNormSurvival is the survival function of a standard normal truncated
// symmetrically at +-trunc. trunc == 0 degenerates to a step at the mean;
// NoTruncation (any negative value) keeps the full distribution.
func truncNormSurvival(z, trunc float64) float64 {
	switch {
	case trunc < 0:
		return normSurvival(z)
	case trunc == 0:
		if z <= 0 {
			return 1
		}
		return 0
	case z <= -trunc:
		return 1
	case z >= trunc:
		return 0
	default:
		lo := normSurvival(trunc)
		hi := normSurvival(-trunc)
		return (normSurvival(z) - lo) / (hi - lo)
	}
}
