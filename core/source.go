package core

import "tremor/geo"

// Source is a seismic source: an identity, a tectonic region tag, and a
// lazily produced sequence of ruptures. Sources are owned by the caller;
// the calculators only read them.
type Source interface {
	// ID is the integer source id used in timing records.
	ID() int
	// SourceID is the human-readable identifier used in error messages.
	// It must not be confused with ID.
	SourceID() string
	TectonicRegionType() string

	// IterRuptures returns a fresh iterator over the source's ruptures.
	// The sequence may be very large; implementations must produce
	// ruptures on demand rather than materializing them. Each call
	// restarts the iteration.
	IterRuptures() RuptureIterator
}

// RuptureIterator yields ruptures one at a time. Next returns false when
// the sequence is exhausted.
type RuptureIterator interface {
	Next() (Rupture, bool)
}

// Rupture is a single earthquake rupture: enough geometry to build
// evaluation contexts, plus the temporal occurrence model mapping exceedance
// probabilities to the probability of zero exceedances over the reference
// time span.
type Rupture interface {
	Magnitude() float64
	Hypocenter() geo.Point
	Surface() geo.Surface

	// ProbabilityNoExceedance maps per-site, per-level probabilities that
	// a single occurrence of this rupture exceeds each intensity level to
	// the probability that no exceedance happens during the time span.
	ProbabilityNoExceedance(poes [][]float64) [][]float64
}

// RuptureIteratorFunc adapts a pull function to RuptureIterator.
type RuptureIteratorFunc func() (Rupture, bool)

func (f RuptureIteratorFunc) Next() (Rupture, bool) { return f() }

// SliceRuptureIterator iterates over a fixed slice of ruptures. Useful for
// small sources and for tests.
func SliceRuptureIterator(ruptures []Rupture) RuptureIterator {
	i := 0
	return RuptureIteratorFunc(func() (Rupture, bool) {
		if i >= len(ruptures) {
			return nil, false
		}
		r := ruptures[i]
		i++
		return r, true
	})
}
