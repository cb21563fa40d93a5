package core

import (
	"math"

	"tremor/geo"
)

// PoissonRupture is a rupture whose occurrences follow a homogeneous
// Poisson process with the given annual rate over a reference time span in
// years. Its probability of no exceedance is
//
//	exp(-rate * timeSpan * poe)
//
// per site and level.
type PoissonRupture struct {
	Mag            float64
	Hypo           geo.Point
	Surf           geo.Surface
	OccurrenceRate float64
	TimeSpan       float64
}

func (r *PoissonRupture) Magnitude() float64    { return r.Mag }
func (r *PoissonRupture) Hypocenter() geo.Point { return r.Hypo }
func (r *PoissonRupture) Surface() geo.Surface  { return r.Surf }

func (r *PoissonRupture) ProbabilityNoExceedance(poes [][]float64) [][]float64 {
	out := make([][]float64, len(poes))
	for s, row := range poes {
		o := make([]float64, len(row))
		for l, poe := range row {
			o[l] = math.Exp(-r.OccurrenceRate * r.TimeSpan * poe)
		}
		out[s] = o
	}
	return out
}

// NonparametricRupture is a rupture with an explicit probability mass
// function over its number of occurrences in the time span: OccurrenceProbs[n]
// is the probability of exactly n occurrences. Its probability of no
// exceedance is
//
//	sum_n OccurrenceProbs[n] * (1 - poe)^n
//
// per site and level.
type NonparametricRupture struct {
	Mag             float64
	Hypo            geo.Point
	Surf            geo.Surface
	OccurrenceProbs []float64
}

func (r *NonparametricRupture) Magnitude() float64    { return r.Mag }
func (r *NonparametricRupture) Hypocenter() geo.Point { return r.Hypo }
func (r *NonparametricRupture) Surface() geo.Surface  { return r.Surf }

func (r *NonparametricRupture) ProbabilityNoExceedance(poes [][]float64) [][]float64 {
	out := make([][]float64, len(poes))
	for s, row := range poes {
		o := make([]float64, len(row))
		for l, poe := range row {
			pne := 0.0
			for n, pn := range r.OccurrenceProbs {
				pne += pn * math.Pow(1-poe, float64(n))
			}
			o[l] = pne
		}
		out[s] = o
	}
	return out
}
