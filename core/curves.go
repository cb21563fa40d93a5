package core

import "fmt"

// Curves is a hazard curve accumulator: for every site of a collection and
// every IMT, one probability value per intensity level. The same type holds
// both of the two states a calculation passes through; callers track which
// one they have:
//
//   - probability of no exceedance, accumulated as a running product
//     starting from 1.0, and
//   - probability of exceedance, after the final 1-x inversion.
//
// All values stay in [0,1] throughout.
type Curves struct {
	numSites int
	imtls    IMTLevels
	imts     []string // sorted field order
	data     map[string][][]float64
}

func newCurves(numSites int, imtls IMTLevels, init float64) *Curves {
	c := &Curves{
		numSites: numSites,
		imtls:    imtls,
		imts:     imtls.IMTs(),
		data:     make(map[string][][]float64, len(imtls)),
	}
	for _, imt := range c.imts {
		width := imtls.LevelCount(imt)
		rows := make([][]float64, numSites)
		for s := range rows {
			row := make([]float64, width)
			for l := range row {
				row[l] = init
			}
			rows[s] = row
		}
		c.data[imt] = rows
	}
	return c
}

// ZeroCurves builds an all-zero accumulator (no exceedance probability yet).
func ZeroCurves(numSites int, imtls IMTLevels) *Curves {
	return newCurves(numSites, imtls, 0)
}

// OnesCurves builds an all-ones accumulator, the identity of the running
// no-exceedance product.
func OnesCurves(numSites int, imtls IMTLevels) *Curves {
	return newCurves(numSites, imtls, 1)
}

// NumSites returns the number of sites covered by the accumulator.
func (c *Curves) NumSites() int { return c.numSites }

// IMTs returns the accumulator's IMT names in field order.
func (c *Curves) IMTs() []string { return c.imts }

// Levels returns the intensity levels of the given IMT.
func (c *Curves) Levels(imt string) []float64 { return c.imtls[imt] }

// Values returns the [site][level] matrix for the given IMT. The returned
// slices alias the accumulator's storage.
func (c *Curves) Values(imt string) [][]float64 { return c.data[imt] }

// Mul multiplies the given [site][level] matrix field-wise into the
// accumulator for one IMT. This is the composition step: each rupture's
// expanded no-exceedance probabilities are folded in as an independent
// contribution.
func (c *Curves) Mul(imt string, rows [][]float64) error {
	dst, ok := c.data[imt]
	if !ok {
		return fmt.Errorf("unknown IMT %q", imt)
	}
	if len(rows) != len(dst) {
		return fmt.Errorf("IMT %q: got %d rows for %d sites", imt, len(rows), len(dst))
	}
	for s := range dst {
		if len(rows[s]) != len(dst[s]) {
			return fmt.Errorf("IMT %q site %d: got %d levels, want %d",
				imt, s, len(rows[s]), len(dst[s]))
		}
		for l := range dst[s] {
			dst[s][l] *= rows[s][l]
		}
	}
	return nil
}

// MulCurves multiplies another accumulator field-wise into this one. Both
// must cover the same sites and IMTs. This is the combine step for
// worker-local no-exceedance accumulators.
func (c *Curves) MulCurves(other *Curves) error {
	if other.numSites != c.numSites {
		return fmt.Errorf("cannot combine curves over %d and %d sites",
			c.numSites, other.numSites)
	}
	for imt := range c.data {
		rows, ok := other.data[imt]
		if !ok {
			return fmt.Errorf("combining curves with mismatched IMT %q", imt)
		}
		if err := c.Mul(imt, rows); err != nil {
			return err
		}
	}
	return nil
}

// Invert flips every value x to 1-x, converting no-exceedance probabilities
// into exceedance probabilities (or back).
func (c *Curves) Invert() {
	for _, rows := range c.data {
		for _, row := range rows {
			for l := range row {
				row[l] = 1 - row[l]
			}
		}
	}
}

// Clone returns a deep copy.
func (c *Curves) Clone() *Curves {
	out := newCurves(c.numSites, c.imtls, 0)
	for imt, rows := range c.data {
		for s, row := range rows {
			copy(out.data[imt][s], row)
		}
	}
	return out
}

// AggCurves composes two exceedance-probability curve sets under the
// independence assumption:
//
//	new = 1 - (1 - a) * (1 - b)
//
// the probability of at least one exceedance across the two contributions.
// The operation is commutative and associative up to floating point
// rounding, so contributions may be folded in any order. A new accumulator
// is returned; the inputs are not modified.
func AggCurves(a, b *Curves) (*Curves, error) {
	if a.numSites != b.numSites {
		return nil, fmt.Errorf("cannot aggregate curves over %d and %d sites",
			a.numSites, b.numSites)
	}
	out := a.Clone()
	for imt, rows := range out.data {
		brows, ok := b.data[imt]
		if !ok {
			return nil, fmt.Errorf("aggregating curves with mismatched IMT %q", imt)
		}
		for s, row := range rows {
			for l := range row {
				row[l] = 1 - (1-brows[s][l])*(1-row[l])
			}
		}
	}
	return out, nil
}
