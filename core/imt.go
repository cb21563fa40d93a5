package core

import "sort"

// IMTLevels maps an intensity measure type name (e.g. "PGA", "SA(0.2)") to
// its ordered list of intensity levels. An empty level list means the IMT is
// evaluated at a single scalar level.
type IMTLevels map[string][]float64

// IMTs returns the IMT names in sorted order, which is the canonical field
// order of every curve accumulator built from this mapping.
func (im IMTLevels) IMTs() []string {
	names := make([]string, 0, len(im))
	for name := range im {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LevelCount returns the number of curve values per site for the given IMT.
// IMTs with no explicit levels still occupy one scalar slot.
func (im IMTLevels) LevelCount(imt string) int {
	if n := len(im[imt]); n > 0 {
		return n
	}
	return 1
}
