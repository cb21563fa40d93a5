package core

import "tremor/geo"

// PointSource is a seismic source concentrated at a single location. It
// produces one Poissonian rupture per magnitude bin of its
// magnitude-frequency distribution, lazily and restartably.
type PointSource struct {
	SrcID    int
	Name     string
	TRT      string
	Location geo.Point
	MFD      TruncatedGRMFD
	// TimeSpan is the reference investigation time in years.
	TimeSpan float64
}

// Position returns the source location, enabling distance-based source
// filtering.
func (s *PointSource) Position() geo.Point { return s.Location }

func (s *PointSource) ID() int                    { return s.SrcID }
func (s *PointSource) SourceID() string           { return s.Name }
func (s *PointSource) TectonicRegionType() string { return s.TRT }

func (s *PointSource) IterRuptures() RuptureIterator {
	rates := s.MFD.AnnualOccurrenceRates()
	i := 0
	return RuptureIteratorFunc(func() (Rupture, bool) {
		if i >= len(rates) {
			return nil, false
		}
		mr := rates[i]
		i++
		return &PoissonRupture{
			Mag:            mr.Magnitude,
			Hypo:           s.Location,
			Surf:           geo.PointSurface{Hypocenter: s.Location},
			OccurrenceRate: mr.Rate,
			TimeSpan:       s.TimeSpan,
		}, true
	})
}
