package core

import (
	"fmt"
	"math"
)

// MagnitudeRate is one bin of a discretized magnitude-frequency
// distribution: the bin's central magnitude and its annual occurrence rate.
type MagnitudeRate struct {
	Magnitude float64
	Rate      float64
}

// TruncatedGRMFD is a doubly-truncated Gutenberg-Richter magnitude-frequency
// distribution, discretized into bins of BinWidth between MinMag and MaxMag.
type TruncatedGRMFD struct {
	AValue   float64
	BValue   float64
	MinMag   float64
	MaxMag   float64
	BinWidth float64
}

// Validate checks the distribution parameters.
func (m TruncatedGRMFD) Validate() error {
	if m.BinWidth <= 0 {
		return fmt.Errorf("bin width must be positive, got %v", m.BinWidth)
	}
	if m.MaxMag <= m.MinMag {
		return fmt.Errorf("max magnitude %v must exceed min magnitude %v", m.MaxMag, m.MinMag)
	}
	if m.BValue <= 0 {
		return fmt.Errorf("b value must be positive, got %v", m.BValue)
	}
	return nil
}

// cumulativeRate returns the annual rate of events with magnitude >= mag
// under the untruncated GR relation 10^(a - b*mag).
func (m TruncatedGRMFD) cumulativeRate(mag float64) float64 {
	return math.Pow(10, m.AValue-m.BValue*mag)
}

// AnnualOccurrenceRates discretizes the distribution: each bin's rate is the
// difference of the cumulative rates at its edges, clipped to the truncation
// bounds.
func (m TruncatedGRMFD) AnnualOccurrenceRates() []MagnitudeRate {
	numBins := int(math.Round((m.MaxMag - m.MinMag) / m.BinWidth))
	if numBins < 1 {
		numBins = 1
	}
	rates := make([]MagnitudeRate, 0, numBins)
	for i := 0; i < numBins; i++ {
		lo := m.MinMag + float64(i)*m.BinWidth
		hi := lo + m.BinWidth
		if hi > m.MaxMag {
			hi = m.MaxMag
		}
		rate := m.cumulativeRate(lo) - m.cumulativeRate(hi)
		if rate <= 0 {
			continue
		}
		rates = append(rates, MagnitudeRate{Magnitude: (lo + hi) / 2, Rate: rate})
	}
	return rates
}
