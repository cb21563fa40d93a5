package gsim

import (
	"fmt"
	"strconv"
	"strings"
)

// IMT is a parsed intensity measure type.
type IMT struct {
	// Kind is "PGA", "PGV" or "SA".
	Kind string
	// Period is the spectral period in seconds; zero except for SA.
	Period float64
}

// ParseIMT parses names of the form "PGA", "PGV" or "SA(0.2)".
func ParseIMT(name string) (IMT, error) {
	switch {
	case name == "PGA":
		return IMT{Kind: "PGA"}, nil
	case name == "PGV":
		return IMT{Kind: "PGV"}, nil
	case strings.HasPrefix(name, "SA(") && strings.HasSuffix(name, ")"):
		period, err := strconv.ParseFloat(name[3:len(name)-1], 64)
		if err != nil {
			return IMT{}, fmt.Errorf("invalid SA period in %q: %w", name, err)
		}
		if period <= 0 {
			return IMT{}, fmt.Errorf("SA period must be positive, got %v", period)
		}
		return IMT{Kind: "SA", Period: period}, nil
	default:
		return IMT{}, fmt.Errorf("unrecognized IMT %q", name)
	}
}

func (i IMT) String() string {
	if i.Kind == "SA" {
		return fmt.Sprintf("SA(%g)", i.Period)
	}
	return i.Kind
}
