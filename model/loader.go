// Package model loads site and source models from YAML files.
package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tremor/core"
	"tremor/geo"
)

// maxModelFileSize guards against accidentally pointing the loader at a
// huge file.
const maxModelFileSize = 50 * 1024 * 1024

// SiteDef is one site entry of a model file.
type SiteDef struct {
	Lon          float64 `yaml:"lon"`
	Lat          float64 `yaml:"lat"`
	Vs30         float64 `yaml:"vs30"`
	Vs30Measured bool    `yaml:"vs30_measured"`
}

// MFDDef is a truncated Gutenberg-Richter distribution entry.
type MFDDef struct {
	AValue   float64 `yaml:"a_value"`
	BValue   float64 `yaml:"b_value"`
	MinMag   float64 `yaml:"min_mag"`
	MaxMag   float64 `yaml:"max_mag"`
	BinWidth float64 `yaml:"bin_width"`
}

// SourceDef is one point source entry of a model file.
type SourceDef struct {
	ID       int     `yaml:"id"`
	SourceID string  `yaml:"source_id"`
	TRT      string  `yaml:"trt"`
	Lon      float64 `yaml:"lon"`
	Lat      float64 `yaml:"lat"`
	Depth    float64 `yaml:"depth"`
	MFD      MFDDef  `yaml:"mfd"`
}

// Model is the parsed form of a model file.
type Model struct {
	Name    string      `yaml:"name"`
	Sites   []SiteDef   `yaml:"sites"`
	Sources []SourceDef `yaml:"sources"`
}

// Load parses a model file without resolving it into engine types.
func Load(path string) (*Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat model file: %w", err)
	}
	if info.Size() > maxModelFileSize {
		return nil, fmt.Errorf("model file %s exceeds %d bytes", path, maxModelFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	if len(m.Sites) == 0 {
		return nil, fmt.Errorf("model file %s defines no sites", path)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("model file %s defines no sources", path)
	}
	return &m, nil
}

// Resolve turns the parsed model into a site collection and sources ready
// for the calculators. timeSpan is the investigation time in years applied
// to every source.
func (m *Model) Resolve(timeSpan float64) (*core.SiteCollection, []core.Source, error) {
	sites := make([]core.Site, len(m.Sites))
	for i, sd := range m.Sites {
		loc, err := geo.NewPoint(sd.Lon, sd.Lat)
		if err != nil {
			return nil, nil, fmt.Errorf("site %d: %w", i, err)
		}
		sites[i] = core.Site{
			Location:     loc,
			Vs30:         sd.Vs30,
			Vs30Measured: sd.Vs30Measured,
		}
	}
	collection := core.NewSiteCollection(sites)

	sources := make([]core.Source, len(m.Sources))
	seen := make(map[string]bool, len(m.Sources))
	for i, sd := range m.Sources {
		if sd.SourceID == "" {
			return nil, nil, fmt.Errorf("source %d has no source_id", i)
		}
		if seen[sd.SourceID] {
			return nil, nil, fmt.Errorf("duplicate source_id %q", sd.SourceID)
		}
		seen[sd.SourceID] = true
		if sd.TRT == "" {
			return nil, nil, fmt.Errorf("source %q has no tectonic region type", sd.SourceID)
		}
		loc, err := geo.NewPoint(sd.Lon, sd.Lat)
		if err != nil {
			return nil, nil, fmt.Errorf("source %q: %w", sd.SourceID, err)
		}
		loc.Depth = sd.Depth
		mfd := core.TruncatedGRMFD{
			AValue:   sd.MFD.AValue,
			BValue:   sd.MFD.BValue,
			MinMag:   sd.MFD.MinMag,
			MaxMag:   sd.MFD.MaxMag,
			BinWidth: sd.MFD.BinWidth,
		}
		if err := mfd.Validate(); err != nil {
			return nil, nil, fmt.Errorf("source %q: invalid MFD: %w", sd.SourceID, err)
		}
		sources[i] = &core.PointSource{
			SrcID:    sd.ID,
			Name:     sd.SourceID,
			TRT:      sd.TRT,
			Location: loc,
			MFD:      mfd,
			TimeSpan: timeSpan,
		}
	}
	return collection, sources, nil
}
