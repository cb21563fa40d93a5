// Package config loads and validates the engine configuration from a file
// and the environment, following the usual precedence: explicit file, then
// TREMOR_* environment variables, then defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DataPaths holds the data directory and file path configuration.
type DataPaths struct {
	// DataDir is the base data directory (TREMOR_DATA_PATHS_DATA_DIR,
	// default ./data)
	DataDir string `mapstructure:"data_dir"`
	// SQLitePath is the results database path (default ${DataDir}/tremor.db)
	SQLitePath string `mapstructure:"sqlite_path"`
}

// IMTBinding is one IMT with its intensity levels. Bindings are a list, not
// a map, so that names like "SA(0.2)" survive config parsing verbatim.
type IMTBinding struct {
	IMT    string    `mapstructure:"imt" validate:"required"`
	Levels []float64 `mapstructure:"levels" validate:"required,min=1"`
}

// GSIMBinding binds one tectonic region type to a registered GSIM name.
type GSIMBinding struct {
	TRT  string `mapstructure:"trt" validate:"required"`
	GSIM string `mapstructure:"gsim" validate:"required"`
}

// Calculation holds the hazard calculation parameters.
type Calculation struct {
	// TimeSpan is the investigation time in years.
	TimeSpan float64 `mapstructure:"time_span" validate:"gt=0"`
	// TruncationLevel bounds the intensity distribution in standard
	// deviations; negative means untruncated.
	TruncationLevel float64 `mapstructure:"truncation_level"`
	// MaxDistance is the integration distance in km; zero disables
	// distance filtering.
	MaxDistance float64 `mapstructure:"max_distance" validate:"gte=0"`
	// Workers is the number of parallel per-source workers; 1 is serial.
	Workers int `mapstructure:"workers" validate:"gte=1"`
	// IMTs lists the intensity measure types and their levels.
	IMTs []IMTBinding `mapstructure:"imts" validate:"required,min=1,dive"`
	// GSIMs binds tectonic region types to GSIM names.
	GSIMs []GSIMBinding `mapstructure:"gsims" validate:"required,min=1,dive"`
}

// Config is the full engine configuration.
type Config struct {
	DataPaths   DataPaths   `mapstructure:"data_paths"`
	Calculation Calculation `mapstructure:"calculation"`
}

// IMTLevels returns the configured IMT-to-levels mapping.
func (c *Calculation) IMTLevels() map[string][]float64 {
	out := make(map[string][]float64, len(c.IMTs))
	for _, b := range c.IMTs {
		out[b.IMT] = b.Levels
	}
	return out
}

// GSIMByTRT returns the configured TRT-to-GSIM-name mapping.
func (c *Calculation) GSIMByTRT() map[string]string {
	out := make(map[string]string, len(c.GSIMs))
	for _, b := range c.GSIMs {
		out[b.TRT] = b.GSIM
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_paths.data_dir", "./data")
	v.SetDefault("calculation.time_span", 50.0)
	v.SetDefault("calculation.truncation_level", 3.0)
	v.SetDefault("calculation.max_distance", 200.0)
	v.SetDefault("calculation.workers", 1)
}

// Load reads the configuration from path (optional; empty means defaults and
// environment only) and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TREMOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.DataPaths.SQLitePath == "" {
		cfg.DataPaths.SQLitePath = filepath.Join(cfg.DataPaths.DataDir, "tremor.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints plus the ones tags cannot express:
// IMT names must be unique with positive, strictly increasing levels, and
// each TRT may be bound at most once.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seenIMT := make(map[string]bool, len(c.Calculation.IMTs))
	for _, b := range c.Calculation.IMTs {
		if seenIMT[b.IMT] {
			return fmt.Errorf("IMT %q is configured twice", b.IMT)
		}
		seenIMT[b.IMT] = true
		for i, level := range b.Levels {
			if level <= 0 {
				return fmt.Errorf("IMT %q: level %v must be positive", b.IMT, level)
			}
			if i > 0 && level <= b.Levels[i-1] {
				return fmt.Errorf("IMT %q: levels must be strictly increasing", b.IMT)
			}
		}
	}
	seenTRT := make(map[string]bool, len(c.Calculation.GSIMs))
	for _, b := range c.Calculation.GSIMs {
		if seenTRT[b.TRT] {
			return fmt.Errorf("tectonic region type %q is bound twice", b.TRT)
		}
		seenTRT[b.TRT] = true
	}
	return nil
}
