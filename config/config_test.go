package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
data_paths:
  data_dir: /tmp/tremor-test
calculation:
  time_span: 50
  truncation_level: 3
  max_distance: 200
  workers: 4
  imts:
    - imt: PGA
      levels: [0.01, 0.1, 0.5]
    - imt: SA(0.2)
      levels: [0.02, 0.2]
  gsims:
    - trt: Active Shallow Crust
      gsim: simple-crustal
    - trt: Stable Continental
      gsim: simple-stable
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Calculation.TimeSpan)
	assert.Equal(t, 4, cfg.Calculation.Workers)

	imtls := cfg.Calculation.IMTLevels()
	assert.Equal(t, []float64{0.01, 0.1, 0.5}, imtls["PGA"])
	assert.Equal(t, []float64{0.02, 0.2}, imtls["SA(0.2)"])

	gsims := cfg.Calculation.GSIMByTRT()
	assert.Equal(t, "simple-crustal", gsims["Active Shallow Crust"])
	assert.Equal(t, filepath.Join("/tmp/tremor-test", "tremor.db"), cfg.DataPaths.SQLitePath)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
calculation:
  imts:
    - imt: PGA
      levels: [0.1]
  gsims:
    - trt: trt
      gsim: simple-crustal
`))
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.Calculation.TimeSpan)
	assert.Equal(t, 3.0, cfg.Calculation.TruncationLevel)
	assert.Equal(t, 200.0, cfg.Calculation.MaxDistance)
	assert.Equal(t, 1, cfg.Calculation.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_RejectsMissingIMTs(t *testing.T) {
	_, err := Load(writeConfig(t, `
calculation:
  gsims:
    - trt: trt
      gsim: simple-crustal
`))
	assert.Error(t, err)
}

func TestLoad_RejectsNonIncreasingLevels(t *testing.T) {
	_, err := Load(writeConfig(t, `
calculation:
  imts:
    - imt: PGA
      levels: [0.5, 0.1]
  gsims:
    - trt: trt
      gsim: simple-crustal
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

func TestLoad_RejectsNonPositiveLevel(t *testing.T) {
	_, err := Load(writeConfig(t, `
calculation:
  imts:
    - imt: PGA
      levels: [0, 0.1]
  gsims:
    - trt: trt
      gsim: simple-crustal
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive")
}

func TestLoad_RejectsDuplicateTRT(t *testing.T) {
	_, err := Load(writeConfig(t, `
calculation:
  imts:
    - imt: PGA
      levels: [0.1]
  gsims:
    - trt: trt
      gsim: simple-crustal
    - trt: trt
      gsim: simple-stable
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bound twice")
}

func TestLoad_RejectsDuplicateIMT(t *testing.T) {
	_, err := Load(writeConfig(t, `
calculation:
  imts:
    - imt: PGA
      levels: [0.1]
    - imt: PGA
      levels: [0.2]
  gsims:
    - trt: trt
      gsim: simple-crustal
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured twice")
}

func TestLoad_RejectsZeroTimeSpan(t *testing.T) {
	_, err := Load(writeConfig(t, `
calculation:
  time_span: 0
  imts:
    - imt: PGA
      levels: [0.1]
  gsims:
    - trt: trt
      gsim: simple-crustal
`))
	assert.Error(t, err)
}
