package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tremor/core"
	"tremor/metrics"
)

// Run is the persisted record of one calculation.
type Run struct {
	ID              string
	CreatedAt       time.Time
	ModelName       string
	TimeSpan        float64
	TruncationLevel float64
	MaxDistance     float64
	NumSites        int
	NumSources      int
	EffRuptures     int64
	ElapsedSeconds  float64
}

// CurveValue is one (site, IMT, level) point of a persisted hazard curve.
type CurveValue struct {
	SiteID     int
	IMT        string
	LevelIndex int
	Level      float64
	PoE        float64
}

// SaveRun persists a run record together with its curves in one
// transaction and returns the generated run id.
func (s *SQLite) SaveRun(ctx context.Context, run Run, curves *core.Curves) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.New().String()
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		metrics.StorageWriteFailures.Inc()
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, model_name, time_span, truncation_level,
			max_distance, num_sites, num_sources, eff_ruptures, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.ModelName, run.TimeSpan, run.TruncationLevel, run.MaxDistance,
		run.NumSites, run.NumSources, run.EffRuptures, run.ElapsedSeconds)
	if err != nil {
		metrics.StorageWriteFailures.Inc()
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO curves (run_id, site_id, imt, level_index, level, poe)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.StorageWriteFailures.Inc()
		return "", fmt.Errorf("failed to prepare curve insert: %w", err)
	}
	defer stmt.Close()

	for _, imt := range curves.IMTs() {
		levels := curves.Levels(imt)
		for siteID, row := range curves.Values(imt) {
			for l, poe := range row {
				level := 0.0
				if l < len(levels) {
					level = levels[l]
				}
				if _, err := stmt.ExecContext(ctx, id, siteID, imt, l, level, poe); err != nil {
					metrics.StorageWriteFailures.Inc()
					return "", fmt.Errorf("failed to insert curve value: %w", err)
				}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.StorageWriteFailures.Inc()
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	s.Logger.Infow("saved calculation run", "run_id", id, "sites", run.NumSites)
	return id, nil
}

// GetRun loads one run record.
func (s *SQLite) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, created_at, model_name, time_span, truncation_level,
			max_distance, num_sites, num_sources, eff_ruptures, elapsed_seconds
		FROM runs WHERE id = ?`, id)
	var run Run
	err := row.Scan(&run.ID, &run.CreatedAt, &run.ModelName, &run.TimeSpan,
		&run.TruncationLevel, &run.MaxDistance, &run.NumSites,
		&run.NumSources, &run.EffRuptures, &run.ElapsedSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// GetCurves loads all curve values of a run ordered by site, IMT and level.
func (s *SQLite) GetCurves(ctx context.Context, runID string) ([]CurveValue, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT site_id, imt, level_index, level, poe
		FROM curves WHERE run_id = ?
		ORDER BY site_id, imt, level_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query curves for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []CurveValue
	for rows.Next() {
		var cv CurveValue
		if err := rows.Scan(&cv.SiteID, &cv.IMT, &cv.LevelIndex, &cv.Level, &cv.PoE); err != nil {
			return nil, fmt.Errorf("failed to scan curve value: %w", err)
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}
