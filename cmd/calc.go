package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tremor/calc"
	"tremor/config"
	"tremor/core"
	"tremor/gsim"
	"tremor/model"
	"tremor/performance"
	"tremor/storage"
)

// NewCalcCmd builds the `tremor calc` command: load a model, compute hazard
// curves, persist and/or export them.
func NewCalcCmd() *cobra.Command {
	var (
		modelPath string
		csvPath   string
		noStore   bool
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute hazard curves for a site/source model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd.Context(), modelPath, csvPath, noStore, workers)
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "path to YAML model file (required)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also export curves to a CSV file")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "skip persisting results to SQLite")
	cmd.Flags().IntVar(&workers, "workers", 0, "override configured worker count")
	cmd.MarkFlagRequired("model")
	return cmd
}

func runCalc(ctx context.Context, modelPath, csvPath string, noStore bool, workers int) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.Calculation.Workers
	}

	m, err := model.Load(modelPath)
	if err != nil {
		return err
	}
	sites, sources, err := m.Resolve(cfg.Calculation.TimeSpan)
	if err != nil {
		return err
	}

	names := cfg.Calculation.GSIMByTRT()
	gsimByTRT := make(map[string]gsim.GMPE, len(names))
	for trt, name := range names {
		g, err := gsim.New(name)
		if err != nil {
			return fmt.Errorf("tectonic region type %q: %w", trt, err)
		}
		gsimByTRT[trt] = g
	}

	imtls := core.IMTLevels(cfg.Calculation.IMTLevels())
	params := calc.Params{
		TruncationLevel: cfg.Calculation.TruncationLevel,
		MaxDistance:     cfg.Calculation.MaxDistance,
		SourceFilter:    calc.SourceSiteDistanceFilter(cfg.Calculation.MaxDistance),
		RuptureFilter:   calc.RuptureSiteDistanceFilter(cfg.Calculation.MaxDistance),
		Logger:          log,
	}

	headerColor.Printf("Model %q: %d sites, %d sources\n", m.Name, sites.Len(), len(sources))
	var spin *spinner.Spinner
	if !quiet {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " computing hazard curves..."
		spin.Start()
	}

	mon := performance.NewRecorder()
	t0 := time.Now()
	curves, err := calc.CalcHazardCurvesParallel(
		ctx, sources, sites, imtls, gsimByTRT, params, workers, mon)
	elapsed := time.Since(t0)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		errorColor.Fprintf(os.Stderr, "calculation failed: %v\n", err)
		return err
	}

	printSummary(sites, sources, mon, elapsed)

	if !noStore {
		runID, err := persist(ctx, cfg, m.Name, sites, sources, mon, curves, elapsed, log)
		if err != nil {
			return err
		}
		successColor.Printf("results stored, run id %s\n", runID)
	}
	if csvPath != "" {
		if err := exportCSV(csvPath, curves); err != nil {
			return err
		}
		successColor.Printf("curves exported to %s\n", csvPath)
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if quiet {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func printSummary(sites *core.SiteCollection, sources []core.Source,
	mon *performance.Recorder, elapsed time.Duration) {

	infoColor.Printf("effective ruptures: %d\n", mon.EffRuptures())
	infoColor.Printf("elapsed: %s\n", elapsed.Round(time.Millisecond))

	times := mon.CalcTimes()
	sort.Slice(times, func(i, j int) bool { return times[i].Duration > times[j].Duration })
	if len(times) > 3 {
		times = times[:3]
	}
	for _, st := range times {
		infoColor.Printf("  source %d: %s\n", st.SourceID, st.Duration.Round(time.Microsecond))
	}
}

func persist(ctx context.Context, cfg *config.Config, modelName string,
	sites *core.SiteCollection, sources []core.Source,
	mon *performance.Recorder, curves *core.Curves,
	elapsed time.Duration, log *zap.SugaredLogger) (string, error) {

	db, err := storage.NewSQLite(cfg.DataPaths.SQLitePath, log)
	if err != nil {
		return "", err
	}
	defer db.Close()

	return db.SaveRun(ctx, storage.Run{
		ModelName:       modelName,
		TimeSpan:        cfg.Calculation.TimeSpan,
		TruncationLevel: cfg.Calculation.TruncationLevel,
		MaxDistance:     cfg.Calculation.MaxDistance,
		NumSites:        sites.Len(),
		NumSources:      len(sources),
		EffRuptures:     mon.EffRuptures(),
		ElapsedSeconds:  elapsed.Seconds(),
	}, curves)
}

func exportCSV(path string, curves *core.Curves) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"site_id", "imt", "level", "poe"}); err != nil {
		return err
	}
	for _, imt := range curves.IMTs() {
		levels := curves.Levels(imt)
		for siteID, row := range curves.Values(imt) {
			for l, poe := range row {
				level := 0.0
				if l < len(levels) {
					level = levels[l]
				}
				record := []string{
					strconv.Itoa(siteID),
					imt,
					strconv.FormatFloat(level, 'g', -1, 64),
					strconv.FormatFloat(poe, 'g', -1, 64),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
		}
	}
	return w.Error()
}
