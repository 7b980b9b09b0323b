// Command sleuth runs the SLEUTH urban-growth cellular automaton: a
// calibration sweep over coefficient space, a prediction run, or a single
// deterministic test replication, driven entirely by a scenario file (§6).
// Prediction runs on the sweep start values; it does not search the sweep
// results for a best-fit combination.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/calibrate"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/engine"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/fsutil"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/inputs"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/logging"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/raster"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/restart"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/scenario"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/store"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/timer"
)

func main() {
	mode := flag.String("mode", "calibrate", "Processing mode: calibrate, predict, or test")
	scenarioPath := flag.String("scenario", "", "Path to scenario file")
	restartPath := flag.String("restart", "", "Path to restart file (resume a sweep if present)")
	outputCSV := flag.String("output-csv", "control_stats.csv", "Control statistics CSV output path")
	outputDB := flag.String("output-db", "control_stats.sqlite", "Control statistics SQLite output path")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatalf("sleuth: -scenario is required")
	}

	fsys := fsutil.OSFileSystem{}
	cfg, err := scenario.Load(fsys, *scenarioPath)
	if err != nil {
		logging.Fatal(fmt.Errorf("loading scenario: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal(fmt.Errorf("validating scenario: %w", err))
	}

	var resumeState *restart.State
	if *restartPath != "" {
		if f, err := os.Open(*restartPath); err == nil {
			defer f.Close()
			s, err := restart.Read(f)
			if err != nil {
				logging.Fatal(fmt.Errorf("reading restart file: %w", err))
			}
			resumeState = &s
			log.Printf("sleuth: resuming sweep from restart file %s", *restartPath)
		}
	}

	codec := raster.GIFCodec{}
	g, err := loadFirstUrbanGrid(fsys, codec, cfg)
	if err != nil {
		logging.Fatal(err)
	}
	roadGrid, slopeGrid, excludedGrid, err := loadAncillaryGrids(fsys, codec, cfg, g.Rows, g.Cols)
	if err != nil {
		logging.Fatal(err)
	}
	landuseGrid, err := loadOptionalLanduseGrid(fsys, codec, cfg, g.Rows, g.Cols)
	if err != nil {
		logging.Fatal(err)
	}

	firstUrbanYear := cfg.UrbanFiles[0].Year
	inputStore := inputs.New(g.Rows, g.Cols)
	mustPut(inputStore, inputs.Role{Kind: inputs.Urban, Year: firstUrbanYear}, g)
	mustPut(inputStore, inputs.Role{Kind: inputs.Road}, roadGrid)
	mustPut(inputStore, inputs.Role{Kind: inputs.Slope}, slopeGrid)
	mustPut(inputStore, inputs.Role{Kind: inputs.Excluded}, excludedGrid)
	var landuseRole *inputs.Role
	if landuseGrid != nil {
		role := inputs.Role{Kind: inputs.Landuse}
		mustPut(inputStore, role, landuseGrid)
		landuseRole = &role
	}

	controlGrids, err := loadControlGrids(fsys, codec, cfg, g.Rows, g.Cols)
	if err != nil {
		logging.Fatal(err)
	}

	c := coeff.New()
	mustSweep(c, coeff.Diffusion, cfg.DiffusionStart, cfg.DiffusionStop, cfg.DiffusionStep)
	mustSweep(c, coeff.Breed, cfg.BreedStart, cfg.BreedStop, cfg.BreedStep)
	mustSweep(c, coeff.Spread, cfg.SpreadStart, cfg.SpreadStop, cfg.SpreadStep)
	mustSweep(c, coeff.SlopeResistance, cfg.SlopeResistStart, cfg.SlopeResistStop, cfg.SlopeResistStep)
	mustSweep(c, coeff.RoadGravity, cfg.RoadGravityStart, cfg.RoadGravityStop, cfg.RoadGravityStep)

	// Predict and test modes run on the sweep start values; calibrate mode
	// builds its own per-combination coefficients inside calibrate.Sweep.
	for n := coeff.Diffusion; n <= coeff.RoadGravity; n++ {
		c.SetCurrent(n, float64(c.Start(n)))
	}
	c.SnapshotSaved()

	selfMod := coeff.SelfModifyConfig{
		CriticalHigh: cfg.GetCriticalHigh(),
		CriticalLow:  cfg.GetCriticalLow(),
		Boom:         cfg.GetBoom(),
		Bust:         cfg.GetBust(),
	}

	switch *mode {
	case "calibrate":
		runCalibrate(cfg, c, selfMod, inputStore, firstUrbanYear, landuseRole, controlGrids, resumeState, *outputCSV, *outputDB)
	case "predict":
		runSingleReplication(cfg, c, selfMod, inputStore, firstUrbanYear, landuseRole, codec, timer.Predict,
			cfg.GetPredictionStartDate(), cfg.GetPredictionStopDate())
	case "test":
		runSingleReplication(cfg, c, selfMod, inputStore, firstUrbanYear, landuseRole, codec, timer.Test,
			cfg.GetPredictionStartDate(), cfg.GetPredictionStartDate()+1)
	default:
		log.Fatalf("sleuth: unknown mode %q", *mode)
	}
}

// mustPut installs a grid under role in store, exiting on a shape
// mismatch (an input raster that doesn't match the first urban grid's
// shape is a fatal scenario-configuration error, §7).
func mustPut(s *inputs.Store, role inputs.Role, g *grid.Grid) {
	if err := s.Put(role, g); err != nil {
		logging.Fatal(err)
	}
}

func mustSweep(c *coeff.Coefficients, name coeff.Name, start, stop, step *int) {
	if start == nil || stop == nil || step == nil {
		logging.Fatal(fmt.Errorf("main: %s sweep bounds missing from scenario", name))
	}
	if err := c.SetSweep(name, *start, *stop, *step); err != nil {
		logging.Fatal(err)
	}
}

func loadFirstUrbanGrid(fsys fsutil.FileSystem, codec raster.GIFCodec, cfg *scenario.Config) (*grid.Grid, error) {
	if len(cfg.UrbanFiles) == 0 {
		return nil, fmt.Errorf("main: scenario has no urban_data_file entries")
	}
	path, err := cfg.ResolvePath(cfg.UrbanFiles[0].Path)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("main: opening %s: %w", path, err)
	}
	defer f.Close()
	g, _, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("main: decoding %s: %w", path, err)
	}
	return g, nil
}

// loadAncillaryGrids decodes the road, slope, and excluded-zone layers
// named in the scenario, substituting a blank grid of the same shape for
// any layer the scenario leaves unconfigured (the growth rules treat an
// all-zero road/slope/excluded grid as "no roads yet"/"flat"/"nothing
// excluded", which is a legitimate starting state, not an error).
func loadAncillaryGrids(fsys fsutil.FileSystem, codec raster.GIFCodec, cfg *scenario.Config, rows, cols int) (road, slope, excluded *grid.Grid, err error) {
	road, err = loadOptionalGrid(fsys, codec, cfg, firstRoadYearFile(cfg), rows, cols)
	if err != nil {
		return nil, nil, nil, err
	}
	slope, err = loadOptionalGrid(fsys, codec, cfg, cfg.SlopeFile, rows, cols)
	if err != nil {
		return nil, nil, nil, err
	}
	excluded, err = loadOptionalGrid(fsys, codec, cfg, cfg.ExcludedFile, rows, cols)
	if err != nil {
		return nil, nil, nil, err
	}
	return road, slope, excluded, nil
}

func firstRoadYearFile(cfg *scenario.Config) *string {
	if len(cfg.RoadFiles) == 0 {
		return nil
	}
	return &cfg.RoadFiles[0].Path
}

// loadOptionalLanduseGrid decodes the scenario's first configured
// landuse_data_file, or returns a nil grid (not a blank one) if the
// scenario configures none: unlike road/slope/excluded, an absent
// landuse layer means montecarlo's land-use-ratio observables are simply
// not measured for this run (growth.Year.Landuse doc comment), not that
// they measure an all-background raster.
func loadOptionalLanduseGrid(fsys fsutil.FileSystem, codec raster.GIFCodec, cfg *scenario.Config, rows, cols int) (*grid.Grid, error) {
	if len(cfg.LanduseFiles) == 0 {
		return nil, nil
	}
	return loadOptionalGrid(fsys, codec, cfg, &cfg.LanduseFiles[0].Path, rows, cols)
}

// loadControlGrids decodes every configured urban_data_file_<year> into a
// year-keyed map, for montecarlo's Lee-Sallee observable (§4.7 step 1)
// to compare each replication's simulated year against real historical
// urbanization rather than leaving the fit unmeasured.
func loadControlGrids(fsys fsutil.FileSystem, codec raster.GIFCodec, cfg *scenario.Config, rows, cols int) (map[int]*grid.Grid, error) {
	out := make(map[int]*grid.Grid, len(cfg.UrbanFiles))
	for _, yf := range cfg.UrbanFiles {
		g, err := loadOptionalGrid(fsys, codec, cfg, &yf.Path, rows, cols)
		if err != nil {
			return nil, err
		}
		if g.Rows != rows || g.Cols != cols {
			return nil, fmt.Errorf("main: urban control grid %s has shape %dx%d, want %dx%d",
				yf.Path, g.Rows, g.Cols, rows, cols)
		}
		out[yf.Year] = g
	}
	return out, nil
}

func loadOptionalGrid(fsys fsutil.FileSystem, codec raster.GIFCodec, cfg *scenario.Config, relPath *string, rows, cols int) (*grid.Grid, error) {
	if relPath == nil {
		return grid.New(rows, cols), nil
	}
	path, err := cfg.ResolvePath(*relPath)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("main: opening %s: %w", path, err)
	}
	defer f.Close()
	g, _, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("main: decoding %s: %w", path, err)
	}
	return g, nil
}

// runSingleReplication drives one deterministic replication end to end
// (predict mode: the sweep start values over the full prediction horizon;
// test mode: a single year) and writes the resulting urbanization
// grid for each year to outputDir as a GIF (§6). Road, slope, excluded,
// and (if configured) landuse grids are leased from store for the
// replication's lifetime and released before returning (§4.2).
func runSingleReplication(cfg *scenario.Config, c *coeff.Coefficients, selfMod coeff.SelfModifyConfig, inputStore *inputs.Store, urbanYear int, landuseRole *inputs.Role, codec raster.GIFCodec, mode timer.Mode, startYear, stopYear int) {
	y, release := leaseYear(inputStore, urbanYear, landuseRole, c, rng.Default(cfg.GetRandomSeed()))
	y.Slopes = growth.SlopeConfig{CritSlope: cfg.GetCriticalSlope()}

	proc := timer.New(mode, startYear, stopYear, 1)
	rep := engine.New(y, proc, selfMod)

	outDir := cfg.GetOutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logging.Fatal(fmt.Errorf("main: creating output dir %s: %w", outDir, err))
	}

	rep.Run(func(year int, growthRate, percentUrban float64) {
		log.Printf("sleuth: %s year %d growth_rate=%.4f percent_urban=%.4f", mode, year, growthRate, percentUrban)
		path := filepath.Join(outDir, fmt.Sprintf("urban_%d.gif", year))
		f, err := os.Create(path)
		if err != nil {
			logging.Fatal(fmt.Errorf("main: creating %s: %w", path, err))
		}
		defer f.Close()
		if err := codec.Encode(f, y.Z, raster.ProbabilityColorTable(), raster.Annotation{Text: fmt.Sprintf("%d", year)}); err != nil {
			logging.Fatal(fmt.Errorf("main: encoding %s: %w", path, err))
		}
	})

	release()
	if err := inputStore.ValidateAllReleased(); err != nil {
		logging.Fatal(err)
	}

	log.Printf("sleuth: %s complete, wrote yearly grids to %s", mode, outDir)
}

// leaseYear leases the urban seed grid plus the road, slope, excluded,
// and (if landuseRole is non-nil) landuse grids from store, and returns a
// freshly built growth.Year plus the release func that returns every
// lease taken here (§4.2). Release errors are logged, not fatal: a
// mis-paired lease/release is an engine bug worth surfacing, not a reason
// to abort a replication that has already produced its output.
func leaseYear(inputStore *inputs.Store, urbanYear int, landuseRole *inputs.Role, c *coeff.Coefficients, src rng.Source) (*growth.Year, func()) {
	urbanRole := inputs.Role{Kind: inputs.Urban, Year: urbanYear}
	roadRole := inputs.Role{Kind: inputs.Road}
	slopeRole := inputs.Role{Kind: inputs.Slope}
	excludedRole := inputs.Role{Kind: inputs.Excluded}

	seedGrid, err := inputStore.Lease(urbanRole)
	if err != nil {
		logging.Fatal(err)
	}
	road, err := inputStore.Lease(roadRole)
	if err != nil {
		logging.Fatal(err)
	}
	slope, err := inputStore.Lease(slopeRole)
	if err != nil {
		logging.Fatal(err)
	}
	excluded, err := inputStore.Lease(excludedRole)
	if err != nil {
		logging.Fatal(err)
	}
	var landuse *grid.Grid
	if landuseRole != nil {
		landuse, err = inputStore.Lease(*landuseRole)
		if err != nil {
			logging.Fatal(err)
		}
	}

	rows, cols := seedGrid.Rows, seedGrid.Cols
	y := &growth.Year{
		Z:        grid.New(rows, cols),
		Delta:    grid.New(rows, cols),
		Road:     road,
		Slope:    slope,
		Excluded: excluded,
		Landuse:  landuse,
		Coeffs:   c,
		RNG:      src,
	}
	grid.Copy(y.Z, seedGrid)

	release := func() {
		for _, role := range []inputs.Role{urbanRole, roadRole, slopeRole, excludedRole} {
			if err := inputStore.Release(role); err != nil {
				logging.Logf("main: release %+v: %v", role, err)
			}
		}
		if landuseRole != nil {
			if err := inputStore.Release(*landuseRole); err != nil {
				logging.Logf("main: release %+v: %v", *landuseRole, err)
			}
		}
	}
	return y, release
}

// controlObservablesFromConfig derives a placeholder observed-value table
// from the scenario's configured urban years, keyed by year: every year
// maps to an all-zero twelve-observable vector, and no historical grid is
// measured here; see the TODO in runCalibrate.
func controlObservablesFromConfig(cfg *scenario.Config) (map[int][12]float64, []int) {
	observed := make(map[int][12]float64, len(cfg.UrbanFiles))
	years := make([]int, 0, len(cfg.UrbanFiles))
	for _, yf := range cfg.UrbanFiles {
		observed[yf.Year] = [12]float64{}
		years = append(years, yf.Year)
	}
	if len(years) == 0 {
		years = []int{0, 1}
		observed[0] = [12]float64{}
		observed[1] = [12]float64{}
	}
	return observed, years
}

func runCalibrate(cfg *scenario.Config, c *coeff.Coefficients, selfMod coeff.SelfModifyConfig, inputStore *inputs.Store, urbanYear int, landuseRole *inputs.Role, controlGrids map[int]*grid.Grid, resume *restart.State, outputCSV, outputDB string) {
	combos := calibrate.Enumerate(c)
	if resume != nil {
		idx := calibrate.ResumeIndex(combos, calibrate.Combination{
			Diffusion:       resume.Diffusion,
			Breed:           resume.Breed,
			Spread:          resume.Spread,
			SlopeResistance: resume.SlopeResistance,
			RoadGravity:     resume.RoadGravity,
		})
		if idx >= 0 {
			combos = combos[idx:]
		}
	}
	log.Printf("sleuth: %d coefficient combinations to evaluate", len(combos))

	csvFile, err := os.Create(outputCSV)
	if err != nil {
		logging.Fatal(fmt.Errorf("creating %s: %w", outputCSV, err))
	}
	defer csvFile.Close()

	sqliteStore, err := store.OpenSQLiteStore(outputDB)
	if err != nil {
		logging.Fatal(err)
	}
	defer sqliteStore.Close()

	csvWriter := store.NewCSVWriter(csvFile, [12]string{
		"compare", "pop", "edges", "clusters", "cluster_size", "lee_sallee",
		"slope", "percent_urban", "xmean", "ymean", "rad_std", "mean_cluster_size",
	})
	defer csvWriter.Flush()

	buildYear := func(src rng.Source, coeffs *coeff.Coefficients) (*growth.Year, func()) {
		return leaseYear(inputStore, urbanYear, landuseRole, coeffs, src)
	}

	// TODO: controlObservablesFromConfig's "observed" table is still a
	// placeholder (all-zero vectors keyed by urban year) — only the
	// Lee-Sallee observable is scored against real historical data
	// (controlGrids, decoded in main). Deriving the other eleven observed
	// values needs the same twelve-observable reduction montecarlo runs on
	// a replication's output applied to each historical grid directly.
	observed, controlYears := controlObservablesFromConfig(cfg)
	seed := cfg.GetRandomSeed()
	m := cfg.GetMonteCarloIterations()

	err = calibrate.Sweep(combos, m, seed, selfMod, buildYear, controlYears[0], controlYears[len(controlYears)-1]+1, controlYears, controlGrids, observed, func(rec calibrate.Record) error {
		row := calibrate.ToControlStatsRow(rec)
		if err := csvWriter.Write(row); err != nil {
			return err
		}
		return sqliteStore.Insert(row)
	})
	if err != nil {
		logging.Fatal(err)
	}
	if err := inputStore.ValidateAllReleased(); err != nil {
		logging.Fatal(err)
	}

	log.Printf("sleuth: calibration complete, wrote %s and %s", outputCSV, outputDB)
}
