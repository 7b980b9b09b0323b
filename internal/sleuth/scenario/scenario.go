// Package scenario parses the line-oriented key=value scenario file (§6)
// into a typed Config, styled after the teacher's internal/config: a
// struct of pointer fields with Get* accessors supplying defaults, loaded
// once at boot and Validate()-checked before use. The wire format has no
// existing library in the example pack (it predates JSON/YAML/INI
// conventions), so the loader is a small hand-rolled bufio.Scanner pass —
// the one place in this package that reaches for the standard library
// instead of a third-party parser, justified in DESIGN.md.
package scenario

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/fsutil"
)

// YearFile pairs a control year with its input raster path.
type YearFile struct {
	Year int
	Path string
}

// Config is the parsed scenario file (§6), grounded on scenario_obj.h's
// scenario_info field list. Only the fields the engine actually consumes
// are modeled; the dozens of diagnostic logging flags noted in
// scenario_obj.h are represented as a generic LogFlags set rather than
// one bool field per flag, since SPEC_FULL's logging package has a single
// Logf hook rather than per-subsystem toggles.
type Config struct {
	InputDir  *string
	OutputDir *string

	UrbanFiles   []YearFile
	RoadFiles    []YearFile
	LanduseFiles []YearFile
	ExcludedFile *string
	SlopeFile    *string
	BackgroundFile *string

	RandomSeed            *int64
	MonteCarloIterations  *int
	PredictionStartDate   *int
	PredictionStopDate    *int

	DiffusionStart, DiffusionStop, DiffusionStep *int
	BreedStart, BreedStop, BreedStep             *int
	SpreadStart, SpreadStop, SpreadStep          *int
	SlopeResistStart, SlopeResistStop, SlopeResistStep *int
	RoadGravityStart, RoadGravityStop, RoadGravityStep *int

	CriticalLow   *float64
	CriticalHigh  *float64
	CriticalSlope *float64
	Boom          *float64
	Bust          *float64

	LogFlags map[string]bool
}

func (c *Config) GetInputDir() string {
	if c.InputDir == nil {
		return "."
	}
	return *c.InputDir
}

func (c *Config) GetOutputDir() string {
	if c.OutputDir == nil {
		return "."
	}
	return *c.OutputDir
}

func (c *Config) GetRandomSeed() int64 {
	if c.RandomSeed == nil {
		return 1
	}
	return *c.RandomSeed
}

func (c *Config) GetMonteCarloIterations() int {
	if c.MonteCarloIterations == nil {
		return 1
	}
	return *c.MonteCarloIterations
}

func (c *Config) GetCriticalLow() float64 {
	if c.CriticalLow == nil {
		return 1
	}
	return *c.CriticalLow
}

func (c *Config) GetCriticalHigh() float64 {
	if c.CriticalHigh == nil {
		return 50
	}
	return *c.CriticalHigh
}

func (c *Config) GetCriticalSlope() float64 {
	if c.CriticalSlope == nil {
		return 50
	}
	return *c.CriticalSlope
}

func (c *Config) GetBoom() float64 {
	if c.Boom == nil {
		return 1.1
	}
	return *c.Boom
}

func (c *Config) GetBust() float64 {
	if c.Bust == nil {
		return 0.9
	}
	return *c.Bust
}

// GetPredictionStartDate returns the configured prediction_start_date, or
// the latest configured urban year if unset — a prediction run with no
// explicit start picks up where the most recent known urbanization left
// off.
func (c *Config) GetPredictionStartDate() int {
	if c.PredictionStartDate != nil {
		return *c.PredictionStartDate
	}
	year := 0
	for _, yf := range c.UrbanFiles {
		if yf.Year > year {
			year = yf.Year
		}
	}
	return year
}

// GetPredictionStopDate returns the configured prediction_stop_date, or
// twenty years past GetPredictionStartDate if unset.
func (c *Config) GetPredictionStopDate() int {
	if c.PredictionStopDate != nil {
		return *c.PredictionStopDate
	}
	return c.GetPredictionStartDate() + 20
}

// Validate checks the coefficient sweep bounds (§4.1 contract) and that
// at least one urban-year file was configured.
func (c *Config) Validate() error {
	if len(c.UrbanFiles) == 0 {
		return fmt.Errorf("scenario: no urban_data_file entries configured")
	}
	triples := []struct {
		name               string
		start, stop, step  *int
	}{
		{"diffusion", c.DiffusionStart, c.DiffusionStop, c.DiffusionStep},
		{"breed", c.BreedStart, c.BreedStop, c.BreedStep},
		{"spread", c.SpreadStart, c.SpreadStop, c.SpreadStep},
		{"slope_resistance", c.SlopeResistStart, c.SlopeResistStop, c.SlopeResistStep},
		{"road_gravity", c.RoadGravityStart, c.RoadGravityStop, c.RoadGravityStep},
	}
	for _, tr := range triples {
		if tr.start == nil || tr.stop == nil || tr.step == nil {
			return fmt.Errorf("scenario: %s coefficient bounds not fully specified", tr.name)
		}
		if *tr.step < 1 {
			return fmt.Errorf("scenario: %s step must be >= 1", tr.name)
		}
		if *tr.start < 1 || *tr.start > *tr.stop || *tr.stop > 100 {
			return fmt.Errorf("scenario: %s bounds [%d,%d] invalid", tr.name, *tr.start, *tr.stop)
		}
	}
	return nil
}

// ResolvePath joins a configured relative filename with the scenario's
// input directory, rejecting any path that escapes it (a scenario file
// is untrusted configuration input, per §7's "Configuration" error kind).
func (c *Config) ResolvePath(name string) (string, error) {
	joined := filepath.Join(c.GetInputDir(), name)
	rel, err := filepath.Rel(c.GetInputDir(), joined)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("scenario: filename %q escapes input directory", name)
	}
	return joined, nil
}

// Load parses a scenario file from fsys at path into a Config.
func Load(fsys fsutil.FileSystem, path string) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the line-oriented key=value scenario format (§6) from r.
// Blank lines and lines starting with '#' are ignored.
func Parse(r io.Reader) (*Config, error) {
	c := &Config{LogFlags: make(map[string]bool)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("scenario: line %d: missing '=' in %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := c.set(key, value); err != nil {
			return nil, fmt.Errorf("scenario: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scenario: read: %w", err)
	}
	return c, nil
}

func (c *Config) set(key, value string) error {
	switch {
	case key == "input_dir":
		c.InputDir = &value
	case key == "output_dir":
		c.OutputDir = &value
	case key == "excluded_data_file":
		c.ExcludedFile = &value
	case key == "slope_data_file":
		c.SlopeFile = &value
	case key == "background_data_file":
		c.BackgroundFile = &value
	case key == "random_seed":
		return setInt64(&c.RandomSeed, value)
	case key == "monte_carlo_iterations":
		return setInt(&c.MonteCarloIterations, value)
	case key == "prediction_start_date":
		return setInt(&c.PredictionStartDate, value)
	case key == "prediction_stop_date":
		return setInt(&c.PredictionStopDate, value)
	case key == "critical_low":
		return setFloat(&c.CriticalLow, value)
	case key == "critical_high":
		return setFloat(&c.CriticalHigh, value)
	case key == "critical_slope":
		return setFloat(&c.CriticalSlope, value)
	case key == "boom":
		return setFloat(&c.Boom, value)
	case key == "bust":
		return setFloat(&c.Bust, value)
	case key == "coeff_diffusion_start":
		return setInt(&c.DiffusionStart, value)
	case key == "coeff_diffusion_stop":
		return setInt(&c.DiffusionStop, value)
	case key == "coeff_diffusion_step":
		return setInt(&c.DiffusionStep, value)
	case key == "coeff_breed_start":
		return setInt(&c.BreedStart, value)
	case key == "coeff_breed_stop":
		return setInt(&c.BreedStop, value)
	case key == "coeff_breed_step":
		return setInt(&c.BreedStep, value)
	case key == "coeff_spread_start":
		return setInt(&c.SpreadStart, value)
	case key == "coeff_spread_stop":
		return setInt(&c.SpreadStop, value)
	case key == "coeff_spread_step":
		return setInt(&c.SpreadStep, value)
	case key == "coeff_slope_resist_start":
		return setInt(&c.SlopeResistStart, value)
	case key == "coeff_slope_resist_stop":
		return setInt(&c.SlopeResistStop, value)
	case key == "coeff_slope_resist_step":
		return setInt(&c.SlopeResistStep, value)
	case key == "coeff_road_gravity_start":
		return setInt(&c.RoadGravityStart, value)
	case key == "coeff_road_gravity_stop":
		return setInt(&c.RoadGravityStop, value)
	case key == "coeff_road_gravity_step":
		return setInt(&c.RoadGravityStep, value)
	case strings.HasPrefix(key, "urban_data_file_"):
		yf, err := parseYearFile(key, "urban_data_file_", value)
		if err != nil {
			return err
		}
		c.UrbanFiles = append(c.UrbanFiles, yf)
	case strings.HasPrefix(key, "road_data_file_"):
		yf, err := parseYearFile(key, "road_data_file_", value)
		if err != nil {
			return err
		}
		c.RoadFiles = append(c.RoadFiles, yf)
	case strings.HasPrefix(key, "landuse_data_file_"):
		yf, err := parseYearFile(key, "landuse_data_file_", value)
		if err != nil {
			return err
		}
		c.LanduseFiles = append(c.LanduseFiles, yf)
	case strings.HasPrefix(key, "log_"):
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		c.LogFlags[key] = b
	default:
		// Unknown keys are ignored rather than fatal: scenario_obj.h names
		// dozens of cosmetic/logging flags this implementation does not
		// model individually (§1 non-goals exclude interactive
		// visualization and the view_* flags it implies).
	}
	return nil
}

func parseYearFile(key, prefix, value string) (YearFile, error) {
	yearStr := strings.TrimPrefix(key, prefix)
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return YearFile{}, fmt.Errorf("parsing year from key %q: %w", key, err)
	}
	return YearFile{Year: year, Path: value}, nil
}

func setInt(dst **int, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parsing int %q: %w", value, err)
	}
	*dst = &v
	return nil
}

func setInt64(dst **int64, value string) error {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing int64 %q: %w", value, err)
	}
	*dst = &v
	return nil
}

func setFloat(dst **float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parsing float %q: %w", value, err)
	}
	*dst = &v
	return nil
}
