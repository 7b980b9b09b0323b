// Package calibrate is the sweep half of C7 (§4.7): it enumerates the
// Cartesian product of the five coefficients' start/stop/step ranges,
// runs montecarlo.Replicate for each combination, and writes one record
// per combination to the control statistics store. Each run is tagged
// with a UUID (github.com/google/uuid) so concurrent worker processes
// (§5) can write disjoint result sets that are concatenated later.
package calibrate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/montecarlo"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/store"
)

// Combination is one point in coefficient space (§4.7).
type Combination struct {
	Diffusion, Breed, Spread, SlopeResistance, RoadGravity int
}

// Enumerate returns every coefficient combination in the Cartesian
// product of the five sweep ranges (§4.7: "yielding N coefficient
// combinations"), in nested-loop order: diffusion outermost, road_gravity
// innermost.
func Enumerate(c *coeff.Coefficients) []Combination {
	var out []Combination
	for d := c.Start(coeff.Diffusion); d <= c.Stop(coeff.Diffusion); d += c.Step(coeff.Diffusion) {
		for b := c.Start(coeff.Breed); b <= c.Stop(coeff.Breed); b += c.Step(coeff.Breed) {
			for sp := c.Start(coeff.Spread); sp <= c.Stop(coeff.Spread); sp += c.Step(coeff.Spread) {
				for sr := c.Start(coeff.SlopeResistance); sr <= c.Stop(coeff.SlopeResistance); sr += c.Step(coeff.SlopeResistance) {
					for rg := c.Start(coeff.RoadGravity); rg <= c.Stop(coeff.RoadGravity); rg += c.Step(coeff.RoadGravity) {
						out = append(out, Combination{d, b, sp, sr, rg})
					}
				}
			}
		}
	}
	return out
}

// ResumeIndex finds the position of a restart combination within an
// enumeration, for fast-forwarding a resumed sweep (SPEC_FULL's
// supplemented restart-file behavior). Returns -1 if not found.
func ResumeIndex(combos []Combination, resume Combination) int {
	for i, c := range combos {
		if c == resume {
			return i
		}
	}
	return -1
}

// Record is one completed combination's result.
type Record struct {
	Combo    Combination
	RunUUID  string
	RSquared [12]float64
	Fit      float64
}

// Sweep runs calibration over every combination in combos (typically the
// output of Enumerate, possibly sliced by ResumeIndex to skip already
// completed work), calling buildYear fresh for each Monte Carlo
// replication via montecarlo.Replicate.
// buildYear constructs one replication's growth.Year and a release func
// returning any leased input grids (§4.2) when the replication ends; the
// release func may be nil. buildYear must set Year.Coeffs to the
// *coeff.Coefficients handed to it, not a copy, so that
// montecarlo.Replicate's per-replication RestoreSaved() acts on the same
// instance the growth rules read and self-modify. controlGrids maps a
// control year to its historical raster for the Lee-Sallee observable;
// nil or missing entries leave that year's LeeSallee at 0.
func Sweep(
	combos []Combination,
	m int,
	seed int64,
	selfMod coeff.SelfModifyConfig,
	buildYear func(src rng.Source, c *coeff.Coefficients) (*growth.Year, func()),
	startYear, stopYear int,
	controlYears []int,
	controlGrids map[int]*grid.Grid,
	observed map[int][12]float64,
	sink func(Record) error,
) error {
	for _, combo := range combos {
		c := coeff.New()
		c.SetCurrent(coeff.Diffusion, float64(combo.Diffusion))
		c.SetCurrent(coeff.Breed, float64(combo.Breed))
		c.SetCurrent(coeff.Spread, float64(combo.Spread))
		c.SetCurrent(coeff.SlopeResistance, float64(combo.SlopeResistance))
		c.SetCurrent(coeff.RoadGravity, float64(combo.RoadGravity))
		c.SnapshotSaved()

		agg := montecarlo.Replicate(m, seed, c, func(src rng.Source) (*growth.Year, func()) {
			return buildYear(src, c)
		}, selfMod, startYear, stopYear, controlYears, controlGrids)

		r2, err := agg.RSquared(observed)
		if err != nil {
			return fmt.Errorf("calibrate: combination %+v: %w", combo, err)
		}

		rec := Record{
			Combo:    combo,
			RunUUID:  uuid.NewString(),
			RSquared: r2,
			Fit:      montecarlo.OverallFit(r2),
		}
		if err := sink(rec); err != nil {
			return fmt.Errorf("calibrate: sink: %w", err)
		}
	}
	return nil
}

// ToControlStatsRow converts a Record to the persistence layer's row
// type.
func ToControlStatsRow(r Record) store.ControlStatsRow {
	return store.ControlStatsRow{
		RunUUID:         r.RunUUID,
		Diffusion:       r.Combo.Diffusion,
		Breed:           r.Combo.Breed,
		Spread:          r.Combo.Spread,
		SlopeResistance: r.Combo.SlopeResistance,
		RoadGravity:     r.Combo.RoadGravity,
		RSquared:        r.RSquared,
		Fit:             r.Fit,
	}
}
