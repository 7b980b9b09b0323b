// Package engine is the annual driver and self-modification loop (§4.6,
// C6): one call to Step advances a replication by exactly one simulated
// year, applying the five growth rules, merging delta into Z, computing
// growth rate and percent urban, and feeding them into the coefficients'
// self-modification rule.
package engine

import (
	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/logging"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/timer"
)

// Replication holds the per-replication simulation state (§3 "Simulation
// state per replication"): the Z and delta grids, the growth rules'
// shared input grids, the live coefficients, the timer, and the
// self-modification thresholds.
type Replication struct {
	Year     *growth.Year
	Timer    *timer.Processor
	SelfMod  coeff.SelfModifyConfig
	excluded int // cached exclusion count, computed once in New

	priorRoadPixelCount int
}

// New builds a Replication from an already-populated growth.Year and
// timer.Processor. The caller is responsible for seeding Year.Z from the
// earliest urban control year before the first Step (§3 Lifecycle).
func New(y *growth.Year, p *timer.Processor, selfMod coeff.SelfModifyConfig) *Replication {
	r := &Replication{Year: y, Timer: p, SelfMod: selfMod}
	r.excluded = grid.Count(y.Excluded, grid.EQ, sim.Excluded)
	r.priorRoadPixelCount = grid.Count(y.Road, grid.GT, 0)
	return r
}

func (r *Replication) totalUrbanizablePixels() int {
	total := r.Year.Z.TotalPixels()
	n := total - r.excluded
	if n <= 0 {
		return total
	}
	return n
}

// Step advances the replication by one year (§4.6):
//  1. clear delta (handled by growth.Step's Merge clearing the prior year's delta)
//  2. apply Rules 1-5
//  3. merge delta into Z
//  4. compute growth_rate and percent_urban
//  5. self-modification
//  6. advance year
//
// Returns the year's growth rate and percent urban, for the calling
// driver to feed into Monte Carlo observable accumulation (§4.7).
func (r *Replication) Step() (growthRate, percentUrban float64) {
	numGrowthPix := growth.Step(r.Year)

	// Arithmetic error kind (§7): zero road pixels yields rate 0, non-fatal.
	if r.priorRoadPixelCount > 0 {
		growthRate = 100 * float64(numGrowthPix) / float64(r.priorRoadPixelCount)
	}

	urbanCount := grid.Count(r.Year.Z, grid.GE, sim.Phase0G)
	percentUrban = 100 * float64(urbanCount) / float64(r.totalUrbanizablePixels())

	r.Year.Coeffs.SelfModify(growthRate, percentUrban, r.SelfMod)

	r.Timer.TickYear()
	logging.Logf("engine: year=%d growth_rate=%.4f percent_urban=%.4f num_growth_pix=%d",
		r.Timer.CurrentYear, growthRate, percentUrban, numGrowthPix)

	return growthRate, percentUrban
}

// Run steps the replication forward until the timer reports Done, calling
// observe after every year with the current year's growth rate and
// percent urban. observe may be nil.
func (r *Replication) Run(observe func(year int, growthRate, percentUrban float64)) {
	for !r.Timer.Done() {
		gr, pu := r.Step()
		if observe != nil {
			observe(r.Timer.CurrentYear, gr, pu)
		}
	}
}
