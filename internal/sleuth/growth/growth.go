// Package growth implements the five ordered stochastic update rules
// (§4.5, C5) applied once per simulated year. Each rule reads the
// start-of-year Z grid and writes only into the delta grid, so that pixel
// visitation order within a rule cannot affect the outcome (§3 invariant
// 5).
package growth

import (
	"math"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
)

// SlopeConfig carries the scenario-configured slope-test parameters
// (§4.5 Rule common).
type SlopeConfig struct {
	CritSlope float64 // percent
}

// Year bundles everything one year's growth rules read or write: the
// start-of-year Z grid (read-only), the delta grid (write-only, zeroed at
// year start), the road and slope input grids, the excluded mask, the
// live coefficients, and the shared RNG handle (§5: "the RNG is mutated
// only in C5/C6 through a single handle"). Landuse is optional (nil when
// the scenario configures no landuse_data_file): it is never read by the
// growth rules themselves, only by montecarlo's land-use-ratio observable.
type Year struct {
	Z        *grid.Grid
	Delta    *grid.Grid
	Road     *grid.Grid
	Slope    *grid.Grid
	Excluded *grid.Grid
	Landuse  *grid.Grid
	Coeffs   *coeff.Coefficients
	RNG      rng.Source
	Slopes   SlopeConfig
}

// slopeTest returns true if the candidate at (i,j) survives the slope and
// exclusion test (§4.5 Rule common). Excluded pixels are rejected
// unconditionally.
func (y *Year) slopeTest(i, j int) bool {
	if y.Excluded.At(i, j) == sim.Excluded {
		return false
	}
	s := float64(y.Slope.At(i, j))
	if y.Slopes.CritSlope <= 0 {
		return true
	}
	sr := y.Coeffs.Current(coeff.SlopeResistance)
	exp := 1 + (sr-1)*2/(coeff.MaxCoeff-1)
	rejectProb := math.Min(1, math.Pow(s/y.Slopes.CritSlope, exp))
	return y.RNG.Float64() >= rejectProb
}

func (y *Year) interior() (rows, cols int) {
	return y.Z.Rows, y.Z.Cols
}

// urbanizeIfClear marks (i,j) urban in delta with color, provided it is
// currently non-urban in Z (delta is never read back within the year, so
// this only consults Z) and passes the slope test. It reports whether the
// pixel was urbanized.
func (y *Year) urbanizeIfClear(i, j int, color sim.Pixel) bool {
	if !y.Z.InBounds(i, j) {
		return false
	}
	if sim.Urban(y.Z.At(i, j)) {
		return false
	}
	if !y.slopeTest(i, j) {
		return false
	}
	y.Delta.Set(i, j, color)
	return true
}

// Breed is Rule 2 (§4.5): each Rule-1 seed independently attempts
// spreading-centre birth with probability breed/100.
func Breed(y *Year, seeds []seedPoint) {
	breedProb := y.Coeffs.Current(coeff.Breed) / 100
	for _, seed := range seeds {
		if y.RNG.Float64() >= breedProb {
			continue
		}
		// Spreading-centre promotion ("if at least two of those three
		// succeed") has no separate state to track: Rule 3 already scans
		// every urban Z pixel by neighbour count each year, so a promoted
		// seed is picked up automatically once Merge folds delta into Z.
		for attempt := 0; attempt < 3; attempt++ {
			ni, nj := grid.RandomNeighbor(y.RNG, seed.i, seed.j)
			y.urbanizeIfClear(ni, nj, sim.RulePhase(2))
		}
	}
}

type seedPoint struct{ i, j int }

// DiffusionSeeds runs Rule 1 and returns the coordinates it urbanized
// (attempts that failed the urban or slope test are not included), for
// Breed to consume (§4.5: "Of the pixels seeded in Rule 1").
func DiffusionSeeds(y *Year) []seedPoint {
	rows, cols := y.interior()
	diag := math.Sqrt(float64(rows*rows + cols*cols))
	kd := int(math.Floor(y.Coeffs.Current(coeff.Diffusion) * diag / 8))

	seeds := make([]seedPoint, 0, kd)
	for n := 0; n < kd; n++ {
		i := 1 + y.RNG.Intn(rows-2)
		j := 1 + y.RNG.Intn(cols-2)
		if y.urbanizeIfClear(i, j, sim.RulePhase(1)) {
			seeds = append(seeds, seedPoint{i, j})
		}
	}
	return seeds
}

// EdgeGrowth is Rule 3 (§4.5): every urban Z pixel with 3-7 urban
// eight-neighbours attempts, with probability spread/100, to urbanize one
// random non-urban neighbour.
func EdgeGrowth(y *Year) {
	spreadProb := y.Coeffs.Current(coeff.Spread) / 100
	for i := 1; i < y.Z.Rows-1; i++ {
		for j := 1; j < y.Z.Cols-1; j++ {
			if !sim.Urban(y.Z.At(i, j)) {
				continue
			}
			n := grid.CountNeighbors(y.Z, i, j, grid.GE, sim.Phase0G)
			if n < 3 || n > 7 {
				continue
			}
			if y.RNG.Float64() >= spreadProb {
				continue
			}
			ni, nj := grid.RandomNeighbor(y.RNG, i, j)
			y.urbanizeIfClear(ni, nj, sim.RulePhase(3))
		}
	}
}

// RoadGrowth is Rule 4 (§4.5): for each pixel urbanized earlier this year,
// attempt a road search then a road walk, with probability breed/100.
func RoadGrowth(y *Year, seededThisYear []seedPoint) {
	rows, cols := y.interior()
	breedProb := y.Coeffs.Current(coeff.Breed) / 100
	r := int(math.Floor(y.Coeffs.Current(coeff.RoadGravity) * float64(rows+cols) / 16))
	if r <= 0 {
		return
	}

	for _, seed := range seededThisYear {
		if y.RNG.Float64() >= breedProb {
			continue
		}

		i, j := seed.i, seed.j
		foundRoad := false
		for step := 0; step < r; step++ {
			i, j = grid.RandomNeighbor(y.RNG, i, j)
			if y.Road.At(i, j) > 0 {
				foundRoad = true
				break
			}
		}
		if !foundRoad {
			continue
		}

		walkLen := r / 5
		if walkLen < 4 {
			walkLen = 4
		}
		for step := 0; step < walkLen; step++ {
			ni, nj := grid.RandomNeighbor(y.RNG, i, j)
			if y.Road.At(ni, nj) == 0 {
				break
			}
			i, j = ni, nj
		}

		ti, tj := grid.RandomNeighbor(y.RNG, i, j)
		if y.urbanizeIfClear(ti, tj, sim.RulePhase(4)) {
			for attempt := 0; attempt < 2; attempt++ {
				oi, oj := grid.RandomNeighbor(y.RNG, ti, tj)
				y.urbanizeIfClear(oi, oj, sim.RulePhase(5))
			}
		}
	}
}

// Merge is the end-of-year merge (§4.5): z[i] <- max(z[i], delta[i]),
// returns the count of non-zero delta pixels (num_growth_pix), and clears
// delta for the next year.
func Merge(y *Year) int {
	growthPix := 0
	for i := range y.Delta.Pix {
		if y.Delta.Pix[i] > 0 {
			growthPix++
			if y.Delta.Pix[i] > y.Z.Pix[i] {
				y.Z.Pix[i] = y.Delta.Pix[i]
			}
			y.Delta.Pix[i] = 0
		}
	}
	return growthPix
}

// Step runs all five growth rules for one year, in strict order (§4.5
// "Ordering: Rules 1 -> 2 -> 3 -> 4 strictly"), and performs the
// end-of-year merge. It returns num_growth_pix.
func Step(y *Year) int {
	seeds := DiffusionSeeds(y)
	Breed(y, seeds)
	EdgeGrowth(y)
	var grown []seedPoint
	for i := 0; i < y.Delta.Rows; i++ {
		for j := 0; j < y.Delta.Cols; j++ {
			if y.Delta.At(i, j) > 0 {
				grown = append(grown, seedPoint{i, j})
			}
		}
	}
	RoadGrowth(y, grown)
	return Merge(y)
}
