package calibrate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
)

func fixedSweepCoeffs(t *testing.T) *coeff.Coefficients {
	t.Helper()
	c := coeff.New()
	require.NoError(t, c.SetSweep(coeff.Diffusion, 10, 20, 10))
	require.NoError(t, c.SetSweep(coeff.Breed, 5, 5, 1))
	require.NoError(t, c.SetSweep(coeff.Spread, 5, 5, 1))
	require.NoError(t, c.SetSweep(coeff.SlopeResistance, 5, 5, 1))
	require.NoError(t, c.SetSweep(coeff.RoadGravity, 5, 5, 1))
	return c
}

func TestEnumerateProducesCartesianProduct(t *testing.T) {
	c := fixedSweepCoeffs(t)
	combos := Enumerate(c)
	// diffusion has two values (10, 20); every other coefficient has one.
	require.Len(t, combos, 2)
	require.Equal(t, 10, combos[0].Diffusion)
	require.Equal(t, 20, combos[1].Diffusion)
}

func TestResumeIndexFindsCombination(t *testing.T) {
	c := fixedSweepCoeffs(t)
	combos := Enumerate(c)
	idx := ResumeIndex(combos, combos[1])
	require.Equal(t, 1, idx)
}

func TestResumeIndexNotFound(t *testing.T) {
	c := fixedSweepCoeffs(t)
	combos := Enumerate(c)
	idx := ResumeIndex(combos, Combination{Diffusion: 999})
	require.Equal(t, -1, idx)
}

// S6: Calibration sweep of diffusion={10,20} x all-others=fixed, 2 MC
// iterations. Expected: 2 rows in stats file, 12 r^2 values each in
// [-inf, 1].
func TestScenarioS6SweepProducesOneRecordPerCombination(t *testing.T) {
	c := fixedSweepCoeffs(t)
	combos := Enumerate(c)

	buildYear := func(src rng.Source, c *coeff.Coefficients) (*growth.Year, func()) {
		y := &growth.Year{
			Z:        grid.New(8, 8),
			Delta:    grid.New(8, 8),
			Road:     grid.New(8, 8),
			Slope:    grid.New(8, 8),
			Excluded: grid.New(8, 8),
			Coeffs:   c,
			RNG:      src,
		}
		y.Z.Set(4, 4, sim.Phase0G)
		return y, nil
	}

	observed := map[int][12]float64{
		1991: {1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}

	var records []Record
	err := Sweep(combos, 2, 1, coeff.SelfModifyConfig{CriticalHigh: 50, CriticalLow: 1, Boom: 1.1, Bust: 0.9},
		buildYear, 1990, 1992, []int{1991}, nil, observed, func(r Record) error {
			records = append(records, r)
			return nil
		})

	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		require.NotEmpty(t, r.RunUUID)
		for _, v := range r.RSquared {
			require.LessOrEqual(t, v, 1.0)
		}
	}
}
