package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/timer"
)

func newReplication(size int, seed int64) *Replication {
	c := coeff.New()
	c.SetCurrent(coeff.Diffusion, 20)
	c.SetCurrent(coeff.Breed, 30)
	c.SetCurrent(coeff.Spread, 40)
	c.SetCurrent(coeff.SlopeResistance, 10)
	c.SetCurrent(coeff.RoadGravity, 10)

	y := &growth.Year{
		Z:        grid.New(size, size),
		Delta:    grid.New(size, size),
		Road:     grid.New(size, size),
		Slope:    grid.New(size, size),
		Excluded: grid.New(size, size),
		Coeffs:   c,
		RNG:      rng.Default(seed),
	}
	y.Z.Set(size/2, size/2, sim.Phase0G)

	p := timer.New(timer.Test, 1990, 1995, 1)
	return New(y, p, coeff.SelfModifyConfig{CriticalHigh: 50, CriticalLow: 1, Boom: 1.1, Bust: 0.9})
}

func TestStepAdvancesTimer(t *testing.T) {
	r := newReplication(10, 1)
	startYear := r.Timer.CurrentYear
	r.Step()
	require.Equal(t, startYear+1, r.Timer.CurrentYear)
}

func TestStepWithNoRoadsYieldsZeroGrowthRate(t *testing.T) {
	r := newReplication(10, 1)
	gr, _ := r.Step()
	require.Zero(t, gr, "no road pixels must yield rate 0, not a division error")
}

func TestRunStopsAtStopYear(t *testing.T) {
	r := newReplication(10, 1)
	years := 0
	r.Run(func(year int, gr, pu float64) { years++ })
	require.Equal(t, 5, years)
	require.True(t, r.Timer.Done())
}

func TestExclusionExcludesFromDenominator(t *testing.T) {
	c := coeff.New()
	c.SetCurrent(coeff.SlopeResistance, 10)

	y := &growth.Year{
		Z:        grid.New(10, 10),
		Delta:    grid.New(10, 10),
		Road:     grid.New(10, 10),
		Slope:    grid.New(10, 10),
		Excluded: grid.New(10, 10),
		Coeffs:   c,
		RNG:      rng.Default(1),
	}
	y.Z.Set(5, 5, sim.Phase0G)
	grid.Fill(y.Excluded, sim.Excluded)
	y.Excluded.Set(5, 5, 0) // the seed pixel itself stays urbanizable

	p := timer.New(timer.Test, 1990, 1991, 1)
	r := New(y, p, coeff.SelfModifyConfig{CriticalHigh: 50, CriticalLow: 1, Boom: 1.1, Bust: 0.9})

	require.Equal(t, 1, r.totalUrbanizablePixels())
}
