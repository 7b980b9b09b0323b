package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
)

func TestAggregatorMeanOfSingleRecord(t *testing.T) {
	a := NewAggregator()
	a.Record(1995, Observables{UrbanCount: 42, PercentUrban: 10})
	require.Equal(t, 42.0, a.Mean(1995, 0))
}

func TestAggregatorMeanAcrossReplications(t *testing.T) {
	a := NewAggregator()
	a.Record(1995, Observables{UrbanCount: 10})
	a.Record(1995, Observables{UrbanCount: 20})
	require.Equal(t, 15.0, a.Mean(1995, 0))
}

func TestAggregatorMeanUnknownYearIsZero(t *testing.T) {
	a := NewAggregator()
	require.Zero(t, a.Mean(2099, 0))
}

func TestRSquaredPerfectMatchIsOne(t *testing.T) {
	a := NewAggregator()
	a.Record(1990, Observables{UrbanCount: 10, PercentUrban: 5})
	a.Record(2000, Observables{UrbanCount: 20, PercentUrban: 10})

	observed := map[int][12]float64{
		1990: {10, 10, 0, 0, 0, 0, 0, 5, 0, 0, 0, 0},
		2000: {20, 20, 0, 0, 0, 0, 0, 10, 0, 0, 0, 0},
	}
	r2, err := a.RSquared(observed)
	require.NoError(t, err)
	require.InDelta(t, 1.0, r2[0], 1e-9)
}

func TestRSquaredNoControlYearsErrors(t *testing.T) {
	a := NewAggregator()
	_, err := a.RSquared(map[int][12]float64{})
	require.Error(t, err)
}

func TestOverallFitIsProduct(t *testing.T) {
	r2 := [12]float64{}
	for i := range r2 {
		r2[i] = 0.5
	}
	f := OverallFit(r2)
	require.InDelta(t, 0.5*0.5*0.5*0.5*0.5*0.5*0.5*0.5*0.5*0.5*0.5*0.5, f, 1e-9)
}

func TestReplicateRecordsControlYears(t *testing.T) {
	c := coeff.New()
	c.SetCurrent(coeff.Diffusion, 10)
	c.SetCurrent(coeff.Breed, 10)
	c.SetCurrent(coeff.Spread, 10)
	c.SetCurrent(coeff.SlopeResistance, 5)
	c.SetCurrent(coeff.RoadGravity, 5)
	c.SnapshotSaved()

	buildYear := func(src rng.Source) (*growth.Year, func()) {
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

	agg := Replicate(3, 1, c, buildYear,
		coeff.SelfModifyConfig{CriticalHigh: 50, CriticalLow: 1, Boom: 1.1, Bust: 0.9},
		1990, 1992, []int{1991}, nil)

	require.NotZero(t, agg.Mean(1991, 0))
}
