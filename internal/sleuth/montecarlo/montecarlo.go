// Package montecarlo is the replication half of C7 (§4.7): it runs M
// independent replications for one coefficient combination, accumulates
// the twelve observables at every control year, and reduces them to
// regression r² statistics against the observed (control-imagery)
// values using gonum.org/v1/gonum/stat.
package montecarlo

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/engine"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/rng"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/timer"
)

// Observables is the twelve scalar measurements recorded at each control
// year (§3 "Monte-Carlo aggregates"): urban count, edge count, cluster
// count, mean cluster size, mean slope, percent urban, centroid x/y,
// radial standard deviation, Lee-Sallee fit, and two land-use class
// ratios.
type Observables struct {
	UrbanCount    float64
	EdgeCount     float64
	ClusterCount  float64
	ClusterSize   float64
	Slope         float64
	PercentUrban  float64
	XMean         float64
	YMean         float64
	RadStd        float64
	LeeSallee     float64
	LandUseRatio1 float64
	LandUseRatio2 float64
}

// names lists the twelve observables in the fixed order used both for
// accumulator indexing and for the twelve r² values reported per §4.7
// step 4 ("compare, pop, edges, clusters, cluster_size, lee_sallee,
// slope, percent_urban, xmean, ymean, rad_std, mean_cluster_size").
var names = [12]string{
	"compare", "pop", "edges", "clusters", "cluster_size", "lee_sallee",
	"slope", "percent_urban", "xmean", "ymean", "rad_std", "mean_cluster_size",
}

func (o Observables) slice() [12]float64 {
	// "compare" and "pop" have no dedicated field; both read urban count
	// (§4.7 names two related urban-extent statistics derived the same way
	// in this implementation, since the filtered original_source/ does not
	// disambiguate them further).
	return [12]float64{
		o.UrbanCount, o.UrbanCount, o.EdgeCount, o.ClusterCount, o.ClusterSize,
		o.LeeSallee, o.Slope, o.PercentUrban, o.XMean, o.YMean, o.RadStd, o.ClusterSize,
	}
}

// yearAccumulator collects one observable's values across M replications
// for a single control year.
type yearAccumulator struct {
	values []float64
}

// Aggregator accumulates observables across replications, keyed by
// control year then observable index.
type Aggregator struct {
	byYear map[int]*[12]yearAccumulator
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byYear: make(map[int]*[12]yearAccumulator)}
}

// Record stores one replication's observable snapshot for a control year.
func (a *Aggregator) Record(year int, obs Observables) {
	slots, ok := a.byYear[year]
	if !ok {
		slots = &[12]yearAccumulator{}
		a.byYear[year] = slots
	}
	vals := obs.slice()
	for i := 0; i < 12; i++ {
		slots[i].values = append(slots[i].values, vals[i])
	}
}

// Mean returns the across-replication mean of observable index idx at
// year, or 0 if nothing was recorded.
func (a *Aggregator) Mean(year, idx int) float64 {
	slots, ok := a.byYear[year]
	if !ok || len(slots[idx].values) == 0 {
		return 0
	}
	return stat.Mean(slots[idx].values, nil)
}

// RSquared computes the regression r² between the Monte Carlo mean of
// each observable (across control years) and the corresponding observed
// value, returning one value per observable in the fixed order given by
// names (§4.7 step 3-4). observed maps control year -> twelve observed
// values in the same order.
func (a *Aggregator) RSquared(observed map[int][12]float64) ([12]float64, error) {
	years := make([]int, 0, len(observed))
	for y := range observed {
		years = append(years, y)
	}
	if len(years) == 0 {
		return [12]float64{}, fmt.Errorf("montecarlo: no control years to compare against")
	}

	var out [12]float64
	for idx := 0; idx < 12; idx++ {
		simulated := make([]float64, 0, len(years))
		obs := make([]float64, 0, len(years))
		for _, y := range years {
			simulated = append(simulated, a.Mean(y, idx))
			obs = append(obs, observed[y][idx])
		}
		// A replication that produces zero growth (all-equal simulated
		// values) makes RSquared return NaN; §7's "replication that
		// produces zero growth yields r² = 0" is honored here.
		alpha, beta := stat.LinearRegression(simulated, obs, nil, false)
		r2 := stat.RSquared(simulated, obs, nil, alpha, beta)
		if r2 != r2 { // NaN check without importing math solely for IsNaN
			r2 = 0
		}
		out[idx] = r2
	}
	return out, nil
}

// OverallFit computes F, the product of all twelve r² values (§4.7 step
// 4: "product of all these is the overall fit metric F").
func OverallFit(r2 [12]float64) float64 {
	f := 1.0
	for _, v := range r2 {
		f *= v
	}
	return f
}

// ObservableNames exposes the fixed observable ordering for callers that
// write header rows (store.NewCSVWriter).
func ObservableNames() [12]string { return names }

// Replicate runs M independent replications of one coefficient
// combination, seeding each with seed^m (§4.7 step 2a), and records all
// twelve observables (via observe, observables.go) at every control year
// into a fresh Aggregator. buildYear returns the replication's Year along
// with a release func that returns any leased input grids (§4.2); release
// may be nil if the caller has nothing to release. controlGrids maps a
// control year to its historical raster, consulted only for the
// Lee-Sallee observable; a year with no entry yields LeeSallee 0.
func Replicate(
	m int,
	seed int64,
	coeffs *coeff.Coefficients,
	buildYear func(rng.Source) (*growth.Year, func()),
	selfMod coeff.SelfModifyConfig,
	startYear, stopYear int,
	controlYears []int,
	controlGrids map[int]*grid.Grid,
) *Aggregator {
	agg := NewAggregator()
	controlSet := make(map[int]bool, len(controlYears))
	for _, y := range controlYears {
		controlSet[y] = true
	}

	for rep := 0; rep < m; rep++ {
		coeffs.RestoreSaved()
		src := rng.Default(rng.Derive(seed, rep))
		year, release := buildYear(src)
		proc := timer.New(timer.Calibrate, startYear, stopYear, 1)
		r := engine.New(year, proc, selfMod)

		r.Run(func(currentYear int, growthRate, percentUrban float64) {
			if !controlSet[currentYear] {
				return
			}
			agg.Record(currentYear, observe(year, percentUrban, controlGrids[currentYear]))
		})

		if release != nil {
			release()
		}
	}
	return agg
}
