package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
)

func TestEdgeCountCountsOnlyBoundaryPixels(t *testing.T) {
	z := grid.New(5, 5)
	// A solid 3x3 urban block: only its ring pixels border non-urban cells.
	for i := 1; i <= 3; i++ {
		for j := 1; j <= 3; j++ {
			z.Set(i, j, sim.Phase0G)
		}
	}
	require.Equal(t, 8, edgeCount(z))
}

func TestClusterStatsSeparatesDisjointBlobs(t *testing.T) {
	z := grid.New(10, 10)
	z.Set(1, 1, sim.Phase0G)
	z.Set(1, 2, sim.Phase0G)
	z.Set(8, 8, sim.Phase0G)

	count, meanSize := clusterStats(z)
	require.Equal(t, 2, count)
	require.InDelta(t, 1.5, meanSize, 1e-9)
}

func TestClusterStatsEmptyGridIsZero(t *testing.T) {
	z := grid.New(4, 4)
	count, meanSize := clusterStats(z)
	require.Zero(t, count)
	require.Zero(t, meanSize)
}

func TestCentroidOfSinglePixelIsItself(t *testing.T) {
	z := grid.New(10, 10)
	z.Set(3, 7, sim.Phase0G)
	xMean, yMean, radStd := centroid(z)
	require.Equal(t, 7.0, xMean)
	require.Equal(t, 3.0, yMean)
	require.Zero(t, radStd)
}

func TestMeanSlopeOnlyAveragesUrbanPixels(t *testing.T) {
	z := grid.New(3, 3)
	slope := grid.New(3, 3)
	z.Set(0, 0, sim.Phase0G)
	z.Set(1, 1, sim.Phase0G)
	slope.Set(0, 0, 10)
	slope.Set(1, 1, 20)
	slope.Set(2, 2, 90) // not urban, must not count
	require.InDelta(t, 15.0, meanSlope(slope, z), 1e-9)
}

func TestLeeSalleePerfectMatchIsOne(t *testing.T) {
	simulated := grid.New(4, 4)
	control := grid.New(4, 4)
	simulated.Set(1, 1, sim.Phase0G)
	control.Set(1, 1, sim.Phase0G)
	require.Equal(t, 1.0, leeSallee(simulated, control))
}

func TestLeeSalleeNoControlIsZero(t *testing.T) {
	simulated := grid.New(4, 4)
	require.Zero(t, leeSallee(simulated, nil))
}

func TestLeeSalleePartialOverlap(t *testing.T) {
	simulated := grid.New(4, 4)
	control := grid.New(4, 4)
	simulated.Set(0, 0, sim.Phase0G)
	simulated.Set(0, 1, sim.Phase0G)
	control.Set(0, 1, sim.Phase0G)
	control.Set(0, 2, sim.Phase0G)
	// intersection = {(0,1)} = 1, union = {(0,0),(0,1),(0,2)} = 3.
	require.InDelta(t, 1.0/3.0, leeSallee(simulated, control), 1e-9)
}

func TestLandUseRatioNoGridIsZero(t *testing.T) {
	z := grid.New(3, 3)
	z.Set(0, 0, sim.Phase0G)
	require.Zero(t, landUseRatio(nil, z, landUseClass1))
}

func TestLandUseRatioComputesFraction(t *testing.T) {
	z := grid.New(3, 3)
	landuse := grid.New(3, 3)
	z.Set(0, 0, sim.Phase0G)
	z.Set(0, 1, sim.Phase0G)
	landuse.Set(0, 0, landUseClass1)
	landuse.Set(0, 1, landUseClass2)
	require.InDelta(t, 0.5, landUseRatio(landuse, z, landUseClass1), 1e-9)
	require.InDelta(t, 0.5, landUseRatio(landuse, z, landUseClass2), 1e-9)
}
