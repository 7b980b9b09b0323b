package montecarlo

import (
	"math"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/growth"
	"github.com/sleuthgrowth/sleuth/internal/sleuth/sim"
)

// observe reduces one year's growth.Year grids to the twelve observables
// (§4.7 step 1: "at each control year, measure..."). percentUrban is
// already computed by engine.Replication.Step and passed through rather
// than recomputed here. control is the historical raster for the same
// year, used only for the Lee-Sallee fit; it may be nil if no
// control-year imagery was loaded, in which case LeeSallee is left 0.
func observe(y *growth.Year, percentUrban float64, control *grid.Grid) Observables {
	urbanCount := grid.Count(y.Z, grid.GE, sim.Phase0G)
	xMean, yMean, radStd := centroid(y.Z)
	clusterCount, clusterSize := clusterStats(y.Z)

	return Observables{
		UrbanCount:    float64(urbanCount),
		EdgeCount:     float64(edgeCount(y.Z)),
		ClusterCount:  float64(clusterCount),
		ClusterSize:   clusterSize,
		Slope:         meanSlope(y.Slope, y.Z),
		PercentUrban:  percentUrban,
		XMean:         xMean,
		YMean:         yMean,
		RadStd:        radStd,
		LeeSallee:     leeSallee(y.Z, control),
		LandUseRatio1: landUseRatio(y.Landuse, y.Z, landUseClass1),
		LandUseRatio2: landUseRatio(y.Landuse, y.Z, landUseClass2),
	}
}

// edgeCount tallies urban pixels with at least one non-urban
// eight-neighbour (§3 "edge pixel": a growth front cell, not an interior
// one). Grounded on utilities.c:util_count_neighbors via grid.CountNeighbors.
func edgeCount(z *grid.Grid) int {
	n := 0
	for i := 0; i < z.Rows; i++ {
		for j := 0; j < z.Cols; j++ {
			if !sim.Urban(z.At(i, j)) {
				continue
			}
			if grid.CountNeighbors(z, i, j, grid.LT, sim.Phase0G) > 0 {
				n++
			}
		}
	}
	return n
}

// clusterStats labels the urban mask's eight-connected components with a
// flood fill over grid.Neighbors and returns the component count and the
// mean component size (pixels per cluster). Grounded on utilities.c's
// neighbor-walk contract; there is no connected-component routine in
// original_source/'s filtered file set, so the walk order and
// 8-connectivity rule are reused directly from grid.Neighbors rather than
// inventing a different adjacency.
func clusterStats(z *grid.Grid) (count int, meanSize float64) {
	rows, cols := z.Rows, z.Cols
	visited := make([]bool, rows*cols)
	var totalPixels int

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			if visited[idx] || !sim.Urban(z.At(i, j)) {
				continue
			}
			count++
			size := 0
			stack := [][2]int{{i, j}}
			visited[idx] = true
			for len(stack) > 0 {
				last := len(stack) - 1
				ci, cj := stack[last][0], stack[last][1]
				stack = stack[:last]
				size++
				for _, nb := range grid.Neighbors(ci, cj) {
					ni, nj := nb[0], nb[1]
					if !z.InBounds(ni, nj) {
						continue
					}
					nidx := ni*cols + nj
					if visited[nidx] || !sim.Urban(z.At(ni, nj)) {
						continue
					}
					visited[nidx] = true
					stack = append(stack, [2]int{ni, nj})
				}
			}
			totalPixels += size
		}
	}
	if count == 0 {
		return 0, 0
	}
	return count, float64(totalPixels) / float64(count)
}

// meanSlope averages the Slope grid over every currently-urban Z pixel.
func meanSlope(slope, z *grid.Grid) float64 {
	var sum float64
	var n int
	for i := 0; i < z.Rows; i++ {
		for j := 0; j < z.Cols; j++ {
			if !sim.Urban(z.At(i, j)) {
				continue
			}
			sum += float64(slope.At(i, j))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// centroid returns the mean column (x), mean row (y), and the root mean
// square of each urban pixel's radial distance from that centroid
// (§3 "spatial metrics": compactness/dispersion of the urbanized mass).
func centroid(z *grid.Grid) (xMean, yMean, radStd float64) {
	var sumI, sumJ float64
	var n int
	for i := 0; i < z.Rows; i++ {
		for j := 0; j < z.Cols; j++ {
			if !sim.Urban(z.At(i, j)) {
				continue
			}
			sumI += float64(i)
			sumJ += float64(j)
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	yMean = sumI / float64(n)
	xMean = sumJ / float64(n)

	var sumSq float64
	for i := 0; i < z.Rows; i++ {
		for j := 0; j < z.Cols; j++ {
			if !sim.Urban(z.At(i, j)) {
				continue
			}
			di, dj := float64(i)-yMean, float64(j)-xMean
			sumSq += di*di + dj*dj
		}
	}
	radStd = math.Sqrt(sumSq / float64(n))
	return xMean, yMean, radStd
}

// leeSallee computes the Lee-Sallee shape-fit index between the
// simulated urban mask and a historical control-year raster: the ratio of
// the two masks' urban intersection to their urban union. Returns 0 when
// no control raster is available for the year (§7: an unmeasurable
// observable reads as 0, the same convention RSquared already applies to
// a zero-growth replication).
//
// The intersection is computed with grid.IntersectionCount by giving the
// non-urban pixels of each mask distinct sentinel values (0 and 2) so
// equality can only hold where both masks are urban (1 == 1); the union
// then follows from inclusion-exclusion.
func leeSallee(simulated, control *grid.Grid) float64 {
	if control == nil || !grid.SameShape(simulated, control) {
		return 0
	}
	maskA := grid.New(simulated.Rows, simulated.Cols)
	grid.ConditionalMap(simulated, grid.GE, sim.Phase0G, maskA, 1)
	maskB := grid.New(control.Rows, control.Cols)
	grid.Fill(maskB, 2)
	grid.ConditionalMap(control, grid.GE, sim.Phase0G, maskB, 1)

	intersection := grid.IntersectionCount(maskA, maskB)
	urbanA := grid.Count(maskA, grid.EQ, 1)
	urbanB := grid.Count(maskB, grid.EQ, 1)
	union := urbanA + urbanB - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

// landUseClass1 and landUseClass2 are the two land-use class codes the
// ratio observables track. scenario_obj.h's landuse_class_info/
// scen_GetLanduseClassType taxonomy (filtered into original_source/) names
// a per-scenario class table but no fixed codes; codes 1 and 2 are picked
// here as the two lowest non-background class indices, the same
// convention BucketRemap buckets already use for "first matching class
// wins" (§9 decision, documented in DESIGN.md).
const (
	landUseClass1 uint8 = 1
	landUseClass2 uint8 = 2
)

// landUseRatio is the fraction of currently-urbanized pixels whose
// original land-use grid reads as class. Returns 0 when no landuse grid
// was loaded for the scenario.
func landUseRatio(landuse, z *grid.Grid, class uint8) float64 {
	if landuse == nil {
		return 0
	}
	var urban, matching int
	for i := 0; i < z.Rows; i++ {
		for j := 0; j < z.Cols; j++ {
			if !sim.Urban(z.At(i, j)) {
				continue
			}
			urban++
			if landuse.At(i, j) == class {
				matching++
			}
		}
	}
	if urban == 0 {
		return 0
	}
	return float64(matching) / float64(urban)
}
