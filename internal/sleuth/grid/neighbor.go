package grid

// offsets enumerates the eight-neighbour walk in the fixed order the spec
// and the reference implementation both use: NW, W, SW, S, SE, E, NE, N.
// Grounded on utilities.c:util_get_neighbor / util_get_next_neighbor, whose
// row[]/col[] tables are reproduced here verbatim.
var offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1}, {1, 0},
	{1, 1}, {0, 1}, {-1, 1}, {-1, 0},
}

// IntSource is the subset of rng.Source a spatial primitive needs: a
// uniform integer draw. Declared locally so that this package does not
// import the rng package and keeps its dependency surface to the standard
// library.
type IntSource interface {
	Intn(n int) int
}

// RandomNeighbor picks uniformly among the eight offsets and returns the
// resulting coordinate. Ties are broken by a single draw, not by scanning
// all eight (§4.5 "re-drawing on a single failure rather than scanning all
// eight").
func RandomNeighbor(src IntSource, i, j int) (int, int) {
	idx := src.Intn(8)
	return i + offsets[idx][0], j + offsets[idx][1]
}

// NeighborWalker is an explicit, caller-owned iterator over the eight
// neighbour offsets, replacing the source's process-wide `static int
// last_index` (DESIGN NOTES §9: that hidden state coupled unrelated call
// sites across the program). A zero-value NeighborWalker is positioned at
// offset 0, so its first Next() yields offset 1; use NewNeighborWalker to
// start at offset 0.
type NeighborWalker struct {
	last int
}

// NewNeighborWalker returns a walker whose first Next() yields offset 0.
func NewNeighborWalker() *NeighborWalker {
	return &NeighborWalker{last: -1}
}

// Next advances to the next offset in sequence, wrapping modulo 8, and
// returns the resulting coordinate.
func (w *NeighborWalker) Next(i, j int) (int, int) {
	w.last = (w.last + 1) % 8
	return i + offsets[w.last][0], j + offsets[w.last][1]
}

// At jumps to an explicit offset index (0-7) without advancing the
// sequence, and remembers it as the walker's position for the next Next().
func (w *NeighborWalker) At(i, j, index int) (int, int) {
	if index < 0 || index > 7 {
		panic("grid: neighbor index out of range")
	}
	w.last = index
	return i + offsets[index][0], j + offsets[index][1]
}

// Neighbors returns the eight neighbour coordinates of (i,j) in the same
// fixed walk order as offsets, for callers outside this package that need
// to enumerate all eight directly (connected-component labeling).
// Grounded on utilities.c:util_get_neighbor.
func Neighbors(i, j int) [8][2]int {
	var out [8][2]int
	for k, o := range offsets {
		out[k] = [2]int{i + o[0], j + o[1]}
	}
	return out
}

// CountNeighbors tallies the eight-neighbour pixels of (i,j) satisfying
// "neighbor OP value". Out-of-bounds neighbours read as 0 (border
// discipline), matching utilities.c:util_count_neighbors.
func CountNeighbors(g *Grid, i, j int, cmp Comparator, value uint8) int {
	n := 0
	for _, o := range offsets {
		if cmp.Match(g.At(i+o[0], j+o[1]), value) {
			n++
		}
	}
	return n
}
