// Package grid implements the fixed-size raster and the eight-neighbour
// spatial primitives every growth rule is built from (spec §3, §4.4). All
// grids sharing a simulation have the same shape, established from the
// first input raster loaded at boot.
package grid

import "fmt"

// Grid is a fixed-size, row-major raster of 8-bit pixels. A reserved
// 1-pixel border is never addressed by growth rules directly; neighbour
// queries that fall outside the grid are the caller's responsibility
// (§4.4 "border discipline") and are treated as absent (count as 0).
type Grid struct {
	Rows, Cols int
	Pix        []uint8
}

// New allocates a zeroed grid of the given shape.
func New(rows, cols int) *Grid {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("grid: invalid shape %dx%d", rows, cols))
	}
	return &Grid{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols)}
}

// TotalPixels is nrows*ncols (§4.2).
func (g *Grid) TotalPixels() int { return g.Rows * g.Cols }

// InBounds reports whether (i,j) addresses a real cell.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.Rows && j >= 0 && j < g.Cols
}

// offset returns the row-major index of (i,j); callers must have already
// checked InBounds.
func (g *Grid) offset(i, j int) int { return i*g.Cols + j }

// At returns the pixel at (i,j), or 0 if out of bounds (border discipline).
func (g *Grid) At(i, j int) uint8 {
	if !g.InBounds(i, j) {
		return 0
	}
	return g.Pix[g.offset(i, j)]
}

// Set writes the pixel at (i,j). Out-of-bounds writes are silently ignored;
// callers that must not cross the border check InBounds themselves.
func (g *Grid) Set(i, j int, v uint8) {
	if !g.InBounds(i, j) {
		return
	}
	g.Pix[g.offset(i, j)] = v
}

// SameShape reports whether two grids share (Rows, Cols) — the invariant
// every input raster must satisfy against the first one loaded (§7 shape
// mismatch is fatal at load).
func SameShape(a, b *Grid) bool {
	return a.Rows == b.Rows && a.Cols == b.Cols
}
