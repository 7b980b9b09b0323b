package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtOutOfBoundsIsZero(t *testing.T) {
	g := New(4, 4)
	g.Set(0, 0, 9)
	require.Equal(t, uint8(0), g.At(-1, 0))
	require.Equal(t, uint8(0), g.At(0, -1))
	require.Equal(t, uint8(0), g.At(4, 0))
	require.Equal(t, uint8(9), g.At(0, 0))
}

func TestCopyAndFill(t *testing.T) {
	src := New(3, 3)
	Fill(src, 7)
	dst := New(3, 3)
	Copy(dst, src)
	for _, v := range dst.Pix {
		require.Equal(t, uint8(7), v)
	}
}

func TestConditionalMap(t *testing.T) {
	src := New(1, 4)
	src.Pix = []uint8{1, 5, 10, 20}
	dst := New(1, 4)
	ConditionalMap(src, GE, 10, dst, 99)
	require.Equal(t, []uint8{0, 0, 99, 99}, dst.Pix)
}

func TestCountAndIntersection(t *testing.T) {
	g := New(1, 4)
	g.Pix = []uint8{0, 1, 1, 2}
	require.Equal(t, 2, Count(g, EQ, 1))

	a := New(1, 4)
	a.Pix = []uint8{1, 2, 3, 4}
	b := New(1, 4)
	b.Pix = []uint8{1, 9, 3, 9}
	require.Equal(t, 2, IntersectionCount(a, b))
}

func TestOverlayIdempotence(t *testing.T) {
	a := New(1, 4)
	a.Pix = []uint8{0, 1, 2, 3}
	zero := New(1, 4)
	out := New(1, 4)

	Overlay(zero, a, out)
	require.Equal(t, a.Pix, out.Pix)

	Overlay(a, a, out)
	require.Equal(t, a.Pix, out.Pix)
}

func TestBucketRemap(t *testing.T) {
	src := New(1, 5)
	src.Pix = []uint8{0, 5, 15, 25, 100}
	dst := New(1, 5)
	BucketRemap(src, []Bucket{
		{Lo: 1, Hi: 10, Idx: 1},
		{Lo: 11, Hi: 20, Idx: 2},
	}, dst)
	require.Equal(t, []uint8{0, 1, 2, 25, 100}, dst.Pix)
}

func TestCountNeighborsBorderIsZero(t *testing.T) {
	g := New(3, 3)
	Fill(g, 5)
	require.Equal(t, 8, CountNeighbors(g, 1, 1, EQ, 5))
	require.Equal(t, 3, CountNeighbors(g, 0, 0, EQ, 5))
}

type fixedSource struct{ n int }

func (f fixedSource) Intn(n int) int { return f.n % n }

func TestRandomNeighbor(t *testing.T) {
	for idx := 0; idx < 8; idx++ {
		di, dj := RandomNeighbor(fixedSource{n: idx}, 5, 5)
		require.Equal(t, 5+offsets[idx][0], di)
		require.Equal(t, 5+offsets[idx][1], dj)
	}
}

func TestNeighborWalkerSequenceWraps(t *testing.T) {
	w := NewNeighborWalker()
	var seen []int
	for k := 0; k < 9; k++ {
		i, j := w.Next(0, 0)
		seen = append(seen, i*10+j)
	}
	require.Equal(t, seen[0], seen[8], "sequence should wrap after 8 steps")
}

func TestNeighborWalkerAtSetsPosition(t *testing.T) {
	w := NewNeighborWalker()
	i, j := w.At(10, 10, 3)
	require.Equal(t, 10+offsets[3][0], i)
	require.Equal(t, 10+offsets[3][1], j)
	// Next() continues from index 3.
	i2, j2 := w.Next(10, 10)
	require.Equal(t, 10+offsets[4][0], i2)
	require.Equal(t, 10+offsets[4][1], j2)
}

func TestNeighborsMatchesOffsetOrder(t *testing.T) {
	n := Neighbors(5, 5)
	for k, o := range offsets {
		require.Equal(t, [2]int{5 + o[0], 5 + o[1]}, n[k])
	}
}
