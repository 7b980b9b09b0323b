package grid

// Copy blits source into target. Both grids must share shape.
// Grounded on utilities.c:util_copy_grid.
func Copy(target, source *Grid) {
	copy(target.Pix, source.Pix)
}

// Fill sets every pixel of g to value.
// Grounded on utilities.c:util_init_grid.
func Fill(g *Grid, value uint8) {
	for i := range g.Pix {
		g.Pix[i] = value
	}
}

// ConditionalMap sets target[i] = setValue for every i where
// source[i] OP cmpValue holds; non-matching pixels are left untouched.
// Grounded on utilities.c:util_condition_gif.
func ConditionalMap(source *Grid, cmp Comparator, cmpValue uint8, target *Grid, setValue uint8) {
	for i, v := range source.Pix {
		if cmp.Match(v, cmpValue) {
			target.Pix[i] = setValue
		}
	}
}

// Count tallies pixels satisfying "pixel OP value".
// Grounded on utilities.c:util_count_pixels.
func Count(g *Grid, cmp Comparator, value uint8) int {
	n := 0
	for _, v := range g.Pix {
		if cmp.Match(v, value) {
			n++
		}
	}
	return n
}

// IntersectionCount tallies indices where a[i] == b[i].
// Grounded on utilities.c:util_img_intersection.
func IntersectionCount(a, b *Grid) int {
	n := 0
	for i, v := range a.Pix {
		if v == b.Pix[i] {
			n++
		}
	}
	return n
}

// Overlay computes out[i] = top[i] > 0 ? top[i] : bottom[i]. out may alias
// bottom (it is read before being written at each index).
// Grounded on utilities.c:util_overlay.
func Overlay(top, bottom, out *Grid) {
	for i, t := range top.Pix {
		if t > 0 {
			out.Pix[i] = t
		} else {
			out.Pix[i] = bottom.Pix[i]
		}
	}
}

// Bucket is one interval of a BucketRemap table: pixels in [Lo, Hi] map to
// Idx; the table is consulted in order and the first match wins.
type Bucket struct {
	Lo, Hi uint8
	Idx    uint8
}

// BucketRemap maps every source pixel through the first matching bucket
// interval into dst; pixels matching no interval pass through unchanged.
// Grounded on utilities.c:util_map_gridpts_2_index.
func BucketRemap(source *Grid, buckets []Bucket, dst *Grid) {
	for i, v := range source.Pix {
		dst.Pix[i] = v
		for _, b := range buckets {
			if v >= b.Lo && v <= b.Hi {
				dst.Pix[i] = b.Idx
				break
			}
		}
	}
}
