// Package sim holds the small set of pixel-value conventions shared by every
// layer of the growth engine: what counts as urban, how growth rules tag the
// pixels they create, and the excluded-layer sentinel.
package sim

// Pixel is an 8-bit raster sample. Its meaning depends on the grid role: a
// land-use class, an urbanization intensity/probability percent, a color
// index, or a slope percentage.
type Pixel = uint8

// PHASE0G is the base urban-seed color; PHASE1G..PHASE5G tag pixels
// urbanized by rules 1 through 4 (rule 4 produces two phases: the
// road-terminus pixel and its own neighbor) for diagnostic overlays.
const (
	Phase0G Pixel = 1
	Phase1G Pixel = 2
	Phase2G Pixel = 3
	Phase3G Pixel = 4
	Phase4G Pixel = 5
	Phase5G Pixel = 6
)

// Excluded marks a pixel that may never urbanize (§3 invariant 3). It lives
// on its own grid role, not the Z grid, so it does not share the phase
// color domain above.
const Excluded Pixel = 255

// Urban reports whether a pixel's value represents urbanized land. The
// data model (§3) defines URBAN as z[i] >= PHASE0G; values in [1,100) are
// growth probabilities used only during prediction averaging.
func Urban(p Pixel) bool {
	return p >= Phase0G
}

// RulePhase returns the diagnostic phase color for the given 1-based rule
// number (1=diffusion, 2=breed, 3=edge growth, 4=road growth terminus,
// 5=road growth neighbor).
func RulePhase(rule int) Pixel {
	switch rule {
	case 1:
		return Phase1G
	case 2:
		return Phase2G
	case 3:
		return Phase3G
	case 4:
		return Phase4G
	case 5:
		return Phase5G
	default:
		return Phase0G
	}
}
