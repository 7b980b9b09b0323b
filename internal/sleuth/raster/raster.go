// Package raster is the boundary between the engine and image files (§6,
// out of scope for the core's own design): 8-bit palettized input grids and
// the probability-image outputs. It is one of the packages in this
// repository built on the standard library alone (see DESIGN.md) because palettized
// GIF is exactly what §6 specifies and none of the pack's third-party
// dependencies provide a GIF codec beyond image/gif.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
)

// ColorTable is a palette of up to 256 entries, keyed by pixel value.
type ColorTable []color.RGBA

// ProbabilityColorTable is the 1-100 probability-to-color ramp used to
// render prediction-mode output rasters, grounded on output.c's
// color_GetColortable(PROBABILITY_COLORTABLE): a green-to-red ramp with
// index 0 reserved for background and the top index for seed pixels.
func ProbabilityColorTable() ColorTable {
	ct := make(ColorTable, 256)
	ct[0] = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	for i := 1; i <= 100; i++ {
		t := float64(i) / 100
		ct[i] = color.RGBA{
			R: uint8(255 * t),
			G: uint8(255 * (1 - t)),
			B: 0,
			A: 255,
		}
	}
	ct[255] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	return ct
}

// Annotation is optional overlay text (§6: "overlaid with... a date
// annotation"), burned into the encoded image's top-left corner as
// pixels (image/gif carries no text-comment field), rather than into the
// raw *grid.Grid the caller passed in.
type Annotation struct {
	Text string
}

// annotationColorIndex is the palette slot Encode reserves for burned-in
// annotation pixels. ProbabilityColorTable only populates indices
// 0, 1-100, and 255 (§6), leaving 254 free for this purpose; a caller
// using a different color table that happens to assign 254 will simply
// have its annotation blend in, which is a cosmetic concern, not a
// correctness one.
const annotationColorIndex = 254

// digitFont is a 3x5 bitmap font for '0'-'9', each row a 3-bit column
// mask (MSB first), used only to burn Annotation.Text into the encoded
// image. No pack dependency renders text into raster pixels (see
// DESIGN.md); a fixed-width digit font is the smallest faithful
// implementation of §6's date-annotation requirement.
var digitFont = map[byte][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
}

// burnAnnotation draws ann.Text left to right in the image's top-left
// corner, one pixel of padding between glyphs. Runes outside '0'-'9'
// (no caller passes any) are skipped rather than rejected, advancing the
// cursor as if a blank glyph had been drawn.
func burnAnnotation(img *image.Paletted, ann Annotation) {
	x := 1
	for i := 0; i < len(ann.Text); i++ {
		glyph, ok := digitFont[ann.Text[i]]
		if ok {
			for row := 0; row < 5; row++ {
				for col := 0; col < 3; col++ {
					if glyph[row]&(1<<uint(2-col)) != 0 {
						img.SetColorIndex(x+col, 1+row, annotationColorIndex)
					}
				}
			}
		}
		x += 4
	}
}

// Codec is the raster I/O boundary interface (§6).
type Codec interface {
	Decode(r io.Reader) (*grid.Grid, ColorTable, error)
	Encode(w io.Writer, g *grid.Grid, ct ColorTable, ann Annotation) error
}

// GIFCodec implements Codec over palettized GIF, the format §6 specifies
// for input rasters and probability-image output.
type GIFCodec struct{}

func (GIFCodec) Decode(r io.Reader) (*grid.Grid, ColorTable, error) {
	img, err := gif.Decode(r)
	if err != nil {
		return nil, nil, fmt.Errorf("raster: decode: %w", err)
	}
	paletted, ok := img.(*image.Paletted)
	if !ok {
		return nil, nil, fmt.Errorf("raster: decode: input is not a palettized image")
	}

	b := paletted.Bounds()
	rows, cols := b.Dy(), b.Dx()
	g := grid.New(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.Set(y, x, paletted.ColorIndexAt(b.Min.X+x, b.Min.Y+y))
		}
	}

	ct := make(ColorTable, len(paletted.Palette))
	for i, c := range paletted.Palette {
		r8, g8, b8, a8 := c.RGBA()
		ct[i] = color.RGBA{R: uint8(r8 >> 8), G: uint8(g8 >> 8), B: uint8(b8 >> 8), A: uint8(a8 >> 8)}
	}
	return g, ct, nil
}

func (GIFCodec) Encode(w io.Writer, g *grid.Grid, ct ColorTable, ann Annotation) error {
	palette := make(color.Palette, len(ct))
	for i, c := range ct {
		palette[i] = c
	}

	img := image.NewPaletted(image.Rect(0, 0, g.Cols, g.Rows), palette)
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			img.SetColorIndex(x, y, g.At(y, x))
		}
	}

	if ann.Text != "" {
		burnAnnotation(img, ann)
	}
	return gif.EncodeAll(w, &gif.GIF{
		Image:     []*image.Paletted{img},
		Delay:     []int{0},
		LoopCount: -1,
	})
}
