package raster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := grid.New(4, 4)
	g.Pix = []uint8{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15,
	}
	ct := ProbabilityColorTable()

	var buf bytes.Buffer
	codec := GIFCodec{}
	require.NoError(t, codec.Encode(&buf, g, ct, Annotation{}))

	got, gotCT, err := codec.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, g.Rows, got.Rows)
	require.Equal(t, g.Cols, got.Cols)
	require.Equal(t, g.Pix, got.Pix)
	require.Len(t, gotCT, len(ct))
}

func TestProbabilityColorTableShape(t *testing.T) {
	ct := ProbabilityColorTable()
	require.Len(t, ct, 256)
	require.NotZero(t, ct[255])
}

func TestEncodeBurnsAnnotationPixels(t *testing.T) {
	g := grid.New(10, 10)
	ct := ProbabilityColorTable()
	codec := GIFCodec{}

	var withAnn, without bytes.Buffer
	require.NoError(t, codec.Encode(&withAnn, g, ct, Annotation{Text: "1990"}))
	require.NoError(t, codec.Encode(&without, g, ct, Annotation{}))

	gotAnn, _, err := codec.Decode(&withAnn)
	require.NoError(t, err)
	gotPlain, _, err := codec.Decode(&without)
	require.NoError(t, err)

	require.NotEqual(t, gotPlain.Pix, gotAnn.Pix)

	found := false
	for _, v := range gotAnn.Pix {
		if v == annotationColorIndex {
			found = true
			break
		}
	}
	require.True(t, found)
}

func TestEncodeEmptyAnnotationDoesNotBurn(t *testing.T) {
	g := grid.New(4, 4)
	ct := ProbabilityColorTable()
	codec := GIFCodec{}

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, g, ct, Annotation{}))
	got, _, err := codec.Decode(&buf)
	require.NoError(t, err)
	for _, v := range got.Pix {
		require.NotEqual(t, uint8(annotationColorIndex), v)
	}
}
