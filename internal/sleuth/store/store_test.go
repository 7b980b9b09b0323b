package store

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRow() ControlStatsRow {
	return ControlStatsRow{
		RunUUID:         "run-1",
		Diffusion:       10,
		Breed:           20,
		Spread:          30,
		SlopeResistance: 5,
		RoadGravity:     5,
		RSquared:        [12]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		Fit:             1,
	}
}

func TestCSVWriterWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, [12]string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"})
	require.NoError(t, w.Write(sampleRow()))
	require.NoError(t, w.Write(sampleRow()))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "run_uuid")
	require.Contains(t, lines[0], "fit")
}

func TestSQLiteStoreInsertAndQuery(t *testing.T) {
	s, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(sampleRow()))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM control_stats").Scan(&count))
	require.Equal(t, 1, count)

	var fit float64
	require.NoError(t, s.db.QueryRow("SELECT fit FROM control_stats WHERE run_uuid = ?", "run-1").Scan(&fit))
	require.Equal(t, 1.0, fit)
}
