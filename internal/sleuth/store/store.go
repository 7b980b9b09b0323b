// Package store persists control statistics (§6 "Control statistics
// file"): one row per coefficient combination, to both a CSV file and a
// SQLite table, matching the teacher's cmd/sweep pattern of writing a
// SQLite table alongside CSV/plot outputs for the same run.
package store

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/coeff"
)

// ControlStatsRow is one persisted record (§6): the five coefficients,
// the twelve r² values, and the overall fit F.
type ControlStatsRow struct {
	RunUUID         string
	Diffusion       int
	Breed           int
	Spread          int
	SlopeResistance int
	RoadGravity     int
	RSquared        [12]float64
	Fit             float64
}

// CSVWriter writes ControlStatsRow records as CSV, header first.
type CSVWriter struct {
	w           *csv.Writer
	names       [12]string
	wroteHeader bool
}

// NewCSVWriter wraps w. names is the twelve observable names used for the
// header row (montecarlo.ObservableNames()).
func NewCSVWriter(w io.Writer, names [12]string) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), names: names}
}

func (c *CSVWriter) writeHeader() error {
	header := []string{"run_uuid", "diffusion", "breed", "spread", "slope_resistance", "road_gravity"}
	header = append(header, c.names[:]...)
	header = append(header, "fit")
	if err := c.w.Write(header); err != nil {
		return fmt.Errorf("store: csv header: %w", err)
	}
	c.wroteHeader = true
	return nil
}

// Write appends one row, writing the header first if this is the first call.
func (c *CSVWriter) Write(row ControlStatsRow) error {
	if !c.wroteHeader {
		if err := c.writeHeader(); err != nil {
			return err
		}
	}
	record := []string{
		row.RunUUID,
		strconv.Itoa(row.Diffusion),
		strconv.Itoa(row.Breed),
		strconv.Itoa(row.Spread),
		strconv.Itoa(row.SlopeResistance),
		strconv.Itoa(row.RoadGravity),
	}
	for _, v := range row.RSquared {
		record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
	}
	record = append(record, strconv.FormatFloat(row.Fit, 'f', 6, 64))
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("store: csv row: %w", err)
	}
	return nil
}

// Flush flushes the underlying CSV writer and returns any error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// SQLiteStore persists control stats to a SQLite database, in addition
// to (not instead of) the CSV file (§6).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if absent) a SQLite database at path
// and ensures the control_stats table exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS control_stats (
	run_uuid TEXT NOT NULL,
	diffusion INTEGER NOT NULL,
	breed INTEGER NOT NULL,
	spread INTEGER NOT NULL,
	slope_resistance INTEGER NOT NULL,
	road_gravity INTEGER NOT NULL,
	compare_r2 REAL, pop_r2 REAL, edges_r2 REAL, clusters_r2 REAL,
	cluster_size_r2 REAL, lee_sallee_r2 REAL, slope_r2 REAL,
	percent_urban_r2 REAL, xmean_r2 REAL, ymean_r2 REAL,
	rad_std_r2 REAL, mean_cluster_size_r2 REAL,
	fit REAL NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create control_stats: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Insert persists one ControlStatsRow.
func (s *SQLiteStore) Insert(row ControlStatsRow) error {
	const q = `INSERT INTO control_stats (
		run_uuid, diffusion, breed, spread, slope_resistance, road_gravity,
		compare_r2, pop_r2, edges_r2, clusters_r2, cluster_size_r2, lee_sallee_r2,
		slope_r2, percent_urban_r2, xmean_r2, ymean_r2, rad_std_r2, mean_cluster_size_r2,
		fit
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err := s.db.Exec(q,
		row.RunUUID, row.Diffusion, row.Breed, row.Spread, row.SlopeResistance, row.RoadGravity,
		row.RSquared[0], row.RSquared[1], row.RSquared[2], row.RSquared[3],
		row.RSquared[4], row.RSquared[5], row.RSquared[6], row.RSquared[7],
		row.RSquared[8], row.RSquared[9], row.RSquared[10], row.RSquared[11],
		row.Fit,
	)
	if err != nil {
		return fmt.Errorf("store: insert control_stats: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// All returns every persisted row, in insertion order, for offline
// reporting (cmd/sleuth-plot).
func (s *SQLiteStore) All() ([]ControlStatsRow, error) {
	const q = `SELECT
		run_uuid, diffusion, breed, spread, slope_resistance, road_gravity,
		compare_r2, pop_r2, edges_r2, clusters_r2, cluster_size_r2, lee_sallee_r2,
		slope_r2, percent_urban_r2, xmean_r2, ymean_r2, rad_std_r2, mean_cluster_size_r2,
		fit
	FROM control_stats ORDER BY rowid`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("store: query control_stats: %w", err)
	}
	defer rows.Close()

	var out []ControlStatsRow
	for rows.Next() {
		var r ControlStatsRow
		dest := []any{
			&r.RunUUID, &r.Diffusion, &r.Breed, &r.Spread, &r.SlopeResistance, &r.RoadGravity,
			&r.RSquared[0], &r.RSquared[1], &r.RSquared[2], &r.RSquared[3],
			&r.RSquared[4], &r.RSquared[5], &r.RSquared[6], &r.RSquared[7],
			&r.RSquared[8], &r.RSquared[9], &r.RSquared[10], &r.RSquared[11],
			&r.Fit,
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("store: scan control_stats: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FromCoefficients builds the coefficient fields of a ControlStatsRow
// from a coeff.Coefficients at the given combination (current values,
// which for calibration rows are integral by construction).
func FromCoefficients(c *coeff.Coefficients) (diffusion, breed, spread, slopeResistance, roadGravity int) {
	return int(c.Current(coeff.Diffusion)),
		int(c.Current(coeff.Breed)),
		int(c.Current(coeff.Spread)),
		int(c.Current(coeff.SlopeResistance)),
		int(c.Current(coeff.RoadGravity))
}
