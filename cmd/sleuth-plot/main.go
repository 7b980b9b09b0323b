// Command sleuth-plot renders a completed calibration sweep's fit surface
// to PNG: one scatter plot per coefficient, overall fit against that
// coefficient's swept value, in the style of the teacher's per-ring grid
// plots (one PNG per dimension, all other combinations overplotted as
// points, which are also joined by a line in coefficient order).
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/store"
)

func main() {
	dbPath := flag.String("db", "control_stats.sqlite", "Path to control statistics SQLite database")
	outDir := flag.String("out", ".", "Directory to write PNG plots into")
	flag.Parse()

	s, err := store.OpenSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("sleuth-plot: %v", err)
	}
	defer s.Close()

	rows, err := s.All()
	if err != nil {
		log.Fatalf("sleuth-plot: %v", err)
	}
	if len(rows) == 0 {
		log.Printf("sleuth-plot: no rows in %s, nothing to plot", *dbPath)
		return
	}

	dims := []struct {
		name string
		get  func(store.ControlStatsRow) float64
	}{
		{"diffusion", func(r store.ControlStatsRow) float64 { return float64(r.Diffusion) }},
		{"breed", func(r store.ControlStatsRow) float64 { return float64(r.Breed) }},
		{"spread", func(r store.ControlStatsRow) float64 { return float64(r.Spread) }},
		{"slope_resistance", func(r store.ControlStatsRow) float64 { return float64(r.SlopeResistance) }},
		{"road_gravity", func(r store.ControlStatsRow) float64 { return float64(r.RoadGravity) }},
	}

	for _, d := range dims {
		if err := plotFitVsCoefficient(rows, d.name, d.get, *outDir); err != nil {
			log.Fatalf("sleuth-plot: %s: %v", d.name, err)
		}
	}

	log.Printf("sleuth-plot: wrote %d plots to %s", len(dims), *outDir)
}

// plotFitVsCoefficient renders one coefficient dimension's fit scatter,
// sorted by the coefficient's value so the line connecting repeated
// values (if any) reads left to right.
func plotFitVsCoefficient(rows []store.ControlStatsRow, name string, get func(store.ControlStatsRow) float64, outDir string) error {
	sorted := make([]store.ControlStatsRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return get(sorted[i]) < get(sorted[j]) })

	pts := make(plotter.XYs, len(sorted))
	for i, r := range sorted {
		pts[i] = plotter.XY{X: get(r), Y: r.Fit}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Fit vs %s", name)
	p.X.Label.Text = name
	p.Y.Label.Text = "fit (F)"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("new scatter: %w", err)
	}
	p.Add(scatter)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("new line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	path := filepath.Join(outDir, fmt.Sprintf("fit_vs_%s.png", name))
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
