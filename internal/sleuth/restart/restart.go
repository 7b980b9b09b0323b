// Package restart reads and writes the mid-sweep resumption file (§6): a
// single line of seven whitespace-separated integers capturing enough of
// the calibration sweep's position to resume it after an interruption.
// Grounded on output.c's out_write_restart_data, whose format string is
// "%d %d %d %d %d %ld %d".
package restart

import (
	"bufio"
	"fmt"
	"io"
)

// State is the seven restart integers: the current value of each of the
// five coefficients, the random seed, and a sweep-position counter.
type State struct {
	Diffusion       int
	Breed           int
	Spread          int
	SlopeResistance int
	RoadGravity     int
	Seed            int64
	Counter         int
}

// Write emits State as a single line of seven whitespace-separated
// integers, matching out_write_restart_data's "%d %d %d %d %d %ld %d".
func Write(w io.Writer, s State) error {
	_, err := fmt.Fprintf(w, "%d %d %d %d %d %d %d\n",
		s.Diffusion, s.Breed, s.Spread, s.SlopeResistance, s.RoadGravity, s.Seed, s.Counter)
	if err != nil {
		return fmt.Errorf("restart: write: %w", err)
	}
	return nil
}

// Read parses a restart file written by Write. §8 Testable Property 7:
// write-then-read recovers all seven integers exactly.
func Read(r io.Reader) (State, error) {
	var s State
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return s, fmt.Errorf("restart: read: %w", err)
		}
		return s, fmt.Errorf("restart: read: empty restart file")
	}
	n, err := fmt.Sscanf(scanner.Text(), "%d %d %d %d %d %d %d",
		&s.Diffusion, &s.Breed, &s.Spread, &s.SlopeResistance, &s.RoadGravity, &s.Seed, &s.Counter)
	if err != nil {
		return State{}, fmt.Errorf("restart: parse: %w", err)
	}
	if n != 7 {
		return State{}, fmt.Errorf("restart: parse: expected 7 integers, got %d", n)
	}
	return s, nil
}
