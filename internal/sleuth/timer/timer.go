// Package timer tracks the processor's position in the run/replication/year
// nest (§4.3, C3): which mode it is executing in, which calibration run and
// Monte Carlo replication are current, and the current simulated year.
package timer

import "fmt"

// Mode is the processor's operating mode (§4.3).
type Mode int

const (
	Calibrate Mode = iota
	Predict
	Test
)

func (m Mode) String() string {
	switch m {
	case Calibrate:
		return "CALIBRATE"
	case Predict:
		return "PREDICT"
	case Test:
		return "TEST"
	default:
		return "UNKNOWN"
	}
}

// Processor holds the timer/position state (§4.3).
type Processor struct {
	Mode              Mode
	CurrentRun        int
	TotalRuns         int
	CurrentMonteCarlo int
	CurrentYear       int
	StopYear          int

	startYear int
}

// New creates a Processor starting at startYear and running through
// stopYear, across totalRuns coefficient combinations.
func New(mode Mode, startYear, stopYear, totalRuns int) *Processor {
	return &Processor{
		Mode:        mode,
		TotalRuns:   totalRuns,
		CurrentYear: startYear,
		StopYear:    stopYear,
		startYear:   startYear,
	}
}

// Reset returns the timer to the start of a new replication: current year
// back to the start year, Monte Carlo index unchanged (the caller advances
// it separately via AdvanceReplication). Invariant (§4.3): "reset between
// replications."
func (p *Processor) Reset() {
	p.CurrentYear = p.startYear
}

// TickYear advances the current year by one. Invariant (§4.3):
// "current_year monotone within a replication."
func (p *Processor) TickYear() {
	p.CurrentYear++
}

// Done reports whether the current year has reached StopYear.
func (p *Processor) Done() bool {
	return p.CurrentYear >= p.StopYear
}

// AdvanceReplication moves to the next Monte Carlo replication within the
// current run, resetting the year.
func (p *Processor) AdvanceReplication() {
	p.CurrentMonteCarlo++
	p.Reset()
}

// AdvanceRun moves to the next coefficient-combination run, resetting the
// replication counter and the year.
func (p *Processor) AdvanceRun() error {
	if p.CurrentRun+1 >= p.TotalRuns {
		return fmt.Errorf("timer: no more runs (at %d of %d)", p.CurrentRun, p.TotalRuns)
	}
	p.CurrentRun++
	p.CurrentMonteCarlo = 0
	p.Reset()
	return nil
}
