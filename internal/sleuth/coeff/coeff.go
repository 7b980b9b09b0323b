// Package coeff holds the five growth coefficients in their six roles
// (§4.1, C1): start, stop, step (calibration sweep bounds), current (live
// during simulation), saved (pre-self-modification snapshot), best-fit
// (recorded after calibration). It is styled after the teacher's
// internal/config.TuningConfig: a struct of typed fields with Get*
// accessors and a Validate method, rather than a bag of untyped map
// entries.
package coeff

import "fmt"

// MaxCoeff is the ceiling every coefficient clamps to after
// self-modification (§3 invariant 4).
const MaxCoeff = 100.0

// Name identifies one of the five growth coefficients (§3).
type Name int

const (
	Diffusion Name = iota
	Breed
	Spread
	SlopeResistance
	RoadGravity
	numNames
)

func (n Name) String() string {
	switch n {
	case Diffusion:
		return "diffusion"
	case Breed:
		return "breed"
	case Spread:
		return "spread"
	case SlopeResistance:
		return "slope_resistance"
	case RoadGravity:
		return "road_gravity"
	default:
		return "unknown"
	}
}

// sweep holds the integer calibration bounds for one coefficient
// (§4.1: "start/stop/step... are integer").
type sweep struct {
	start, stop, step int
}

// Coefficients is the five-by-six coefficient matrix (§3, §4.1).
type Coefficients struct {
	sweeps  [numNames]sweep
	current [numNames]float64
	saved   [numNames]float64
	bestFit [numNames]int
}

// New returns a Coefficients with all roles zeroed. Callers set sweep
// bounds via SetSweep before calibration, and Current via SetCurrent
// before a replication.
func New() *Coefficients {
	return &Coefficients{}
}

// SetSweep sets the start/stop/step bounds for name. Contract (§4.1):
// step ≥ 1, 1 ≤ start ≤ stop ≤ 100.
func (c *Coefficients) SetSweep(name Name, start, stop, step int) error {
	if step < 1 {
		return fmt.Errorf("coeff: %s step %d must be >= 1", name, step)
	}
	if start < 1 || start > stop || stop > 100 {
		return fmt.Errorf("coeff: %s bounds [%d,%d] must satisfy 1 <= start <= stop <= 100", name, start, stop)
	}
	c.sweeps[name] = sweep{start: start, stop: stop, step: step}
	return nil
}

func (c *Coefficients) Start(name Name) int { return c.sweeps[name].start }
func (c *Coefficients) Stop(name Name) int  { return c.sweeps[name].stop }
func (c *Coefficients) Step(name Name) int  { return c.sweeps[name].step }

// Current returns the live value of name (§3: "current... real-valued").
func (c *Coefficients) Current(name Name) float64 { return c.current[name] }

// SetCurrent sets the live value of name, without clamping. Used to load
// a coefficient combination at the start of a calibration run (§4.7 step
// 1) and to restore start-values before each combination.
func (c *Coefficients) SetCurrent(name Name, v float64) { c.current[name] = v }

// BestFit returns the recorded best-fit integer value of name (§4.1,
// §4.7: "one coefficient tuple (best-fit)").
func (c *Coefficients) BestFit(name Name) int { return c.bestFit[name] }

// SetBestFit records the best-fit value of name after calibration.
func (c *Coefficients) SetBestFit(name Name, v int) { c.bestFit[name] = v }

// Validate checks every coefficient's sweep bounds (§4.1 contract).
func (c *Coefficients) Validate() error {
	for n := Name(0); n < numNames; n++ {
		if c.sweeps[n].step < 1 {
			return fmt.Errorf("coeff: %s step %d must be >= 1", n, c.sweeps[n].step)
		}
		if c.sweeps[n].start < 1 || c.sweeps[n].start > c.sweeps[n].stop || c.sweeps[n].stop > 100 {
			return fmt.Errorf("coeff: %s bounds [%d,%d] invalid", n, c.sweeps[n].start, c.sweeps[n].stop)
		}
	}
	return nil
}

// SnapshotSaved copies current into saved (§4.6: "Before self-modification
// the five current coefficients are snapshotted into saved").
func (c *Coefficients) SnapshotSaved() {
	c.saved = c.current
}

// RestoreSaved copies saved back into current (§4.6: "restored at the
// start of each new replication so one realization's drift does not leak
// into the next").
func (c *Coefficients) RestoreSaved() {
	c.current = c.saved
}

// Clamp restricts every current value to [1, MaxCoeff] (§3 invariant 4).
func (c *Coefficients) Clamp() {
	for n := Name(0); n < numNames; n++ {
		if c.current[n] < 1 {
			c.current[n] = 1
		}
		if c.current[n] > MaxCoeff {
			c.current[n] = MaxCoeff
		}
	}
}

// SelfModifyConfig carries the thresholds and boom/bust factors that drive
// SelfModify (§4.6 step 5), supplied by the scenario file.
type SelfModifyConfig struct {
	CriticalHigh float64 // growth_rate above this triggers boom
	CriticalLow  float64 // growth_rate below this triggers bust
	Boom         float64 // > 1
	Bust         float64 // < 1
}

// SelfModify applies §4.6 step 5's boom/bust rule given this year's
// growth rate and percent urban, then clamps (§3 invariant 4). It is a
// pure function of its inputs and the current coefficient values, so it
// can be unit tested without a full annual driver.
func (c *Coefficients) SelfModify(growthRate, percentUrban float64, cfg SelfModifyConfig) {
	switch {
	case growthRate > cfg.CriticalHigh:
		c.current[Diffusion] *= cfg.Boom
		c.current[Spread] *= cfg.Boom
		c.current[Breed] *= cfg.Boom
		if c.current[SlopeResistance] > 1 {
			c.current[SlopeResistance] -= percentUrban
		}
		c.current[RoadGravity] += percentUrban
	case growthRate < cfg.CriticalLow:
		c.current[Diffusion] *= cfg.Bust
		c.current[Spread] *= cfg.Bust
		c.current[Breed] *= cfg.Bust
		c.current[SlopeResistance] += percentUrban
		if c.current[RoadGravity] > 1 {
			c.current[RoadGravity] -= percentUrban
		}
	}
	c.Clamp()
}

// Log emits the five Current values as a single line, via the engine's
// shared logger (§4.1: "Logs emit one coefficient tuple per line").
func (c *Coefficients) Log(logf func(format string, v ...interface{})) {
	logf("coeff diffusion=%.4f breed=%.4f spread=%.4f slope_resistance=%.4f road_gravity=%.4f",
		c.current[Diffusion], c.current[Breed], c.current[Spread],
		c.current[SlopeResistance], c.current[RoadGravity])
}
