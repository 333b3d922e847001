// Public domain.

// Package harmonic flags candidates within one observation whose spin
// frequencies are related by a small integer ratio and whose dispersion
// measures agree.
//
// Every ordered pair is tested, so the cost is O(N²·MaxHarmonic²).  That is
// fine for the low thousands of candidates typical of one observation but
// grows quickly beyond that.
package harmonic

import (
	"github.com/rs/zerolog"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
)

// MaxHarmonic bounds both numerator and denominator of tested ratios.
const MaxHarmonic = 16

// Config holds matching tolerances.
type Config struct {
	// FreqTol is the fractional half width of the band around each
	// harmonic, f·(i/j)·(1±FreqTol).
	FreqTol float64
	// ScaleTol multiplies FreqTol by the ratio being tested.
	ScaleTol bool
	// DMTol is the largest DM difference, pc cm⁻³, for a pair to be tested.
	DMTol float64
	// IncludeFractions additionally tests j/i for each i ≠ j.
	IncludeFractions bool
}

// DefaultConfig returns the tolerances used when nothing is configured.
func DefaultConfig() Config {
	return Config{FreqTol: 1e-4, DMTol: 5}
}

// Detector finds harmonically similar candidates.
type Detector struct {
	cfg Config
	log zerolog.Logger
}

// New creates a Detector.  A nil logger disables logging.
func New(cfg Config, log *zerolog.Logger) *Detector {
	d := &Detector{cfg: cfg, log: zerolog.Nop()}
	if log != nil {
		d.log = *log
	}
	return d
}

// IsMatch reports whether f2 lies within the tolerance band of any
// harmonic ratio of f1.  It stops at the first ratio that matches.
func IsMatch(f1, f2 float64, c Config) bool {
	for i := 1; i <= MaxHarmonic; i++ {
		for j := 1; j <= MaxHarmonic; j++ {
			if inBand(f1, f2, float64(i)/float64(j), c) {
				return true
			}
		}
		if !c.IncludeFractions {
			continue
		}
		for j := 1; j <= MaxHarmonic; j++ {
			if i != j && inBand(f1, f2, float64(j)/float64(i), c) {
				return true
			}
		}
	}
	return false
}

func inBand(f1, f2, h float64, c Config) bool {
	tol := c.FreqTol
	if c.ScaleTol {
		tol *= h
	}
	return f2 >= f1*h*(1-tol) && f2 <= f1*h*(1+tol)
}

// Similar reports whether b is similar to a: DM within tolerance, checked
// first, then a harmonic frequency match.  Candidates without a positive
// F0 or a DM are never similar to anything.
func (d *Detector) Similar(a, b *cand.Candidate) bool {
	if !usable(a) || !usable(b) {
		return false
	}
	dm := a.DM - b.DM
	if dm < 0 {
		dm = -dm
	}
	if dm > d.cfg.DMTol {
		return false
	}
	return IsMatch(a.F0, b.F0, d.cfg)
}

func usable(c *cand.Candidate) bool {
	return c.F0 > 0 && c.DM != 0
}

// FindSimilar sets the Similar list of every candidate in cs to the line
// numbers of the other candidates similar to it.  Lists are computed
// independently per candidate so the stored relation need not be symmetric.
func (d *Detector) FindSimilar(cs []*cand.Candidate) {
	flagged := 0
	for _, a := range cs {
		var sim []int
		for _, b := range cs {
			if a == b || a.Line == b.Line {
				continue
			}
			if d.Similar(a, b) {
				sim = append(sim, b.Line)
			}
		}
		a.Similar = sim
		if len(sim) > 0 {
			flagged++
		}
	}
	d.log.Debug().Int("candidates", len(cs)).Int("with_similar", flagged).
		Msg("harmonic similarity done")
}

// Ratio returns f1/f2 and f2/f1, with 0 in place of a division by zero.
func Ratio(f1, f2 float64) (r12, r21 float64) {
	if f2 != 0 {
		r12 = f1 / f2
	}
	if f1 != 0 {
		r21 = f2 / f1
	}
	return
}
