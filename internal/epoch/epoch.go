// Public domain.

// Package epoch finds candidates in two observations of the same field that
// are likely the same source.
//
// A binary pulsar's apparent spin frequency drifts with its line of sight
// acceleration, so before periods are compared the second candidate's
// frequency is corrected to the acceleration of the first.
package epoch

import (
	"math"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
)

// C is the speed of light in m/s.
const C = 299792458.

// TobsToken maps a substring of a candidate's image path to an
// observation length.
type TobsToken struct {
	Token   string
	Seconds float64
}

// DefaultTobsTokens are tried in order; the first token found wins.
var DefaultTobsTokens = []TobsToken{
	{"2hr", 7200},
	{"1hr", 3600},
	{"30min", 1800},
	{"10min", 600},
}

// Config holds matching thresholds.
type Config struct {
	DMThresh     float64    // pc cm⁻³
	PeriodThresh float64    // s
	PosThresh    unit.Angle // 0 disables the position test
	DefaultTobs  float64    // s, used when no token matches
	TobsTokens   []TobsToken
	RFIPeriods   []float64 // s
	Workers      int       // <= 0 means GOMAXPROCS
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DMThresh:     100,
		PeriodThresh: .001,
		PosThresh:    unit.AngleFromSec(600),
		DefaultTobs:  1800,
		TobsTokens:   DefaultTobsTokens,
	}
}

// Tobs returns the observation length used to demodulate c: its recorded
// Tobs if positive, else the first token found in its image path, else
// DefaultTobs.
func (cf *Config) Tobs(c *cand.Candidate) float64 {
	if c.Tobs > 0 {
		return c.Tobs
	}
	for _, t := range cf.TobsTokens {
		if t.Token != "" && strings.Contains(c.PNGPath, t.Token) {
			return t.Seconds
		}
	}
	return cf.DefaultTobs
}

// IsRFI reports whether the period of c lies within 10 period thresholds
// of a listed interference period.
func (cf *Config) IsRFI(c *cand.Candidate) bool {
	p := c.Period()
	if p == 0 {
		return false
	}
	for _, r := range cf.RFIPeriods {
		if math.Abs(p-r) <= 10*cf.PeriodThresh {
			return true
		}
	}
	return false
}

// Demodulate corrects frequency f0 (Hz) of a source seen at acceleration
// acc to the frame of a source at accRef, over an observation of tobs
// seconds.  Accelerations are m/s².  When acc == accRef the result is f0
// exactly.
func Demodulate(f0, acc, accRef, tobs float64) float64 {
	return f0 - (acc-accRef)*f0*(tobs/C)
}

// Relation is the outcome of comparing two candidates.
type Relation struct {
	Match bool

	DeltaDM     float64
	DeltaPeriod float64 // s, +Inf when the periods were not compared

	Tobs            float64 // s, used for demodulation
	CorrectedF0     float64 // Hz, of the second candidate
	CorrectedPeriod float64 // s

	Sep    unit.Angle
	HasSep bool // both candidates have positions
}

// Related compares candidate b of the second epoch against candidate a of
// the first.
//
// Tests run in order and stop at the first failure: DM difference, sky
// separation, then period after demodulating b to a's acceleration.
// Periods within a factor of two are also compared modulo the shorter, so
// that a period at nearly twice the other still matches; the smaller
// difference is reported.
func Related(a, b *cand.Candidate, c *Config) Relation {
	r := Relation{DeltaDM: math.Abs(a.DM - b.DM), DeltaPeriod: math.Inf(1)}
	if r.DeltaDM > c.DMThresh {
		return r
	}
	if a.Pos != nil && b.Pos != nil {
		r.Sep = a.Pos.Sep(*b.Pos)
		r.HasSep = true
	}
	if c.PosThresh > 0 && (!r.HasSep || r.Sep > c.PosThresh) {
		return r
	}
	if a.F0 <= 0 || b.F0 <= 0 {
		return r
	}
	r.Tobs = c.Tobs(b)
	r.CorrectedF0 = Demodulate(b.F0, b.Acc, a.Acc, r.Tobs)
	if r.CorrectedF0 <= 0 {
		return r
	}
	r.CorrectedPeriod = 1 / r.CorrectedF0

	pa, pb := a.Period(), r.CorrectedPeriod
	direct := math.Abs(pa - pb)
	long, short := math.Max(pa, pb), math.Min(pa, pb)
	if long/short > 2 {
		r.DeltaPeriod = direct
		r.Match = direct <= c.PeriodThresh
		return r
	}
	wrap := math.Mod(long, short)
	r.DeltaPeriod = math.Min(wrap, direct)
	r.Match = wrap <= c.PeriodThresh || direct <= c.PeriodThresh
	return r
}
