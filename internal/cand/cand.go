// Public domain.

// Package cand defines the pulsar search candidate record shared by the
// matchers.
package cand

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// Type is a candidate classification.
type Type string

const (
	KnownPSR Type = "KNOWN_PSR"
	T1       Type = "T1_CAND"
	T2       Type = "T2_CAND"
	RFI      Type = "RFI"
	Noise    Type = "NOISE"
	Uncat    Type = "UNCAT"
	NBPSR    Type = "NB_PSR"
)

// Types lists all classifications in display order.
var Types = []Type{KnownPSR, T1, T2, RFI, Noise, Uncat, NBPSR}

// ParseType returns the Type named by s, or Uncat.  Short forms such
// as "T1" are accepted.
func ParseType(s string) Type {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range Types {
		if s == string(t) || s+"_CAND" == string(t) {
			return t
		}
	}
	return Uncat
}

// Candidate is one row of a candidate file.
//
// Numeric fields that were absent or unparseable in the input are zero.
// Pos is nil when either coordinate failed to parse; such a candidate is
// left out of any spatial test.
type Candidate struct {
	Line int // 1-based data row number, the candidate identifier

	PointingID int
	BeamID     int
	BeamName   string
	SourceName string

	Pos    *sky.Coord
	GL, GB float64 // galactic, degrees

	UTC string
	MJD float64

	F0, F1, Acc, DM float64 // optimised values
	F0Err, DMErr    float64
	SNFFT, SNFold   float64
	PEpoch          float64
	MaxDMYMW16      float64
	DistYMW16       float64
	Tobs            float64 // seconds, 0 if not recorded

	PNGPath        string
	MetafilePath   string
	FilterbankPath string
	TarballPath    string

	Class  Type
	Label  string             // raw classification text, if any
	Scores map[string]float64 // classifier name -> score

	// Similar holds line numbers of candidates found harmonically similar.
	// It is written by the harmonic detector.
	Similar []int

	Record []string // input fields as read
}

// Period returns the spin period in seconds, or 0 if F0 is not positive.
func (c *Candidate) Period() float64 {
	if c.F0 > 0 {
		return 1 / c.F0
	}
	return 0
}

var rxDigits = regexp.MustCompile(`\d+`)

// BeamNumber extracts the integer beam number from BeamName, as in
// "cfbf00012" -> 12.
func (c *Candidate) BeamNumber() (int, bool) {
	d := rxDigits.FindString(c.BeamName)
	if d == "" {
		return 0, false
	}
	n, err := strconv.Atoi(d)
	return n, err == nil
}

// Value returns a sortable parameter by name, including classifier scores.
func (c *Candidate) Value(param string) (float64, bool) {
	if s, ok := c.Scores[param]; ok {
		return s, true
	}
	switch param {
	case "DM":
		return c.DM, c.DM != 0
	case "F0":
		return c.F0, c.F0 != 0
	case "F1":
		return c.F1, c.F1 != 0
	case "ACC":
		return c.Acc, true
	case "FOLD_SNR":
		return c.SNFold, c.SNFold != 0
	case "FFT_SNR":
		return c.SNFFT, c.SNFFT != 0
	case "TOBS":
		return c.Tobs, c.Tobs != 0
	case "BEAM_NUM":
		n, ok := c.BeamNumber()
		return float64(n), ok
	case "CSV_LINE":
		return float64(c.Line), c.Line != 0
	}
	return 0, false
}

// GroupByUTC partitions cs by UTC, preserving input order within groups.
// Candidates without a UTC are grouped under "unknown".  The returned key
// slice is in order of first appearance.
func GroupByUTC(cs []*Candidate) (keys []string, groups map[string][]*Candidate) {
	groups = make(map[string][]*Candidate)
	for _, c := range cs {
		k := c.UTC
		if k == "" {
			k = "unknown"
		}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], c)
	}
	return
}

// FilterLabel returns candidates whose classification label contains tok,
// ignoring case.
func FilterLabel(cs []*Candidate, tok string) []*Candidate {
	fold := cases.Fold()
	tok = fold.String(tok)
	var r []*Candidate
	for _, c := range cs {
		if strings.Contains(fold.String(c.Label), tok) {
			r = append(r, c)
		}
	}
	return r
}
