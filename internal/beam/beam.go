// Public domain.

// Package beam finds overlapping beams of a multi-beam observation.
//
// Beam footprints are ellipses on a flat local approximation of the sky:
// offsets are RA difference in degrees and Dec difference in degrees.  By
// default the RA offset is not compressed by cos(dec), matching the beam
// shapes produced by the telescope's beamformer metadata, which is accurate
// near the equator only.  Config.CosDec applies the compression.
package beam

import (
	"math"

	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// Ellipse is a beam footprint.
type Ellipse struct {
	A, B  float64 // semi-axes, degrees; A lies along Angle
	Angle float64 // rotation of A from the RA axis toward Dec, radians
}

func (e *Ellipse) valid() bool {
	return e != nil && e.A > 0 && e.B > 0
}

// Beam is one formed beam.  Ellipse is nil when the metafile carried no
// shape for it.
type Beam struct {
	Name       string
	Pos        sky.Coord
	Ellipse    *Ellipse
	Neighbours []string
}

// Config parameterizes the overlap test and the neighbour search.
type Config struct {
	Cores       int     // worker limit, <= 0 means GOMAXPROCS
	Samples     int     // perimeter points tested per pair
	FallbackSep float64 // degrees, used when a beam lacks an ellipse
	CosDec      bool    // compress RA offsets by cos(dec)
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{Cores: 8, Samples: 100, FallbackSep: .02}
}

// Overlaps reports whether the footprints of a and b overlap.
//
// The test is true if either center lies inside the other ellipse, or
// else if any of c.Samples points evenly spaced around a's perimeter lies
// inside b.  Only a's perimeter is sampled so the result is not symmetric
// in general, and grazing overlaps that fall between samples are missed.
// When either beam lacks an ellipse the result is simply whether the
// centers are within c.FallbackSep.
//
// With c.CosDec set, RA offsets are compressed by the cosine of the mean
// declination of the pair, so both ellipses live in one tangent frame.
func Overlaps(a, b *Beam, c Config) bool {
	aRA, aDec := a.Pos.RADeg(), a.Pos.DecDeg()
	bRA, bDec := b.Pos.RADeg(), b.Pos.DecDeg()
	k := 1.
	if c.CosDec {
		k = math.Cos((aDec + bDec) / 2 * math.Pi / 180)
	}
	if !a.Ellipse.valid() || !b.Ellipse.valid() {
		dx := offsetRA(aRA, bRA, k)
		dy := bDec - aDec
		return math.Hypot(dx, dy) <= c.FallbackSep
	}
	if inside(b.Ellipse, bRA, bDec, aRA, aDec, k) ||
		inside(a.Ellipse, aRA, aDec, bRA, bDec, k) {
		return true
	}
	e := a.Ellipse
	sθ, cθ := math.Sincos(e.Angle)
	for i := 0; i < c.Samples; i++ {
		st, ct := math.Sincos(2 * math.Pi * float64(i) / float64(c.Samples))
		x := e.A*ct*cθ - e.B*st*sθ
		y := e.A*ct*sθ + e.B*st*cθ
		if inside(b.Ellipse, bRA, bDec, aRA+x/k, aDec+y, k) {
			return true
		}
	}
	return false
}

// inside reports whether point (ra, dec) lies inside e centered at
// (cRA, cDec).  All arguments are degrees; k compresses RA offsets.
func inside(e *Ellipse, cRA, cDec, ra, dec, k float64) bool {
	dx := offsetRA(cRA, ra, k)
	dy := dec - cDec
	sθ, cθ := math.Sincos(e.Angle)
	x := dx*cθ + dy*sθ
	y := -dx*sθ + dy*cθ
	x /= e.A
	y /= e.B
	return x*x+y*y <= 1
}

// offsetRA returns ra-from in degrees wrapped to ±180, times k.
func offsetRA(from, ra, k float64) float64 {
	d := math.Mod(ra-from, 360)
	switch {
	case d > 180:
		d -= 360
	case d < -180:
		d += 360
	}
	return d * k
}
