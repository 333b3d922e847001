// Public domain.

// Package sky represents positions on the celestial sphere.
//
// Right ascension is carried as unit.RA and declination as unit.Angle.
// Text input is either sexagesimal (H:M:S for right ascension, D:M:S for
// declination) or a plain decimal number in a stated unit.  Parse functions
// report failure with ok == false and never panic; it is up to the caller
// to decide whether a record without a position is still useful.
package sky

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/angle"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

// Unit identifies the unit of a decimal angle.
type Unit int

const (
	Degree Unit = iota
	Hour
	Radian
	Arcmin
	Arcsec
)

// FromDecimal converts a decimal value in unit u to an angle.
// Hours convert exactly as degrees = hours × 15.
func FromDecimal(v float64, u Unit) unit.Angle {
	switch u {
	case Hour:
		return unit.AngleFromDeg(v * 15)
	case Radian:
		return unit.Angle(v)
	case Arcmin:
		return unit.AngleFromDeg(v / 60)
	case Arcsec:
		return unit.AngleFromSec(v)
	}
	return unit.AngleFromDeg(v)
}

// Coord is an equatorial position.
type Coord struct {
	RA  unit.RA
	Dec unit.Angle
}

// New constructs a Coord from right ascension in decimal hours and
// declination in decimal degrees.  RA is normalized to [0, 24h).
func New(raHour, decDeg float64) Coord {
	return Coord{RA: raFromDeg(raHour * 15), Dec: unit.AngleFromDeg(decDeg)}
}

// NewDeg constructs a Coord from right ascension and declination both in
// decimal degrees.
func NewDeg(raDeg, decDeg float64) Coord {
	return Coord{RA: raFromDeg(raDeg), Dec: unit.AngleFromDeg(decDeg)}
}

func raFromDeg(d float64) unit.RA {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return unit.RA(unit.AngleFromDeg(d))
}

// Parse parses right ascension and declination text.  RA is sexagesimal
// hours or decimal hours, Dec is sexagesimal degrees or decimal degrees.
func Parse(ra, dec string) (c Coord, ok bool) {
	r, ok := ParseRA(ra)
	if !ok {
		return
	}
	d, ok := ParseDec(dec)
	if !ok {
		return
	}
	return Coord{RA: r, Dec: d}, true
}

// ParseRA parses "H:M:S", "H:M", or decimal hours.
func ParseRA(s string) (unit.RA, bool) {
	h, ok := parseSexa(s)
	if !ok || h < 0 || h >= 24 {
		return 0, false
	}
	return raFromDeg(h * 15), true
}

// ParseDec parses "D:M:S", "D:M", or decimal degrees.  Values outside
// ±90° are rejected.
func ParseDec(s string) (unit.Angle, bool) {
	d, ok := parseSexa(s)
	if !ok || d < -90 || d > 90 {
		return 0, false
	}
	return unit.AngleFromDeg(d), true
}

// parseSexa returns the decimal value of colon-separated sexagesimal text.
// The sign applies to the whole value, so "-00:30:00" is -0.5.
func parseSexa(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	f := strings.Split(s, ":")
	if len(f) > 3 {
		return 0, false
	}
	var v, scale float64 = 0, 1
	for i, p := range f {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return 0, false
		}
		// minutes and seconds fields must be in [0, 60)
		if i > 0 && x >= 60 {
			return 0, false
		}
		v += x / scale
		scale *= 60
	}
	if neg {
		v = -v
	}
	return v, true
}

// RADeg returns right ascension in degrees, [0, 360).
func (c Coord) RADeg() float64 { return unit.Angle(c.RA).Deg() }

// RAHour returns right ascension in hours, [0, 24).
func (c Coord) RAHour() float64 { return unit.Angle(c.RA).Deg() / 15 }

// DecDeg returns declination in degrees.
func (c Coord) DecDeg() float64 { return c.Dec.Deg() }

// Sep returns the great circle separation between c and o.
//
// The haversine form is used at all separations; it has no small angle
// approximation and stays well conditioned down to sub-arcsecond offsets.
func (c Coord) Sep(o Coord) unit.Angle {
	return angle.SepHav(unit.Angle(c.RA), c.Dec, unit.Angle(o.RA), o.Dec)
}

// SepDeg, SepArcmin and SepArcsec return Sep in the named unit.
func (c Coord) SepDeg(o Coord) float64    { return c.Sep(o).Deg() }
func (c Coord) SepArcmin(o Coord) float64 { return c.Sep(o).Deg() * 60 }
func (c Coord) SepArcsec(o Coord) float64 { return c.Sep(o).Deg() * 3600 }

// Cart returns the unit vector of c.
func (c Coord) Cart() coord.Cart {
	sr, cr := math.Sincos(unit.Angle(c.RA).Rad())
	sd, cd := math.Sincos(c.Dec.Rad())
	return coord.Cart{X: cd * cr, Y: cd * sr, Z: sd}
}

// String formats c sexagesimally.
func (c Coord) String() string {
	return fmt.Sprintf("%.2s %.1s", sexa.FmtRA(c.RA), sexa.FmtAngle(c.Dec))
}
