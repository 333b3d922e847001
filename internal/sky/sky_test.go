// Public domain.

package sky_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

var parseTestCases = []struct {
	ra, dec     string
	ok          bool
	raH, decDeg float64
}{
	{"12:00:00", "+10:00:00", true, 12, 10},
	{"00:06:04.8", "+18:34:59", true, 0.1013333333, 18.5830555556},
	{"23:59:59.999", "-89:59:59.9", true, 23.9999997222, -89.9999722222},
	{"12.5", "-0.5", true, 12.5, -0.5},
	{"05:30", "-00:30:00", true, 5.5, -0.5},
	{"bogus", "+10:00:00", false, 0, 0},
	{"12:00:00", "junk", false, 0, 0},
	{"12:61:00", "10", false, 0, 0},
	{"12:00:00", "91:00:00", false, 0, 0},
	{"24:00:00", "0", false, 0, 0},
	{"", "0", false, 0, 0},
	{"1:2:3:4", "0", false, 0, 0},
}

func TestParse(t *testing.T) {
	for _, tc := range parseTestCases {
		c, ok := sky.Parse(tc.ra, tc.dec)
		switch {
		case ok != tc.ok:
			t.Fatalf("Parse(%q, %q) ok = %t, want %t", tc.ra, tc.dec, ok, tc.ok)
		case !ok:
			continue
		case math.Abs(c.RAHour()-tc.raH) > 1e-8:
			t.Fatalf("Parse(%q) RA = %.10f h, want %.10f", tc.ra, c.RAHour(), tc.raH)
		case math.Abs(c.DecDeg()-tc.decDeg) > 1e-8:
			t.Fatalf("Parse(%q) Dec = %.10f°, want %.10f", tc.dec, c.DecDeg(), tc.decDeg)
		}
	}
}

func TestFromDecimal(t *testing.T) {
	cases := []struct {
		v    float64
		u    sky.Unit
		want float64 // degrees
	}{
		{1, sky.Hour, 15},
		{24, sky.Hour, 360},
		{90, sky.Degree, 90},
		{math.Pi, sky.Radian, 180},
		{60, sky.Arcmin, 1},
		{3600, sky.Arcsec, 1},
	}
	for _, c := range cases {
		if got := sky.FromDecimal(c.v, c.u).Deg(); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("FromDecimal(%g, %d) = %g°, want %g°", c.v, c.u, got, c.want)
		}
	}
}

func TestNewNormalizesRA(t *testing.T) {
	c := sky.New(-1, 0)
	if math.Abs(c.RAHour()-23) > 1e-12 {
		t.Fatalf("RA = %g h, want 23", c.RAHour())
	}
	c = sky.NewDeg(370, 0)
	if math.Abs(c.RADeg()-10) > 1e-12 {
		t.Fatalf("RA = %g°, want 10", c.RADeg())
	}
}

func TestSep(t *testing.T) {
	cases := []struct {
		a, b sky.Coord
		deg  float64
	}{
		{sky.New(12, 10), sky.New(12, 10.01), .01},
		{sky.New(0, 0), sky.New(12, 0), 180},
		{sky.New(0, 0), sky.New(6, 0), 90},
		{sky.New(3, 90), sky.New(17, 90), 0},
		{sky.NewDeg(359.99, 0), sky.NewDeg(.01, 0), .02},
		{sky.New(0, 0), sky.New(0, 0), 0},
	}
	for _, c := range cases {
		if got := c.a.SepDeg(c.b); math.Abs(got-c.deg) > 1e-9 {
			t.Errorf("Sep(%v, %v) = %.12f°, want %g°", c.a, c.b, got, c.deg)
		}
		if ab, ba := c.a.SepDeg(c.b), c.b.SepDeg(c.a); math.Abs(ab-ba) > 1e-12 {
			t.Errorf("Sep not symmetric: %g vs %g", ab, ba)
		}
	}
}

func TestSepUnits(t *testing.T) {
	a, b := sky.New(12, 10), sky.New(12, 10.01)
	if got := a.SepArcmin(b); math.Abs(got-.6) > 1e-6 {
		t.Fatalf("SepArcmin = %g, want .6", got)
	}
	if got := a.SepArcsec(b); math.Abs(got-36) > 1e-4 {
		t.Fatalf("SepArcsec = %g, want 36", got)
	}
}

// At high declination an RA offset shrinks on the sky by cos(dec).
func TestSepHighDec(t *testing.T) {
	a := sky.NewDeg(10, 80)
	b := sky.NewDeg(10.1, 80)
	got := a.SepDeg(b)
	want := .1 * math.Cos(80*math.Pi/180)
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("Sep = %g°, want ≈%g°", got, want)
	}
}

func TestCart(t *testing.T) {
	for _, c := range []sky.Coord{sky.New(0, 0), sky.New(6, 45), sky.New(18, -30)} {
		v := c.Cart()
		if n := v.Square(); math.Abs(n-1) > 1e-12 {
			t.Errorf("|Cart(%v)|² = %g, want 1", c, n)
		}
	}
	a, b := sky.New(1, 20), sky.New(1.5, 22)
	va, vb := a.Cart(), b.Cart()
	if got, want := math.Acos(va.Dot(&vb)), a.Sep(b).Rad(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("acos(dot) = %g, Sep = %g", got, want)
	}
}

func ExampleCoord_SepArcmin() {
	psr, _ := sky.Parse("12:00:00", "+10:00:00")
	cand, _ := sky.Parse("12:00:00", "+10:00:36")
	fmt.Printf("%.2f arcmin\n", psr.SepArcmin(cand))
	// Output:
	// 0.60 arcmin
}
