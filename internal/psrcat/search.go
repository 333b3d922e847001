// Public domain.

package psrcat

import (
	"math"
	"sort"

	"github.com/soniakeys/unit"

	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// slack keeps the quick filters on the accepting side of rounding error.
const slack = 1e-9 // degrees

// Shortlist returns every entry with a position within radius of center,
// inclusive, in catalog order.
//
// Compute a shortlist once per pointing, centered on the boresight, then
// pass it to Search for each candidate in the pointing.  Search over a
// shortlist returns the same result as search over the whole catalog for
// any target whose query circle lies inside the shortlist circle.
func (c *Catalog) Shortlist(center sky.Coord, radius unit.Angle) []*Entry {
	v := center.Cart()
	cosR := math.Cos(radius.Rad()) - 1e-12
	sl := []*Entry{} // non-nil: an empty shortlist is not the whole catalog
	for _, e := range c.entries {
		if e.Pos == nil {
			continue
		}
		if radius.Rad() < math.Pi && v.Dot(&e.vec) < cosR {
			continue
		}
		if center.Sep(*e.Pos) <= radius {
			sl = append(sl, e)
		}
	}
	c.log.Debug().Int("shortlisted", len(sl)).Float64("radius_deg", radius.Deg()).
		Str("center", center.String()).Msg("catalog shortlist")
	return sl
}

// Query parameterizes Search.
type Query struct {
	Radius unit.Angle

	// DM filtering applies only when UseDM is set.  Entries without a
	// catalogued DM pass the filter.
	UseDM bool
	DM    float64
	DMTol float64
}

// Match is a copy of a catalog entry annotated with its distance from the
// search target.
type Match struct {
	Entry

	Sep       unit.Angle
	SepArcmin float64
	SepDeg    float64

	DistPc float64 // DistKpc × 1000, valid when Has&HasDist != 0
}

// Search returns entries within q.Radius of target sorted by increasing
// separation.  It scans list if list is non-nil, otherwise the whole
// catalog.
//
// Filters run cheapest first: DM, declination band, RA band, then the
// exact separation.  The band filters only reject entries whose
// separation provably exceeds the radius.
func (c *Catalog) Search(target sky.Coord, q Query, list []*Entry) []Match {
	if list == nil {
		list = c.entries
	}
	return search(target, q, list)
}

func search(target sky.Coord, q Query, list []*Entry) []Match {
	rDeg := q.Radius.Deg()
	tRA := target.RADeg()
	tDec := target.DecDeg()
	raHalf := raHalfWidth(tDec, rDeg)

	var ms []Match
	for _, e := range list {
		if e.Pos == nil {
			continue
		}
		if q.UseDM && e.Has&HasDM != 0 && math.Abs(e.DM-q.DM) > q.DMTol {
			continue
		}
		if math.Abs(e.decDeg-tDec) > rDeg+slack {
			continue
		}
		if raHalf >= 0 && raDiff(e.raDeg, tRA) > raHalf+slack {
			continue
		}
		sep := target.Sep(*e.Pos)
		if sep > q.Radius {
			continue
		}
		m := Match{
			Entry:     *e,
			Sep:       sep,
			SepDeg:    sep.Deg(),
			SepArcmin: sep.Deg() * 60,
		}
		if e.Has&HasDist != 0 {
			m.DistPc = e.DistKpc * 1000
		}
		ms = append(ms, m)
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Sep < ms[j].Sep })
	return ms
}

// raHalfWidth returns the largest RA difference, in degrees, of any point
// within r degrees of a target at declination dec.  The bound widens as
// |dec| grows and is -1, meaning no RA limit, once the circle reaches a
// pole.
func raHalfWidth(dec, r float64) float64 {
	if math.Abs(dec)+r >= 90 {
		return -1
	}
	const d2r = math.Pi / 180
	s := math.Sin(r*d2r) / math.Cos(dec*d2r)
	if s >= 1 {
		return -1
	}
	return math.Asin(s) / d2r
}

// raDiff returns |a-b| in degrees accounting for wrap at 0°/360°.
func raDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
