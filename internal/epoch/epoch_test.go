// Public domain.

package epoch_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	xrand "golang.org/x/exp/rand"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/epoch"
	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

func at(raHour, decDeg float64) *sky.Coord {
	p := sky.New(raHour, decDeg)
	return &p
}

// Scenario: a 5 m/s² acceleration difference over 1800 s moves 100 Hz by
// about 3 mHz; after demodulation the periods agree.
func TestRelatedScenario(t *testing.T) {
	a := &cand.Candidate{Line: 1, F0: 100, Acc: 0, DM: 30, Pos: at(12, -30)}
	b := &cand.Candidate{Line: 1, F0: 100.0000007, Acc: 5, DM: 30.2, Tobs: 1800, Pos: at(12, -30)}
	c := epoch.DefaultConfig()
	r := epoch.Related(a, b, &c)
	if !r.Match {
		t.Fatalf("no match: %+v", r)
	}
	want := 100.0000007 - 5*100.0000007*1800/epoch.C
	if math.Abs(r.CorrectedF0-want) > 1e-12 || math.Abs(r.CorrectedF0-99.997) > 1e-3 {
		t.Fatalf("CorrectedF0 = %.9f, want %.9f", r.CorrectedF0, want)
	}
	if math.Abs(r.DeltaDM-.2) > 1e-9 || r.DeltaPeriod > c.PeriodThresh {
		t.Fatalf("deltas = %g, %g", r.DeltaDM, r.DeltaPeriod)
	}
	if !r.HasSep || r.Sep != 0 {
		t.Fatalf("Sep = %v, %t", r.Sep, r.HasSep)
	}
}

func TestDemodulateEqualAcc(t *testing.T) {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(3)
	for n := 0; n < 1000; n++ {
		f := rnd.Float64() * 1000
		acc := (rnd.Float64() - .5) * 200
		tobs := rnd.Float64() * 7200
		if got := epoch.Demodulate(f, acc, acc, tobs); got != f {
			t.Fatalf("Demodulate(%g, %g, %g, %g) = %g", f, acc, acc, tobs, got)
		}
	}
}

func TestRelated(t *testing.T) {
	base := epoch.DefaultConfig()
	noPos := base
	noPos.PosThresh = 0
	cases := []struct {
		name string
		a, b cand.Candidate
		c    epoch.Config
		want bool
	}{
		{"identical", cand.Candidate{F0: 10, DM: 50, Pos: at(1, 1)},
			cand.Candidate{F0: 10, DM: 50, Pos: at(1, 1)}, base, true},
		{"dm", cand.Candidate{F0: 10, DM: 50, Pos: at(1, 1)},
			cand.Candidate{F0: 10, DM: 150.1, Pos: at(1, 1)}, base, false},
		{"near", cand.Candidate{F0: 10, DM: 50, Pos: at(1, 10)},
			cand.Candidate{F0: 10, DM: 50, Pos: at(1, 10.1)}, base, true},
		{"far", cand.Candidate{F0: 10, DM: 50, Pos: at(1, 10)},
			cand.Candidate{F0: 10, DM: 50, Pos: at(1, 10.2)}, base, false},
		{"no position", cand.Candidate{F0: 10, DM: 50},
			cand.Candidate{F0: 10, DM: 50, Pos: at(1, 1)}, base, false},
		{"no position, test off", cand.Candidate{F0: 10, DM: 50},
			cand.Candidate{F0: 10, DM: 50}, noPos, true},
		{"no frequency", cand.Candidate{DM: 50}, cand.Candidate{F0: 10, DM: 50}, noPos, false},
		// period exactly twice: direct difference 10 ms, wrapped 0
		{"double period", cand.Candidate{F0: 100, DM: 50},
			cand.Candidate{F0: 50, DM: 50}, noPos, true},
		// just over twice: wrap not tried
		{"ratio over 2", cand.Candidate{F0: 100, DM: 50},
			cand.Candidate{F0: 1 / .0205, DM: 50}, noPos, false},
		{"period", cand.Candidate{F0: 100, DM: 50},
			cand.Candidate{F0: 1 / .0115, DM: 50}, noPos, false},
		// corrected frequency goes negative
		{"overcorrected", cand.Candidate{F0: 10, DM: 50},
			cand.Candidate{F0: 10, DM: 50, Acc: 2e5}, noPos, false},
	}
	for _, tc := range cases {
		r := epoch.Related(&tc.a, &tc.b, &tc.c)
		if r.Match != tc.want {
			t.Errorf("%s: Match = %t, want %t (%+v)", tc.name, r.Match, tc.want, r)
		}
	}
}

func TestRelatedReportsSmallerDifference(t *testing.T) {
	c := epoch.DefaultConfig()
	c.PosThresh = 0
	r := epoch.Related(&cand.Candidate{F0: 100, DM: 1}, &cand.Candidate{F0: 50, DM: 1}, &c)
	if !r.Match || r.DeltaPeriod != 0 {
		t.Fatalf("DeltaPeriod = %g, want 0 (wrapped)", r.DeltaPeriod)
	}
	r = epoch.Related(&cand.Candidate{F0: 100, DM: 1}, &cand.Candidate{F0: 1 / .0205, DM: 1}, &c)
	if r.Match || math.Abs(r.DeltaPeriod-.0105) > 1e-12 {
		t.Fatalf("DeltaPeriod = %g, want direct .0105", r.DeltaPeriod)
	}
	r = epoch.Related(&cand.Candidate{F0: 100, DM: 1}, &cand.Candidate{F0: 100, DM: 200}, &c)
	if !math.IsInf(r.DeltaPeriod, 1) {
		t.Fatalf("DeltaPeriod after DM rejection = %g, want +Inf", r.DeltaPeriod)
	}
}

func TestTobs(t *testing.T) {
	c := epoch.DefaultConfig()
	for _, tc := range []struct {
		png  string
		tobs float64
		want float64
	}{
		{"/data/2hr/cand_001.png", 0, 7200},
		{"/data/obs_1hr_10min/x.png", 0, 3600}, // first token wins
		{"/data/10min/x.png", 0, 600},
		{"/data/x.png", 0, 1800},
		{"/data/2hr/x.png", 536.9, 536.9},
	} {
		if got := c.Tobs(&cand.Candidate{PNGPath: tc.png, Tobs: tc.tobs}); got != tc.want {
			t.Errorf("Tobs(%q, %g) = %g, want %g", tc.png, tc.tobs, got, tc.want)
		}
	}
}

func TestIsRFI(t *testing.T) {
	c := epoch.DefaultConfig()
	c.RFIPeriods = []float64{.02}
	if !c.IsRFI(&cand.Candidate{F0: 1 / .0295}) {
		t.Fatal("9.5 ms off, within 10 thresholds, not flagged")
	}
	if c.IsRFI(&cand.Candidate{F0: 1 / .0305}) {
		t.Fatal("10.5 ms off flagged")
	}
	if c.IsRFI(&cand.Candidate{}) {
		t.Fatal("candidate without period flagged")
	}
}

type recorder struct {
	mu  sync.Mutex
	idx []int
	err error
}

func (r *recorder) Render(_ context.Context, m *epoch.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = append(r.idx, m.Index)
	return r.err
}

// randomEpoch makes n candidates from a small set of periods and DMs so
// that many cross-epoch pairs match.
func randomEpoch(rnd *xrand.Rand, n int) []*cand.Candidate {
	cs := make([]*cand.Candidate, n)
	for i := range cs {
		cs[i] = &cand.Candidate{
			Line: i + 1,
			F0:   []float64{50, 100, 173.2}[rnd.Intn(3)] * (1 + (rnd.Float64()-.5)*1e-6),
			DM:   float64(10 * rnd.Intn(4)),
			Acc:  (rnd.Float64() - .5) * 2,
			Pos:  at(18, -10),
		}
	}
	return cs
}

func key(ms []epoch.Match) string {
	s := ""
	for _, m := range ms {
		s += fmt.Sprintf("%d:%d,%d ", m.Index, m.AIndex, m.BIndex)
	}
	return s
}

// Match numbering depends only on the inputs, never on worker count or
// scheduling.
func TestCompareDeterministic(t *testing.T) {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(7)
	a, b := randomEpoch(rnd, 60), randomEpoch(rnd, 60)
	var want string
	for _, w := range []int{1, 2, 3, 8, 0} {
		c := epoch.DefaultConfig()
		c.Workers = w
		rec := &recorder{}
		ms, err := epoch.New(c, rec, nil).Compare(context.Background(), a, b)
		if err != nil {
			t.Fatal(err)
		}
		if len(ms) == 0 {
			t.Fatal("no matches")
		}
		for i, m := range ms {
			if m.Index != i || rec.idx[i] != i {
				t.Fatalf("workers %d: match %d has Index %d, rendered %d", w, i, m.Index, rec.idx[i])
			}
			if i > 0 {
				p := ms[i-1]
				if p.AIndex > m.AIndex || p.AIndex == m.AIndex && p.BIndex >= m.BIndex {
					t.Fatalf("workers %d: matches out of order at %d", w, i)
				}
			}
		}
		k := key(ms)
		if want == "" {
			want = k
		} else if k != want {
			t.Fatalf("workers %d: result differs from workers 1", w)
		}
	}
}

func TestCompareRFI(t *testing.T) {
	c := epoch.DefaultConfig()
	c.RFIPeriods = []float64{.01}
	c.PosThresh = 0
	a := []*cand.Candidate{{Line: 1, F0: 100, DM: 5}, {Line: 2, F0: 7, DM: 5}}
	b := []*cand.Candidate{{Line: 1, F0: 100, DM: 5}, {Line: 2, F0: 7, DM: 5}}
	ms, err := epoch.New(c, nil, nil).Compare(context.Background(), a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 1 || ms[0].AIndex != 1 || ms[0].BIndex != 1 || ms[0].A.Line != 2 {
		t.Fatalf("matches = %s", key(ms))
	}
}

func TestCompareSinkError(t *testing.T) {
	c := epoch.DefaultConfig()
	c.PosThresh = 0
	a := []*cand.Candidate{{F0: 100, DM: 5}, {F0: 200, DM: 5}}
	rec := &recorder{err: errors.New("disk full")}
	ms, err := epoch.New(c, rec, nil).Compare(context.Background(), a, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != len(rec.idx) {
		t.Fatalf("%d matches, %d rendered", len(ms), len(rec.idx))
	}
}

func TestCompareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(1)
	a := randomEpoch(rnd, 10)
	rec := &recorder{}
	_, err := epoch.New(epoch.DefaultConfig(), rec, nil).Compare(ctx, a, a)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(rec.idx) != 0 {
		t.Fatal("rendered after cancellation")
	}
}

func ExampleDemodulate() {
	f := epoch.Demodulate(100, 5, 0, 1800)
	fmt.Printf("%.4f Hz\n", f)
	// Output:
	// 99.9970 Hz
}
