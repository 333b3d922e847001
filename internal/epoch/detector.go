// Public domain.

package epoch

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
)

// Match is an accepted pair.  AIndex and BIndex are positions in the
// slices passed to Compare.
type Match struct {
	Index          int
	AIndex, BIndex int
	A, B           *cand.Candidate
	Relation
}

// Sink receives each match after all matching is complete, in Index
// order.  A Sink typically renders a side by side comparison.
type Sink interface {
	Render(ctx context.Context, m *Match) error
}

// Detector compares two epochs.
type Detector struct {
	cfg  Config
	sink Sink
	log  zerolog.Logger
}

// New creates a Detector.  sink may be nil.  A nil logger disables logging.
func New(cfg Config, sink Sink, log *zerolog.Logger) *Detector {
	d := &Detector{cfg: cfg, sink: sink, log: zerolog.Nop()}
	if log != nil {
		d.log = *log
	}
	return d
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config { return d.cfg }

// Compare tests every candidate of b against every candidate of a.
//
// Candidates at a listed RFI period are skipped on both sides.  The
// a candidates are spread over a pool of workers, each scanning all of b.
// Matches are returned ordered by (AIndex, BIndex) and numbered from 0 in
// that order, independent of the number of workers or the order in which
// they finish.  Each match is then passed to the sink.  A sink error is
// logged and does not stop the remaining matches.
func (d *Detector) Compare(ctx context.Context, a, b []*cand.Candidate) ([]Match, error) {
	bi := d.clean(b)
	slots := make([][]Match, len(a))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers())
	nRFI := 0
	for i, ca := range a {
		if d.cfg.IsRFI(ca) {
			nRFI++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, j := range bi {
				if r := Related(ca, b[j], &d.cfg); r.Match {
					slots[i] = append(slots[i], Match{
						AIndex: i, BIndex: j, A: ca, B: b[j], Relation: r})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ms []Match
	for _, s := range slots {
		for _, m := range s {
			m.Index = len(ms)
			ms = append(ms, m)
		}
	}
	d.log.Info().Int("obs1", len(a)).Int("obs2", len(b)).
		Int("rfi_obs1", nRFI).Int("rfi_obs2", len(b)-len(bi)).
		Int("matches", len(ms)).Msg("epochs compared")

	if d.sink == nil {
		return ms, nil
	}
	for i := range ms {
		if err := ctx.Err(); err != nil {
			return ms, err
		}
		m := &ms[i]
		d.log.Debug().Int("match", m.Index).Int("obs1_line", m.A.Line).
			Int("obs2_line", m.B.Line).Float64("delta_dm", m.DeltaDM).
			Float64("delta_period_ms", m.DeltaPeriod*1000).Msg("match")
		if err := d.sink.Render(ctx, m); err != nil {
			d.log.Warn().Err(err).Int("match", m.Index).Msg("render failed")
		}
	}
	return ms, nil
}

// clean returns indices of b not at an RFI period.
func (d *Detector) clean(b []*cand.Candidate) []int {
	bi := make([]int, 0, len(b))
	for j, c := range b {
		if !d.cfg.IsRFI(c) {
			bi = append(bi, j)
		}
	}
	return bi
}

func (d *Detector) workers() int {
	if d.cfg.Workers > 0 {
		return d.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}
