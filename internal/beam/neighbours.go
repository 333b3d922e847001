// Public domain.

package beam

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PartitionError reports the failure of the neighbour search for one beam.
type PartitionError struct {
	Beam string
	Err  error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("neighbours of beam %s: %v", e.Beam, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }

// Analyzer computes the neighbour graph of a set of beams.
type Analyzer struct {
	cfg     Config
	log     zerolog.Logger
	overlap func(a, b *Beam) bool
}

// New creates an Analyzer.  A nil logger disables logging.
func New(cfg Config, log *zerolog.Logger) *Analyzer {
	an := &Analyzer{cfg: cfg, log: zerolog.Nop()}
	if log != nil {
		an.log = *log
	}
	an.overlap = func(a, b *Beam) bool { return Overlaps(a, b, an.cfg) }
	return an
}

// FindNeighbours sets the Neighbours field of every beam to the sorted
// names of the other beams it overlaps.
//
// One task per beam runs on a pool of min(Cores, len(beams)) workers.  If
// any task fails the whole computation is rerun sequentially.  On error,
// including cancellation of ctx, no beam is modified.
func (an *Analyzer) FindNeighbours(ctx context.Context, beams map[string]*Beam) error {
	names := make([]string, 0, len(beams))
	for n := range beams {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil
	}

	res, err := an.parallel(ctx, beams, names)
	if err != nil {
		var pe *PartitionError
		if !errors.As(err, &pe) {
			return err
		}
		an.log.Warn().Err(err).Str("beam", pe.Beam).
			Msg("parallel neighbour search failed, running sequentially")
		if res, err = an.sequential(ctx, beams, names); err != nil {
			return err
		}
	}
	for i, n := range names {
		beams[n].Neighbours = res[i]
	}
	an.log.Debug().Int("beams", len(names)).Msg("neighbours computed")
	return nil
}

func (an *Analyzer) workers(n int) int {
	w := an.cfg.Cores
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > n {
		w = n
	}
	return w
}

func (an *Analyzer) parallel(ctx context.Context, beams map[string]*Beam, names []string) ([][]string, error) {
	res := make([][]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(an.workers(len(names)))
	for i := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			nb, err := an.neighbours(beams, names, i)
			res[i] = nb
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup cancels gctx only on failure; a parent cancelled after
	// the last task started is still reported.
	return res, ctx.Err()
}

func (an *Analyzer) sequential(ctx context.Context, beams map[string]*Beam, names []string) ([][]string, error) {
	res := make([][]string, len(names))
	for i := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nb, err := an.neighbours(beams, names, i)
		if err != nil {
			return nil, err
		}
		res[i] = nb
	}
	return res, nil
}

// neighbours computes the neighbours of beam names[i], converting a panic
// into a PartitionError.
func (an *Analyzer) neighbours(beams map[string]*Beam, names []string, i int) (nb []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			nb, err = nil, &PartitionError{Beam: names[i], Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	b := beams[names[i]]
	for j, n := range names {
		if j != i && an.overlap(b, beams[n]) {
			nb = append(nb, n)
		}
	}
	return nb, nil
}
