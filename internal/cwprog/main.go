// Public domain.

package cwprog

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/soniakeys/exit"

	"github.com/vivekvenkris/CandyWeb/internal/beam"
	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/candfile"
	"github.com/vivekvenkris/CandyWeb/internal/config"
	"github.com/vivekvenkris/CandyWeb/internal/harmonic"
	"github.com/vivekvenkris/CandyWeb/internal/logger"
	"github.com/vivekvenkris/CandyWeb/internal/metafile"
	"github.com/vivekvenkris/CandyWeb/internal/psrcat"
	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

const parentImport = "github.com/vivekvenkris/CandyWeb"
const versionString = "candyweb version 0.3 Go source."
const copyrightString = "Public domain."

// maxKnown is the most catalog matches printed per candidate.
const maxKnown = 3

func Main() {
	defer exit.Handler()

	// these functions all set up package vars and terminate on error
	cl := parseCommandLine()
	cfg, err := readConfig(cl)
	if err != nil {
		exit.Log(err)
	}
	run := uuid.New()
	logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		RunID:  run.String(),
	})
	log := logger.Named("candyweb")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cs := readCandidates(cl, log)

	// harmonic flags are per observation
	keys, groups := cand.GroupByUTC(cs)
	hd := harmonic.New(cfg.HarmonicConfig(), logger.Named("harmonic"))
	for _, k := range keys {
		hd.FindSimilar(groups[k])
	}

	var mf *metafile.Metafile
	if cl.meta != "" {
		if mf, err = metafile.LoadFile(cl.meta, logger.Named("metafile")); err != nil {
			exit.Log(err)
		}
		if cfg.Beams.CalculateNeighbours {
			an := beam.New(cfg.BeamConfig(), logger.Named("beam"))
			if err := an.FindNeighbours(ctx, mf.Beams); err != nil {
				exit.Log(err)
			}
		}
	}

	cat, err := psrcat.LoadFile(cfg.Catalog.Path, logger.Named("psrcat"))
	if err != nil {
		log.Error().Err(err).Msg("psrcat unavailable")
		exit.Log(`Set catalog.path in the config file or use -p.`)
	}
	an := newAnnotator(cfg, cat, mf)
	for _, k := range keys {
		an.shortlist(k, groups[k])
	}
	log.Info().Int("candidates", len(cs)).Int("observations", len(keys)).
		Int("catalog", cat.Len()).Msg("annotating")

	// headings, delayed until now to avoid printing them only to terminate
	// with an error message if some initialization fails.
	printHeadings()
	err = process(ctx, cs, an.line, runtime.GOMAXPROCS(0), func(s string) { fmt.Println(s) })
	if err != nil {
		exit.Log(err)
	}
}

type candSeq struct {
	c   *cand.Candidate
	rch chan string
}

// process formats each candidate with f on up to maxWorkers goroutines and
// passes results to out in input order.  When ctx is cancelled no more
// candidates are dispatched; results already dispatched are still passed
// to out, and ctx's error is returned.
func process(ctx context.Context, cs []*cand.Candidate, f func(*cand.Candidate) string, maxWorkers int, out func(string)) error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	// prCh keeps results in submission order.  it is buffered so that a
	// fast worker can drop off its result without waiting for workers
	// ahead of it.  the size must be at least maxWorkers.
	prCh := make(chan chan string, maxWorkers*2)
	seqCh := make(chan *candSeq)

	// dispatcher.  each candidate gets a return channel that works like a
	// ticket for picking up its result.  wait for an available worker,
	// hand over the candidate and drop the ticket in the print queue.
	var stopped error
	go func() {
		defer close(prCh)
		defer close(seqCh)
		for _, c := range cs {
			rch := make(chan string, 1)
			select {
			case seqCh <- &candSeq{c, rch}:
			case <-ctx.Done():
				stopped = ctx.Err()
				return
			}
			prCh <- rch
		}
	}()

	// workers are started only as the dispatcher calls for them.  we may
	// have more cores than candidates.
	go func() {
		for n := 0; n < maxWorkers; n++ {
			s, ok := <-seqCh
			if !ok {
				return
			}
			go worker(f, s, seqCh)
		}
	}()

	for rch := range prCh {
		out(<-rch)
	}
	return stopped // set before prCh closed
}

// worker handles s, then more candidates from seqCh until it is closed.
func worker(f func(*cand.Candidate) string, s *candSeq, seqCh chan *candSeq) {
	for ok := true; ok; s, ok = <-seqCh {
		s.rch <- f(s.c) // buffered.  just drop off results and continue
	}
}

// annotator holds the read-only state shared by workers.
type annotator struct {
	cfg     *config.Config
	cat     *psrcat.Catalog
	mf      *metafile.Metafile
	centers map[string]sky.Coord
	lists   map[string][]*psrcat.Entry
	byLine  map[int]*cand.Candidate
}

func newAnnotator(cfg *config.Config, cat *psrcat.Catalog, mf *metafile.Metafile) *annotator {
	return &annotator{
		cfg:     cfg,
		cat:     cat,
		mf:      mf,
		centers: map[string]sky.Coord{},
		lists:   map[string][]*psrcat.Entry{},
		byLine:  map[int]*cand.Candidate{},
	}
}

// shortlist takes the catalog shortlist for one observation, centered on
// the metafile boresight or else on the mean candidate position.  It must
// be called for every group before line.
func (an *annotator) shortlist(key string, cs []*cand.Candidate) {
	for _, c := range cs {
		an.byLine[c.Line] = c
	}
	var center sky.Coord
	switch p, ok := meanPosition(cs); {
	case an.mf != nil && an.mf.Boresight != nil:
		center = *an.mf.Boresight
	case ok:
		center = p
	default:
		return
	}
	an.centers[key] = center
	an.lists[key] = an.cat.Shortlist(center, an.cfg.ShortlistRadius())
}

// line searches the catalog for c and formats the output line.
func (an *annotator) line(c *cand.Candidate) string {
	var ms []psrcat.Match
	if c.Pos != nil {
		key := c.UTC
		if key == "" {
			key = "unknown"
		}
		q := an.cfg.CatalogQuery(c.DM)
		list := an.lists[key]
		// the shortlist answers only targets whose search circle it covers
		if center, ok := an.centers[key]; !ok ||
			center.Sep(*c.Pos)+q.Radius > an.cfg.ShortlistRadius() {
			list = nil
		}
		ms = an.cat.Search(*c.Pos, q, list)
	}
	var nb []string
	if an.mf != nil {
		if b, ok := an.mf.Beams[c.BeamName]; ok {
			nb = b.Neighbours
		}
	}
	sim := make([]string, len(c.Similar))
	for i, l := range c.Similar {
		sim[i] = strconv.Itoa(l)
		if o, ok := an.byLine[l]; ok {
			r, _ := harmonic.Ratio(o.F0, c.F0)
			sim[i] += fmt.Sprintf("(%.2f)", r)
		}
	}
	return formatLine(c, sim, ms, nb)
}

// meanPosition returns the normalized mean of candidate unit vectors.
func meanPosition(cs []*cand.Candidate) (sky.Coord, bool) {
	var x, y, z float64
	n := 0
	for _, c := range cs {
		if c.Pos == nil {
			continue
		}
		v := c.Pos.Cart()
		x += v.X
		y += v.Y
		z += v.Z
		n++
	}
	if n == 0 || x == 0 && y == 0 && z == 0 {
		return sky.Coord{}, false
	}
	ra := math.Atan2(y, x) * 180 / math.Pi
	if ra < 0 {
		ra += 360
	}
	dec := math.Atan2(z, math.Hypot(x, y)) * 180 / math.Pi
	return sky.NewDeg(ra, dec), true
}

func printHeadings() {
	fmt.Println(versionString)
	fmt.Printf("%5s %-11s %11s %8s %6s %-16s %-16s %s\n",
		"Line", "Beam", "Period(ms)", "DM", "S/N",
		"Similar", "Neighbours", "Known pulsars")
}

// formatLine builds one output line.  Empty lists print as "-".
func formatLine(c *cand.Candidate, sim []string, ms []psrcat.Match, nb []string) string {
	beamName := c.BeamName
	if beamName == "" {
		beamName = "-"
	}
	sn := c.SNFold
	if sn == 0 {
		sn = c.SNFFT
	}
	ol := fmt.Sprintf("%5d %-11s %11.5f %8.2f %6.1f", c.Line, beamName,
		c.Period()*1000, c.DM, sn)
	ol += fmt.Sprintf(" %-16s %-16s", list(sim), list(nb))

	known := make([]string, 0, maxKnown)
	for i := range ms {
		if i == maxKnown {
			known = append(known, fmt.Sprintf("(+%d)", len(ms)-maxKnown))
			break
		}
		known = append(known, fmt.Sprintf("%s %.1f'", ms[i].Name, ms[i].SepArcmin))
	}
	return ol + " " + list(known)
}

func list(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}

type commandLine struct {
	dc     string // config file
	dp     string // psrcat file, overrides config
	meta   string // metafile
	fnCand string // candidates
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.dc, "c", "", "")
	flag.StringVar(&cl.dp, "p", "", "")
	flag.StringVar(&cl.meta, "m", "", "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: candyweb [options] <candfile>    annotate candidates in file
       candyweb [options] -             annotate candidates from stdin
       candyweb -h                      display help and quick reference
       candyweb -v                      display version and copyright

Options:
       -c <config-file>
       -m <metafile>
       -p <psrcat-file>
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() != 1:
		flag.Usage()
		os.Exit(1)
	}
	cl.fnCand = flag.Arg(0)
	return &cl
}

func readConfig(cl *commandLine) (*config.Config, error) {
	cfg, err := config.LoadAndValidate(cl.dc)
	if err != nil {
		return nil, err
	}
	if cl.dp > "" {
		cfg.Catalog.Path = cl.dp
	}
	return cfg, nil
}

func readCandidates(cl *commandLine, log *zerolog.Logger) []*cand.Candidate {
	var cs []*cand.Candidate
	var err error
	if cl.fnCand == "-" {
		cs, err = candfile.Read(os.Stdin, logger.Named("candfile"))
	} else {
		cs, err = candfile.LoadFile(cl.fnCand, logger.Named("candfile"))
	}
	if err != nil {
		exit.Log(err)
	}
	if len(cs) == 0 {
		log.Warn().Str("file", cl.fnCand).Msg("no candidates")
	}
	return cs
}

func printHelp() {
	fmt.Println(`
Candyweb annotates a file of pulsar search candidates.  Within each
observation it flags candidates harmonically related to other candidates,
lists the neighbouring beams of each candidate's beam when a metafile is
given, and cross-matches each candidate position against psrcat.

Config file sections:
   log        level, format
   harmonic   freq_tolerance, scale_tolerance, dm_tolerance,
              include_fractions
   catalog    path, shortlist_radius_deg, search_radius_arcmin,
              dm_tolerance
   beams      calculate_neighbours, cores, samples, fallback_sep_deg,
              cos_dec
   epoch      used by command compare

Output columns:
   Line         candidate line number in the input file
   Beam         beam name
   Period(ms)   spin period
   DM           dispersion measure, pc cm^-3
   S/N          folded S/N, or FFT S/N if not folded
   Similar      lines of harmonically similar candidates, each with
                its frequency as a multiple of this candidate's
   Neighbours   overlapping beams
   Known        nearest catalog pulsars with separation in arc minutes

For full documentation:
   go doc ` + parentImport)
}
