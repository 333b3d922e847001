// Public domain.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/soniakeys/exit"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/candfile"
	"github.com/vivekvenkris/CandyWeb/internal/config"
	"github.com/vivekvenkris/CandyWeb/internal/epoch"
	"github.com/vivekvenkris/CandyWeb/internal/logger"
	"github.com/vivekvenkris/CandyWeb/internal/report"
)

const parentImport = "github.com/vivekvenkris/CandyWeb"
const versionString = "compare version 0.3"
const copyrightString = "Public domain."

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString(
			"Usage: compare [options] <epoch1-candfile> <epoch2-candfile>\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc ` + parentImport + `/compare
`)
	}
	fnConfig := flag.String("c", "", "config file")
	outDir := flag.String("o", ".", "output directory")
	all := flag.Bool("a", false, "compare all candidates, not just T1")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*fnConfig)
	if err != nil {
		exit.Log(err)
	}
	sink := report.NewTableSink(*outDir)
	logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		RunID:  sink.RunID.String(),
	})
	log := logger.Named("compare")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		exit.Log(err)
	}
	a := readEpoch(flag.Arg(0), *all)
	b := readEpoch(flag.Arg(1), *all)
	log.Info().Int("epoch1", len(a)).Int("epoch2", len(b)).Msg("comparing")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	d := epoch.New(cfg.EpochConfig(), sink, logger.Named("epoch"))
	ms, err := d.Compare(ctx, a, b)
	if err != nil {
		exit.Log(err)
	}
	if err := report.WriteSummaryFile(*outDir, ms); err != nil {
		exit.Log(err)
	}
	printReport(os.Stdout, flag.Arg(0), flag.Arg(1), sink.RunID, ms)
}

// readEpoch loads a candidate file, keeping only T1 candidates when the
// file carries classification labels and all is false.
func readEpoch(fn string, all bool) []*cand.Candidate {
	cs, err := candfile.LoadFile(fn, logger.Named("candfile"))
	if err != nil {
		exit.Log(err)
	}
	if all {
		return cs
	}
	return selectT1(cs)
}

func selectT1(cs []*cand.Candidate) []*cand.Candidate {
	for _, c := range cs {
		if c.Label != "" {
			return cand.FilterLabel(cs, "T1")
		}
	}
	return cs
}

func printReport(w io.Writer, fn1, fn2 string, run uuid.UUID, ms []epoch.Match) {
	s := report.Summarize(ms)
	fmt.Fprintln(w, "\nEpoch 1 file:      ", fn1)
	fmt.Fprintln(w, "Epoch 2 file:      ", fn2)
	fmt.Fprintln(w, "Run:               ", run)
	fmt.Fprintln(w, "Matches:           ", s.N)
	if s.N == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "                     mean       max")
	fmt.Fprintf(w, "Delta DM          %8.3f  %8.3f\n", s.MeanDeltaDM, s.MaxDeltaDM)
	fmt.Fprintf(w, "Delta period (ms) %8.5f  %8.5f\n", s.MeanDeltaPeriodMs, s.MaxDeltaPeriodMs)
	fmt.Fprintln(w)
	for _, m := range ms {
		fmt.Fprintf(w, "%4d  line %5d  ~  line %5d  %s\n",
			m.Index, m.A.Line, m.B.Line, report.FileName(m.Index))
	}
}
