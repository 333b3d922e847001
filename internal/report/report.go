// Public domain.

// Package report writes the results of a cross-epoch comparison.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/epoch"
)

// SummaryFile is the name of the summary written by WriteSummaryFile.
const SummaryFile = "matches_summary.csv"

// SummaryHeader lists the summary columns.
var SummaryHeader = []string{
	"match", "obs1_line", "obs2_line",
	"obs1_dm", "obs1_period_ms", "obs2_dm", "obs2_period_ms",
	"obs2_corrected_period_ms", "delta_dm", "delta_period_ms", "sep_arcsec",
	"obs1_png", "obs2_png",
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// WriteSummary writes one CSV row per match.  Separation is empty when
// either candidate lacks a position.
func WriteSummary(w io.Writer, ms []epoch.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	for i := range ms {
		m := &ms[i]
		sep := ""
		if m.HasSep {
			sep = ftoa(m.Sep.Deg() * 3600)
		}
		cw.Write([]string{
			strconv.Itoa(m.Index), strconv.Itoa(m.A.Line), strconv.Itoa(m.B.Line),
			ftoa(m.A.DM), ftoa(m.A.Period() * 1000),
			ftoa(m.B.DM), ftoa(m.B.Period() * 1000),
			ftoa(m.CorrectedPeriod * 1000), ftoa(m.DeltaDM), ftoa(m.DeltaPeriod * 1000), sep,
			m.A.PNGPath, m.B.PNGPath,
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryFile writes SummaryFile in dir.
func WriteSummaryFile(dir string, ms []epoch.Match) error {
	f, err := os.Create(filepath.Join(dir, SummaryFile))
	if err != nil {
		return err
	}
	if err := WriteSummary(f, ms); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Stats summarizes a set of matches.
type Stats struct {
	N                 int
	MeanDeltaDM       float64
	MaxDeltaDM        float64
	MeanDeltaPeriodMs float64
	MaxDeltaPeriodMs  float64
}

// Summarize computes Stats.  All fields are zero for no matches.
func Summarize(ms []epoch.Match) Stats {
	s := Stats{N: len(ms)}
	if len(ms) == 0 {
		return s
	}
	dm := make([]float64, len(ms))
	dp := make([]float64, len(ms))
	for i, m := range ms {
		dm[i] = m.DeltaDM
		dp[i] = m.DeltaPeriod * 1000
	}
	n := float64(len(ms))
	s.MeanDeltaDM = floats.Sum(dm) / n
	s.MaxDeltaDM = floats.Max(dm)
	s.MeanDeltaPeriodMs = floats.Sum(dp) / n
	s.MaxDeltaPeriodMs = floats.Max(dp)
	return s
}

// TableSink writes a side by side parameter table for each match to
// match_NNN.txt in Dir.
type TableSink struct {
	Dir   string
	RunID uuid.UUID
}

// NewTableSink returns a sink writing to dir under a fresh run ID.
func NewTableSink(dir string) *TableSink {
	return &TableSink{Dir: dir, RunID: uuid.New()}
}

// FileName returns the file name used for match index i.
func FileName(i int) string { return fmt.Sprintf("match_%03d.txt", i) }

// Render implements epoch.Sink.
func (s *TableSink) Render(ctx context.Context, m *epoch.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.Dir, FileName(m.Index)))
	if err != nil {
		return err
	}
	if err := WriteTable(f, s.RunID, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTable writes the comparison table of one match.
func WriteTable(w io.Writer, run uuid.UUID, m *epoch.Match) error {
	pos := func(c *cand.Candidate) string {
		if c.Pos == nil {
			return "-"
		}
		return c.Pos.String()
	}
	sep := "-"
	if m.HasSep {
		sep = fmt.Sprintf("%.1f", m.Sep.Deg()*3600)
	}
	_, err := fmt.Fprintf(w, `Match %d   run %s
OBS1 line %d vs OBS2 line %d
ΔDM = %.2f pc/cm³   ΔP₀ = %.6f ms   sep = %s arcsec
Tobs = %.0f s

%-22s %-24s %-24s
%-22s %-24s %-24s
%-22s %-24.4f %-24.4f
%-22s %-24.9f %-24.9f
%-22s %-24.9f %-24.9f
%-22s %-24.9f %-24.9f
%-22s %-24.3f %-24.3f
%-22s %-24.2f %-24.2f
%-22s %-24s %-24s
`,
		m.Index, run,
		m.A.Line, m.B.Line,
		m.DeltaDM, m.DeltaPeriod*1000, sep,
		m.Tobs,
		"", "OBS1", "OBS2",
		"position", pos(m.A), pos(m.B),
		"DM", m.A.DM, m.B.DM,
		"P0 (ms)", m.A.Period()*1000, m.B.Period()*1000,
		"P0 demodulated (ms)", m.A.Period()*1000, m.CorrectedPeriod*1000,
		"F0 (Hz)", m.A.F0, m.B.F0,
		"acc (m/s²)", m.A.Acc, m.B.Acc,
		"fold S/N", m.A.SNFold, m.B.SNFold,
		"png", m.A.PNGPath, m.B.PNGPath,
	)
	return err
}
