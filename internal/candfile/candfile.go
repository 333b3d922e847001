// Public domain.

// Package candfile reads candidate CSV files written by the search
// pipeline and the classification exports made from them.
package candfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// ErrNoHeader is returned when no row names a known column.
var ErrNoHeader = errors.New("no header row")

// Column name alternatives, in order of preference.  Pipeline files use
// the first form; exports may use the others.
var (
	colDM     = []string{"dm_opt", "DM_opt", "dm", "DM"}
	colF0     = []string{"f0_opt", "F0", "f0"}
	colP0     = []string{"P0", "p0", "period"}
	colAcc    = []string{"acc_opt", "Acc", "acc", "acceleration"}
	colClass  = []string{"classification", "class"}
	colDMErr  = []string{"dm_opt_err"}
	colF0Err  = []string{"f0_opt_err"}
	colF1     = []string{"f1_opt"}
	colSNFFT  = []string{"sn_fft"}
	colSNFold = []string{"sn_fold"}
)

// header maps column names to field positions.
type header map[string]int

// colName cleans a header cell.  Spreadsheet exports may carry a byte
// order mark or compatibility forms of ASCII characters.
func colName(s string) string {
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)))
	if c, _, err := transform.String(t, s); err == nil {
		s = c
	}
	return strings.TrimSpace(s)
}

func newHeader(rec []string) header {
	h := header{}
	for i, f := range rec {
		f = colName(f)
		if _, dup := h[f]; !dup {
			h[f] = i
		}
		if strings.Contains(f, "_usr") {
			h[strings.Replace(f, "_usr", "_user", 1)] = i
		}
	}
	return h
}

// known reports whether rec looks like a header row.
func known(rec []string) bool {
	for _, f := range rec {
		switch colName(f) {
		case "utc_start", "pointing_id", "png_path", "dm_opt", "f0_opt":
			return true
		}
	}
	return false
}

// field returns the first named column present in rec, trimmed.
func (h header) field(rec []string, names ...string) (string, bool) {
	for _, n := range names {
		if i, ok := h[n]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i]), true
		}
	}
	return "", false
}

func (h header) num(rec []string, p *float64, names ...string) {
	if s, ok := h.field(rec, names...); ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*p = v
		}
	}
}

func (h header) integer(rec []string, p *int, names ...string) {
	if s, ok := h.field(rec, names...); ok {
		if v, err := strconv.Atoi(s); err == nil {
			*p = v
		}
	}
}

func (h header) text(rec []string, p *string, names ...string) {
	if s, ok := h.field(rec, names...); ok {
		*p = s
	}
}

// LoadFile reads a candidate CSV file.  A nil logger disables logging.
func LoadFile(fn string, log *zerolog.Logger) ([]*cand.Candidate, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cs, err := Read(f, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return cs, nil
}

// Read parses candidate CSV.
//
// The header is the first non-comment row that names a known column.
// Rows before it are ignored.  Each later row is numbered from 1 and,
// unless it has fewer than 5 fields, becomes a Candidate.  Fields that do
// not parse are left zero; a position is set only if both RA and Dec parse.
// Columns whose names contain "pics" are classifier scores.
func Read(r io.Reader, log *zerolog.Logger) ([]*cand.Candidate, error) {
	t, err := ReadTable(r, log)
	if err != nil {
		return nil, err
	}
	return t.Candidates, nil
}

// Table is a candidate file with its header row.
type Table struct {
	Header      []string
	Classifiers []string // score column names
	Candidates  []*cand.Candidate
}

// LoadTable reads a candidate CSV file as a Table.
func LoadTable(fn string, log *zerolog.Logger) (*Table, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadTable(f, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return t, nil
}

// ReadTable is Read, also returning the header.  Each candidate keeps
// its raw fields in Record.
func ReadTable(r io.Reader, log *zerolog.Logger) (*Table, error) {
	l := zerolog.Nop()
	if log != nil {
		l = *log
	}
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var h header
	t := &Table{}
	line, skipped := 0, 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if h == nil {
			if known(rec) {
				h = newHeader(rec)
				t.Header = rec
				for _, f := range rec {
					if f = colName(f); strings.Contains(strings.ToLower(f), "pics") {
						t.Classifiers = append(t.Classifiers, f)
					}
				}
			}
			continue
		}
		if known(rec) {
			continue // repeated header
		}
		line++
		if len(rec) < 5 {
			skipped++
			continue
		}
		c := h.candidate(rec, t.Classifiers)
		c.Line = line
		c.Record = rec
		t.Candidates = append(t.Candidates, c)
	}
	if h == nil {
		return nil, ErrNoHeader
	}
	l.Info().Int("candidates", len(t.Candidates)).Int("skipped", skipped).
		Strs("classifiers", t.Classifiers).Msg("candidates read")
	return t, nil
}

func (h header) candidate(rec []string, scores []string) *cand.Candidate {
	c := &cand.Candidate{}
	h.integer(rec, &c.PointingID, "pointing_id")
	h.integer(rec, &c.BeamID, "beam_id")
	h.text(rec, &c.BeamName, "beam_name")
	h.text(rec, &c.SourceName, "source_name")

	ra, _ := h.field(rec, "ra", "RA")
	dec, _ := h.field(rec, "dec", "DEC", "Dec")
	if p, ok := sky.Parse(ra, dec); ok {
		c.Pos = &p
	}
	h.num(rec, &c.GL, "gl")
	h.num(rec, &c.GB, "gb")

	h.text(rec, &c.UTC, "utc_start")
	h.num(rec, &c.MJD, "mjd_start")

	h.num(rec, &c.DM, colDM...)
	h.num(rec, &c.DMErr, colDMErr...)
	if _, ok := h.field(rec, colF0...); ok {
		h.num(rec, &c.F0, colF0...)
	} else {
		var p float64
		h.num(rec, &p, colP0...)
		if p > 0 {
			c.F0 = 1 / p
		}
	}
	h.num(rec, &c.F0Err, colF0Err...)
	h.num(rec, &c.F1, colF1...)
	h.num(rec, &c.Acc, colAcc...)
	h.num(rec, &c.SNFFT, colSNFFT...)
	h.num(rec, &c.SNFold, colSNFold...)
	h.num(rec, &c.PEpoch, "pepoch")
	h.num(rec, &c.MaxDMYMW16, "maxdm_ymw16")
	h.num(rec, &c.DistYMW16, "dist_ymw16")
	h.num(rec, &c.Tobs, "tobs")

	h.text(rec, &c.PNGPath, "png_path")
	h.text(rec, &c.MetafilePath, "metafile_path")
	h.text(rec, &c.FilterbankPath, "filterbank_path")
	h.text(rec, &c.TarballPath, "candidate_tarball_path")

	c.Class = cand.Uncat
	if s, ok := h.field(rec, colClass...); ok && s != "" {
		c.Label = s
		c.Class = cand.ParseType(s)
	}
	for _, n := range scores {
		s, _ := h.field(rec, n)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		if c.Scores == nil {
			c.Scores = map[string]float64{}
		}
		c.Scores[n] = v
	}
	return c
}
