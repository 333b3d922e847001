// Public domain.

package candfile

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
)

// ClassificationHeader is the header of a short classification file.
var ClassificationHeader = []string{"beamid", "utc", "png", "classification"}

// Classification is one row of a short classification file.
type Classification struct {
	BeamID int
	UTC    string
	PNG    string
	Class  cand.Type
}

// WriteClassification writes the short form, one row per candidate.
func WriteClassification(w io.Writer, cs []*cand.Candidate) error {
	cw := csv.NewWriter(w)
	cw.Write(ClassificationHeader)
	for _, c := range cs {
		cw.Write([]string{strconv.Itoa(c.BeamID), c.UTC, c.PNGPath, string(c.Class)})
	}
	cw.Flush()
	return cw.Error()
}

// WriteFull writes header and each candidate's input fields with its
// classification in the classification column, which is appended if the
// header has none.  The result reads back with ReadTable, the
// classification becoming each candidate's label.
func WriteFull(w io.Writer, header []string, cs []*cand.Candidate) error {
	hd := newHeader(header)
	ci := -1
	for _, n := range colClass {
		if i, ok := hd[n]; ok {
			ci = i
			break
		}
	}
	h := header
	if ci < 0 {
		h = append(append([]string(nil), header...), colClass[0])
		ci = len(header)
	}
	cw := csv.NewWriter(w)
	cw.Write(h)
	for _, c := range cs {
		rec := append([]string(nil), c.Record...)
		for len(rec) < len(h) {
			rec = append(rec, "")
		}
		rec[ci] = string(c.Class)
		cw.Write(rec)
	}
	cw.Flush()
	return cw.Error()
}

// ReadClassification reads a short classification file.  Rows with fewer
// than four fields are skipped.
func ReadClassification(r io.Reader) ([]Classification, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var cl []Classification
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			return cl, nil
		}
		if err != nil {
			return nil, err
		}
		if first && strings.TrimSpace(rec[0]) == ClassificationHeader[0] {
			continue
		}
		if len(rec) < 4 {
			continue
		}
		id, _ := strconv.Atoi(strings.TrimSpace(rec[0]))
		cl = append(cl, Classification{
			BeamID: id,
			UTC:    strings.TrimSpace(rec[1]),
			PNG:    strings.TrimSpace(rec[2]),
			Class:  cand.ParseType(rec[3]),
		})
	}
}
