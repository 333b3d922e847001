// Public domain.

package api

import (
	"sort"
	"strings"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/metafile"
	"github.com/vivekvenkris/CandyWeb/internal/psrcat"
	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// Candidate is the JSON form of a candidate.
type Candidate struct {
	Line           int                `json:"line_num"`
	PointingID     int                `json:"pointing_id"`
	BeamID         int                `json:"beam_id"`
	BeamName       string             `json:"beam_name"`
	SourceName     string             `json:"source_name"`
	RA             string             `json:"ra,omitempty"`
	Dec            string             `json:"dec,omitempty"`
	RADeg          *float64           `json:"ra_deg,omitempty"`
	DecDeg         *float64           `json:"dec_deg,omitempty"`
	GL             float64            `json:"gl"`
	GB             float64            `json:"gb"`
	UTC            string             `json:"utc"`
	MJD            float64            `json:"mjd"`
	F0             float64            `json:"f0"`
	F1             float64            `json:"f1"`
	Acc            float64            `json:"acc"`
	DM             float64            `json:"dm"`
	PeriodMs       float64            `json:"period_ms"`
	SNFFT          float64            `json:"sn_fft"`
	SNFold         float64            `json:"sn_fold"`
	Tobs           float64            `json:"tobs"`
	PNGPath        string             `json:"png_path"`
	MetafilePath   string             `json:"metafile_path"`
	FilterbankPath string             `json:"filterbank_path"`
	Type           cand.Type          `json:"candidate_type"`
	Scores         map[string]float64 `json:"classifier_scores"`
	Similar        []int              `json:"similar_candidates"`
}

func candidateView(c *cand.Candidate) Candidate {
	v := Candidate{
		Line:           c.Line,
		PointingID:     c.PointingID,
		BeamID:         c.BeamID,
		BeamName:       c.BeamName,
		SourceName:     c.SourceName,
		GL:             c.GL,
		GB:             c.GB,
		UTC:            c.UTC,
		MJD:            c.MJD,
		F0:             c.F0,
		F1:             c.F1,
		Acc:            c.Acc,
		DM:             c.DM,
		PeriodMs:       c.Period() * 1000,
		SNFFT:          c.SNFFT,
		SNFold:         c.SNFold,
		Tobs:           c.Tobs,
		PNGPath:        c.PNGPath,
		MetafilePath:   c.MetafilePath,
		FilterbankPath: c.FilterbankPath,
		Type:           c.Class,
		Scores:         c.Scores,
		Similar:        c.Similar,
	}
	if c.Pos != nil {
		ra, dec := c.Pos.RADeg(), c.Pos.DecDeg()
		v.RADeg, v.DecDeg = &ra, &dec
		v.RA, v.Dec = splitCoord(*c.Pos)
	}
	return v
}

func candidateViews(cs []*cand.Candidate) []Candidate {
	vs := make([]Candidate, len(cs))
	for i, c := range cs {
		vs[i] = candidateView(c)
	}
	return vs
}

// splitCoord returns the sexagesimal RA and Dec of p.
func splitCoord(p sky.Coord) (ra, dec string) {
	ra, dec, _ = strings.Cut(p.String(), " ")
	return
}

// Known is the JSON form of a catalog match.
type Known struct {
	Name      string   `json:"name"`
	NameB     string   `json:"name_b,omitempty"`
	RA        string   `json:"ra"`
	Dec       string   `json:"dec"`
	SepArcmin float64  `json:"sep_arcmin"`
	DM        *float64 `json:"dm,omitempty"`
	PeriodMs  *float64 `json:"period_ms,omitempty"`
	DistPc    *float64 `json:"dist_pc,omitempty"`
}

func knownView(m *psrcat.Match) Known {
	k := Known{
		Name:      m.Name,
		NameB:     m.NameB,
		RA:        m.RAText,
		Dec:       m.DecText,
		SepArcmin: m.SepArcmin,
	}
	if m.Has&psrcat.HasDM != 0 {
		dm := m.DM
		k.DM = &dm
	}
	if p, ok := m.Period(); ok {
		p *= 1000
		k.PeriodMs = &p
	}
	if m.Has&psrcat.HasDist != 0 {
		d := m.DistPc
		k.DistPc = &d
	}
	return k
}

// Beam is the JSON form of a formed beam.
type Beam struct {
	Name       string   `json:"name"`
	RADeg      float64  `json:"ra_deg"`
	DecDeg     float64  `json:"dec_deg"`
	EllipseX   *float64 `json:"ellipse_x,omitempty"`
	EllipseY   *float64 `json:"ellipse_y,omitempty"`
	Angle      *float64 `json:"ellipse_angle,omitempty"`
	Neighbours []string `json:"neighbours"`
}

// Metafile is the JSON form of a metafile.
type Metafile struct {
	UTC        string      `json:"utc"`
	Project    string      `json:"project_name"`
	CentreFreq float64     `json:"centre_freq"`
	Bandwidth  float64     `json:"bandwidth"`
	Boresight  *[2]float64 `json:"boresight,omitempty"` // RA, Dec degrees
	MinRA      float64     `json:"min_ra"`
	MaxRA      float64     `json:"max_ra"`
	MinDec     float64     `json:"min_dec"`
	MaxDec     float64     `json:"max_dec"`
	Beams      []Beam      `json:"beams"`
}

func metafileView(m *metafile.Metafile) Metafile {
	v := Metafile{
		UTC:        m.UTC,
		Project:    m.Project,
		CentreFreq: m.CentreFreq,
		Bandwidth:  m.Bandwidth,
		MinRA:      m.MinRA,
		MaxRA:      m.MaxRA,
		MinDec:     m.MinDec,
		MaxDec:     m.MaxDec,
		Beams:      make([]Beam, 0, len(m.Beams)),
	}
	if m.Boresight != nil {
		v.Boresight = &[2]float64{m.Boresight.RADeg(), m.Boresight.DecDeg()}
	}
	for _, b := range m.Beams {
		bv := Beam{
			Name:       b.Name,
			RADeg:      b.Pos.RADeg(),
			DecDeg:     b.Pos.DecDeg(),
			Neighbours: b.Neighbours,
		}
		if e := b.Ellipse; e != nil {
			x, y, a := e.A, e.B, e.Angle
			bv.EllipseX, bv.EllipseY, bv.Angle = &x, &y, &a
		}
		if bv.Neighbours == nil {
			bv.Neighbours = []string{}
		}
		v.Beams = append(v.Beams, bv)
	}
	sort.Slice(v.Beams, func(i, j int) bool { return v.Beams[i].Name < v.Beams[j].Name })
	return v
}
