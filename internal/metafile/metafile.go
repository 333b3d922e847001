// Public domain.

// Package metafile reads the JSON observation metafile that describes the
// formed beams of a pointing.
package metafile

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/vivekvenkris/CandyWeb/internal/beam"
	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// Metafile is the parsed content of a metafile.
type Metafile struct {
	FileName        string
	UTC             string
	Project         string
	ScheduleBlockID string
	OutputDir       string
	CentreFreq      float64 // MHz
	Bandwidth       float64 // MHz

	Beams     map[string]*beam.Beam
	Boresight *sky.Coord // nil if not recorded

	// Bounds of beam centers, RA in hours and Dec in degrees.  Valid when
	// Beams is not empty.  RA bounds do not account for wrap at 0h.
	MinRA, MaxRA   float64
	MinDec, MaxDec float64
}

// file mirrors the JSON layout.  Beams and the beam shape each come in two
// forms, so they are decoded in a second step.
type file struct {
	UTC             string                     `json:"utc"`
	Project         string                     `json:"project_name"`
	ScheduleBlockID any                        `json:"schedule_block_id"`
	OutputDir       string                     `json:"output_dir"`
	CentreFreq      float64                    `json:"centre_freq"`
	Bandwidth       float64                    `json:"bandwidth"`
	Beamshape       json.RawMessage            `json:"beamshape"`
	Beams           map[string]json.RawMessage `json:"beams"`
	Boresight       json.RawMessage            `json:"boresight"`
}

// shape is the global beam shape of the legacy form; angle is degrees.
type shape struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Angle *float64 `json:"angle"`
}

// beamObj is a beam in the object form; angle is radians.
type beamObj struct {
	RA       *float64 `json:"ra"`  // hours
	Dec      *float64 `json:"dec"` // degrees
	EllipseX *float64 `json:"ellipse_x"`
	EllipseY *float64 `json:"ellipse_y"`
	Angle    *float64 `json:"ellipse_angle"`
}

// LoadFile reads a metafile.  A nil logger disables logging.
func LoadFile(fn string, log *zerolog.Logger) (*Metafile, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	m, err := Parse(b, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	m.FileName = filepath.Base(fn)
	return m, nil
}

// Parse decodes metafile JSON.
//
// A beam is either an object {ra, dec, ellipse_x, ellipse_y, ellipse_angle}
// or a legacy string "id,num,ra,dec" with sexagesimal coordinates, whose
// ellipse comes from the global beamshape.  Incoherent beams, named ifbf,
// are skipped, as are beams without a usable position.  An ellipse is
// attached only when all three of its parameters are present.
func Parse(b []byte, log *zerolog.Logger) (*Metafile, error) {
	l := zerolog.Nop()
	if log != nil {
		l = *log
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	m := &Metafile{
		UTC:        f.UTC,
		Project:    f.Project,
		OutputDir:  f.OutputDir,
		CentreFreq: f.CentreFreq,
		Bandwidth:  f.Bandwidth,
		Beams:      map[string]*beam.Beam{},
	}
	if f.ScheduleBlockID != nil {
		m.ScheduleBlockID = fmt.Sprint(f.ScheduleBlockID)
	}
	global := parseShape(f.Beamshape)

	var ras, decs []float64
	for name, raw := range f.Beams {
		if strings.Contains(strings.ToLower(name), "ifbf") {
			continue
		}
		bm, ok := parseBeam(name, raw, global)
		if !ok {
			l.Debug().Str("beam", name).Msg("beam without usable position skipped")
			continue
		}
		m.Beams[name] = bm
		ras = append(ras, bm.Pos.RAHour())
		decs = append(decs, bm.Pos.DecDeg())
	}
	if len(ras) > 0 {
		m.MinRA, m.MaxRA = floats.Min(ras), floats.Max(ras)
		m.MinDec, m.MaxDec = floats.Min(decs), floats.Max(decs)
	}
	if len(f.Boresight) > 0 {
		if bs, ok := parseBeam("boresight", f.Boresight, nil); ok {
			m.Boresight = &bs.Pos
		}
	}
	l.Info().Str("utc", m.UTC).Int("beams", len(m.Beams)).
		Bool("boresight", m.Boresight != nil).Msg("metafile read")
	return m, nil
}

// parseShape decodes the global beam shape, given either as an object or
// as a string holding JSON.  It returns nil unless x, y and angle are all
// present.
func parseShape(raw json.RawMessage) *beam.Ellipse {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		raw = json.RawMessage(s)
	}
	var sh shape
	if json.Unmarshal(raw, &sh) != nil || sh.X == nil || sh.Y == nil || sh.Angle == nil {
		return nil
	}
	return &beam.Ellipse{A: *sh.X, B: *sh.Y, Angle: *sh.Angle * math.Pi / 180}
}

func parseBeam(name string, raw json.RawMessage, global *beam.Ellipse) (*beam.Beam, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		f := strings.Split(s, ",")
		if len(f) < 4 {
			return nil, false
		}
		pos, ok := sky.Parse(f[2], f[3])
		if !ok {
			return nil, false
		}
		bm := &beam.Beam{Name: name, Pos: pos}
		if global != nil {
			e := *global
			bm.Ellipse = &e
		}
		return bm, true
	}
	var o beamObj
	if json.Unmarshal(raw, &o) != nil || o.RA == nil || o.Dec == nil {
		return nil, false
	}
	if *o.RA < 0 || *o.RA >= 24 || math.Abs(*o.Dec) > 90 {
		return nil, false
	}
	bm := &beam.Beam{Name: name, Pos: sky.New(*o.RA, *o.Dec)}
	if o.EllipseX != nil && o.EllipseY != nil && o.Angle != nil {
		bm.Ellipse = &beam.Ellipse{A: *o.EllipseX, B: *o.EllipseY, Angle: *o.Angle}
	}
	return bm, true
}
