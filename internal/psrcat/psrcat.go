// Public domain.

// Package psrcat loads the ATNF pulsar catalogue database file, psrcat.db,
// and answers positional queries against it.
//
// A Catalog is read once and never modified afterward, so a single
// Catalog, and any shortlists taken from it, may be queried from many
// goroutines without locking.
package psrcat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/soniakeys/coord"

	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// Field flags record which optional values of an Entry were present and
// parsed.
type Field uint8

const (
	HasRA Field = 1 << iota
	HasDec
	HasP0
	HasF0
	HasDM
	HasDist
)

// Entry is one known pulsar.
type Entry struct {
	Name  string // PSRJ
	NameB string // PSRB, may be empty

	RAText, DecText string // as written in the catalogue

	// Pos is nil unless both RAJ and DECJ parsed.  Entries without a
	// position are kept but never returned by spatial queries.
	Pos *sky.Coord

	P0      float64 // s
	F0      float64 // Hz
	DM      float64 // pc cm⁻³
	DistKpc float64 // DIST_DM, kpc

	Has Field

	// cached for filtering
	raDeg, decDeg float64
	vec           coord.Cart
}

// Frequency returns F0, or 1/P0 when only the period is known.
func (e *Entry) Frequency() (float64, bool) {
	switch {
	case e.Has&HasF0 != 0:
		return e.F0, true
	case e.Has&HasP0 != 0 && e.P0 != 0:
		return 1 / e.P0, true
	}
	return 0, false
}

// Period returns P0, or 1/F0 when only the frequency is known.
func (e *Entry) Period() (float64, bool) {
	switch {
	case e.Has&HasP0 != 0:
		return e.P0, true
	case e.Has&HasF0 != 0 && e.F0 != 0:
		return 1 / e.F0, true
	}
	return 0, false
}

// Catalog is an ordered, read-only collection of entries.
type Catalog struct {
	entries []*Entry
	log     zerolog.Logger
}

// Entries returns the catalog entries in file order.  The slice must not
// be modified.
func (c *Catalog) Entries() []*Entry { return c.entries }

// Len returns the number of entries, with or without positions.
func (c *Catalog) Len() int { return len(c.entries) }

// Delim begins a line that ends a record.
const Delim = "@-"

// LoadFile reads a psrcat.db file.  A nil logger disables logging.
func LoadFile(fn string, log *zerolog.Logger) (*Catalog, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	c, err := Read(f, log)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", fn, err)
	}
	return c, nil
}

// Read parses psrcat.db text.
//
// Each record is a sequence of "KEY value ..." lines ended by a line
// beginning with Delim.  Blank lines, '#' comments, unknown keys and
// values that do not parse are quietly ignored; only a read error is
// returned.
func Read(r io.Reader, log *zerolog.Logger) (*Catalog, error) {
	c := &Catalog{log: zerolog.Nop()}
	if log != nil {
		c.log = *log
	}
	var cur *Entry
	flush := func() {
		if cur != nil {
			cur.finish()
			c.entries = append(c.entries, cur)
			cur = nil
		}
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", line[0] == '#':
			continue
		case strings.HasPrefix(line, Delim):
			flush()
			continue
		}
		f := strings.Fields(line)
		if len(f) < 2 {
			continue
		}
		if cur == nil {
			cur = &Entry{}
		}
		cur.set(f[0], f[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()

	np := 0
	for _, e := range c.entries {
		if e.Pos != nil {
			np++
		}
	}
	c.log.Info().Int("entries", len(c.entries)).Int("with_position", np).
		Msg("catalog loaded")
	return c, nil
}

func (e *Entry) set(key, val string) {
	num := func(fl Field, p *float64) {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			*p = v
			e.Has |= fl
		}
	}
	switch key {
	case "PSRJ":
		e.Name = val
	case "PSRB":
		e.NameB = val
	case "RAJ":
		e.RAText = val
	case "DECJ":
		e.DecText = val
	case "P0":
		num(HasP0, &e.P0)
	case "F0":
		num(HasF0, &e.F0)
	case "DM":
		num(HasDM, &e.DM)
	case "DIST_DM":
		num(HasDist, &e.DistKpc)
	}
}

// finish parses the position text and fills the filter caches.
func (e *Entry) finish() {
	ra, raOK := sky.ParseRA(e.RAText)
	if raOK {
		e.Has |= HasRA
	}
	dec, decOK := sky.ParseDec(e.DecText)
	if decOK {
		e.Has |= HasDec
	}
	if !raOK || !decOK {
		return
	}
	p := sky.Coord{RA: ra, Dec: dec}
	e.Pos = &p
	e.raDeg = p.RADeg()
	e.decDeg = p.DecDeg()
	e.vec = p.Cart()
}
