// Public domain.

package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vivekvenkris/CandyWeb/internal/beam"
	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/candfile"
	"github.com/vivekvenkris/CandyWeb/internal/harmonic"
	"github.com/vivekvenkris/CandyWeb/internal/metafile"
)

type loadRequest struct {
	CSVPath string `json:"csv_path" validate:"required"`
	BaseDir string `json:"base_dir" validate:"required"`
}

func (s *Server) load(r *http.Request) (any, error) {
	req, err := decode[loadRequest](s, r)
	if err != nil {
		return nil, err
	}
	fn, err := s.dataPath(req.BaseDir, req.CSVPath)
	if err != nil {
		return nil, err
	}
	t, err := candfile.LoadTable(fn, &s.log)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, errorf(http.StatusNotFound, "%s not found", req.CSVPath)
	case errors.Is(err, candfile.ErrNoHeader):
		return nil, errorf(http.StatusUnprocessableEntity, "%v", err)
	case err != nil:
		return nil, err
	}

	ss := &session{
		table:  t,
		byLine: make(map[int]*cand.Candidate, len(t.Candidates)),
		metas:  map[string]*metafile.Metafile{},
	}
	ss.utcs, ss.byUTC = cand.GroupByUTC(t.Candidates)
	hd := harmonic.New(s.cfg.HarmonicConfig(), &s.log)
	for _, k := range ss.utcs {
		hd.FindSimilar(ss.byUTC[k])
	}
	sort.Strings(ss.utcs)
	for _, c := range t.Candidates {
		ss.byLine[c.Line] = c
	}

	s.mu.Lock()
	s.sessions[req.BaseDir] = ss
	s.mu.Unlock()
	s.log.Info().Str("base_dir", req.BaseDir).Int("candidates", len(t.Candidates)).
		Int("utcs", len(ss.utcs)).Msg("session loaded")

	return map[string]any{
		"total_candidates": len(t.Candidates),
		"utcs":             ss.utcs,
		"csv_header":       t.Header,
		"classifiers":      t.Classifiers,
	}, nil
}

type filterRequest struct {
	BaseDir   string   `json:"base_dir" validate:"required"`
	UTC       string   `json:"utc"`
	Types     []string `json:"types" validate:"dive,ctype"`
	SortBy    string   `json:"sort_by"`
	SortOrder string   `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// filter selects candidates by UTC and type and sorts them by a
// parameter.  Candidates lacking the parameter sort as zero.
func (s *Server) filter(r *http.Request) (any, error) {
	req, err := decode[filterRequest](s, r)
	if err != nil {
		return nil, err
	}
	if req.SortBy == "" {
		req.SortBy = "FOLD_SNR"
	}
	want := map[cand.Type]bool{}
	for _, t := range req.Types {
		want[cand.ParseType(t)] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, err := s.lookup(req.BaseDir)
	if err != nil {
		return nil, err
	}
	src := ss.table.Candidates
	if req.UTC != "" {
		src = ss.byUTC[req.UTC]
	}
	var cs []*cand.Candidate
	for _, c := range src {
		if len(want) == 0 || want[c.Class] {
			cs = append(cs, c)
		}
	}
	desc := req.SortOrder != "asc"
	sort.SliceStable(cs, func(i, j int) bool {
		a, _ := cs[i].Value(req.SortBy)
		b, _ := cs[j].Value(req.SortBy)
		if desc {
			return a > b
		}
		return a < b
	})
	total := len(cs)
	if n := s.cfg.Server.MaxCandidates; len(cs) > n {
		cs = cs[:n]
	}
	return map[string]any{
		"candidates": candidateViews(cs),
		"total":      total,
		"returned":   len(cs),
	}, nil
}

type classifyRequest struct {
	BaseDir string `json:"base_dir" validate:"required"`
	Line    int    `json:"line_num" validate:"gte=1"`
	Type    string `json:"candidate_type" validate:"required,ctype"`
}

func (s *Server) classify(r *http.Request) (any, error) {
	req, err := decode[classifyRequest](s, r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, c, err := s.candidate(req.BaseDir, req.Line)
	if err != nil {
		return nil, err
	}
	c.Class = cand.ParseType(req.Type)
	return candidateView(c), nil
}

type bulkRequest struct {
	BaseDir      string `json:"base_dir" validate:"required"`
	Lines        []int  `json:"line_nums" validate:"min=1,dive,gte=1"`
	Type         string `json:"candidate_type" validate:"required,ctype"`
	OnlySameBeam bool   `json:"only_same_beam"`
	BeamName     string `json:"beam_name" validate:"required_if=OnlySameBeam true"`
}

// bulkClassify sets the type of the listed candidates, optionally only
// those in one beam.  Unknown lines are ignored.
func (s *Server) bulkClassify(r *http.Request) (any, error) {
	req, err := decode[bulkRequest](s, r)
	if err != nil {
		return nil, err
	}
	t := cand.ParseType(req.Type)
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, err := s.lookup(req.BaseDir)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, l := range req.Lines {
		c, ok := ss.byLine[l]
		if !ok || req.OnlySameBeam && c.BeamName != req.BeamName {
			continue
		}
		c.Class = t
		n++
	}
	return map[string]int{"updated_count": n}, nil
}

// lineParams reads the base and line URL parameters.
func lineParams(r *http.Request) (string, int, error) {
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil {
		return "", 0, errorf(http.StatusBadRequest, "bad line number %q", chi.URLParam(r, "line"))
	}
	return chi.URLParam(r, "base"), line, nil
}

func (s *Server) similar(r *http.Request) (any, error) {
	base, line, err := lineParams(r)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, c, err := s.candidate(base, line)
	if err != nil {
		return nil, err
	}
	sim := make([]*cand.Candidate, 0, len(c.Similar))
	for _, l := range c.Similar {
		if o, ok := ss.byLine[l]; ok {
			sim = append(sim, o)
		}
	}
	return map[string]any{
		"target":  candidateView(c),
		"similar": candidateViews(sim),
		"count":   len(sim),
	}, nil
}

func (s *Server) known(r *http.Request) (any, error) {
	base, line, err := lineParams(r)
	if err != nil {
		return nil, err
	}
	if s.cat == nil {
		return nil, errorf(http.StatusServiceUnavailable, "pulsar catalog not loaded")
	}
	s.mu.RLock()
	_, c, err := s.candidate(base, line)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	pos, dm := c.Pos, c.DM
	s.mu.RUnlock()
	if pos == nil {
		return nil, errorf(http.StatusUnprocessableEntity, "candidate line %d has no position", line)
	}

	ms := s.cat.Search(*pos, s.cfg.CatalogQuery(dm), nil)
	ks := make([]Known, len(ms))
	for i := range ms {
		ks[i] = knownView(&ms[i])
	}
	return map[string]any{
		"line_num":      line,
		"radius_arcmin": s.cfg.Catalog.SearchRadiusArcmin,
		"known_pulsars": ks,
		"count":         len(ks),
	}, nil
}

func (s *Server) stats(r *http.Request) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, err := s.lookup(chi.URLParam(r, "base"))
	if err != nil {
		return nil, err
	}
	by := make(map[cand.Type]int, len(cand.Types))
	for _, t := range cand.Types {
		by[t] = 0
	}
	for _, c := range ss.table.Candidates {
		by[c.Class]++
	}
	return map[string]any{
		"total":   len(ss.table.Candidates),
		"by_type": by,
		"utcs":    ss.utcs,
	}, nil
}

func (s *Server) all(r *http.Request) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, err := s.lookup(chi.URLParam(r, "base"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"candidates": candidateViews(ss.table.Candidates),
		"total":      len(ss.table.Candidates),
	}, nil
}

// metafile returns the metafile of one UTC of a session.  It is loaded on
// first request, with neighbours computed if configured, and then cached.
func (s *Server) metafile(r *http.Request) (any, error) {
	base := chi.URLParam(r, "base")
	utc := r.URL.Query().Get("utc")
	if utc == "" {
		return nil, errorf(http.StatusBadRequest, "utc query parameter required")
	}

	s.mu.RLock()
	ss, err := s.lookup(base)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	if m, ok := ss.metas[utc]; ok {
		s.mu.RUnlock()
		return metafileView(m), nil
	}
	var rel string
	for _, c := range ss.byUTC[utc] {
		if c.MetafilePath != "" {
			rel = c.MetafilePath
			break
		}
	}
	s.mu.RUnlock()
	if rel == "" {
		return nil, errorf(http.StatusNotFound, "no metafile for utc %q", utc)
	}

	fn, err := s.dataPath(base, rel)
	if err != nil {
		return nil, err
	}
	m, err := metafile.LoadFile(fn, &s.log)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errorf(http.StatusNotFound, "metafile %s not found", filepath.Base(rel))
	}
	if err != nil {
		return nil, errorf(http.StatusUnprocessableEntity, "%v", err)
	}
	if s.cfg.Beams.CalculateNeighbours {
		an := beam.New(s.cfg.BeamConfig(), &s.log)
		if err := an.FindNeighbours(r.Context(), m.Beams); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if prev, ok := ss.metas[utc]; ok {
		m = prev
	} else {
		ss.metas[utc] = m
	}
	s.mu.Unlock()
	return metafileView(m), nil
}
