// Public domain.

package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vivekvenkris/CandyWeb/internal/candfile"
)

// candidatesCSV is the candidate file name a search pipeline writes.
const candidatesCSV = "candidates.csv"

// Dir is a directory under the data root.
type Dir struct {
	Path          string `json:"path"` // relative to the data root
	Name          string `json:"name"`
	HasCandidates bool   `json:"has_candidates_csv"`
}

// directories lists the directories directly under the data root.
func (s *Server) directories(*http.Request) (any, error) {
	root := s.cfg.Server.DataRoot
	ents, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	ds := []Dir{}
	for _, e := range ents {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		_, err := os.Stat(filepath.Join(root, e.Name(), candidatesCSV))
		ds = append(ds, Dir{Path: e.Name(), Name: e.Name(), HasCandidates: err == nil})
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
	return map[string]any{
		"server_root": root,
		"directories": ds,
	}, nil
}

// image serves a plot file named by the path query parameter, relative
// to the data root.
func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		s.respondError(w, r, errorf(http.StatusBadRequest, "path query parameter required"))
		return
	}
	p, err := s.dataPath(rel)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if fi, err := os.Stat(p); err != nil || fi.IsDir() {
		s.respondError(w, r, errorf(http.StatusNotFound, "image not found"))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, p)
}

type saveRequest struct {
	BaseDir  string `json:"base_dir" validate:"required"`
	Filename string `json:"filename" validate:"required,endswith=.csv,excludesall=/\\"`
	User     string `json:"user" validate:"omitempty,alphanum"`
}

// saveClassification writes the session's classification in short and
// full form.  A user name replaces a trailing "_user" in the file name.
func (s *Server) saveClassification(r *http.Request) (any, error) {
	req, err := decode[saveRequest](s, r)
	if err != nil {
		return nil, err
	}
	name := req.Filename
	if req.User != "" {
		stem := strings.TrimSuffix(name, ".csv")
		stem = strings.TrimSuffix(stem, "_user")
		name = stem + "_" + req.User + ".csv"
	}
	fn, err := s.dataPath(req.BaseDir, name)
	if err != nil {
		return nil, err
	}
	full := strings.TrimSuffix(fn, ".csv") + "_full.csv"

	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, err := s.lookup(req.BaseDir)
	if err != nil {
		return nil, err
	}
	cs := ss.table.Candidates
	if err := writeFile(fn, func(f *os.File) error {
		return candfile.WriteClassification(f, cs)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(full, func(f *os.File) error {
		return candfile.WriteFull(f, ss.table.Header, cs)
	}); err != nil {
		return nil, err
	}
	s.log.Info().Str("file", fn).Int("candidates", len(cs)).Msg("classification saved")
	return map[string]string{
		"path":      fn,
		"full_path": full,
		"filename":  name,
	}, nil
}

// writeFile creates fn and writes it with w.
func writeFile(fn string, w func(*os.File) error) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := w(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type loadClassRequest struct {
	BaseDir  string `json:"base_dir" validate:"required"`
	Filename string `json:"filename" validate:"required,excludesall=/\\"`
}

// loadClassification reads a short classification file and applies it to
// the loaded session, matching candidates by UTC and plot path.
func (s *Server) loadClassification(r *http.Request) (any, error) {
	req, err := decode[loadClassRequest](s, r)
	if err != nil {
		return nil, err
	}
	fn, err := s.dataPath(req.BaseDir, req.Filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fn)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errorf(http.StatusNotFound, "%s not found", req.Filename)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cl, err := candfile.ReadClassification(f)
	if err != nil {
		return nil, errorf(http.StatusUnprocessableEntity, "%s: %v", req.Filename, err)
	}

	type key struct{ utc, png string }
	byKey := make(map[key]int, len(cl))
	for i, c := range cl {
		byKey[key{c.UTC, c.PNG}] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, err := s.lookup(req.BaseDir)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, c := range ss.table.Candidates {
		if i, ok := byKey[key{c.UTC, c.PNGPath}]; ok {
			c.Class = cl[i].Class
			n++
		}
	}
	return map[string]int{
		"classifications": len(cl),
		"applied":         n,
	}, nil
}
