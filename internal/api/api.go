// Public domain.

// Package api serves candidate classification sessions over HTTP.
//
// A client loads a candidate file from under the data root, which starts
// a session keyed by the file's base directory.  It then filters, sorts
// and classifies candidates of the session and saves the classification
// back to the data root.  Sessions live in memory until the server exits.
package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/candfile"
	"github.com/vivekvenkris/CandyWeb/internal/config"
	"github.com/vivekvenkris/CandyWeb/internal/metafile"
	"github.com/vivekvenkris/CandyWeb/internal/psrcat"
	"github.com/vivekvenkris/CandyWeb/internal/valid"
)

// Version is reported by the root endpoint.
const Version = "0.3"

// Server holds the sessions and serves the API.
type Server struct {
	cfg   *config.Config
	cat   *psrcat.Catalog // nil when no catalog was loaded
	log   zerolog.Logger
	check *valid.Checker

	mu       sync.RWMutex
	sessions map[string]*session
}

// session is one loaded candidate file.  Candidate classes and the
// metafile cache are guarded by Server.mu.
type session struct {
	table  *candfile.Table
	utcs   []string
	byUTC  map[string][]*cand.Candidate
	byLine map[int]*cand.Candidate
	metas  map[string]*metafile.Metafile // by UTC
}

// New creates a Server.  cat may be nil, in which case catalog endpoints
// report 503.  A nil logger disables logging.
func New(cfg *config.Config, cat *psrcat.Catalog, log *zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		cat:      cat,
		log:      zerolog.Nop(),
		check:    valid.New("json"),
		sessions: map[string]*session{},
	}
	if log != nil {
		s.log = *log
	}
	_ = s.check.Register("ctype", func(fl valid.FieldLevel) bool {
		v := fl.Field().String()
		return cand.ParseType(v) != cand.Uncat || strings.EqualFold(v, string(cand.Uncat))
	}, "{0} {1} is not a candidate type")
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.RequestID, middleware.Recoverer,
		middleware.Timeout(60*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handle(s.root))
	r.Get("/health", s.handle(func(*http.Request) (any, error) {
		return map[string]string{"status": "healthy"}, nil
	}))
	r.Get("/config", s.handle(s.settings))

	r.Route("/api/files", func(r chi.Router) {
		r.Get("/directories", s.handle(s.directories))
		r.Get("/image", s.image)
		r.Post("/save-classification", s.handle(s.saveClassification))
		r.Post("/load-classification", s.handle(s.loadClassification))
	})
	r.Route("/api/candidates", func(r chi.Router) {
		r.Post("/load", s.handle(s.load))
		r.Post("/filter", s.handle(s.filter))
		r.Put("/classify", s.handle(s.classify))
		r.Post("/bulk-classify", s.handle(s.bulkClassify))
		r.Get("/{base}/similar/{line}", s.handle(s.similar))
		r.Get("/{base}/known/{line}", s.handle(s.known))
		r.Get("/{base}/stats", s.handle(s.stats))
		r.Get("/{base}/all", s.handle(s.all))
		r.Get("/{base}/metafile", s.handle(s.metafile))
	})
	return r
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Str("data_root", s.cfg.Server.DataRoot).
			Msg("http listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) root(*http.Request) (any, error) {
	return map[string]string{
		"message":   "CandyWeb API",
		"version":   Version,
		"data_root": s.cfg.Server.DataRoot,
	}, nil
}

func (s *Server) settings(*http.Request) (any, error) {
	return map[string]any{
		"data_root":            s.cfg.Server.DataRoot,
		"max_candidates":       s.cfg.Server.MaxCandidates,
		"calculate_neighbours": s.cfg.Beams.CalculateNeighbours,
		"catalog_loaded":       s.cat != nil,
	}, nil
}

// dataPath resolves rel under the data root.  Paths that would leave the
// root are rejected.
func (s *Server) dataPath(rel ...string) (string, error) {
	p := filepath.Join(rel...)
	if filepath.IsAbs(p) || p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
		return "", errorf(http.StatusBadRequest, "path %q is outside the data root", p)
	}
	return filepath.Join(s.cfg.Server.DataRoot, p), nil
}

// lookup returns the named session.  The caller must hold s.mu.
func (s *Server) lookup(base string) (*session, error) {
	ss, ok := s.sessions[base]
	if !ok {
		return nil, errorf(http.StatusNotFound, "candidates not loaded for %q", base)
	}
	return ss, nil
}

// candidate returns a candidate of a session by line.  The caller must
// hold s.mu.
func (s *Server) candidate(base string, line int) (*session, *cand.Candidate, error) {
	ss, err := s.lookup(base)
	if err != nil {
		return nil, nil, err
	}
	c, ok := ss.byLine[line]
	if !ok {
		return nil, nil, errorf(http.StatusNotFound, "candidate line %d not found", line)
	}
	return ss, c, nil
}
