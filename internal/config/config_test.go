// Public domain.

package config

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vivekvenkris/CandyWeb/internal/epoch"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candyweb.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Harmonic.FreqTolerance != 1e-4 || c.Harmonic.DMTolerance != 5 {
		t.Errorf("harmonic = %+v", c.Harmonic)
	}
	if c.Catalog.ShortlistRadiusDeg != 10 || c.Catalog.SearchRadiusArcmin != 5 {
		t.Errorf("catalog = %+v", c.Catalog)
	}
	if c.Beams.Cores != 8 || c.Beams.Samples != 100 || c.Beams.CalculateNeighbours {
		t.Errorf("beams = %+v", c.Beams)
	}
	if c.Epoch.DMThreshold != 100 || c.Epoch.PeriodThreshold != .001 ||
		c.Epoch.DefaultTobs != 1800 || len(c.Epoch.TobsTokens) != 4 {
		t.Errorf("epoch = %+v", c.Epoch)
	}
	if c.Server.Addr != ":8000" || c.Server.MaxCandidates != 10000 || len(c.Server.CORSOrigins) != 1 {
		t.Errorf("server = %+v", c.Server)
	}
	if p := c.EpochConfig().PosThresh.Deg() * 3600; math.Abs(p-600) > 1e-9 {
		t.Errorf("PosThresh = %g arcsec", p)
	}
}

func TestEpochConfigTokens(t *testing.T) {
	c := Default()
	e := c.EpochConfig()
	if !reflect.DeepEqual(e.TobsTokens, epoch.DefaultTobsTokens) {
		t.Fatalf("tokens = %+v", e.TobsTokens)
	}
	e.TobsTokens[0].Seconds = 1
	if c.Epoch.TobsTokens[0].Seconds != 7200 || epoch.DefaultTobsTokens[0].Seconds != 7200 {
		t.Fatal("converted tokens share storage")
	}
	// matcher types carry no serialization tags
	typ := reflect.TypeOf(epoch.TobsToken{})
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag; tag != "" {
			t.Errorf("epoch.TobsToken.%s tag %q", typ.Field(i).Name, tag)
		}
	}
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, `
harmonic:
  dm_tolerance: 2.5
catalog:
  path: /data/psrcat.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Harmonic.DMTolerance != 2.5 || cfg.Catalog.Path != "/data/psrcat.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	// Load alone leaves other keys zero
	if cfg.Harmonic.FreqTolerance != 0 {
		t.Errorf("FreqTolerance = %g, want 0", cfg.Harmonic.FreqTolerance)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv("PSRCAT_DIR", "/opt/psrcat")
	path := writeTempFile(t, `
catalog:
  path: ${PSRCAT_DIR}/psrcat.db
beams:
  calculate_neighbours: true
epoch:
  position_threshold_arcsec: 0
  rfi_periods: [0.02]
  tobs_tokens:
    - {token: 4hr, seconds: 14400}
`)
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalog.Path != "/opt/psrcat/psrcat.db" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if !cfg.Beams.CalculateNeighbours || cfg.Beams.Cores != 8 {
		t.Errorf("beams = %+v", cfg.Beams)
	}
	if cfg.Harmonic.FreqTolerance != 1e-4 {
		t.Errorf("FreqTolerance = %g, want default", cfg.Harmonic.FreqTolerance)
	}
	// an explicit zero disables the position test rather than defaulting
	if cfg.EpochConfig().PosThresh != 0 {
		t.Errorf("PosThresh = %v, want 0", cfg.EpochConfig().PosThresh)
	}
	e := cfg.EpochConfig()
	if len(e.TobsTokens) != 1 || e.TobsTokens[0].Seconds != 14400 || len(e.RFIPeriods) != 1 {
		t.Errorf("epoch = %+v", e)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWithDefaultsNoPath(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalog.Path != DefaultCatalogPath {
		t.Fatalf("Catalog.Path = %q", cfg.Catalog.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("no error for missing file")
	}
	if _, err := Load(writeTempFile(t, "harmonic: [1, 2")); err == nil {
		t.Error("no error for bad yaml")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"freq", func(c *Config) { c.Harmonic.FreqTolerance = 0 }, "harmonic.freq_tolerance"},
		{"shortlist", func(c *Config) { c.Catalog.ShortlistRadiusDeg = 200 }, "catalog.shortlist_radius_deg"},
		{"search", func(c *Config) { c.Catalog.SearchRadiusArcmin = -1 }, "catalog.search_radius_arcmin"},
		{"samples", func(c *Config) { c.Beams.Samples = 0 }, "beams.samples"},
		{"period", func(c *Config) { c.Epoch.PeriodThreshold = 0 }, "epoch.period_threshold"},
		{"token", func(c *Config) { c.Epoch.TobsTokens[1].Token = "" }, "epoch.tobs_tokens[1]"},
		{"rfi", func(c *Config) { c.Epoch.RFIPeriods = []float64{-1} }, "epoch.rfi_periods[0]"},
		{"max", func(c *Config) { c.Server.MaxCandidates = -5 }, "server.max_candidates"},
	}
	for _, tc := range cases {
		c := Default()
		tc.edit(c)
		err := c.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want mention of %s", tc.name, err, tc.want)
		}
	}
}

func TestLoadAndValidate(t *testing.T) {
	_, err := LoadAndValidate(writeTempFile(t, "beams:\n  fallback_sep_deg: -1\n"))
	if err == nil || !strings.Contains(err.Error(), "validate config") {
		t.Fatalf("err = %v", err)
	}
}
