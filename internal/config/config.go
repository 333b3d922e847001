// Public domain.

// Package config loads the YAML configuration shared by the candyweb,
// compare and serve commands.
//
// Example:
//
//	log:
//	  level: info
//	catalog:
//	  path: ${PSRCAT_DIR}/psrcat.db
//	  search_radius_arcmin: 5
//	beams:
//	  calculate_neighbours: true
//	  cores: 8
//	epoch:
//	  dm_threshold: 2
//	  rfi_periods: [0.02, 0.0166667]
//
// Keys left out of the file keep their default values.
package config

import (
	"github.com/soniakeys/unit"

	"github.com/vivekvenkris/CandyWeb/internal/beam"
	"github.com/vivekvenkris/CandyWeb/internal/epoch"
	"github.com/vivekvenkris/CandyWeb/internal/harmonic"
	"github.com/vivekvenkris/CandyWeb/internal/psrcat"
	"github.com/vivekvenkris/CandyWeb/internal/sky"
)

// Config is the complete configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Harmonic HarmonicConfig `yaml:"harmonic"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Beams    BeamsConfig    `yaml:"beams"`
	Epoch    EpochConfig    `yaml:"epoch"`
	Server   ServerConfig   `yaml:"server"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"loglevel"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// HarmonicConfig configures harmonic similarity.
type HarmonicConfig struct {
	FreqTolerance    float64 `yaml:"freq_tolerance" validate:"gt=0,lt=1"`
	ScaleTolerance   bool    `yaml:"scale_tolerance"`
	DMTolerance      float64 `yaml:"dm_tolerance" validate:"gte=0"`
	IncludeFractions bool    `yaml:"include_fractions"`
}

// CatalogConfig configures the psrcat cross-match.
type CatalogConfig struct {
	Path               string  `yaml:"path"`
	ShortlistRadiusDeg float64 `yaml:"shortlist_radius_deg" validate:"gt=0,lte=180"`
	SearchRadiusArcmin float64 `yaml:"search_radius_arcmin" validate:"gt=0"`
	DMTolerance        float64 `yaml:"dm_tolerance" validate:"gte=0"` // 0 disables the DM filter
}

// BeamsConfig configures the beam neighbour search.
type BeamsConfig struct {
	CalculateNeighbours bool    `yaml:"calculate_neighbours"`
	Cores               int     `yaml:"cores" validate:"gte=0"`
	Samples             int     `yaml:"samples" validate:"gte=1"`
	FallbackSepDeg      float64 `yaml:"fallback_sep_deg" validate:"gte=0"`
	CosDec              bool    `yaml:"cos_dec"`
}

// EpochConfig configures cross-epoch comparison.
type EpochConfig struct {
	DMThreshold             float64     `yaml:"dm_threshold" validate:"gte=0"`
	PeriodThreshold         float64     `yaml:"period_threshold" validate:"gt=0"`
	PositionThresholdArcsec float64     `yaml:"position_threshold_arcsec" validate:"gte=0"` // 0 disables
	DefaultTobs             float64     `yaml:"default_tobs" validate:"gt=0"`
	TobsTokens              []TobsToken `yaml:"tobs_tokens" validate:"dive"`
	RFIPeriods              []float64   `yaml:"rfi_periods" validate:"dive,gt=0"`
	Workers                 int         `yaml:"workers" validate:"gte=0"`
}

// TobsToken maps an image path substring to an observation length in
// seconds.  Tokens are tried in order.
type TobsToken struct {
	Token   string  `yaml:"token" validate:"required"`
	Seconds float64 `yaml:"seconds" validate:"gt=0"`
}

// ServerConfig configures command serve.
type ServerConfig struct {
	Addr          string   `yaml:"addr" validate:"required"`
	DataRoot      string   `yaml:"data_root" validate:"required"`
	CORSOrigins   []string `yaml:"cors_origins"`
	MaxCandidates int      `yaml:"max_candidates" validate:"gte=1"`
}

// HarmonicConfig returns the harmonic detector configuration.
func (c *Config) HarmonicConfig() harmonic.Config {
	return harmonic.Config{
		FreqTol:          c.Harmonic.FreqTolerance,
		ScaleTol:         c.Harmonic.ScaleTolerance,
		DMTol:            c.Harmonic.DMTolerance,
		IncludeFractions: c.Harmonic.IncludeFractions,
	}
}

// ShortlistRadius returns the catalog shortlist radius.
func (c *Config) ShortlistRadius() unit.Angle {
	return unit.AngleFromDeg(c.Catalog.ShortlistRadiusDeg)
}

// CatalogQuery returns the per-candidate catalog query for a candidate
// at the given DM.
func (c *Config) CatalogQuery(dm float64) psrcat.Query {
	return psrcat.Query{
		Radius: sky.FromDecimal(c.Catalog.SearchRadiusArcmin, sky.Arcmin),
		UseDM:  c.Catalog.DMTolerance > 0 && dm != 0,
		DM:     dm,
		DMTol:  c.Catalog.DMTolerance,
	}
}

// BeamConfig returns the beam analyzer configuration.
func (c *Config) BeamConfig() beam.Config {
	return beam.Config{
		Cores:       c.Beams.Cores,
		Samples:     c.Beams.Samples,
		FallbackSep: c.Beams.FallbackSepDeg,
		CosDec:      c.Beams.CosDec,
	}
}

// EpochConfig returns the cross-epoch detector configuration.
func (c *Config) EpochConfig() epoch.Config {
	return epoch.Config{
		DMThresh:     c.Epoch.DMThreshold,
		PeriodThresh: c.Epoch.PeriodThreshold,
		PosThresh:    unit.AngleFromSec(c.Epoch.PositionThresholdArcsec),
		DefaultTobs:  c.Epoch.DefaultTobs,
		TobsTokens:   tobsTokens(c.Epoch.TobsTokens),
		RFIPeriods:   c.Epoch.RFIPeriods,
		Workers:      c.Epoch.Workers,
	}
}

func tobsTokens(ts []TobsToken) []epoch.TobsToken {
	r := make([]epoch.TobsToken, len(ts))
	for i, t := range ts {
		r[i] = epoch.TobsToken{Token: t.Token, Seconds: t.Seconds}
	}
	return r
}
