// Public domain.

package config

import (
	"github.com/vivekvenkris/CandyWeb/internal/beam"
	"github.com/vivekvenkris/CandyWeb/internal/epoch"
	"github.com/vivekvenkris/CandyWeb/internal/harmonic"
)

// Default values for optional configuration fields.
const (
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultCatalogPath        = "psrcat.db"
	DefaultShortlistRadiusDeg = 10.
	DefaultSearchRadiusArcmin = 5.
	DefaultPositionArcsec     = 600.
	DefaultAddr               = ":8000"
	DefaultDataRoot           = "."
	DefaultMaxCandidates      = 10000
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	h := harmonic.DefaultConfig()
	b := beam.DefaultConfig()
	e := epoch.DefaultConfig()
	c := &Config{
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Harmonic: HarmonicConfig{
			FreqTolerance:    h.FreqTol,
			ScaleTolerance:   h.ScaleTol,
			DMTolerance:      h.DMTol,
			IncludeFractions: h.IncludeFractions,
		},
		Catalog: CatalogConfig{
			Path:               DefaultCatalogPath,
			ShortlistRadiusDeg: DefaultShortlistRadiusDeg,
			SearchRadiusArcmin: DefaultSearchRadiusArcmin,
		},
		Beams: BeamsConfig{
			Cores:          b.Cores,
			Samples:        b.Samples,
			FallbackSepDeg: b.FallbackSep,
			CosDec:         b.CosDec,
		},
		Epoch: EpochConfig{
			DMThreshold:             e.DMThresh,
			PeriodThreshold:         e.PeriodThresh,
			PositionThresholdArcsec: DefaultPositionArcsec,
			DefaultTobs:             e.DefaultTobs,
			Workers:                 e.Workers,
		},
		Server: ServerConfig{
			Addr:          DefaultAddr,
			DataRoot:      DefaultDataRoot,
			CORSOrigins:   []string{"*"},
			MaxCandidates: DefaultMaxCandidates,
		},
	}
	c.applyDefaults()
	return c
}

// applyDefaults fills fields whose zero value is never meaningful.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = DefaultCatalogPath
	}
	if c.Beams.Samples == 0 {
		c.Beams.Samples = beam.DefaultConfig().Samples
	}
	if len(c.Epoch.TobsTokens) == 0 {
		for _, t := range epoch.DefaultTobsTokens {
			c.Epoch.TobsTokens = append(c.Epoch.TobsTokens, TobsToken{t.Token, t.Seconds})
		}
	}
	if c.Epoch.DefaultTobs == 0 {
		c.Epoch.DefaultTobs = epoch.DefaultConfig().DefaultTobs
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.DataRoot == "" {
		c.Server.DataRoot = DefaultDataRoot
	}
	if c.Server.MaxCandidates == 0 {
		c.Server.MaxCandidates = DefaultMaxCandidates
	}
}
