/*
Command candyweb annotates pulsar search candidates ahead of visual
classification.

Contents

Version 0.3

  Program overview
  Command line usage
  Configuration
  File formats
  Algorithm outline


Program overview

Input is a CSV file of candidates produced by a pulsar search pipeline, one
row per candidate, from one or more observations.  Output is one line per
candidate, in input order, listing other candidates of the same observation
that look like harmonics of it, the beams overlapping its beam, and known
pulsars from the ATNF catalogue near its position.

The companion command compare, in directory compare/, looks for the same
source detected in two different observing epochs.


Command line usage

Invoking the program without command line arguments (or with invalid
arguments) shows this usage prompt.

  Usage: candyweb [options] <candfile>    annotate candidates in file
         candyweb [options] -             annotate candidates from stdin
         candyweb -h                      display help and quick reference
         candyweb -v                      display version and copyright

  Options:
         -c <config-file>
         -m <metafile>
         -p <psrcat-file>

Option -p overrides catalog.path of the configuration file.  Without -m no
beam information is shown and the catalogue shortlist for each observation
is centered on the mean position of its candidates.


Configuration

The configuration file is YAML.  Every key is optional and ${VAR} references
are replaced from the environment.  Defaults are shown.

  log:
    level: info                    # trace, debug, info, warn, error, off
    format: console                # or json
  harmonic:
    freq_tolerance: 1e-4           # fractional half width of each band
    scale_tolerance: false         # multiply tolerance by the ratio
    dm_tolerance: 5
    include_fractions: false       # also test ratios j/i
  catalog:
    path: psrcat.db
    shortlist_radius_deg: 10
    search_radius_arcmin: 5
    dm_tolerance: 0                # 0 disables DM filtering
  beams:
    calculate_neighbours: false
    cores: 8
    samples: 100                   # perimeter points per ellipse
    fallback_sep_deg: 0.02         # used when a beam has no ellipse
    cos_dec: false
  epoch:                           # read by compare
    dm_threshold: 100
    period_threshold: 0.001        # s
    position_threshold_arcsec: 600 # 0 disables
    default_tobs: 1800             # s
    tobs_tokens:
      - {token: 2hr, seconds: 7200}
      - {token: 1hr, seconds: 3600}
      - {token: 30min, seconds: 1800}
      - {token: 10min, seconds: 600}
    rfi_periods: []                # s
    workers: 0                     # 0 means GOMAXPROCS
  server:                          # read by serve
    addr: ":8000"
    data_root: .
    cors_origins: ["*"]
    max_candidates: 10000          # most candidates returned by a filter

Diagnostics are logged to stderr, leaving stdout for the report.

The same configuration is read by commands compare, which searches two
epochs for the same source, and serve, which offers classification over
HTTP.  See go doc on each.


File formats

Candidate files are CSV.  The header is the first row naming one of
utc_start, pointing_id, png_path, dm_opt or f0_opt; rows before it and rows
starting with # are ignored.  Columns are matched by name, with aliases for
files exported from the classification viewer: dm_opt, DM_opt, dm or DM for
dispersion measure, f0_opt, F0 or f0 for spin frequency (or P0, p0 or
period for spin period), acc_opt, Acc, acc or acceleration for
acceleration, classification or class for a label.  Columns whose name
contains "pics" are classifier scores.  Rows with fewer than five fields are
skipped and numbers that do not parse are left unset.  Each data row is
numbered from 1; these line numbers identify candidates in all output.

The metafile is the JSON file written by the beamformer for an observation.
Its "beams" object maps beam names to either a string "id,num,ra,dec" with
sexagesimal RA hours and Dec degrees, in which case the ellipse comes from
the global "beamshape" {x, y, angle} in degrees, or an object with ra in
hours, dec in degrees and ellipse_x, ellipse_y (degrees) and ellipse_angle
(radians).  Incoherent beams, named with "ifbf", are ignored.  An optional
"boresight" gives the pointing center.

The catalogue is the psrcat.db file distributed with the ATNF pulsar
catalogue software.  PSRJ, PSRB, RAJ, DECJ, P0, F0, DM and DIST_DM are read.


Algorithm outline

1.  Candidates are grouped by observation UTC.  Within a group, candidate b
is listed as similar to a when their DMs agree within dm_tolerance and b's
frequency lies within freq_tolerance of a's frequency times i/j for some
i, j from 1 to 16.

2.  With a metafile and calculate_neighbours set, each beam is tested
against every other.  Two beams overlap if either center lies inside the
other's ellipse or if any of samples points on the first ellipse perimeter
lies inside the second.  Beams missing an ellipse fall back to a center
separation test.  The test runs in parallel; if a worker fails the whole
search is repeated sequentially.

3.  For each observation a catalogue shortlist is taken once around the
boresight.  Each candidate is then searched against the shortlist, or
against the whole catalogue when its search circle is not covered by the
shortlist.  Matches are sorted by separation and the nearest three printed.

-------------
Public domain.
*/
package main
