/*
Command compare looks for the same periodic source in candidate files from
two observing epochs.

  Usage: compare [options] <epoch1-candfile> <epoch2-candfile>
    -a=false: compare all candidates, not just T1
    -c="": config file
    -o=".": output directory
    -v=false: display version and copyright

Both files are candidate CSV files in the format read by candyweb.  When a
file carries classification labels only candidates labelled T1 are
compared, unless -a is given.  Candidates whose period is within ten times
epoch.period_threshold of a period listed in epoch.rfi_periods are dropped
from both epochs.

Every candidate of the second epoch is compared with every candidate of the
first.  A pair matches when

1.  the DMs differ by no more than epoch.dm_threshold,

2.  the positions are within epoch.position_threshold_arcsec of each other
(a zero threshold skips this test, otherwise both positions are required),

3.  and after correcting the second frequency to the acceleration of the
first, the periods agree within epoch.period_threshold seconds, either
directly or, for period ratios up to 2, modulo the shorter period.

The correction is f - (acc2 - acc1) * f * tobs / c, where tobs is the
observation length of the second candidate: its tobs column if present,
else the first epoch.tobs_tokens entry found in its png path, else
epoch.default_tobs.

Results are written to the output directory: a table match_NNN.txt for each
match, numbered from 0 in order of first-epoch then second-epoch line, and
matches_summary.csv with one row per match.  A short report with mean and
maximum DM and period differences is printed to stdout.

Configuration is described in the documentation of command candyweb,
   go doc github.com/vivekvenkris/CandyWeb
*/
package main
