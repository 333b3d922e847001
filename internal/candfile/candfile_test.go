// Public domain.

package candfile_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vivekvenkris/CandyWeb/internal/cand"
	"github.com/vivekvenkris/CandyWeb/internal/candfile"
)

const pipelineCSV = `# written by candidate filter
pointing_id,beam_id,beam_name,source_name,ra,dec,gl,gb,mjd_start,utc_start,f0_usr,f0_opt,f0_opt_err,f1_opt,acc_opt,dm_opt,dm_opt_err,sn_fft,sn_fold,png_path,tobs,pics_palfa,pics_trapum_ter5
1,12,cfbf00012,NGC6544,18:07:20.5,-24:59:51,5.8,-2.2,60000.5,2023-06-01-10:00:00,99.9,100.0,1e-6,-1e-10,2.5,30.1,0.1,9.5,12.3,/data/2hr/c1.png,7200,0.98,0.7
1,13,cfbf00013,NGC6544,bad,-24:59:51,5.8,-2.2,60000.5,2023-06-01-10:00:00,,50.0,,,,60,,,8.1,/data/c2.png,,n/a,0.1
short,row
1,14,cfbf00014,NGC6544,18:07:30,-25:00:00,5.8,-2.2,60001.5,2023-06-02-10:00:00,,1e3,,,,61,,,7,/data/c3.png,,,
`

func TestReadPipeline(t *testing.T) {
	cs, err := candfile.Read(strings.NewReader(pipelineCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 3 {
		t.Fatalf("read %d candidates, want 3", len(cs))
	}
	c := cs[0]
	if c.Line != 1 || c.BeamID != 12 || c.BeamName != "cfbf00012" || c.SourceName != "NGC6544" {
		t.Fatalf("candidate 1 = %+v", c)
	}
	if c.Pos == nil || math.Abs(c.Pos.RAHour()-(18+7/60.+20.5/3600)) > 1e-9 {
		t.Fatalf("candidate 1 position = %v", c.Pos)
	}
	if c.F0 != 100 || c.DM != 30.1 || c.Acc != 2.5 || c.SNFold != 12.3 || c.Tobs != 7200 {
		t.Fatalf("candidate 1 values = %+v", c)
	}
	if c.Scores["pics_palfa"] != .98 || c.Scores["pics_trapum_ter5"] != .7 {
		t.Fatalf("candidate 1 scores = %v", c.Scores)
	}
	if c.UTC != "2023-06-01-10:00:00" || c.Class != cand.Uncat {
		t.Fatalf("candidate 1 utc, class = %q, %s", c.UTC, c.Class)
	}

	c = cs[1]
	if c.Line != 2 || c.Pos != nil {
		t.Fatalf("candidate 2: line %d, position %v", c.Line, c.Pos)
	}
	if _, ok := c.Scores["pics_palfa"]; ok {
		t.Fatal("unparseable score kept")
	}
	if c.Acc != 0 || c.Tobs != 0 {
		t.Fatalf("empty fields not zero: %+v", c)
	}

	// the short row is numbered but skipped
	if cs[2].Line != 4 || cs[2].F0 != 1000 {
		t.Fatalf("candidate 3 = %+v", cs[2])
	}

	keys, _ := cand.GroupByUTC(cs)
	if len(keys) != 2 {
		t.Fatalf("UTC groups = %v", keys)
	}
}

const exportCSV = `P0,DM,Acc,png_path,classification,extra
0.01,30,1.5,/x/a.png,T1_CAND,
0.02,31,0,/x/b.png,RFI,
0.005,32,0,/x/c.png,t1,
`

func TestReadExport(t *testing.T) {
	cs, err := candfile.Read(strings.NewReader(exportCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 3 {
		t.Fatalf("read %d candidates, want 3", len(cs))
	}
	if cs[0].F0 != 100 || cs[0].Acc != 1.5 || cs[0].DM != 30 || cs[0].Class != cand.T1 {
		t.Fatalf("candidate 1 = %+v", cs[0])
	}
	t1 := cand.FilterLabel(cs, "T1")
	if len(t1) != 2 || t1[1].PNGPath != "/x/c.png" || t1[1].Class != cand.T1 {
		t.Fatalf("T1 candidates = %v", t1)
	}
}

func TestReadRepeatedHeader(t *testing.T) {
	in := "utc_start,f0_opt,dm_opt,png_path,sn_fold\n" +
		"u1,10,5,a,7\n" +
		"utc_start,f0_opt,dm_opt,png_path,sn_fold\n" +
		"u2,20,6,b,8\n"
	cs, err := candfile.Read(strings.NewReader(in), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 2 || cs[1].Line != 2 || cs[1].UTC != "u2" {
		t.Fatalf("candidates = %+v", cs)
	}
}

func TestReadNoHeader(t *testing.T) {
	_, err := candfile.Read(strings.NewReader("a,b,c\n1,2,3\n"), nil)
	if !errors.Is(err, candfile.ErrNoHeader) {
		t.Fatalf("err = %v", err)
	}
}

func TestReadByteOrderMark(t *testing.T) {
	in := "\ufeffpointing_id,beam_name,f0_opt,dm_opt,\uff53\uff4e_fold\n1,cfbf00001,10,20,9\n"
	cs, err := candfile.Read(strings.NewReader(in), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 1 || cs[0].F0 != 10 || cs[0].DM != 20 || cs[0].SNFold != 9 {
		t.Fatalf("got %+v", cs)
	}
}

func TestWriteFullRoundTrip(t *testing.T) {
	tb, err := candfile.ReadTable(strings.NewReader(pipelineCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tb.Classifiers) != 2 || tb.Header[0] != "pointing_id" {
		t.Fatalf("table header %q, classifiers %q", tb.Header, tb.Classifiers)
	}
	tb.Candidates[0].Class = cand.T1
	tb.Candidates[2].Class = cand.RFI
	var b strings.Builder
	if err := candfile.WriteFull(&b, tb.Header, tb.Candidates); err != nil {
		t.Fatal(err)
	}
	cs, err := candfile.Read(strings.NewReader(b.String()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 3 {
		t.Fatalf("read back %d candidates", len(cs))
	}
	want := []cand.Type{cand.T1, cand.Uncat, cand.RFI}
	for i, c := range cs {
		if c.Class != want[i] || c.F0 != tb.Candidates[i].F0 {
			t.Errorf("candidate %d: class %s, f0 %g", i, c.Class, c.F0)
		}
	}
	// a second pass fills the existing column
	tb2, err := candfile.ReadTable(strings.NewReader(b.String()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tb2.Header) != len(tb.Header)+1 {
		t.Fatalf("header %q", tb2.Header)
	}
	tb2.Candidates[1].Class = cand.Noise
	b.Reset()
	candfile.WriteFull(&b, tb2.Header, tb2.Candidates)
	tb3, err := candfile.ReadTable(strings.NewReader(b.String()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tb3.Header) != len(tb2.Header) || tb3.Candidates[1].Class != cand.Noise ||
		tb3.Candidates[0].Class != cand.T1 {
		t.Fatalf("header %q, candidates %+v", tb3.Header, tb3.Candidates)
	}
}

func TestClassificationRoundTrip(t *testing.T) {
	cs := []*cand.Candidate{
		{BeamID: 3, UTC: "2023-06-01-10:00:00", PNGPath: "a.png", Class: cand.T1},
		{BeamID: 4, UTC: "2023-06-01-10:00:00", PNGPath: "b.png", Class: cand.KnownPSR},
	}
	var b strings.Builder
	if err := candfile.WriteClassification(&b, cs); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "beamid,utc,png,classification\n") {
		t.Fatalf("output %q", b.String())
	}
	cl, err := candfile.ReadClassification(strings.NewReader(b.String() + "short,row\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cl) != 2 || cl[0].BeamID != 3 || cl[1].PNG != "b.png" || cl[1].Class != cand.KnownPSR {
		t.Fatalf("got %+v", cl)
	}
}
