// Public domain.

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", c.in, got, c.want)
		}
	}
	if ValidLevel("nonsense") || !ValidLevel("Debug") {
		t.Fatal("ValidLevel")
	}
}

func TestInitNamed(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Writer: &buf, RunID: "r1"})
	// later calls are ignored
	Init(Options{Level: "error", Writer: &bytes.Buffer{}})

	Named("psrcat").Debug().Int("entries", 3).Msg("loaded")
	out := buf.String()
	for _, want := range []string{`"component":"psrcat"`, `"run":"r1"`, `"entries":3`, `"message":"loaded"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
	if Named("") != Get() {
		t.Fatal("Named(\"\") is not the root logger")
	}
}
