// Public domain.

package main

import "testing"

func TestOverride(t *testing.T) {
	s := ":8000"
	override(&s, "")
	if s != ":8000" {
		t.Fatalf("empty override changed value to %q", s)
	}
	override(&s, "localhost:9000")
	if s != "localhost:9000" {
		t.Fatalf("override = %q", s)
	}
}
