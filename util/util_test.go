package util

import (
	"strings"
	"testing"
	"time"
)

func TestGetNameAndVersion(t *testing.T) {
	v := GetNameAndVersion()
	if !strings.HasPrefix(v, "glyptodon / ") {
		t.Errorf("Expected name/version prefix, got '%s'", v)
	}
}

func TestNormalizeInput(t *testing.T) {
	out := NormalizeInput("  first\nsecond  ")
	if out != "first second" {
		t.Errorf("Expected 'first second', got '%s'", out)
	}
}

func TestNormalizeInputKeepsTextVerbatim(t *testing.T) {
	// Markup-ish characters must survive untouched, otherwise a
	// username like "m&m's" could never log in twice.
	out := NormalizeInput("Ana's <b> & co")
	if out != "Ana's <b> & co" {
		t.Errorf("Expected characters kept verbatim, got '%s'", out)
	}
	if NormalizeInput(NormalizeInput("m&m's")) != "m&m's" {
		t.Error("Expected normalization to be idempotent")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got '%s'", got)
	}

	got := Truncate("this is a longer string", 10)
	if got != "this is..." {
		t.Errorf("Expected 'this is...', got '%s'", got)
	}
}

func TestRelativeTime(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
	}

	for _, c := range cases {
		got := RelativeTime(time.Now().Add(-c.age))
		if got != c.want {
			t.Errorf("RelativeTime(-%v): expected '%s', got '%s'", c.age, c.want, got)
		}
	}
}
