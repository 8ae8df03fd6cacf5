package weeks

import (
	"testing"
	"time"
)

func TestParseValid(t *testing.T) {
	year, week, err := Parse("2024-W10")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if year != 2024 || week != 10 {
		t.Errorf("got %d-W%d, want 2024-W10", year, week)
	}
}

func TestParseLongYear(t *testing.T) {
	// 2020 has 53 ISO weeks (leap year starting on Wednesday).
	if !Valid("2020-W53") {
		t.Error("2020-W53 should be valid")
	}
	// 2024 has only 52.
	if Valid("2024-W53") {
		t.Error("2024-W53 should be invalid")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"2024-10",
		"2024-W1",   // week must be two digits
		"2024-W00",
		"2024-W54",
		"24-W10",
		"2024W10",
		"abcd-W10",
	}
	for _, key := range bad {
		if Valid(key) {
			t.Errorf("Valid(%q) = true, want false", key)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	if got := Key(2024, 3); got != "2024-W03" {
		t.Errorf("Key = %q, want 2024-W03", got)
	}
	if !Valid(Key(2024, 3)) {
		t.Error("Key output should parse")
	}
}

func TestCurrent(t *testing.T) {
	// 2024-03-04 is a Monday in ISO week 10.
	now := time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)
	if got := Current(now); got != "2024-W10" {
		t.Errorf("Current = %q, want 2024-W10", got)
	}
}
