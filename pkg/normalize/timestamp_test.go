package normalize

import (
	"testing"
	"time"
)

func TestParseTimestamp_Formats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00.250Z", time.Date(2024, 1, 15, 10, 30, 0, 250000000, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00+02:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("", 7200))},
	}

	for _, c := range cases {
		got, ok := ParseTimestamp(c.in)
		if !ok {
			t.Errorf("ParseTimestamp(%q) failed", c.in)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseTimestamp(%q): expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestParseTimestamp_SubSecondPrecision(t *testing.T) {
	a, ok := ParseTimestamp("2024-01-15T10:30:00.123456Z")
	if !ok {
		t.Fatal("parse failed")
	}
	b, ok := ParseTimestamp("2024-01-15T10:30:00.123457Z")
	if !ok {
		t.Fatal("parse failed")
	}
	if !b.After(a) {
		t.Error("Expected microsecond-level precision to be preserved")
	}
}

func TestParseTimestamp_ExcelSerial(t *testing.T) {
	// 45292 = 2024-01-01 in Excel's day count.
	got, ok := ParseTimestamp("45292")
	if !ok {
		t.Fatal("Expected Excel serial date to parse")
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// Fractional part is the time of day.
	got, ok = ParseTimestamp("45292.5")
	if !ok {
		t.Fatal("Expected fractional Excel serial to parse")
	}
	want = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a time", "2024-13-40T99:99:99Z", "----"} {
		if _, ok := ParseTimestamp(in); ok {
			t.Errorf("ParseTimestamp(%q): expected failure", in)
		}
	}
}
