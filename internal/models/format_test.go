package models

import "testing"

func TestFormatCompact(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2_500_000_000_000, "$2.50T"},
		{1_500_000_000, "$1.50B"},
		{3_400_000, "$3.4M"},
		{999_999, "$999,999"},
		{999, "$999"},
		{0, "$0"},
	}
	for _, c := range cases {
		if got := FormatCompact(c.in); got != c.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{42000, "$42,000.00"},
		{1, "$1.00"},
		{0.0000456, "$0.000046"},
		{0.5, "$0.500000"},
		{1234567.891, "$1,234,567.89"},
	}
	for _, c := range cases {
		if got := FormatPrice(c.in); got != c.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestImpactFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{85, ImpactHigh},
		{70, ImpactHigh}, // lower bound inclusive
		{55, ImpactMedium},
		{40, ImpactMedium}, // lower bound inclusive
		{39.9, ImpactLow},
		{10, ImpactLow},
		{0, ImpactLow},
	}
	for _, c := range cases {
		if got := ImpactFromScore(c.score); got != c.want {
			t.Errorf("ImpactFromScore(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestCalendarEventSortKey(t *testing.T) {
	at := "13:30"
	withTime := CalendarEvent{EventDate: "2024-01-02", EventTime: &at}
	if got := withTime.SortKey(); got != "2024-01-02 13:30" {
		t.Errorf("SortKey() = %q", got)
	}
	noTime := CalendarEvent{EventDate: "2024-01-02"}
	if got := noTime.SortKey(); got != "2024-01-02 00:00" {
		t.Errorf("SortKey() without time = %q", got)
	}
}
