package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestToInstantCalendarDateRoundtrip(t *testing.T) {
	// The invariant the whole system leans on: deriving the calendar date
	// of a converted instant gives back the original date, for any local
	// hour of the day and for offsets on both sides of UTC.
	offsets := []int{540, 0, -300, 330}
	dates := []string{"2024-01-01", "2024-02-29", "2024-06-03", "2024-12-31", "2025-03-09"}

	for _, offset := range offsets {
		n := NewNormalizer(offset)
		for _, date := range dates {
			for hour := 0.0; hour < 24; hour += 0.25 {
				instant, err := n.ToInstant(date, hour)
				if err != nil {
					t.Fatalf("offset %d, %s %.2f: %v", offset, date, hour, err)
				}
				if got := n.CalendarDate(instant); got != date {
					t.Errorf("offset %d: CalendarDate(ToInstant(%s, %.2f)) = %s", offset, date, hour, got)
				}
			}
		}
	}
}

func TestToInstantUTCStorageKeepsLocalDate(t *testing.T) {
	// 00:30 local at UTC+9 is 15:30 UTC the previous day; the canonical
	// date must not drift when the instant is viewed in UTC.
	n := NewNormalizer(540)
	instant, err := n.ToInstant("2024-06-03", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if instant.UTC().Day() != 2 {
		t.Fatalf("expected UTC instant on June 2, got %v", instant.UTC())
	}
	if got := n.CalendarDate(instant); got != "2024-06-03" {
		t.Fatalf("CalendarDate = %s, want 2024-06-03", got)
	}
}

func TestToInstantMidnightSpanningEnd(t *testing.T) {
	// A night block 22:00-31:00 ends at 07:00 the next local day. The
	// segment's own date is always derived from its start.
	n := NewNormalizer(540)
	start, err := n.ToInstant("2024-06-03", 22)
	if err != nil {
		t.Fatal(err)
	}
	end, err := n.ToInstant("2024-06-03", 31)
	if err != nil {
		t.Fatal(err)
	}
	if got := n.CalendarDate(start); got != "2024-06-03" {
		t.Fatalf("start date = %s, want 2024-06-03", got)
	}
	if got := n.CalendarDate(end); got != "2024-06-04" {
		t.Fatalf("end date = %s, want 2024-06-04", got)
	}
	if end.Sub(start) != 9*time.Hour {
		t.Fatalf("duration = %v, want 9h", end.Sub(start))
	}
}

func TestToInstantRejectsMalformedInput(t *testing.T) {
	n := NewNormalizer(540)
	cases := []struct {
		date string
		hour float64
	}{
		{"2024-13-01", 9},
		{"2024-06-32", 9},
		{"06/03/2024", 9},
		{"", 9},
		{"2024-06-03", -1},
		{"2024-06-03", 49},
	}
	for _, tc := range cases {
		_, err := n.ToInstant(tc.date, tc.hour)
		var tfe *TimeFormatError
		if !errors.As(err, &tfe) {
			t.Errorf("ToInstant(%q, %.1f): expected TimeFormatError, got %v", tc.date, tc.hour, err)
		}
	}
}

func TestToInstantClock(t *testing.T) {
	n := NewNormalizer(540)
	instant, err := n.ToInstantClock("2024-06-03", "13:30")
	if err != nil {
		t.Fatal(err)
	}
	local := instant.In(n.Location())
	if local.Hour() != 13 || local.Minute() != 30 {
		t.Fatalf("got %02d:%02d, want 13:30", local.Hour(), local.Minute())
	}

	if _, err := n.ToInstantClock("2024-06-03", "1330"); err == nil {
		t.Fatal("expected error for missing colon")
	}
}

func TestDayWindow(t *testing.T) {
	n := NewNormalizer(540)
	start, end, err := n.DayWindow("2024-06-03")
	if err != nil {
		t.Fatal(err)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("window = %v, want 24h", end.Sub(start))
	}
	if got := n.CalendarDate(start); got != "2024-06-03" {
		t.Fatalf("window start date = %s", got)
	}

	if _, _, err := n.DayWindow("not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestWeekday(t *testing.T) {
	n := NewNormalizer(540)
	wd, err := n.Weekday("2024-06-03")
	if err != nil {
		t.Fatal(err)
	}
	if wd != time.Monday {
		t.Fatalf("weekday = %v, want Monday", wd)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"09:00", 9, false},
		{"13:30", 13.5, false},
		{"00:00", 0, false},
		{"31:00", 31, false},
		{"09:60", 0, true},
		{"48:00", 0, true},
		{"9am", 0, true},
		{"09:0", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseHourRange(t *testing.T) {
	start, end, err := ParseHourRange("09:00-18:00")
	if err != nil {
		t.Fatal(err)
	}
	if start != 9 || end != 18 {
		t.Fatalf("got %v-%v, want 9-18", start, end)
	}

	for _, bad := range []string{"09:00", "18:00-09:00", "09:00-09:00", "25:00-26:00", ""} {
		if _, _, err := ParseHourRange(bad); err == nil {
			t.Errorf("ParseHourRange(%q): expected error", bad)
		}
	}
}
