package sleep

import (
	"testing"
	"time"

	"github.com/tsu-nera/dailybuild/domain/core"
)

func day(d int) core.Date {
	return core.NewDate(2026, time.June, 1).AddDays(d)
}

func TestNewRecord_Valid(t *testing.T) {
	stages := StageMinutes{Deep: 90, Light: 240, REM: 110, Wake: 30}
	r, err := NewRecord(day(0), 440, 30, 93.6, stages)
	if err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	if r.SleepHours() != 440.0/60.0 {
		t.Errorf("SleepHours = %f", r.SleepHours())
	}
	if r.Stages.Total() != 470 {
		t.Errorf("stage total = %d, want 470", r.Stages.Total())
	}
}

func TestNewRecord_Rejections(t *testing.T) {
	cases := []struct {
		name       string
		asleep     int
		awake      int
		efficiency float64
		stages     StageMinutes
	}{
		{"negative asleep", -10, 30, 90, StageMinutes{}},
		{"negative awake", 400, -5, 90, StageMinutes{}},
		{"efficiency above 100", 400, 30, 101, StageMinutes{}},
		{"negative efficiency", 400, 30, -1, StageMinutes{}},
		{"negative stage", 400, 30, 90, StageMinutes{Deep: -1}},
		{"stages exceed total", 400, 30, 90, StageMinutes{Deep: 200, Light: 200, REM: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRecord(day(0), tc.asleep, tc.awake, tc.efficiency, tc.stages)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !core.IsOutOfRange(err) {
				t.Errorf("expected out-of-range error, got %v", err)
			}
		})
	}
}

func TestSortedByDate_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		{Date: day(2), MinutesAsleep: 400},
		{Date: day(0), MinutesAsleep: 420},
		{Date: day(1), MinutesAsleep: 410},
	}

	sorted := SortedByDate(records)

	if !records[0].Date.Equal(day(2)) {
		t.Error("input slice was reordered")
	}
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i+1].Date.Before(sorted[i].Date) {
			t.Fatal("output not date-ascending")
		}
	}
}

func TestFilterByPeriod_InclusiveBounds(t *testing.T) {
	var records []Record
	for d := 0; d < 10; d++ {
		records = append(records, Record{Date: day(d), MinutesAsleep: 400})
	}

	window := FilterByPeriod(records, day(2), day(5))

	if len(window) != 4 {
		t.Fatalf("window size = %d, want 4", len(window))
	}
	if !window[0].Date.Equal(day(2)) || !window[3].Date.Equal(day(5)) {
		t.Errorf("window bounds = %s..%s, want %s..%s",
			window[0].Date, window[3].Date, day(2), day(5))
	}
}

func TestNeedEstimate_Hours(t *testing.T) {
	n := NeedEstimate{ValueMinutes: 480, SampleSize: 60}
	if n.Hours() != 8.0 {
		t.Errorf("Hours = %f, want 8.0", n.Hours())
	}
}
