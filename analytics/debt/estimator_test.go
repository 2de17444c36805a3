package debt

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tsu-nera/dailybuild/domain/core"
	"github.com/tsu-nera/dailybuild/domain/sleep"
	"github.com/tsu-nera/dailybuild/internal/testkit"
)

var asOf = core.NewDate(2026, time.June, 30)

// steadyHistory builds 90 contiguous nights ending at asOf: baselineMinutes
// for the older nights, recentMinutes for the final recentDays nights.
func steadyHistory(baselineMinutes, recentMinutes, recentDays int) []sleep.Record {
	var records []sleep.Record
	for d := -89; d <= 0; d++ {
		minutes := baselineMinutes
		if d > -recentDays {
			minutes = recentMinutes
		}
		records = append(records, sleep.Record{
			Date:          asOf.AddDays(d),
			MinutesAsleep: minutes,
		})
	}
	return records
}

func TestEstimateDebt_SteadyStateIsZero(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	history := steadyHistory(480, 480, 0)

	result, err := e.EstimateDebt(history, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DebtHours != 0 {
		t.Errorf("DebtHours = %f, want 0", result.DebtHours)
	}
	if result.Category != sleep.DebtNone {
		t.Errorf("Category = %s, want None", result.Category)
	}
	if result.RecoveryDays != 0 {
		t.Errorf("RecoveryDays = %d, want 0", result.RecoveryDays)
	}
	if result.SuggestedNightlyHours != 0 {
		t.Errorf("SuggestedNightlyHours = %f, want 0", result.SuggestedNightlyHours)
	}
	if result.SleepNeedHours != 8.0 {
		t.Errorf("SleepNeedHours = %f, want 8.0", result.SleepNeedHours)
	}
	if result.AvgSleepHours != 8.0 {
		t.Errorf("AvgSleepHours = %f, want 8.0", result.AvgSleepHours)
	}
	if result.DataPoints != 14 {
		t.Errorf("DataPoints = %d, want 14", result.DataPoints)
	}
}

func TestEstimateDebt_ConstantDeficitIsExact(t *testing.T) {
	// Every window night 2h short of an 8h need: any normalized weighting
	// of a constant deficit must return exactly that constant.
	e := NewEstimator(DefaultOptions())
	history := steadyHistory(480, 360, 14)

	result, err := e.EstimateDebt(history, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DebtHours != 2.0 {
		t.Errorf("DebtHours = %f, want exactly 2.0", result.DebtHours)
	}
	if result.Category != sleep.DebtModerate {
		t.Errorf("Category = %s, want Moderate", result.Category)
	}
	if result.RecoveryDays != 7 {
		t.Errorf("RecoveryDays = %d, want ceil(2.0/0.3)=7", result.RecoveryDays)
	}
	if len(result.DailyDeficits) != 14 {
		t.Fatalf("DailyDeficits length = %d, want 14", len(result.DailyDeficits))
	}
	for i, d := range result.DailyDeficits {
		if d != 120 {
			t.Errorf("DailyDeficits[%d] = %f, want 120", i, d)
		}
	}
	if result.SuggestedNightlyHours != 8.3 {
		t.Errorf("SuggestedNightlyHours = %f, want 8.3", result.SuggestedNightlyHours)
	}
}

func TestEstimateDebt_CategoryBoundaries(t *testing.T) {
	// Both band edges of Moderate are closed: exactly 2.0h and exactly
	// 5.0h classify as Moderate.
	cases := []struct {
		name          string
		recentMinutes int
		wantHours     float64
		wantCategory  sleep.DebtCategory
	}{
		{"low band", 420, 1.0, sleep.DebtLow},
		{"moderate lower edge", 360, 2.0, sleep.DebtModerate},
		{"moderate upper edge", 180, 5.0, sleep.DebtModerate},
		{"high band", 120, 6.0, sleep.DebtHigh},
	}

	e := NewEstimator(DefaultOptions())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := e.EstimateDebt(steadyHistory(480, tc.recentMinutes, 14), asOf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.DebtHours != tc.wantHours {
				t.Errorf("DebtHours = %f, want %f", result.DebtHours, tc.wantHours)
			}
			if result.Category != tc.wantCategory {
				t.Errorf("Category = %s, want %s", result.Category, tc.wantCategory)
			}
		})
	}
}

func TestEstimateDebt_MonotoneInDeprivation(t *testing.T) {
	e := NewEstimator(DefaultOptions())

	mild, err := e.EstimateDebt(steadyHistory(480, 420, 14), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	severe, err := e.EstimateDebt(steadyHistory(480, 390, 14), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if severe.DebtHours <= mild.DebtHours {
		t.Errorf("less sleep must not lower debt: severe=%f mild=%f",
			severe.DebtHours, mild.DebtHours)
	}
}

func TestEstimateDebt_RecentDeprivationWeighsMore(t *testing.T) {
	// Same multiset of nights in the window; deprivation at the recent end
	// must yield strictly more debt than the same deprivation at the old end.
	build := func(shortFirst bool) []sleep.Record {
		var records []sleep.Record
		for d := -89; d <= 0; d++ {
			minutes := 480
			if shortFirst && d >= -13 && d <= -10 {
				minutes = 300
			}
			if !shortFirst && d >= -3 {
				minutes = 300
			}
			records = append(records, sleep.Record{
				Date:          asOf.AddDays(d),
				MinutesAsleep: minutes,
			})
		}
		return records
	}

	e := NewEstimator(DefaultOptions())

	oldDeprivation, err := e.EstimateDebt(build(true), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recentDeprivation, err := e.EstimateDebt(build(false), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recentDeprivation.DebtHours <= oldDeprivation.DebtHours {
		t.Errorf("recent deprivation %f should exceed old deprivation %f",
			recentDeprivation.DebtHours, oldDeprivation.DebtHours)
	}
	if oldDeprivation.DebtHours <= 0 {
		t.Error("old deprivation should still register some debt")
	}
}

func TestEstimateDebt_SurplusNeverGoesNegative(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	history := steadyHistory(480, 540, 14) // over-sleeping the window

	result, err := e.EstimateDebt(history, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DebtHours != 0 {
		t.Errorf("DebtHours = %f, want floor at 0", result.DebtHours)
	}
	if result.Category != sleep.DebtNone {
		t.Errorf("Category = %s, want None", result.Category)
	}
}

func TestEstimateSleepNeed_InsufficientData(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	history := []sleep.Record{
		{Date: asOf.AddDays(-2), MinutesAsleep: 480},
		{Date: asOf.AddDays(-1), MinutesAsleep: 470},
		{Date: asOf, MinutesAsleep: 490},
	}

	_, err := e.EstimateSleepNeed(history, asOf)
	if !core.IsInsufficientData(err) {
		t.Fatalf("expected insufficient-data error, got %v", err)
	}

	var detail *core.InsufficientDataError
	if !errors.As(err, &detail) {
		t.Fatal("expected structured error")
	}
	if detail.Required != 5 || detail.Found != 3 {
		t.Errorf("counts = %d/%d, want 5/3", detail.Required, detail.Found)
	}
}

func TestEstimateDebt_EmptyDebtWindow(t *testing.T) {
	// Enough lookback history but a silent recent fortnight
	e := NewEstimator(DefaultOptions())
	var history []sleep.Record
	for d := -89; d <= -20; d++ {
		history = append(history, sleep.Record{Date: asOf.AddDays(d), MinutesAsleep: 480})
	}

	_, err := e.EstimateDebt(history, asOf)
	if !core.IsInsufficientData(err) {
		t.Fatalf("expected insufficient-data error, got %v", err)
	}
}

func TestEstimateDebt_Idempotent(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	history := steadyHistory(480, 400, 14)

	first, err := e.EstimateDebt(history, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.EstimateDebt(history, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated estimate differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDebtHistory_SkipsSparseHead(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	start := core.NewDate(2026, time.April, 1)

	var history []sleep.Record
	for d := 0; d < 30; d++ {
		history = append(history, sleep.Record{Date: start.AddDays(d), MinutesAsleep: 480})
	}

	results, err := e.DebtHistory(context.Background(), history, start, start.AddDays(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first 4 anchors see fewer than 5 nights and are skipped
	if len(results) != 6 {
		t.Fatalf("results = %d, want 6", len(results))
	}
	for i, r := range results {
		want := start.AddDays(4 + i)
		if !r.Date.Equal(want) {
			t.Errorf("results[%d].Date = %s, want %s", i, r.Date, want)
		}
		if r.Category != sleep.DebtNone {
			t.Errorf("results[%d].Category = %s, want None", i, r.Category)
		}
	}
}

func TestDebtHistory_RejectsInvertedRange(t *testing.T) {
	e := NewEstimator(DefaultOptions())
	_, err := e.DebtHistory(context.Background(), nil, asOf, asOf.AddDays(-1))
	if err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestEstimateDebt_SyntheticHistory(t *testing.T) {
	// Seeded jittered history: exact values vary, invariants must not
	cfg := testkit.DefaultSleepConfig()
	history := testkit.SleepHistory(cfg)
	anchor := cfg.StartDate.AddDays(cfg.Nights - 1)

	e := NewEstimator(DefaultOptions())
	result, err := e.EstimateDebt(history, anchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DebtHours < 0 {
		t.Errorf("DebtHours = %f, must never be negative", result.DebtHours)
	}
	if result.SleepNeedHours < 6.0 || result.SleepNeedHours > 10.0 {
		t.Errorf("SleepNeedHours = %f, want inside the sanity range", result.SleepNeedHours)
	}
	if result.DataPoints != 14 {
		t.Errorf("DataPoints = %d, want 14", result.DataPoints)
	}
	if result.Interpretation == "" {
		t.Error("Interpretation should always be set")
	}
}

func TestEstimateDebt_SchemeSelectable(t *testing.T) {
	// With uniform weights the recency asymmetry disappears
	opts := DefaultOptions()
	opts.Scheme = NewUniformWeights()
	e := NewEstimator(opts)

	history := steadyHistory(480, 360, 14)
	result, err := e.EstimateDebt(history, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DebtHours != 2.0 {
		t.Errorf("DebtHours = %f, want 2.0 under uniform weights", result.DebtHours)
	}
}
