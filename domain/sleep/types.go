package sleep

import (
	"sort"

	"github.com/tsu-nera/dailybuild/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// StageMinutes breaks a night into classified sleep stages
type StageMinutes struct {
	Deep  int `json:"deep"`
	Light int `json:"light"`
	REM   int `json:"rem"`
	Wake  int `json:"wake"`
}

// Total returns the summed stage minutes
func (s StageMinutes) Total() int {
	return s.Deep + s.Light + s.REM + s.Wake
}

// Record is one night of summarized sleep, keyed by calendar day.
// Immutable once ingested; the analyzers only read sorted-by-date views.
// INVARIANTS:
// - MinutesAsleep and MinutesAwake are non-negative
// - EfficiencyPct is in [0, 100]
// - Stage minutes are non-negative and sum to at most asleep+awake
type Record struct {
	Date          core.Date    `json:"date"`
	MinutesAsleep int          `json:"minutes_asleep"`
	MinutesAwake  int          `json:"minutes_awake"`
	EfficiencyPct float64      `json:"efficiency_pct"`
	Stages        StageMinutes `json:"stage_minutes"`
}

// SleepHours returns the night's asleep duration in hours
func (r Record) SleepHours() float64 {
	return float64(r.MinutesAsleep) / 60.0
}

// NewRecord creates a sleep record with construction-time validation.
// Implausible inputs are rejected with OutOfRangeError, never clamped.
func NewRecord(date core.Date, minutesAsleep, minutesAwake int, efficiencyPct float64, stages StageMinutes) (Record, error) {
	if minutesAsleep < 0 {
		return Record{}, core.NewOutOfRangeError("minutes_asleep", float64(minutesAsleep), 0, 1440)
	}
	if minutesAwake < 0 {
		return Record{}, core.NewOutOfRangeError("minutes_awake", float64(minutesAwake), 0, 1440)
	}
	if efficiencyPct < 0 || efficiencyPct > 100 {
		return Record{}, core.NewOutOfRangeError("efficiency_pct", efficiencyPct, 0, 100)
	}
	if stages.Deep < 0 || stages.Light < 0 || stages.REM < 0 || stages.Wake < 0 {
		return Record{}, core.NewOutOfRangeError("stage_minutes", float64(minInt(stages.Deep, stages.Light, stages.REM, stages.Wake)), 0, 1440)
	}
	if total := stages.Total(); total > minutesAsleep+minutesAwake {
		return Record{}, core.NewOutOfRangeError("stage_minutes_total", float64(total), 0, float64(minutesAsleep+minutesAwake))
	}

	return Record{
		Date:          date,
		MinutesAsleep: minutesAsleep,
		MinutesAwake:  minutesAwake,
		EfficiencyPct: efficiencyPct,
		Stages:        stages,
	}, nil
}

// SortedByDate returns a date-ascending copy of the records.
// The input slice is never mutated.
func SortedByDate(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// FilterByPeriod returns the records with start <= date <= end, date-ascending
func FilterByPeriod(records []Record, start, end core.Date) []Record {
	var window []Record
	for _, r := range SortedByDate(records) {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		window = append(window, r)
	}
	return window
}

// ============================================================================
// DERIVED RESULTS
// ============================================================================

// NeedEstimate is an ephemeral sleep-need baseline, recomputed on every call
// from the requested lookback window and never persisted by the core.
type NeedEstimate struct {
	ValueMinutes float64 `json:"value_minutes"`
	SampleSize   int     `json:"sample_size"`
}

// Hours returns the estimated need in hours
func (n NeedEstimate) Hours() float64 {
	return n.ValueMinutes / 60.0
}

// DebtCategory classifies accumulated sleep debt severity
type DebtCategory string

const (
	DebtNone     DebtCategory = "None"
	DebtLow      DebtCategory = "Low"
	DebtModerate DebtCategory = "Moderate"
	DebtHigh     DebtCategory = "High"
)

// DebtResult is a fully classified sleep-debt reading anchored at one day
type DebtResult struct {
	Date           core.Date    `json:"date"`
	DebtHours      float64      `json:"debt_hours"`
	Category       DebtCategory `json:"category"`
	SleepNeedHours float64      `json:"sleep_need_hours"`
	AvgSleepHours  float64      `json:"avg_sleep_hours"`
	DataPoints     int          `json:"data_points"`
	RecoveryDays   int          `json:"recovery_days"`

	// DailyDeficits holds the per-night need-minus-slept minutes of the
	// window, oldest first (negative = surplus), kept for transparency.
	DailyDeficits []float64 `json:"daily_deficits,omitempty"`

	// SuggestedNightlyHours is the nightly duration that clears the debt
	// within RecoveryDays (need + debt/recovery). Zero when debt is zero.
	SuggestedNightlyHours float64 `json:"suggested_nightly_hours,omitempty"`

	Interpretation string `json:"interpretation,omitempty"`
}

// Confidence is a coarse evidence-quality tier tied to sample size
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MethodEstimate is one fused estimator's contribution to an OSD estimate.
// Every included estimate is retained with its raw value and weight so the
// final number is never a black box.
type MethodEstimate struct {
	Method     string     `json:"method"`
	Hours      float64    `json:"hours"`
	Weight     float64    `json:"weight"`
	Confidence Confidence `json:"confidence"`
	SampleSize int        `json:"sample_size"`
	Note       string     `json:"note,omitempty"`
}

// OSDEstimate is the fused optimal-sleep-duration estimate
type OSDEstimate struct {
	OSDHours           float64                   `json:"osd_hours"`
	Methods            map[string]MethodEstimate `json:"methods"`
	HabitualSleepHours float64                   `json:"habitual_sleep_hours"`
	PotentialDebtHours float64                   `json:"potential_debt_hours"`
	Confidence         Confidence                `json:"confidence"`
	Note               string                    `json:"note,omitempty"`
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
