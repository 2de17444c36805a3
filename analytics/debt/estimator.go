// Package debt derives a rolling sleep-debt estimate from nightly sleep
// records: a long-lookback personal sleep-need baseline, a short weighted
// deficit window, category classification, and a recovery projection.
package debt

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"github.com/tsu-nera/dailybuild/analytics/baseline"
	"github.com/tsu-nera/dailybuild/domain/core"
	"github.com/tsu-nera/dailybuild/domain/sleep"
)

// Options carries every tunable of the estimator. All parameters are
// explicit; there are no process-wide defaults inside the core.
type Options struct {
	// LookbackDays is the sleep-need baseline window (default 90)
	LookbackDays int

	// WindowDays is the deficit accumulation window (default 14)
	WindowDays int

	// MinSamples is the minimum nights required in either window (default 5)
	MinSamples int

	// NeedMinMinutes/NeedMaxMinutes bound the derived sleep-need estimate
	// to the physiological sanity range (defaults 360 and 600, i.e. 6-10h)
	NeedMinMinutes float64
	NeedMaxMinutes float64

	// LowMaxHours and ModerateMaxHours are the category boundaries:
	// debt in (0, LowMax) is Low, [LowMax, ModerateMax] Moderate,
	// above ModerateMax High (defaults 2 and 5)
	LowMaxHours      float64
	ModerateMaxHours float64

	// RecoveryRatePerDay is the debt hours repaid per recovery day (default 0.3)
	RecoveryRatePerDay float64

	// Scheme generates the per-night weight vector (default LinearWeights)
	Scheme WeightScheme

	// MaxParallel bounds concurrent per-day evaluations in DebtHistory
	// (default 4). Each anchor reads only its own window slice, so
	// parallel evaluation is safe.
	MaxParallel int
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		LookbackDays:       90,
		WindowDays:         14,
		MinSamples:         5,
		NeedMinMinutes:     360,
		NeedMaxMinutes:     600,
		LowMaxHours:        2.0,
		ModerateMaxHours:   5.0,
		RecoveryRatePerDay: 0.3,
		Scheme:             NewLinearWeights(),
		MaxParallel:        4,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.LookbackDays <= 0 {
		o.LookbackDays = defaults.LookbackDays
	}
	if o.WindowDays <= 0 {
		o.WindowDays = defaults.WindowDays
	}
	if o.MinSamples <= 0 {
		o.MinSamples = defaults.MinSamples
	}
	if o.NeedMinMinutes <= 0 {
		o.NeedMinMinutes = defaults.NeedMinMinutes
	}
	if o.NeedMaxMinutes <= 0 {
		o.NeedMaxMinutes = defaults.NeedMaxMinutes
	}
	if o.LowMaxHours <= 0 {
		o.LowMaxHours = defaults.LowMaxHours
	}
	if o.ModerateMaxHours <= 0 {
		o.ModerateMaxHours = defaults.ModerateMaxHours
	}
	if o.RecoveryRatePerDay <= 0 {
		o.RecoveryRatePerDay = defaults.RecoveryRatePerDay
	}
	if o.Scheme == nil {
		o.Scheme = defaults.Scheme
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = defaults.MaxParallel
	}
	return o
}

// Estimator computes sleep-need baselines and weighted sleep debt.
// It is stateless; every call recomputes from the supplied history.
type Estimator struct {
	opts Options
}

// NewEstimator creates an estimator, filling unset options with defaults
func NewEstimator(opts Options) *Estimator {
	return &Estimator{opts: opts.withDefaults()}
}

// EstimateSleepNeed derives the personal sleep-need baseline from the
// lookback window ending at asOf: nightly asleep minutes are IQR-filtered
// and the median is clipped into the physiological sanity range.
// Fails with InsufficientDataError below MinSamples qualifying nights.
func (e *Estimator) EstimateSleepNeed(history []sleep.Record, asOf core.Date) (sleep.NeedEstimate, error) {
	start := asOf.AddDays(-e.opts.LookbackDays)
	window := sleep.FilterByPeriod(history, start, asOf)

	if len(window) < e.opts.MinSamples {
		return sleep.NeedEstimate{}, core.NewInsufficientDataError(
			e.opts.MinSamples, len(window),
			fmt.Sprintf("%d-day sleep-need lookback", e.opts.LookbackDays))
	}

	minutes := make([]float64, len(window))
	for i, r := range window {
		minutes[i] = float64(r.MinutesAsleep)
	}

	center, used, err := baseline.RobustCenter(minutes, e.opts.NeedMinMinutes, e.opts.NeedMaxMinutes)
	if err != nil {
		return sleep.NeedEstimate{}, err
	}

	return sleep.NeedEstimate{ValueMinutes: center, SampleSize: used}, nil
}

// EstimateDebt computes the weighted cumulative sleep debt over the
// trailing window ending at asOf. The sleep-need baseline is anchored at
// the same date. Surplus nights offset deficits but the total never goes
// negative.
func (e *Estimator) EstimateDebt(history []sleep.Record, asOf core.Date) (sleep.DebtResult, error) {
	need, err := e.EstimateSleepNeed(history, asOf)
	if err != nil {
		return sleep.DebtResult{}, err
	}

	start := asOf.AddDays(-(e.opts.WindowDays - 1))
	window := sleep.FilterByPeriod(history, start, asOf)

	if len(window) < e.opts.MinSamples {
		return sleep.DebtResult{}, core.NewInsufficientDataError(
			e.opts.MinSamples, len(window),
			fmt.Sprintf("%d-day debt window", e.opts.WindowDays))
	}

	// Per-night deficits, oldest first (negative = surplus)
	deficits := make([]float64, len(window))
	sleptMinutes := make([]float64, len(window))
	for i, r := range window {
		deficits[i] = need.ValueMinutes - float64(r.MinutesAsleep)
		sleptMinutes[i] = float64(r.MinutesAsleep)
	}

	weights := e.opts.Scheme.Weights(len(deficits))

	weightedSum := 0.0
	weightTotal := 0.0
	for i, d := range deficits {
		weightedSum += d * weights[i]
		weightTotal += weights[i]
	}

	debtMinutes := weightedSum / weightTotal
	if debtMinutes < 0 {
		debtMinutes = 0
	}

	debtHours := round2(debtMinutes / 60.0)
	category := e.categorize(debtHours)
	recoveryDays := e.recoveryDays(debtHours)

	avgMinutes, _ := stats.Mean(sleptMinutes)

	result := sleep.DebtResult{
		Date:           asOf,
		DebtHours:      debtHours,
		Category:       category,
		SleepNeedHours: round1(need.ValueMinutes / 60.0),
		AvgSleepHours:  round1(avgMinutes / 60.0),
		DataPoints:     len(window),
		RecoveryDays:   recoveryDays,
		DailyDeficits:  deficits,
		Interpretation: interpretCategory(category),
	}
	if debtHours > 0 && recoveryDays > 0 {
		result.SuggestedNightlyHours = round1(need.ValueMinutes/60.0 + debtHours/float64(recoveryDays))
	}

	return result, nil
}

// DebtHistory evaluates one independently anchored debt result per
// calendar day in [start, end]. Days lacking sufficient data are skipped,
// not errored: a growing history is expected to have a sparse head.
// Evaluation runs in parallel across anchors, bounded by MaxParallel;
// results come back in date order.
func (e *Estimator) DebtHistory(ctx context.Context, history []sleep.Record, start, end core.Date) ([]sleep.DebtResult, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("debt history: end %s before start %s", end, start)
	}

	days := start.DaysUntil(end) + 1
	slots := make([]*sleep.DebtResult, days)
	errs := make([]error, days)

	sem := semaphore.NewWeighted(int64(e.opts.MaxParallel))
	for i := 0; i < days; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(idx int) {
			defer sem.Release(1)
			result, err := e.EstimateDebt(history, start.AddDays(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			slots[idx] = &result
		}(i)
	}

	// Wait for all in-flight evaluations. On cancellation this returns
	// early; spawned goroutines finish writing their own slots and exit.
	if err := sem.Acquire(ctx, int64(e.opts.MaxParallel)); err != nil {
		return nil, err
	}

	results := make([]sleep.DebtResult, 0, days)
	for i := 0; i < days; i++ {
		if errs[i] != nil {
			if core.IsInsufficientData(errs[i]) {
				continue // expected steady-state condition, skip the day
			}
			return nil, errs[i]
		}
		results = append(results, *slots[i])
	}
	return results, nil
}

// categorize maps rounded debt hours to a severity tier. Boundaries are
// closed at both ends of the Moderate band: exactly 2.0h and exactly 5.0h
// both classify as Moderate.
func (e *Estimator) categorize(debtHours float64) sleep.DebtCategory {
	switch {
	case debtHours == 0:
		return sleep.DebtNone
	case debtHours < e.opts.LowMaxHours:
		return sleep.DebtLow
	case debtHours <= e.opts.ModerateMaxHours:
		return sleep.DebtModerate
	default:
		return sleep.DebtHigh
	}
}

// recoveryDays projects how many days of modest over-sleeping clear the debt
func (e *Estimator) recoveryDays(debtHours float64) int {
	if debtHours == 0 {
		return 0
	}
	return int(math.Ceil(debtHours / e.opts.RecoveryRatePerDay))
}

func interpretCategory(category sleep.DebtCategory) string {
	switch category {
	case sleep.DebtNone:
		return "No sleep debt. Current sleep habits are on target."
	case sleep.DebtLow:
		return "Slight sleep debt. An earlier bedtime tonight would clear it."
	case sleep.DebtModerate:
		return "Sleep debt is accumulating. Plan recovery sleep over the coming days."
	default:
		return "Severe sleep debt. Prioritize sleep until the balance recovers."
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
