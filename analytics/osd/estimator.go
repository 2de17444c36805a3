// Package osd estimates an individual's optimal sleep duration by fusing
// several weighted evidence sources: a population prior, rebound sleep on
// alarm-free nights, high-efficiency nights, HRV-linked nights, and the
// habitual baseline. Each contribution is retained in the result with its
// raw value and weight so the fused number stays auditable.
package osd

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/tsu-nera/dailybuild/analytics/baseline"
	"github.com/tsu-nera/dailybuild/domain/sleep"
)

// Method names used as keys in OSDEstimate.Methods
const (
	MethodRecommended    = "recommended"
	MethodWeekendRebound = "weekend_rebound"
	MethodEfficiency     = "high_efficiency"
	MethodHRV            = "high_hrv"
	MethodHabitual       = "habitual"
)

// fusionOrder fixes the accumulation order of the weighted sum so identical
// inputs produce bit-identical results regardless of map iteration order
var fusionOrder = []string{
	MethodRecommended,
	MethodWeekendRebound,
	MethodEfficiency,
	MethodHRV,
	MethodHabitual,
}

// Options carries the fusion weights and evidence thresholds. Every weight
// is explicit so alternative policies can be evaluated without code changes.
type Options struct {
	// RecommendedHours is the population-guidance prior (default 8.0),
	// always included with RecommendedWeight (default 4.0).
	RecommendedHours  float64
	RecommendedWeight float64

	// WeekendWeight applies to the mean of alarm-free rebound nights when
	// at least WeekendMinNights are available (defaults 3.0 and 3).
	WeekendWeight    float64
	WeekendMinNights int

	// EfficiencyWeight applies to the median of high-efficiency nights
	// when at least EfficiencyMinNights are available (defaults 2.0 and 5).
	EfficiencyWeight    float64
	EfficiencyMinNights int

	// HRVWeight applies to the median of high-HRV nights when at least
	// HRVMinNights are available (defaults 1.0 and 10). Deliberately the
	// lowest weight: the HRV / sleep-duration correlation is weak.
	HRVWeight    float64
	HRVMinNights int

	// HabitualInRangeWeight applies when the habitual median falls inside
	// [RangeMinHours, RangeMaxHours]; HabitualOutOfRangeWeight otherwise.
	// Out-of-range habits are evidence of chronic deprivation, not of true
	// need, so they are down-weighted rather than excluded (defaults 2.0
	// and 0.5).
	HabitualInRangeWeight    float64
	HabitualOutOfRangeWeight float64

	// RangeMinHours and RangeMaxHours bound the final estimate (defaults
	// 7.0 and 9.0).
	RangeMinHours float64
	RangeMaxHours float64
}

// DefaultOptions returns the documented fusion weights
func DefaultOptions() Options {
	return Options{
		RecommendedHours:         8.0,
		RecommendedWeight:        4.0,
		WeekendWeight:            3.0,
		WeekendMinNights:         3,
		EfficiencyWeight:         2.0,
		EfficiencyMinNights:      5,
		HRVWeight:                1.0,
		HRVMinNights:             10,
		HabitualInRangeWeight:    2.0,
		HabitualOutOfRangeWeight: 0.5,
		RangeMinHours:            7.0,
		RangeMaxHours:            9.0,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.RecommendedHours <= 0 {
		o.RecommendedHours = defaults.RecommendedHours
	}
	if o.RecommendedWeight <= 0 {
		o.RecommendedWeight = defaults.RecommendedWeight
	}
	if o.WeekendWeight <= 0 {
		o.WeekendWeight = defaults.WeekendWeight
	}
	if o.WeekendMinNights <= 0 {
		o.WeekendMinNights = defaults.WeekendMinNights
	}
	if o.EfficiencyWeight <= 0 {
		o.EfficiencyWeight = defaults.EfficiencyWeight
	}
	if o.EfficiencyMinNights <= 0 {
		o.EfficiencyMinNights = defaults.EfficiencyMinNights
	}
	if o.HRVWeight <= 0 {
		o.HRVWeight = defaults.HRVWeight
	}
	if o.HRVMinNights <= 0 {
		o.HRVMinNights = defaults.HRVMinNights
	}
	if o.HabitualInRangeWeight <= 0 {
		o.HabitualInRangeWeight = defaults.HabitualInRangeWeight
	}
	if o.HabitualOutOfRangeWeight <= 0 {
		o.HabitualOutOfRangeWeight = defaults.HabitualOutOfRangeWeight
	}
	if o.RangeMinHours <= 0 {
		o.RangeMinHours = defaults.RangeMinHours
	}
	if o.RangeMaxHours <= 0 {
		o.RangeMaxHours = defaults.RangeMaxHours
	}
	return o
}

// Estimator fuses the available evidence into one OSD estimate
type Estimator struct {
	opts Options
}

// NewEstimator creates an estimator, filling unset options with defaults
func NewEstimator(opts Options) *Estimator {
	return &Estimator{opts: opts.withDefaults()}
}

// Estimate fuses the weighted evidence into an OSDEstimate. The three
// night subsets are optional and pre-filtered by the caller (weekend with
// no alarm, efficiency above its percentile cut, HRV above its cut); this
// component only fuses. It never fails outright: with no optional evidence
// and no habitual history the result is the population prior alone.
func (e *Estimator) Estimate(habitual, weekendFree, highEfficiency, highHRV []sleep.Record) sleep.OSDEstimate {
	methods := make(map[string]sleep.MethodEstimate)

	// 1. Population prior, always present and most trusted
	methods[MethodRecommended] = sleep.MethodEstimate{
		Method:     MethodRecommended,
		Hours:      e.opts.RecommendedHours,
		Weight:     e.opts.RecommendedWeight,
		Confidence: sleep.ConfidenceHigh,
		SampleSize: 0,
		Note:       "population guidance for adults; individual need varies",
	}

	// 2. Rebound sleep on alarm-free nights: direct behavioral evidence
	if len(weekendFree) >= e.opts.WeekendMinNights {
		mean, _ := stats.Mean(sleepHours(weekendFree))
		methods[MethodWeekendRebound] = sleep.MethodEstimate{
			Method:     MethodWeekendRebound,
			Hours:      round2(mean),
			Weight:     e.opts.WeekendWeight,
			Confidence: sampleConfidence(len(weekendFree)),
			SampleSize: len(weekendFree),
			Note:       "mean duration of alarm-free rebound nights",
		}
	}

	// 3. Nights with top-tier sleep efficiency
	if len(highEfficiency) >= e.opts.EfficiencyMinNights {
		median, _ := stats.Median(sleepHours(highEfficiency))
		methods[MethodEfficiency] = sleep.MethodEstimate{
			Method:     MethodEfficiency,
			Hours:      round2(median),
			Weight:     e.opts.EfficiencyWeight,
			Confidence: sampleConfidence(len(highEfficiency)),
			SampleSize: len(highEfficiency),
			Note:       "median duration of high-efficiency nights",
		}
	}

	// 4. High-HRV nights, deliberately down-weighted (weak correlation)
	if len(highHRV) >= e.opts.HRVMinNights {
		median, _ := stats.Median(sleepHours(highHRV))
		methods[MethodHRV] = sleep.MethodEstimate{
			Method:     MethodHRV,
			Hours:      round2(median),
			Weight:     e.opts.HRVWeight,
			Confidence: sleep.ConfidenceLow,
			SampleSize: len(highHRV),
			Note:       "median duration of high-HRV nights; correlation with need is weak",
		}
	}

	// 5. Habitual baseline, down-weighted outside the recommended range
	habitualHours := 0.0
	if len(habitual) > 0 {
		median, _ := stats.Median(sleepHours(habitual))
		habitualHours = round2(median)

		weight := e.opts.HabitualInRangeWeight
		confidence := sleep.ConfidenceHigh
		note := "habitual median within the recommended range"
		if habitualHours < e.opts.RangeMinHours {
			weight = e.opts.HabitualOutOfRangeWeight
			confidence = sleep.ConfidenceLow
			note = "habitual median below the recommended range; possible chronic deprivation"
		} else if habitualHours > e.opts.RangeMaxHours {
			weight = e.opts.HabitualOutOfRangeWeight
			confidence = sleep.ConfidenceMedium
			note = "habitual median above the recommended range"
		}

		methods[MethodHabitual] = sleep.MethodEstimate{
			Method:     MethodHabitual,
			Hours:      habitualHours,
			Weight:     weight,
			Confidence: confidence,
			SampleSize: len(habitual),
			Note:       note,
		}
	}

	// 6. Weighted fusion, clipped to the recommended range
	weightedSum := 0.0
	weightTotal := 0.0
	for _, name := range fusionOrder {
		m, ok := methods[name]
		if !ok {
			continue
		}
		weightedSum += m.Hours * m.Weight
		weightTotal += m.Weight
	}
	osd := baseline.Clip(weightedSum/weightTotal, e.opts.RangeMinHours, e.opts.RangeMaxHours)

	// Potential debt is deliberately unclipped: negative means habitual
	// sleep already exceeds the estimated need.
	potentialDebt := 0.0
	if len(habitual) > 0 {
		potentialDebt = round2(osd - habitualHours)
	}

	return sleep.OSDEstimate{
		OSDHours:           osd,
		Methods:            methods,
		HabitualSleepHours: habitualHours,
		PotentialDebtHours: potentialDebt,
		Confidence:         e.overallConfidence(habitualHours, len(habitual)),
		Note:               e.recommendationNote(osd, habitualHours, len(habitual)),
	}
}

// overallConfidence grades the estimate by how much habitual evidence
// backs it and whether that evidence sits inside the recommended range
func (e *Estimator) overallConfidence(habitualHours float64, habitualCount int) sleep.Confidence {
	if habitualCount < 30 {
		return sleep.ConfidenceLow
	}
	if habitualHours >= e.opts.RangeMinHours {
		return sleep.ConfidenceHigh
	}
	return sleep.ConfidenceMedium
}

func (e *Estimator) recommendationNote(osd, habitualHours float64, habitualCount int) string {
	if habitualCount == 0 {
		return "No habitual history available; estimate rests on population guidance."
	}
	diff := osd - habitualHours
	switch {
	case diff > 0.5:
		return fmt.Sprintf("Habitual sleep (%.1fh) runs %.1fh short of the estimated need; try extending nights and observe performance.", habitualHours, diff)
	case diff < -0.5:
		return "Habitual sleep already exceeds the estimated need."
	default:
		return "Habitual sleep is close to the estimated need."
	}
}

// sampleConfidence grades an evidence subset by its size alone
func sampleConfidence(n int) sleep.Confidence {
	switch {
	case n >= 10:
		return sleep.ConfidenceHigh
	case n >= 5:
		return sleep.ConfidenceMedium
	default:
		return sleep.ConfidenceLow
	}
}

func sleepHours(records []sleep.Record) []float64 {
	hours := make([]float64, len(records))
	for i, r := range records {
		hours[i] = r.SleepHours()
	}
	return hours
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
