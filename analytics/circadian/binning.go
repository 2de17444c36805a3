// Package circadian fits a harmonic (cosinor) model of the daily
// heart-rate rhythm to hourly means of quality-filtered samples, and
// extracts mesor, amplitude, and phase parameters from the fit.
package circadian

import (
	"math"
	"time"

	"github.com/tsu-nera/dailybuild/domain/heart"
)

// BinningOptions controls which samples qualify for the hourly profile
type BinningOptions struct {
	// MinConfidence is the lowest accepted signal tier (default high:
	// only top-tier optical readings are trusted for rhythm extraction)
	MinConfidence heart.SignalConfidence

	// MaxMotion is the highest accepted movement level (default still:
	// exercise and ambulation distort the resting rhythm)
	MaxMotion heart.MotionLevel
}

// DefaultBinningOptions returns the strict quality gate used for fitting
func DefaultBinningOptions() BinningOptions {
	return BinningOptions{
		MinConfidence: heart.ConfidenceHigh,
		MaxMotion:     heart.MotionStill,
	}
}

// HourlyProfile is the 24-bin hour-of-day aggregation fed to Fit.
// Unpopulated bins hold NaN and are excluded from fitting, not imputed.
type HourlyProfile struct {
	Means        [24]float64 `json:"means"`
	Populated    [24]bool    `json:"populated"`
	SampleCounts [24]int     `json:"sample_counts"`
}

// PopulatedBins returns how many of the 24 hour bins hold data
func (p HourlyProfile) PopulatedBins() int {
	count := 0
	for _, ok := range p.Populated {
		if ok {
			count++
		}
	}
	return count
}

// NewHourlyProfile builds a profile directly from 24 hourly means, with
// NaN marking missing hours. Used by callers that aggregate elsewhere.
func NewHourlyProfile(means [24]float64) HourlyProfile {
	var profile HourlyProfile
	profile.Means = means
	for h, v := range means {
		if !math.IsNaN(v) {
			profile.Populated[h] = true
			profile.SampleCounts[h] = 1
		} else {
			profile.Means[h] = math.NaN()
		}
	}
	return profile
}

// HourlyMeans bins heart-rate samples by hour-of-day across the whole
// lookback window and averages within each bin. Samples below the
// confidence gate, above the motion gate, or inside a supplied sleep
// interval are dropped before binning.
func HourlyMeans(samples []heart.Sample, sleepMask []heart.Interval, opts BinningOptions) HourlyProfile {
	var sums [24]float64
	var counts [24]int

	for _, s := range samples {
		if s.Confidence < opts.MinConfidence || s.Motion > opts.MaxMotion {
			continue
		}
		if inMask(s.Timestamp, sleepMask) {
			continue
		}
		hour := s.Timestamp.Hour()
		sums[hour] += s.BPM
		counts[hour]++
	}

	var profile HourlyProfile
	for h := 0; h < 24; h++ {
		profile.SampleCounts[h] = counts[h]
		if counts[h] > 0 {
			profile.Means[h] = sums[h] / float64(counts[h])
			profile.Populated[h] = true
		} else {
			profile.Means[h] = math.NaN()
		}
	}
	return profile
}

func inMask(t time.Time, mask []heart.Interval) bool {
	for _, iv := range mask {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}
