package heart

import (
	"time"

	"github.com/tsu-nera/dailybuild/domain/core"
)

// SignalConfidence is the sensor's ordinal quality tier for a sample
type SignalConfidence int

const (
	ConfidenceLow SignalConfidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// MotionLevel is the ordinal movement classification at sample time
type MotionLevel int

const (
	MotionStill MotionLevel = iota
	MotionLight
	MotionActive
)

// Sample is one summarized heart-rate observation with quality tags
type Sample struct {
	Timestamp  time.Time        `json:"timestamp"`
	BPM        float64          `json:"bpm"`
	Confidence SignalConfidence `json:"signal_confidence"`
	Motion     MotionLevel      `json:"motion_level"`
}

// NewSample creates a heart-rate sample with construction-time validation
func NewSample(ts time.Time, bpm float64, confidence SignalConfidence, motion MotionLevel) (Sample, error) {
	if bpm <= 0 {
		return Sample{}, core.NewOutOfRangeError("bpm", bpm, 0, 300)
	}
	return Sample{Timestamp: ts, BPM: bpm, Confidence: confidence, Motion: motion}, nil
}

// Interval is a half-open [Start, End) time span, used as a sleep-period
// mask supplied by the caller to exclude in-sleep samples.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the half-open interval
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// CircadianFitResult holds the parameters of a fitted harmonic heart-rate
// rhythm model together with its goodness-of-fit diagnostics.
// INVARIANTS:
// - Bathyphase and Acrophase are hours-of-day in [0, 24)
// - len(Amplitudes) == len(Phases) == Harmonics
type CircadianFitResult struct {
	Harmonics int `json:"harmonics"`

	// Mesor is the rhythm-adjusted 24h mean heart rate (bpm)
	Mesor float64 `json:"mesor"`

	// Amplitudes and Phases are per-harmonic; phases are radians of the
	// sin(2*pi*t/period + phi) parameterization.
	Amplitudes []float64 `json:"amplitudes"`
	Phases     []float64 `json:"phases"`

	// CombinedAmplitude is sqrt(A1^2 + A2^2) (equals A1 for one harmonic)
	CombinedAmplitude float64 `json:"combined_amplitude"`

	Bathyphase float64 `json:"bathyphase"` // hour-of-day of the fitted minimum
	Acrophase  float64 `json:"acrophase"`  // hour-of-day of the fitted maximum

	RSquared float64 `json:"r_squared"`

	// FirstHarmonicShare is the fraction of total variance explained by a
	// 1-harmonic-only fit of the same data (diagnostic; equals RSquared
	// when Harmonics == 1).
	FirstHarmonicShare float64 `json:"first_harmonic_share"`

	// UltradianRatio is A2/A1; values above 1 mean the 12h component
	// dominates. Zero for 1-harmonic fits.
	UltradianRatio float64 `json:"ultradian_ratio,omitempty"`

	HoursUsed int    `json:"hours_used"`
	Quality   string `json:"quality"` // "excellent", "good", "review"
}
