package debt

import "math"

// WeightScheme generates the per-night weight vector applied to a deficit
// window, oldest night first. The estimator's window selection and
// classification are scheme-agnostic; only the weight vector varies.
type WeightScheme interface {
	Name() string
	// Weights returns n weights for n chronologically ordered nights
	// (index 0 = oldest, index n-1 = most recent).
	Weights(n int) []float64
}

// LinearWeights ramps evenly from 0.5 on the oldest night to 1.0 on the
// most recent. This is the default, matching the documented approximation
// of commercial sleep-debt scoring.
type LinearWeights struct{}

func NewLinearWeights() LinearWeights { return LinearWeights{} }

func (LinearWeights) Name() string { return "linear" }

func (LinearWeights) Weights(n int) []float64 {
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1.0
		return weights
	}
	for i := range weights {
		weights[i] = 0.5 + 0.5*float64(i)/float64(n-1)
	}
	return weights
}

// ExponentialWeights decays geometrically toward the past, normalized so
// the most recent night carries weight 1.0.
type ExponentialWeights struct {
	DecayRate float64
}

func NewExponentialWeights() ExponentialWeights {
	return ExponentialWeights{DecayRate: 0.1}
}

func (ExponentialWeights) Name() string { return "exponential" }

func (w ExponentialWeights) Weights(n int) []float64 {
	rate := w.DecayRate
	if rate <= 0 {
		rate = 0.1
	}
	weights := make([]float64, n)
	peak := math.Exp(rate * float64(n-1))
	for i := range weights {
		weights[i] = math.Exp(rate*float64(i)) / peak
	}
	return weights
}

// UniformWeights treats every night in the window equally
type UniformWeights struct{}

func NewUniformWeights() UniformWeights { return UniformWeights{} }

func (UniformWeights) Name() string { return "uniform" }

func (UniformWeights) Weights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0
	}
	return weights
}

// RecencySplitWeights puts a fixed share of the total weight mass on the
// most recent night and spreads the remainder evenly over the older
// nights, mimicking the recency-dominant split used by some commercial
// devices (default 85% / 15%).
type RecencySplitWeights struct {
	RecentShare float64
}

func NewRecencySplitWeights() RecencySplitWeights {
	return RecencySplitWeights{RecentShare: 0.85}
}

func (RecencySplitWeights) Name() string { return "recency_split" }

func (w RecencySplitWeights) Weights(n int) []float64 {
	share := w.RecentShare
	if share <= 0 || share >= 1 {
		share = 0.85
	}
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1.0
		return weights
	}
	older := (1 - share) / float64(n-1)
	for i := 0; i < n-1; i++ {
		weights[i] = older
	}
	weights[n-1] = share
	return weights
}
