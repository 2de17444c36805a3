package circadian

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/tsu-nera/dailybuild/domain/core"
	"github.com/tsu-nera/dailybuild/domain/heart"
)

// Angular frequencies of the 24h and 12h harmonics (radians per hour)
const (
	omega1 = 2 * math.Pi / 24.0
	omega2 = 2 * math.Pi / 12.0
)

// Options carries the fitter tunables
type Options struct {
	// MinHourlyBins is the minimum populated hour-of-day bins required
	// for a fit (default 12: half-day coverage)
	MinHourlyBins int

	// MaxIterations caps the nonlinear solver so worst-case latency is
	// bounded; hitting the cap surfaces as FitConvergenceError (default 500)
	MaxIterations int

	// GradientTolerance is the solver's convergence threshold on the
	// objective gradient norm (default 1e-6)
	GradientTolerance float64
}

// DefaultOptions returns the documented fitter defaults
func DefaultOptions() Options {
	return Options{
		MinHourlyBins:     12,
		MaxIterations:     500,
		GradientTolerance: 1e-6,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.MinHourlyBins <= 0 {
		o.MinHourlyBins = defaults.MinHourlyBins
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaults.MaxIterations
	}
	if o.GradientTolerance <= 0 {
		o.GradientTolerance = defaults.GradientTolerance
	}
	return o
}

// Fitter extracts circadian parameters from an hourly heart-rate profile.
// Stateless: every Fit call works only from its arguments.
type Fitter struct {
	opts Options
}

// NewFitter creates a fitter, filling unset options with defaults
func NewFitter(opts Options) *Fitter {
	return &Fitter{opts: opts.withDefaults()}
}

// Fit fits a 1- or 2-harmonic cosinor model
//
//	HR(t) = mesor + A1*sin(2*pi*t/24 + phi1) [+ A2*sin(2*pi*t/12 + phi2)]
//
// to the populated hours of the profile. Missing hours are excluded, not
// imputed. The 1-harmonic model solves a sin/cos linear least squares; the
// 2-harmonic model minimizes the residual sum of squares with a bounded
// quasi-Newton solver and reports FitConvergenceError when the budget is
// exhausted, so callers can retry with the simpler model.
func (f *Fitter) Fit(profile HourlyProfile, harmonics int) (heart.CircadianFitResult, error) {
	if harmonics != 1 && harmonics != 2 {
		return heart.CircadianFitResult{}, fmt.Errorf("harmonics must be 1 or 2, got %d", harmonics)
	}

	hours, values := profile.fittingData()

	if len(hours) < f.opts.MinHourlyBins {
		return heart.CircadianFitResult{}, core.NewInsufficientDataError(
			f.opts.MinHourlyBins, len(hours), "hourly heart-rate bins")
	}
	freeParams := 1 + 2*harmonics
	if len(hours) < freeParams {
		return heart.CircadianFitResult{}, core.NewInsufficientDataError(
			freeParams, len(hours), "hourly bins vs free parameters")
	}

	var params []float64
	var err error
	if harmonics == 1 {
		params, err = fitOneHarmonic(hours, values)
	} else {
		params, err = f.fitTwoHarmonic(hours, values)
	}
	if err != nil {
		return heart.CircadianFitResult{}, err
	}

	return f.assemble(params, harmonics, hours, values)
}

// fittingData extracts the populated (hour, mean) pairs
func (p HourlyProfile) fittingData() ([]float64, []float64) {
	var hours, values []float64
	for h := 0; h < 24; h++ {
		if p.Populated[h] && !math.IsNaN(p.Means[h]) {
			hours = append(hours, float64(h))
			values = append(values, p.Means[h])
		}
	}
	return hours, values
}

// fitOneHarmonic solves HR(t) = b0 + b1*sin(w1*t) + b2*cos(w1*t) by
// linear least squares; amplitude and phase follow from b1 and b2.
func fitOneHarmonic(hours, values []float64) ([]float64, error) {
	n := len(hours)
	design := mat.NewDense(n, 3, nil)
	for i, t := range hours {
		design.Set(i, 0, 1)
		design.Set(i, 1, math.Sin(omega1*t))
		design.Set(i, 2, math.Cos(omega1*t))
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, mat.NewVecDense(n, values)); err != nil {
		return nil, core.NewFitConvergenceError("1-harmonic", 0, err)
	}

	mesor := coef.AtVec(0)
	bSin := coef.AtVec(1)
	bCos := coef.AtVec(2)

	// b1*sin + b2*cos == A*sin(wt + phi) with A = hypot(b1, b2),
	// phi = atan2(b2, b1)
	amplitude := math.Hypot(bSin, bCos)
	phase := math.Atan2(bCos, bSin)

	return []float64{mesor, amplitude, phase}, nil
}

// fitTwoHarmonic minimizes the residual sum of squares over
// (mesor, A1, phi1, A2, phi2) with analytic gradients.
func (f *Fitter) fitTwoHarmonic(hours, values []float64) ([]float64, error) {
	sse := func(x []float64) float64 {
		total := 0.0
		for i, t := range hours {
			r := evalTwoHarmonic(x, t) - values[i]
			total += r * r
		}
		return total
	}
	grad := func(g, x []float64) {
		for i := range g {
			g[i] = 0
		}
		for i, t := range hours {
			r := evalTwoHarmonic(x, t) - values[i]
			s1 := math.Sin(omega1*t + x[2])
			c1 := math.Cos(omega1*t + x[2])
			s2 := math.Sin(omega2*t + x[4])
			c2 := math.Cos(omega2*t + x[4])
			g[0] += 2 * r
			g[1] += 2 * r * s1
			g[2] += 2 * r * x[1] * c1
			g[3] += 2 * r * s2
			g[4] += 2 * r * x[3] * c2
		}
	}

	// Seeds: mean level, half the observed swing, quarter-amplitude
	// second harmonic, zero phases
	mean := floats.Sum(values) / float64(len(values))
	a1 := (floats.Max(values) - floats.Min(values)) / 2
	seed := []float64{mean, a1, 0, a1 / 4, 0}

	problem := optimize.Problem{Func: sse, Grad: grad}
	settings := &optimize.Settings{
		MajorIterations:   f.opts.MaxIterations,
		GradientThreshold: f.opts.GradientTolerance,
	}

	result, err := optimize.Minimize(problem, seed, settings, &optimize.LBFGS{})
	if err != nil {
		return nil, core.NewFitConvergenceError("2-harmonic", f.opts.MaxIterations, err)
	}
	if result.Status == optimize.IterationLimit {
		return nil, core.NewFitConvergenceError("2-harmonic", f.opts.MaxIterations, nil)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.NewFitConvergenceError("2-harmonic", f.opts.MaxIterations, nil)
		}
	}

	return result.X, nil
}

// evalTwoHarmonic evaluates the 2-harmonic model at hour t for the raw
// parameter vector (mesor, A1, phi1, A2, phi2)
func evalTwoHarmonic(x []float64, t float64) float64 {
	return x[0] + x[1]*math.Sin(omega1*t+x[2]) + x[3]*math.Sin(omega2*t+x[4])
}

// assemble normalizes the fitted parameters and derives the phase,
// amplitude, and goodness-of-fit diagnostics.
func (f *Fitter) assemble(params []float64, harmonics int, hours, values []float64) (heart.CircadianFitResult, error) {
	mesor := params[0]
	amplitudes := make([]float64, harmonics)
	phases := make([]float64, harmonics)
	for h := 0; h < harmonics; h++ {
		amplitudes[h], phases[h] = normalizeHarmonic(params[1+2*h], params[2+2*h])
	}

	combined := amplitudes[0]
	if harmonics == 2 {
		combined = math.Hypot(amplitudes[0], amplitudes[1])
	}

	eval := func(t float64) float64 {
		v := mesor + amplitudes[0]*math.Sin(omega1*t+phases[0])
		if harmonics == 2 {
			v += amplitudes[1] * math.Sin(omega2*t+phases[1])
		}
		return v
	}

	// Bathyphase/acrophase at the 24 integer hours, earliest hour wins ties
	bathyphase, acrophase := 0.0, 0.0
	lowest, highest := eval(0), eval(0)
	for h := 1; h < 24; h++ {
		v := eval(float64(h))
		if v < lowest {
			lowest = v
			bathyphase = float64(h)
		}
		if v > highest {
			highest = v
			acrophase = float64(h)
		}
	}

	fitted := make([]float64, len(hours))
	for i, t := range hours {
		fitted[i] = eval(t)
	}
	rSquared := stat.RSquaredFrom(fitted, values, nil)

	// Variance share of the 24h component alone: refit the 1-harmonic
	// model as a diagnostic and keep only its explained-variance fraction
	firstShare := rSquared
	ultradian := 0.0
	if harmonics == 2 {
		if oneParams, err := fitOneHarmonic(hours, values); err == nil {
			oneFitted := make([]float64, len(hours))
			for i, t := range hours {
				oneFitted[i] = oneParams[0] + oneParams[1]*math.Sin(omega1*t+oneParams[2])
			}
			firstShare = stat.RSquaredFrom(oneFitted, values, nil)
		}
		if amplitudes[0] != 0 {
			ultradian = amplitudes[1] / amplitudes[0]
		}
	}

	return heart.CircadianFitResult{
		Harmonics:          harmonics,
		Mesor:              mesor,
		Amplitudes:         amplitudes,
		Phases:             phases,
		CombinedAmplitude:  combined,
		Bathyphase:         bathyphase,
		Acrophase:          acrophase,
		RSquared:           rSquared,
		FirstHarmonicShare: firstShare,
		UltradianRatio:     ultradian,
		HoursUsed:          len(hours),
		Quality:            classifyFit(rSquared),
	}, nil
}

// normalizeHarmonic flips a negative amplitude into a half-turn phase
// shift and wraps the phase into (-pi, pi]
func normalizeHarmonic(amplitude, phase float64) (float64, float64) {
	if amplitude < 0 {
		amplitude = -amplitude
		phase += math.Pi
	}
	for phase > math.Pi {
		phase -= 2 * math.Pi
	}
	for phase <= -math.Pi {
		phase += 2 * math.Pi
	}
	return amplitude, phase
}

// classifyFit grades goodness of fit for report rendering
func classifyFit(rSquared float64) string {
	switch {
	case rSquared > 0.95:
		return "excellent"
	case rSquared > 0.85:
		return "good"
	default:
		return "review"
	}
}

// Interpret renders a one-line reading of a fit for display surfaces
func Interpret(r heart.CircadianFitResult) string {
	switch r.Quality {
	case "excellent":
		return fmt.Sprintf("Strong circadian rhythm: lowest heart rate near %02d:00, peak near %02d:00 (R²=%.2f).", int(r.Bathyphase), int(r.Acrophase), r.RSquared)
	case "good":
		return fmt.Sprintf("Clear circadian rhythm with some irregularity (R²=%.2f).", r.RSquared)
	default:
		return fmt.Sprintf("Weak or irregular rhythm (R²=%.2f); review data coverage before trusting phase estimates.", r.RSquared)
	}
}
