// Package baseline provides outlier-robust central-tendency estimation.
//
// This is the single outlier-rejection mechanism shared by the sleep
// analytics: IQR filtering followed by the median of the retained values.
// Components must not re-implement ad hoc filtering elsewhere.
package baseline

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/tsu-nera/dailybuild/domain/core"
)

// Unbounded disables the upper clip limit; pass -Unbounded to disable the
// lower one.
var Unbounded = math.Inf(1)

// RobustCenter computes the median of values after excluding IQR outliers,
// then clips the result into [low, high].
//
// Quartiles use linear interpolation of the empirical quantile function;
// values outside [Q1-1.5*IQR, Q3+1.5*IQR] are discarded. Returns the
// retained-sample count alongside the center. Deterministic and
// side-effect-free; the input slice is never mutated.
func RobustCenter(values []float64, low, high float64) (center float64, used int, err error) {
	if len(values) == 0 {
		return 0, 0, core.NewInsufficientDataError(1, 0, "robust center")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1

	lowerFence := q1 - 1.5*iqr
	upperFence := q3 + 1.5*iqr

	retained := sorted[:0:0]
	for _, v := range sorted {
		if v >= lowerFence && v <= upperFence {
			retained = append(retained, v)
		}
	}

	if len(retained) == 0 {
		return 0, 0, core.NewInsufficientDataError(1, 0, "robust center after IQR filtering")
	}

	median, medErr := stats.Median(retained)
	if medErr != nil {
		return 0, 0, core.NewInsufficientDataError(1, 0, "robust center median")
	}

	return Clip(median, low, high), len(retained), nil
}

// Clip bounds v into [low, high]. Only derived outputs are ever clipped;
// raw inputs are validated and rejected instead.
func Clip(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
