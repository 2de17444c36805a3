package osd

import (
	"sort"

	"github.com/tsu-nera/dailybuild/domain/core"
	"github.com/tsu-nera/dailybuild/domain/sleep"
)

// Rebound-selection defaults: the longest 4% of nights over at least 30
// recorded nights approximate full recovery sleep.
const (
	DefaultReboundTopPercent = 4.0
	ReboundMinRecords        = 30
)

// SelectReboundNights picks the top-percent longest nights from history,
// for callers assembling the rebound evidence subset fed to Estimate.
// Full-recovery nights reveal true sleep need, so no outlier filtering is
// applied here: unusually long nights are the signal, not noise.
// Requires at least ReboundMinRecords nights; ties and ordering are broken
// by date so the selection is deterministic.
func SelectReboundNights(history []sleep.Record, topPercent float64) ([]sleep.Record, error) {
	if len(history) < ReboundMinRecords {
		return nil, core.NewInsufficientDataError(ReboundMinRecords, len(history), "rebound-night selection")
	}
	if topPercent <= 0 || topPercent > 100 {
		topPercent = DefaultReboundTopPercent
	}

	n := int(float64(len(history)) * topPercent / 100.0)
	if n < 1 {
		n = 1
	}

	sorted := make([]sleep.Record, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MinutesAsleep != sorted[j].MinutesAsleep {
			return sorted[i].MinutesAsleep > sorted[j].MinutesAsleep
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	return sleep.SortedByDate(sorted[:n]), nil
}
