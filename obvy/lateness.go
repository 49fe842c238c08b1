package obvy

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LatenessSummary describes how far behind schedule a playback's events went out.
type LatenessSummary struct {
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P95    time.Duration
	Max    time.Duration
}

// SummarizeLateness reduces per-event lateness samples. Negative samples
// (sent early) count as on time. No samples gives the zero summary.
func SummarizeLateness(samples []time.Duration) LatenessSummary {
	if len(samples) == 0 {
		return LatenessSummary{}
	}

	secs := make([]float64, len(samples))
	for i, d := range samples {
		secs[i] = max(d, 0).Seconds()
	}
	slices.Sort(secs)

	sum := LatenessSummary{
		Count: len(secs),
		Mean:  seconds(stat.Mean(secs, nil)),
		P50:   seconds(stat.Quantile(0.5, stat.Empirical, secs, nil)),
		P95:   seconds(stat.Quantile(0.95, stat.Empirical, secs, nil)),
		Max:   seconds(floats.Max(secs)),
	}
	if len(secs) > 1 {
		sum.StdDev = seconds(stat.StdDev(secs, nil))
	}
	return sum
}

func seconds(s float64) time.Duration {
	if math.IsNaN(s) {
		return 0
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}

func (l LatenessSummary) String() string {
	return fmt.Sprintf("%d events, mean %s, p50 %s, p95 %s, max %s, stddev %s",
		l.Count, l.Mean, l.P50, l.P95, l.Max, l.StdDev)
}
