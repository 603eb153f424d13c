// Package stats holds the pure statistical formulas behind the analytics
// services: proportion confidence intervals, chi-square significance for
// variant comparison, and descriptive summaries.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// Two-sided z-scores by confidence level (percent).
var zScores = map[int]float64{
	80: 1.282,
	90: 1.645,
	95: 1.960,
	98: 2.326,
	99: 2.576,
}

// Interval is a proportion with its confidence bounds, all in [0, 1].
type Interval struct {
	Proportion float64
	Lower      float64
	Upper      float64
	Confidence int
}

// ProportionInterval computes a normal-approximation confidence interval
// for successes/trials. Zero trials yields a zero interval rather than NaN.
func ProportionInterval(successes, trials int64, confidence int) (Interval, error) {
	z, ok := zScores[confidence]
	if !ok {
		return Interval{}, fmt.Errorf("unsupported confidence level %d", confidence)
	}
	if trials < 0 || successes < 0 || successes > trials {
		return Interval{}, fmt.Errorf("invalid counts: %d/%d", successes, trials)
	}
	if trials == 0 {
		return Interval{Confidence: confidence}, nil
	}

	p := float64(successes) / float64(trials)
	margin := z * math.Sqrt(p*(1-p)/float64(trials))

	return Interval{
		Proportion: p,
		Lower:      math.Max(0, p-margin),
		Upper:      math.Min(1, p+margin),
		Confidence: confidence,
	}, nil
}

// GroupCounts is one variant's outcome tally for a chi-square comparison.
type GroupCounts struct {
	Label     string
	Successes int64
	Failures  int64
}

// Chi-square critical values for alpha 0.05 and 0.01 by degrees of freedom.
var chiSquareCritical = map[float64][]float64{
	0.05: {3.841, 5.991, 7.815, 9.488, 11.070, 12.592, 14.067, 15.507, 16.919, 18.307},
	0.01: {6.635, 9.210, 11.345, 13.277, 15.086, 16.812, 18.475, 20.090, 21.666, 23.209},
}

// ChiSquare computes the chi-square statistic for a groups x 2 contingency
// table of successes and failures. Degrees of freedom is len(groups)-1.
func ChiSquare(groups []GroupCounts) (statistic float64, df int, err error) {
	if len(groups) < 2 {
		return 0, 0, fmt.Errorf("chi-square needs at least 2 groups, got %d", len(groups))
	}

	var totalSuccess, totalFailure int64
	for _, g := range groups {
		if g.Successes < 0 || g.Failures < 0 {
			return 0, 0, fmt.Errorf("negative counts for group %q", g.Label)
		}
		totalSuccess += g.Successes
		totalFailure += g.Failures
	}

	grandTotal := totalSuccess + totalFailure
	if grandTotal == 0 || totalSuccess == 0 || totalFailure == 0 {
		// A degenerate table has no variance to test.
		return 0, len(groups) - 1, nil
	}

	for _, g := range groups {
		rowTotal := float64(g.Successes + g.Failures)
		expectedSuccess := rowTotal * float64(totalSuccess) / float64(grandTotal)
		expectedFailure := rowTotal * float64(totalFailure) / float64(grandTotal)
		if expectedSuccess > 0 {
			diff := float64(g.Successes) - expectedSuccess
			statistic += diff * diff / expectedSuccess
		}
		if expectedFailure > 0 {
			diff := float64(g.Failures) - expectedFailure
			statistic += diff * diff / expectedFailure
		}
	}

	return statistic, len(groups) - 1, nil
}

// IsSignificant reports whether a chi-square statistic exceeds the critical
// value for the given degrees of freedom at alpha 0.05 or 0.01.
func IsSignificant(statistic float64, df int, alpha float64) (bool, error) {
	critical, ok := chiSquareCritical[alpha]
	if !ok {
		return false, fmt.Errorf("unsupported alpha %.3f", alpha)
	}
	if df < 1 || df > len(critical) {
		return false, fmt.Errorf("degrees of freedom %d out of supported range", df)
	}
	return statistic > critical[df-1], nil
}

// Mean returns the arithmetic mean, zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value, zero for an empty slice.
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Percentile returns the pth percentile using nearest-rank on a sorted copy.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
