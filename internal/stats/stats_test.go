package stats

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestProportionIntervalZeroTrials(t *testing.T) {
	t.Parallel()

	interval, err := ProportionInterval(0, 0, 95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interval.Proportion != 0 || interval.Lower != 0 || interval.Upper != 0 {
		t.Fatalf("zero trials interval = %+v, want all zero", interval)
	}
}

func TestProportionIntervalKnownValue(t *testing.T) {
	t.Parallel()

	// p = 0.2, n = 100, z = 1.96: margin = 1.96 * sqrt(0.2*0.8/100) = 0.0784
	interval, err := ProportionInterval(20, 100, 95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(interval.Proportion, 0.2, tolerance) {
		t.Fatalf("proportion = %f, want 0.2", interval.Proportion)
	}
	if !almostEqual(interval.Lower, 0.2-0.0784, 1e-4) {
		t.Fatalf("lower = %f, want ~0.1216", interval.Lower)
	}
	if !almostEqual(interval.Upper, 0.2+0.0784, 1e-4) {
		t.Fatalf("upper = %f, want ~0.2784", interval.Upper)
	}
}

func TestProportionIntervalClampedBounds(t *testing.T) {
	t.Parallel()

	interval, err := ProportionInterval(1, 2, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interval.Lower < 0 || interval.Upper > 1 {
		t.Fatalf("bounds [%f, %f] escape [0, 1]", interval.Lower, interval.Upper)
	}
}

func TestProportionIntervalRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := ProportionInterval(5, 3, 95); err == nil {
		t.Fatal("expected error for successes > trials")
	}
	if _, err := ProportionInterval(1, 10, 42); err == nil {
		t.Fatal("expected error for unsupported confidence level")
	}
}

func TestChiSquareIdenticalGroupsIsZero(t *testing.T) {
	t.Parallel()

	statistic, df, err := ChiSquare([]GroupCounts{
		{Label: "A", Successes: 50, Failures: 50},
		{Label: "B", Successes: 50, Failures: 50},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if df != 1 {
		t.Fatalf("df = %d, want 1", df)
	}
	if !almostEqual(statistic, 0, tolerance) {
		t.Fatalf("statistic = %f, want 0", statistic)
	}
}

func TestChiSquareKnownValue(t *testing.T) {
	t.Parallel()

	// 2x2 table: A 30/70, B 10/90. Expected successes per row: 20.
	// chi2 = 100/20 + 100/80 + 100/20 + 100/80 = 12.5
	statistic, df, err := ChiSquare([]GroupCounts{
		{Label: "A", Successes: 30, Failures: 70},
		{Label: "B", Successes: 10, Failures: 90},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(statistic, 12.5, 1e-9) {
		t.Fatalf("statistic = %f, want 12.5", statistic)
	}

	significant, err := IsSignificant(statistic, df, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !significant {
		t.Fatal("statistic 12.5 at df=1 should be significant at 0.05")
	}

	significant, err = IsSignificant(3.0, df, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if significant {
		t.Fatal("statistic 3.0 at df=1 should not be significant at 0.05")
	}
}

func TestChiSquareDegenerateTable(t *testing.T) {
	t.Parallel()

	statistic, _, err := ChiSquare([]GroupCounts{
		{Label: "A", Successes: 0, Failures: 100},
		{Label: "B", Successes: 0, Failures: 50},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statistic != 0 {
		t.Fatalf("statistic = %f, want 0 for all-failure table", statistic)
	}
}

func TestChiSquareRequiresTwoGroups(t *testing.T) {
	t.Parallel()

	if _, _, err := ChiSquare([]GroupCounts{{Label: "A", Successes: 1, Failures: 1}}); err == nil {
		t.Fatal("expected error for single group")
	}
}

func TestDescriptiveStats(t *testing.T) {
	t.Parallel()

	values := []float64{4, 1, 3, 2, 5}

	if got := Mean(values); !almostEqual(got, 3, tolerance) {
		t.Fatalf("Mean() = %f, want 3", got)
	}
	if got := Median(values); !almostEqual(got, 3, tolerance) {
		t.Fatalf("Median() = %f, want 3", got)
	}
	if got := Percentile(values, 90); !almostEqual(got, 5, tolerance) {
		t.Fatalf("Percentile(90) = %f, want 5", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %f, want 0", got)
	}
	if got := Median(nil); got != 0 {
		t.Fatalf("Median(nil) = %f, want 0", got)
	}
}
