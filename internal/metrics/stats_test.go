package metrics

import (
	"math"
	"testing"
)

func TestRunningStats(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	var stats RunningStats
	for _, v := range samples {
		stats.Add(v)
	}

	if stats.Count() != len(samples) {
		t.Errorf("Count() = %d, want %d", stats.Count(), len(samples))
	}
	if math.Abs(stats.Mean()-5) > 1e-12 {
		t.Errorf("Mean() = %v, want 5", stats.Mean())
	}

	// Sample variance of the fixed series is 32/7.
	if want := 32.0 / 7.0; math.Abs(stats.Variance()-want) > 1e-9 {
		t.Errorf("Variance() = %v, want %v", stats.Variance(), want)
	}
}

func TestRunningStatsSingleSample(t *testing.T) {
	var stats RunningStats
	stats.Add(3.5)

	if stats.Mean() != 3.5 {
		t.Errorf("Mean() = %v, want 3.5", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Variance() = %v, want 0", stats.Variance())
	}
}

func TestSplits(t *testing.T) {
	cases := []struct {
		name             string
		n                int
		trainPct, valPct float64
		train, val, test int
	}{
		{"standard", 100, 80, 10, 80, 10, 10},
		{"all test", 10, 0, 0, 0, 0, 10},
		{"no test remainder", 10, 70, 30, 7, 3, 0},
		{"remainder folds into train", 7, 50, 50, 4, 3, 0},
		{"small val", 1000, 90, 5, 900, 50, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			train, val, test := Splits(tc.n, tc.trainPct, tc.valPct)
			if train != tc.train || val != tc.val || test != tc.test {
				t.Errorf("Splits(%d, %v, %v) = (%d, %d, %d), want (%d, %d, %d)",
					tc.n, tc.trainPct, tc.valPct, train, val, test, tc.train, tc.val, tc.test)
			}
			if tc.trainPct+tc.valPct <= 100 && train+val+test != tc.n {
				t.Errorf("splits do not cover all %d instances", tc.n)
			}
		})
	}
}
