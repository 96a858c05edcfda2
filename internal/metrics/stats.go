// Package metrics provides lightweight running statistics for training and
// evaluation loops.
package metrics

// RunningStats accumulates the mean and variance of a scalar stream one
// sample at a time, without storing the samples.
type RunningStats struct {
	n        int
	mean     float64
	variance float64
}

// Add records a new sample.
func (s *RunningStats) Add(v float64) {
	s.n++
	if s.n == 1 {
		s.mean = v
		s.variance = 0
		return
	}
	prev := s.mean
	s.variance = float64(s.n-2)/float64(s.n-1)*s.variance + (v-prev)*(v-prev)/float64(s.n)
	s.mean = prev + (v-prev)/float64(s.n)
}

// Count returns the number of samples seen.
func (s *RunningStats) Count() int { return s.n }

// Mean returns the current mean, or 0 before any sample.
func (s *RunningStats) Mean() float64 { return s.mean }

// Variance returns the current sample variance, or 0 with fewer than two
// samples.
func (s *RunningStats) Variance() float64 { return s.variance }

// Splits sizes the train/validation/test partitions of a dataset from
// whole-number percentages. Leftover instances go to the test split; when
// the requested percentages cover everything, the leftover folds back into
// the train split instead.
func Splits(n int, trainPct, valPct float64) (train, val, test int) {
	if trainPct == 0 && valPct == 0 {
		return 0, 0, n
	}

	train = int(float64(n) * trainPct / 100)
	remaining := n - train
	val = int(float64(n) * valPct / 100)
	test = remaining - val

	if trainPct+valPct >= 100.0 {
		train += test
		test = 0
	}

	return train, val, test
}
