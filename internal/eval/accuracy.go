// Package eval scores retrieval quality of a trained model's logits.
package eval

import (
	"fmt"

	"distill/internal/domain"
)

// Accuracy computes bidirectional retrieval accuracy from an image-text
// logits matrix. Ground truth is the identity pairing: row i should retrieve
// column i and vice versa. The two directional hit counts are averaged and
// divided by batchSize; keeping batchSize consistent with the logits' row
// count is the caller's responsibility.
func Accuracy(logits *domain.Tensor, batchSize int) (float64, error) {
	if logits.Rank() != 2 {
		return 0, fmt.Errorf("logits must be rank 2, got rank %d", logits.Rank())
	}
	if batchSize <= 0 {
		return 0, fmt.Errorf("batch size must be > 0, got %d", batchSize)
	}

	m, n := logits.MatShape()
	data := logits.Data()

	accI := 0
	for i := 0; i < m; i++ {
		best := 0
		for j := 1; j < n; j++ {
			if data[i*n+j] > data[i*n+best] {
				best = j
			}
		}
		if best == i {
			accI++
		}
	}

	accT := 0
	for j := 0; j < n; j++ {
		best := 0
		for i := 1; i < m; i++ {
			if data[i*n+j] > data[best*n+j] {
				best = i
			}
		}
		if best == j {
			accT++
		}
	}

	return float64(accI+accT) / 2 / float64(batchSize), nil
}
