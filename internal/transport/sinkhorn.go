// Package transport implements entropic optimal transport balancing used to
// turn cost matrices into soft assignment couplings.
package transport

import (
	"fmt"
	"math"

	"distill/internal/domain"
)

// Defaults for the balancing temperature and iteration count.
const (
	DefaultEps   = 0.05
	DefaultIters = 5
)

// Sinkhorn balances exp(-cost/eps) towards the given row and column
// marginals by alternating row and column rescaling.
//
// cost has shape (..., M, N) and is batched over any leading axes. Optional
// marginals have shape (..., M) and (..., N); they need not sum to 1 and are
// normalized along their last axis first. A nil marginal means uniform. A
// marginal that is not finite after normalization yields a NumericalError.
//
// The returned coupling is divided by its per-column sums only, not fully
// re-normalized; callers that need row distributions re-normalize rows
// themselves. All-zero rows or columns in exp(-cost/eps) divide by zero and
// propagate NaN through the result; degenerate costs are the caller's to
// avoid.
func Sinkhorn(cost *domain.Tensor, eps float64, iters int, rowMarginal, colMarginal *domain.Tensor) (*domain.Tensor, error) {
	if cost.Rank() < 2 {
		return nil, fmt.Errorf("cost matrix must have rank >= 2, got %d", cost.Rank())
	}
	if eps <= 0 {
		return nil, fmt.Errorf("eps must be > 0, got %g", eps)
	}
	if iters < 1 {
		return nil, fmt.Errorf("iteration count must be >= 1, got %d", iters)
	}

	m, n := cost.MatShape()
	nb := cost.NumMats()

	var rProb, cProb [][]float64
	var err error
	if rowMarginal != nil {
		if rProb, err = normalizeMarginal(rowMarginal, m, nb, "row"); err != nil {
			return nil, err
		}
	}
	if colMarginal != nil {
		if cProb, err = normalizeMarginal(colMarginal, n, nb, "column"); err != nil {
			return nil, err
		}
	}

	q := cost.Clone()
	for b := 0; b < nb; b++ {
		mat := q.Mat(b)

		// Exponentiate and normalize to unit mass per matrix.
		var total float64
		for i := range mat {
			mat[i] = math.Exp(-mat[i] / eps)
			total += mat[i]
		}
		for i := range mat {
			mat[i] /= total
		}

		uniformRow := 1 / float64(m)
		uniformCol := 1 / float64(n)

		for it := 0; it < iters; it++ {
			// Row step: each row's mass becomes the row marginal.
			for i := 0; i < m; i++ {
				row := mat[i*n : (i+1)*n]
				var s float64
				for _, v := range row {
					s += v
				}
				target := uniformRow
				if rProb != nil {
					target = rProb[b][i]
				}
				for k := range row {
					row[k] = row[k] / s * target
				}
			}
			// Column step: each column's mass becomes the column marginal.
			for j := 0; j < n; j++ {
				var s float64
				for i := 0; i < m; i++ {
					s += mat[i*n+j]
				}
				target := uniformCol
				if cProb != nil {
					target = cProb[b][j]
				}
				for i := 0; i < m; i++ {
					mat[i*n+j] = mat[i*n+j] / s * target
				}
			}
		}

		// Final division runs over the row axis only (per-column sums).
		for j := 0; j < n; j++ {
			var s float64
			for i := 0; i < m; i++ {
				s += mat[i*n+j]
			}
			for i := 0; i < m; i++ {
				mat[i*n+j] /= s
			}
		}
	}

	return q, nil
}

// normalizeMarginal scales each trailing vector of mrg to sum to 1 and
// verifies the result is finite.
func normalizeMarginal(mrg *domain.Tensor, want, nb int, axis string) ([][]float64, error) {
	if mrg.LastDim() != want {
		return nil, fmt.Errorf("%s marginal has length %d, want %d", axis, mrg.LastDim(), want)
	}
	if mrg.NumVecs() != nb {
		return nil, fmt.Errorf("%s marginal has %d batches, want %d", axis, mrg.NumVecs(), nb)
	}

	out := make([][]float64, nb)
	for b := 0; b < nb; b++ {
		vec := append([]float64(nil), mrg.Vec(b)...)
		var s float64
		for _, v := range vec {
			s += v
		}
		for i := range vec {
			vec[i] /= s
		}
		for _, v := range vec {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &domain.NumericalError{
					Op:     "sinkhorn",
					Detail: fmt.Sprintf("%s marginal is not finite after normalization", axis),
				}
			}
		}
		out[b] = vec
	}
	return out, nil
}
