// Package loss scores how well the CLIP similarity structure aligns with a
// reference semantic encoder's similarity structure.
package loss

import (
	"fmt"

	"distill/internal/domain"
	"distill/internal/similarity"
)

// Options tweaks the reduction behavior.
type Options struct {
	// LegacySum reproduces the historical behavior where the Sum reduction
	// averaged the three error terms instead of summing them. Off by
	// default; a true sum is computed.
	LegacySum bool
}

// ComputeMSESimilarities compares the CLIP-derived similarity matrices
// against the semantic reference matrix. It computes the mean squared error
// of (II, TTSemantic), (IT, TTSemantic) and (TTClip, TTSemantic), stacks
// them into a 3-vector and reduces it. ReductionNone returns the 3-vector;
// the other reductions return a single-element tensor.
func ComputeMSESimilarities(m similarity.SemanticMatrices, red Reduction, opts Options) (*domain.Tensor, error) {
	iiMSE, err := meanSquaredError(m.II, m.TTSemantic)
	if err != nil {
		return nil, fmt.Errorf("image-image alignment: %w", err)
	}
	itMSE, err := meanSquaredError(m.IT, m.TTSemantic)
	if err != nil {
		return nil, fmt.Errorf("image-text alignment: %w", err)
	}
	ttMSE, err := meanSquaredError(m.TTClip, m.TTSemantic)
	if err != nil {
		return nil, fmt.Errorf("text-text alignment: %w", err)
	}

	vec := []float64{iiMSE, itMSE, ttMSE}

	switch red {
	case ReductionMean:
		return domain.FromSlice([]float64{(vec[0] + vec[1] + vec[2]) / 3}, 1)
	case ReductionSum:
		if opts.LegacySum {
			return domain.FromSlice([]float64{(vec[0] + vec[1] + vec[2]) / 3}, 1)
		}
		return domain.FromSlice([]float64{vec[0] + vec[1] + vec[2]}, 1)
	case ReductionNone:
		return domain.FromSlice(vec, 3)
	}
	return nil, &domain.ArgumentError{
		Name:    "reduction",
		Value:   fmt.Sprintf("%d", red),
		Allowed: reductionKeywords,
	}
}

// ComputeMSE derives the semantic similarity matrices from the given
// embedding batches and reduces them with ReductionMean. The semantic
// text-text matrix is moved to device when it lives elsewhere; the CLIP
// matrices never move.
func ComputeMSE(clipImg, clipTxt, semTxt *domain.Tensor, device domain.Device) (float64, error) {
	m, err := similarity.ComputeSemantic(clipImg, clipTxt, semTxt)
	if err != nil {
		return 0, err
	}

	if m.TTSemantic.Device() != device {
		m.TTSemantic = m.TTSemantic.To(device)
	}

	out, err := ComputeMSESimilarities(m, ReductionMean, Options{})
	if err != nil {
		return 0, err
	}
	return out.Data()[0], nil
}

// meanSquaredError averages the squared elementwise difference of two
// same-shape tensors.
func meanSquaredError(a, b *domain.Tensor) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("shape mismatch: %v vs %v", a.Shape(), b.Shape())
	}
	ad, bd := a.Data(), b.Data()
	var sum float64
	for i := range ad {
		d := ad[i] - bd[i]
		sum += d * d
	}
	return sum / float64(len(ad)), nil
}
