// Package distill turns frozen teacher embeddings into soft training
// targets for self-distillation.
package distill

import (
	"fmt"

	"distill/internal/domain"
	"distill/internal/similarity"
	"distill/internal/transport"
)

// TargetConfig controls how teacher targets are derived from a pair of
// teacher embedding batches.
type TargetConfig struct {
	// IICoeff and TTCoeff weight the image-image and text-text similarity
	// terms of the transport cost.
	IICoeff float64
	TTCoeff float64
	// SinkhornEps and SinkhornIters parameterize the balancing step.
	SinkhornEps   float64
	SinkhornIters int
	// RemoveDiag, scaled by 100, is subtracted from the diagonals of the
	// intra-modal similarity matrices to suppress self-similarity.
	RemoveDiag float64
	// SigmoidTarget rescales each row distribution into [-1, 1] to match a
	// sigmoid-activated loss.
	SigmoidTarget bool
}

// Targets holds the per-branch soft label matrices. Each row is a
// probability distribution (or its [-1, 1] rescaling in sigmoid mode).
type Targets struct {
	Image *domain.Tensor
	Text  *domain.Tensor
}

// ComputeTeacherTargets builds soft assignment targets for the image and
// text branches from the teacher's embeddings via entropic optimal
// transport. Both batches must have the same number of rows.
func ComputeTeacherTargets(imgEmb, txtEmb *domain.Tensor, cfg TargetConfig) (Targets, error) {
	sims, err := similarity.Compute(imgEmb, txtEmb)
	if err != nil {
		return Targets{}, err
	}

	b, _ := sims.II.MatShape()
	tb, _ := sims.TT.MatShape()
	if b != tb {
		return Targets{}, fmt.Errorf("batch sizes differ: %d images vs %d texts", b, tb)
	}

	diag := domain.Eye(b).Scale(cfg.RemoveDiag * 1e2).To(imgEmb.Device())
	simII, err := sims.II.Sub(diag)
	if err != nil {
		return Targets{}, err
	}
	simTT, err := sims.TT.Sub(diag)
	if err != nil {
		return Targets{}, err
	}
	simII = simII.Scale(cfg.IICoeff)
	simTT = simTT.Scale(cfg.TTCoeff)

	imgCost, err := domain.Add(simII, simTT, sims.IT)
	if err != nil {
		return Targets{}, err
	}
	txtCost, err := domain.Add(simII, simTT, sims.TI)
	if err != nil {
		return Targets{}, err
	}

	imgProb, err := transport.Sinkhorn(imgCost.Neg(), cfg.SinkhornEps, cfg.SinkhornIters, nil, nil)
	if err != nil {
		return Targets{}, err
	}
	txtProb, err := transport.Sinkhorn(txtCost.Neg(), cfg.SinkhornEps, cfg.SinkhornIters, nil, nil)
	if err != nil {
		return Targets{}, err
	}

	finalizeRows(imgProb, cfg.SigmoidTarget)
	finalizeRows(txtProb, cfg.SigmoidTarget)

	return Targets{Image: imgProb, Text: txtProb}, nil
}

// finalizeRows scales each row of t into a probability distribution, then
// into [-1, 1] when signed targets are requested. t is owned by the caller.
func finalizeRows(t *domain.Tensor, signed bool) {
	n := t.LastDim()
	for i := 0; i < t.NumVecs(); i++ {
		row := t.Data()[i*n : (i+1)*n]
		var s float64
		for _, v := range row {
			s += v
		}
		for k := range row {
			row[k] /= s
			if signed {
				row[k] = row[k]*2 - 1
			}
		}
	}
}
