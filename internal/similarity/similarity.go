// Package similarity computes pairwise similarity matrices between
// embedding batches.
package similarity

import (
	"fmt"
	"math"

	"distill/internal/domain"
)

// Matrices holds the four dot-product similarity matrices of an image/text
// embedding pair. II and TT are symmetric; TI is the transpose of IT.
type Matrices struct {
	II *domain.Tensor
	TT *domain.Tensor
	IT *domain.Tensor
	TI *domain.Tensor
}

// SemanticMatrices holds the cosine similarity matrices used to compare the
// CLIP view of a batch against a reference sentence encoder's view.
type SemanticMatrices struct {
	II         *domain.Tensor
	IT         *domain.Tensor
	TTClip     *domain.Tensor
	TTSemantic *domain.Tensor
}

// Compute returns the raw dot-product similarity matrices between the image
// and text embedding batches. Each batch is (rows, dim); the batches may
// have different row counts but must share the embedding dimension.
func Compute(imgEmb, txtEmb *domain.Tensor) (Matrices, error) {
	if err := checkPair(imgEmb, txtEmb); err != nil {
		return Matrices{}, err
	}

	ii, _ := matMulT(imgEmb, imgEmb)
	tt, _ := matMulT(txtEmb, txtEmb)
	it, _ := matMulT(imgEmb, txtEmb)
	ti, _ := matMulT(txtEmb, imgEmb)

	return Matrices{II: ii, TT: tt, IT: it, TI: ti}, nil
}

// ComputeSemantic returns cosine similarity matrices between CLIP image
// embeddings, CLIP text embeddings and a reference semantic text embedding
// batch. The CLIP batches must share an embedding dimension; the semantic
// batch may have its own.
func ComputeSemantic(clipImg, clipTxt, semTxt *domain.Tensor) (SemanticMatrices, error) {
	if err := checkPair(clipImg, clipTxt); err != nil {
		return SemanticMatrices{}, err
	}
	if semTxt.Rank() != 2 {
		return SemanticMatrices{}, fmt.Errorf("semantic embeddings must be rank 2, got rank %d", semTxt.Rank())
	}

	imgN := normalizeRows(clipImg)
	txtN := normalizeRows(clipTxt)
	semN := normalizeRows(semTxt)

	ii, _ := matMulT(imgN, imgN)
	it, _ := matMulT(imgN, txtN)
	ttClip, _ := matMulT(txtN, txtN)
	ttSem, _ := matMulT(semN, semN)

	return SemanticMatrices{II: ii, IT: it, TTClip: ttClip, TTSemantic: ttSem}, nil
}

func checkPair(a, b *domain.Tensor) error {
	if a.Rank() != 2 || b.Rank() != 2 {
		return fmt.Errorf("embeddings must be rank 2, got ranks %d and %d", a.Rank(), b.Rank())
	}
	if a.LastDim() != b.LastDim() {
		return fmt.Errorf("embedding dimensions differ: %d vs %d", a.LastDim(), b.LastDim())
	}
	return nil
}

// matMulT computes a @ b^T for two (rows, dim) batches. The result lives on
// a's device.
func matMulT(a, b *domain.Tensor) (*domain.Tensor, error) {
	if a.LastDim() != b.LastDim() {
		return nil, fmt.Errorf("embedding dimensions differ: %d vs %d", a.LastDim(), b.LastDim())
	}
	p, q, d := a.NumVecs(), b.NumVecs(), a.LastDim()

	out := domain.New(p, q).To(a.Device())
	data := out.Data()
	for i := 0; i < p; i++ {
		av := a.Vec(i)
		for j := 0; j < q; j++ {
			bv := b.Vec(j)
			var sum float64
			for k := 0; k < d; k++ {
				sum += av[k] * bv[k]
			}
			data[i*q+j] = sum
		}
	}
	return out, nil
}

// normalizeRows returns a copy with each row scaled to unit L2 norm.
// All-zero rows are left as-is.
func normalizeRows(t *domain.Tensor) *domain.Tensor {
	c := t.Clone()
	n := c.LastDim()
	for i := 0; i < c.NumVecs(); i++ {
		row := c.Data()[i*n : (i+1)*n]
		var sq float64
		for _, v := range row {
			sq += v * v
		}
		norm := math.Sqrt(sq)
		if norm > 0 {
			for k := range row {
				row[k] /= norm
			}
		}
	}
	return c
}
