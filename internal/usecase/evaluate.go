package usecase

import (
	"fmt"

	"distill/internal/domain"
	"distill/internal/eval"
	"distill/internal/loss"
	"distill/internal/port"
	"distill/internal/similarity"
)

// EvaluateUseCase scores stored embedding batches.
type EvaluateUseCase struct {
	store port.EmbeddingStore
}

// NewEvaluateUseCase creates a new evaluation use case.
func NewEvaluateUseCase(store port.EmbeddingStore) *EvaluateUseCase {
	return &EvaluateUseCase{store: store}
}

// Accuracy computes bidirectional retrieval accuracy between a stored
// image and text batch. A batchSize of 0 defaults to the image batch's
// row count.
func (u *EvaluateUseCase) Accuracy(imageID, textID string, batchSize int) (float64, error) {
	imgBatch, txtBatch, err := u.loadPair(imageID, textID)
	if err != nil {
		return 0, err
	}

	sims, err := similarity.Compute(imgBatch.Tensor, txtBatch.Tensor)
	if err != nil {
		return 0, err
	}

	if batchSize == 0 {
		batchSize, _ = sims.IT.MatShape()
	}

	return eval.Accuracy(sims.IT, batchSize)
}

// AlignmentMSE scores how well the CLIP similarity structure of a stored
// batch pair matches a stored semantic reference batch. The semantic
// similarity matrix moves to the CLIP batches' device before reduction.
func (u *EvaluateUseCase) AlignmentMSE(imageID, textID, semanticID string, red loss.Reduction, opts loss.Options) (*domain.Tensor, error) {
	imgBatch, txtBatch, err := u.loadPair(imageID, textID)
	if err != nil {
		return nil, err
	}

	semBatch, err := u.store.GetBatch(semanticID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semantic batch: %w", err)
	}
	if semBatch.Modality != domain.ModalitySemantic {
		return nil, fmt.Errorf("batch %s has modality %q, want %q", semanticID, semBatch.Modality, domain.ModalitySemantic)
	}

	m, err := similarity.ComputeSemantic(imgBatch.Tensor, txtBatch.Tensor, semBatch.Tensor)
	if err != nil {
		return nil, err
	}
	if device := imgBatch.Tensor.Device(); m.TTSemantic.Device() != device {
		m.TTSemantic = m.TTSemantic.To(device)
	}

	return loss.ComputeMSESimilarities(m, red, opts)
}

func (u *EvaluateUseCase) loadPair(imageID, textID string) (domain.EmbeddingBatch, domain.EmbeddingBatch, error) {
	imgBatch, err := u.store.GetBatch(imageID)
	if err != nil {
		return domain.EmbeddingBatch{}, domain.EmbeddingBatch{}, fmt.Errorf("failed to load image batch: %w", err)
	}
	if imgBatch.Modality != domain.ModalityImage {
		return domain.EmbeddingBatch{}, domain.EmbeddingBatch{}, fmt.Errorf("batch %s has modality %q, want %q", imageID, imgBatch.Modality, domain.ModalityImage)
	}

	txtBatch, err := u.store.GetBatch(textID)
	if err != nil {
		return domain.EmbeddingBatch{}, domain.EmbeddingBatch{}, fmt.Errorf("failed to load text batch: %w", err)
	}
	if txtBatch.Modality != domain.ModalityText {
		return domain.EmbeddingBatch{}, domain.EmbeddingBatch{}, fmt.Errorf("batch %s has modality %q, want %q", textID, txtBatch.Modality, domain.ModalityText)
	}

	return imgBatch, txtBatch, nil
}
