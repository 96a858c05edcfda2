package usecase

import (
	"fmt"

	"distill/internal/distill"
	"distill/internal/domain"
	"distill/internal/port"
)

// TargetsUseCase computes and persists teacher targets for stored
// embedding batch pairs.
type TargetsUseCase struct {
	store port.EmbeddingStore
	cfg   distill.TargetConfig
}

// NewTargetsUseCase creates a new targets use case.
func NewTargetsUseCase(store port.EmbeddingStore, cfg distill.TargetConfig) *TargetsUseCase {
	return &TargetsUseCase{
		store: store,
		cfg:   cfg,
	}
}

// PairSpec names an image/text batch pair and the ID to store the computed
// targets under.
type PairSpec struct {
	ImageID  string
	TextID   string
	TargetID string
}

// Compute derives teacher targets for one batch pair and persists them.
func (u *TargetsUseCase) Compute(spec PairSpec) (domain.TargetPair, error) {
	imgBatch, err := u.store.GetBatch(spec.ImageID)
	if err != nil {
		return domain.TargetPair{}, fmt.Errorf("failed to load image batch: %w", err)
	}
	if imgBatch.Modality != domain.ModalityImage {
		return domain.TargetPair{}, fmt.Errorf("batch %s has modality %q, want %q", spec.ImageID, imgBatch.Modality, domain.ModalityImage)
	}

	txtBatch, err := u.store.GetBatch(spec.TextID)
	if err != nil {
		return domain.TargetPair{}, fmt.Errorf("failed to load text batch: %w", err)
	}
	if txtBatch.Modality != domain.ModalityText {
		return domain.TargetPair{}, fmt.Errorf("batch %s has modality %q, want %q", spec.TextID, txtBatch.Modality, domain.ModalityText)
	}

	targets, err := distill.ComputeTeacherTargets(imgBatch.Tensor, txtBatch.Tensor, u.cfg)
	if err != nil {
		return domain.TargetPair{}, fmt.Errorf("target computation failed: %w", err)
	}

	id := spec.TargetID
	if id == "" {
		id = spec.ImageID + "/" + spec.TextID
	}
	pair := domain.TargetPair{ID: id, Image: targets.Image, Text: targets.Text}

	if err := u.store.PutTargets(pair); err != nil {
		return domain.TargetPair{}, fmt.Errorf("failed to store targets: %w", err)
	}

	return pair, nil
}

// ComputeResult contains the results of a bulk target computation.
type ComputeResult struct {
	PairsComputed int
	Errors        []string
}

// ComputeAll computes targets for every given pair, continuing past
// per-pair failures.
func (u *TargetsUseCase) ComputeAll(specs []PairSpec, progress ProgressFunc) (*ComputeResult, error) {
	result := &ComputeResult{}

	for i, spec := range specs {
		if progress != nil {
			progress(i, len(specs), spec.ImageID)
		}
		if _, err := u.Compute(spec); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", spec.ImageID, spec.TextID, err))
			continue
		}
		result.PairsComputed++
	}

	if progress != nil {
		progress(len(specs), len(specs), "")
	}

	return result, nil
}
