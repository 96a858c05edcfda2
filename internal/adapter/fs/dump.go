package fs

import (
	"encoding/json"
	"fmt"
	"os"

	"distill/internal/domain"
)

// dumpFile is the on-disk format of an embedding dump: a dataset name and
// one or more flattened embedding batches.
type dumpFile struct {
	Dataset string      `json:"dataset"`
	Batches []dumpBatch `json:"batches"`
}

type dumpBatch struct {
	ID       string    `json:"id"`
	Modality string    `json:"modality"`
	Shape    []int     `json:"shape"`
	Data     []float64 `json:"data"`
}

// LoadBatchFile parses an embedding dump file into batches.
func LoadBatchFile(path string) ([]domain.EmbeddingBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dump dumpFile
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(dump.Batches) == 0 {
		return nil, fmt.Errorf("%s contains no batches", path)
	}

	batches := make([]domain.EmbeddingBatch, 0, len(dump.Batches))
	for _, b := range dump.Batches {
		if b.ID == "" {
			return nil, fmt.Errorf("%s: batch without an id", path)
		}
		switch domain.Modality(b.Modality) {
		case domain.ModalityImage, domain.ModalityText, domain.ModalitySemantic:
		default:
			return nil, fmt.Errorf("%s: batch %s has unknown modality %q", path, b.ID, b.Modality)
		}
		tensor, err := domain.FromSlice(b.Data, b.Shape...)
		if err != nil {
			return nil, fmt.Errorf("%s: batch %s: %w", path, b.ID, err)
		}
		batches = append(batches, domain.EmbeddingBatch{
			ID:       b.ID,
			Dataset:  dump.Dataset,
			Modality: domain.Modality(b.Modality),
			Tensor:   tensor,
		})
	}
	return batches, nil
}
