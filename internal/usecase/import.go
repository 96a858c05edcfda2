package usecase

import (
	"fmt"

	"distill/internal/adapter/fs"
	"distill/internal/port"
)

// ProgressFunc reports progress during long-running operations.
type ProgressFunc func(processed, total int, current string)

// ImportUseCase loads embedding dump files into the store.
type ImportUseCase struct {
	store  port.EmbeddingStore
	walker *fs.Walker
}

// NewImportUseCase creates a new import use case.
func NewImportUseCase(store port.EmbeddingStore, walker *fs.Walker) *ImportUseCase {
	return &ImportUseCase{
		store:  store,
		walker: walker,
	}
}

// ImportResult contains the results of an import operation.
type ImportResult struct {
	FilesImported int
	BatchesStored int
	Errors        []string
}

// Import walks root for embedding dumps and stores every batch found.
// Files that fail to parse are recorded as warnings, not fatal errors.
func (u *ImportUseCase) Import(root string, progress ProgressFunc) (*ImportResult, error) {
	result := &ImportResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	for i, file := range files {
		if progress != nil {
			progress(i, len(files), file.Path)
		}

		batches, err := fs.LoadBatchFile(file.Path)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		stored := 0
		for _, batch := range batches {
			if err := u.store.PutBatch(batch); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", batch.ID, err))
				continue
			}
			stored++
		}

		if stored > 0 {
			result.FilesImported++
			result.BatchesStored += stored
		}
	}

	if progress != nil {
		progress(len(files), len(files), "")
	}

	return result, nil
}
