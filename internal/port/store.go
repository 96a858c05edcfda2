package port

import "distill/internal/domain"

// EmbeddingStore persists teacher embedding batches and the targets
// computed from them.
type EmbeddingStore interface {
	PutBatch(b domain.EmbeddingBatch) error

	GetBatch(id string) (domain.EmbeddingBatch, error)

	DeleteBatch(id string) error

	ListBatches() ([]domain.EmbeddingBatch, error)

	PutTargets(p domain.TargetPair) error

	GetTargets(id string) (domain.TargetPair, error)

	ListTargetIDs() ([]string, error)

	Close() error
}
