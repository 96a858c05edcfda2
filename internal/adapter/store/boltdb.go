package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"distill/internal/domain"
)

var (
	bucketBatches = []byte("batches")
	bucketTargets = []byte("targets")
)

// BoltStore persists embedding batches and computed targets in a BoltDB
// file.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketMeta, bucketBatches, bucketTargets} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying database handle.
func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

type tensorRecord struct {
	Shape  []int     `json:"shape"`
	Device string    `json:"device"`
	Data   []float64 `json:"data"`
}

type batchRecord struct {
	Dataset  string       `json:"dataset"`
	Modality string       `json:"modality"`
	Tensor   tensorRecord `json:"tensor"`
}

type targetsRecord struct {
	Image tensorRecord `json:"image"`
	Text  tensorRecord `json:"text"`
}

func encodeTensor(t *domain.Tensor) tensorRecord {
	return tensorRecord{
		Shape:  t.Shape(),
		Device: string(t.Device()),
		Data:   t.Data(),
	}
}

func decodeTensor(r tensorRecord) (*domain.Tensor, error) {
	t, err := domain.FromSlice(r.Data, r.Shape...)
	if err != nil {
		return nil, err
	}
	if r.Device != "" && domain.Device(r.Device) != domain.DeviceCPU {
		t = t.To(domain.Device(r.Device))
	}
	return t, nil
}

// PutBatch stores an embedding batch under its ID.
func (s *BoltStore) PutBatch(batch domain.EmbeddingBatch) error {
	if batch.ID == "" {
		return fmt.Errorf("batch ID must not be empty")
	}
	if batch.Tensor == nil {
		return fmt.Errorf("batch %s has no tensor", batch.ID)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec := batchRecord{
			Dataset:  batch.Dataset,
			Modality: string(batch.Modality),
			Tensor:   encodeTensor(batch.Tensor),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBatches).Put([]byte(batch.ID), data)
	})
}

// GetBatch loads an embedding batch by ID.
func (s *BoltStore) GetBatch(id string) (domain.EmbeddingBatch, error) {
	var batch domain.EmbeddingBatch
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBatches).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("batch not found: %s", id)
		}
		var rec batchRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		tensor, err := decodeTensor(rec.Tensor)
		if err != nil {
			return fmt.Errorf("corrupt tensor for batch %s: %w", id, err)
		}
		batch = domain.EmbeddingBatch{
			ID:       id,
			Dataset:  rec.Dataset,
			Modality: domain.Modality(rec.Modality),
			Tensor:   tensor,
		}
		return nil
	})
	return batch, err
}

// DeleteBatch removes an embedding batch.
func (s *BoltStore) DeleteBatch(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBatches).Delete([]byte(id))
	})
}

// ListBatches returns all stored embedding batches.
func (s *BoltStore) ListBatches() ([]domain.EmbeddingBatch, error) {
	var batches []domain.EmbeddingBatch
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBatches)
		return b.ForEach(func(k, v []byte) error {
			var rec batchRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			tensor, err := decodeTensor(rec.Tensor)
			if err != nil {
				return fmt.Errorf("corrupt tensor for batch %s: %w", k, err)
			}
			batches = append(batches, domain.EmbeddingBatch{
				ID:       string(k),
				Dataset:  rec.Dataset,
				Modality: domain.Modality(rec.Modality),
				Tensor:   tensor,
			})
			return nil
		})
	})
	return batches, err
}

// PutTargets stores a computed target pair under its ID.
func (s *BoltStore) PutTargets(pair domain.TargetPair) error {
	if pair.ID == "" {
		return fmt.Errorf("target pair ID must not be empty")
	}
	if pair.Image == nil || pair.Text == nil {
		return fmt.Errorf("target pair %s is incomplete", pair.ID)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec := targetsRecord{
			Image: encodeTensor(pair.Image),
			Text:  encodeTensor(pair.Text),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketTargets).Put([]byte(pair.ID), data)
	})
}

// GetTargets loads a computed target pair by ID.
func (s *BoltStore) GetTargets(id string) (domain.TargetPair, error) {
	var pair domain.TargetPair
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTargets).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("targets not found: %s", id)
		}
		var rec targetsRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		img, err := decodeTensor(rec.Image)
		if err != nil {
			return fmt.Errorf("corrupt image targets for %s: %w", id, err)
		}
		txt, err := decodeTensor(rec.Text)
		if err != nil {
			return fmt.Errorf("corrupt text targets for %s: %w", id, err)
		}
		pair = domain.TargetPair{ID: id, Image: img, Text: txt}
		return nil
	})
	return pair, err
}

// ListTargetIDs returns the IDs of all stored target pairs.
func (s *BoltStore) ListTargetIDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTargets).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
