package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"distill/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBatchRoundTrip(t *testing.T) {
	st := newTestStore(t)

	tensor, _ := domain.FromSlice([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, 2, 3)
	batch := domain.EmbeddingBatch{
		ID:       "rsicd-img-0",
		Dataset:  "RSICD",
		Modality: domain.ModalityImage,
		Tensor:   tensor.To(domain.Device("cuda:0")),
	}

	if err := st.PutBatch(batch); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	got, err := st.GetBatch("rsicd-img-0")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got.Dataset != "RSICD" || got.Modality != domain.ModalityImage {
		t.Errorf("metadata lost: %+v", got)
	}
	if got.Tensor.Device() != domain.Device("cuda:0") {
		t.Errorf("device = %q, want cuda:0", got.Tensor.Device())
	}
	if !got.Tensor.SameShape(tensor) {
		t.Fatalf("shape = %v, want %v", got.Tensor.Shape(), tensor.Shape())
	}
	for i, v := range tensor.Data() {
		if got.Tensor.Data()[i] != v {
			t.Fatalf("data differs at %d: %v vs %v", i, got.Tensor.Data()[i], v)
		}
	}
}

func TestBatchValidation(t *testing.T) {
	st := newTestStore(t)

	if err := st.PutBatch(domain.EmbeddingBatch{Tensor: domain.New(1, 1)}); err == nil {
		t.Error("expected error for empty batch ID")
	}
	if err := st.PutBatch(domain.EmbeddingBatch{ID: "x"}); err == nil {
		t.Error("expected error for missing tensor")
	}
	if _, err := st.GetBatch("missing"); err == nil {
		t.Error("expected error for unknown batch")
	}
}

func TestDeleteAndList(t *testing.T) {
	st := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		batch := domain.EmbeddingBatch{
			ID:       id,
			Modality: domain.ModalityText,
			Tensor:   domain.New(2, 2),
		}
		if err := st.PutBatch(batch); err != nil {
			t.Fatalf("PutBatch(%s): %v", id, err)
		}
	}

	if err := st.DeleteBatch("b"); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}

	batches, err := st.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("ListBatches returned %d batches, want 2", len(batches))
	}
	for _, b := range batches {
		if b.ID == "b" {
			t.Error("deleted batch still listed")
		}
	}
}

func TestTargetsRoundTrip(t *testing.T) {
	st := newTestStore(t)

	img, _ := domain.FromSlice([]float64{0.7, 0.3, 0.2, 0.8}, 2, 2)
	txt, _ := domain.FromSlice([]float64{0.6, 0.4, 0.1, 0.9}, 2, 2)
	pair := domain.TargetPair{ID: "rsicd-0", Image: img, Text: txt}

	if err := st.PutTargets(pair); err != nil {
		t.Fatalf("PutTargets: %v", err)
	}

	got, err := st.GetTargets("rsicd-0")
	if err != nil {
		t.Fatalf("GetTargets: %v", err)
	}
	for i, v := range img.Data() {
		if got.Image.Data()[i] != v {
			t.Fatalf("image targets differ at %d", i)
		}
	}
	for i, v := range txt.Data() {
		if got.Text.Data()[i] != v {
			t.Fatalf("text targets differ at %d", i)
		}
	}

	ids, err := st.ListTargetIDs()
	if err != nil {
		t.Fatalf("ListTargetIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "rsicd-0" {
		t.Errorf("ListTargetIDs = %v, want [rsicd-0]", ids)
	}

	if err := st.PutTargets(domain.TargetPair{ID: "half", Image: img}); err == nil {
		t.Error("expected error for incomplete target pair")
	}
	if _, err := st.GetTargets("missing"); err == nil {
		t.Error("expected error for unknown targets")
	}
}

func TestSchemaVersioning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	st.Close()

	// Reopening a stamped database works.
	st, err = NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st.Close()

	// A database from a newer schema version is rejected.
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("bbolt.Open: %v", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(SchemaInfo{Version: CurrentSchemaVersion + 1})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
	db.Close()
	if err != nil {
		t.Fatalf("bumping schema version: %v", err)
	}

	if _, err := NewBoltStore(path); err == nil {
		t.Error("expected error for newer schema version")
	}
}
