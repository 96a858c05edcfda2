package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current storage schema version.
// Increment this when making breaking changes to the record format.
const CurrentSchemaVersion = 1

var (
	bucketMeta       = []byte("meta")
	keySchemaVersion = []byte("schema_version")
)

// SchemaInfo records the schema version the store was written with.
type SchemaInfo struct {
	Version int `json:"version"`
}

func schemaInfo(tx *bbolt.Tx) (*SchemaInfo, error) {
	data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
	if data == nil {
		return nil, nil
	}
	var info SchemaInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse schema info: %w", err)
	}
	return &info, nil
}

func writeSchemaInfo(tx *bbolt.Tx, info SchemaInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
}

// checkSchema verifies the store was written with a compatible schema
// version, stamping new databases with the current one. Databases from a
// newer version are rejected rather than silently misread.
func (s *BoltStore) checkSchema() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		info, err := schemaInfo(tx)
		if err != nil {
			return err
		}
		if info == nil {
			return writeSchemaInfo(tx, SchemaInfo{Version: CurrentSchemaVersion})
		}
		if info.Version > CurrentSchemaVersion {
			return fmt.Errorf("store schema version %d is newer than supported version %d", info.Version, CurrentSchemaVersion)
		}
		return nil
	})
}
