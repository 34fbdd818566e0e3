package badger

import (
	"context"
	"fmt"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
)

// blobPrefix separates raw blob keys from badgerhold-managed records that
// share the same database.
const blobPrefix = "blob:"

// BlobStorage implements the BlobStore interface on raw Badger transactions
type BlobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewBlobStorage creates a new BlobStorage instance
func NewBlobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.BlobStore {
	return &BlobStorage{
		db:     db,
		logger: logger,
	}
}

func blobKey(key string) []byte {
	return []byte(blobPrefix + key)
}

// Set writes value under key, overwriting any existing value
func (s *BlobStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("blob key is required")
	}
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Set(blobKey(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set blob: %w", err)
	}
	return nil
}

// Get returns the value stored under key, or ErrBlobNotFound
func (s *BlobStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.Store().Badger().View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(blobKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badgerdb.ErrKeyNotFound {
		return nil, interfaces.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return value, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BlobStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(blobKey(key))
	})
	if err != nil && err != badgerdb.ErrKeyNotFound {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
