package badger

import (
	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db            *BadgerDB
	vectors       interfaces.VectorIndex
	blobs         interfaces.BlobStore
	conversations interfaces.ConversationStorage
	logger        arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:            db,
		vectors:       NewVectorIndexStorage(db, logger),
		blobs:         NewBlobStorage(db, logger),
		conversations: NewConversationStorage(db, logger),
		logger:        logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// VectorIndex returns the vector index interface
func (m *Manager) VectorIndex() interfaces.VectorIndex {
	return m.vectors
}

// BlobStore returns the blob store interface
func (m *Manager) BlobStore() interfaces.BlobStore {
	return m.blobs
}

// ConversationStorage returns the conversation storage interface
func (m *Manager) ConversationStorage() interfaces.ConversationStorage {
	return m.conversations
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
