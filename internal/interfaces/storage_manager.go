package interfaces

// StorageManager aggregates the storage interfaces backed by a single
// database connection
type StorageManager interface {
	// VectorIndex returns the vector index interface
	VectorIndex() VectorIndex

	// BlobStore returns the blob store interface
	BlobStore() BlobStore

	// ConversationStorage returns the conversation storage interface
	ConversationStorage() ConversationStorage

	// Close closes the database connection
	Close() error
}
