package models

// SourceTag identifies where an answer or retrieved chunk came from
type SourceTag string

const (
	SourceRAG      SourceTag = "rag"
	SourceWeb      SourceTag = "web"
	SourceJob      SourceTag = "job"
	SourceCombined SourceTag = "combined"
	SourceError    SourceTag = "error"
)

// RetrievedChunk is a scored, sourced unit of retrieved text: a resume
// excerpt, a web snippet, or a formatted job posting.
type RetrievedChunk struct {
	ID         string    `json:"id"`
	Score      float64   `json:"score"`
	Content    string    `json:"content"`
	DocumentID string    `json:"document_id,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	Source     SourceTag `json:"source"`
}

// AnswerBundle is the structured result returned for every question,
// terminal refusals and errors included.
type AnswerBundle struct {
	ConversationID string           `json:"conversation_id"`
	Answer         string           `json:"answer"`
	CitedChunks    []RetrievedChunk `json:"cited_chunks"`
	Source         SourceTag        `json:"source"`
}
