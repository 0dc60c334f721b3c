package models

import "time"

// AnalysisResult is the joint structure served by
// GET /api/v1/documents/{id}/analysis and consumed by the CLI.
type AnalysisResult struct {
	DocumentID string            `json:"document_id"`
	PostgreSQL PostgresSection   `json:"postgresql"`
	Embeddings EmbeddingsSection `json:"embeddings"`
}

// PostgresSection reports the secondary relational record. A non-empty
// Error means the query failed, which is distinct from Exists=false.
type PostgresSection struct {
	Exists     bool       `json:"exists"`
	ChunkCount int        `json:"chunk_count"`
	Status     string     `json:"status,omitempty"`
	RecordID   string     `json:"record_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// EmbeddingsSection reports embedding-row aggregates, plus a bounded
// list of per-chunk previews when the document is small.
type EmbeddingsSection struct {
	TotalCount       int            `json:"total_count"`
	DistinctChunks   int            `json:"distinct_chunks"`
	AvgContentLength float64        `json:"avg_content_length"`
	FirstCreated     *time.Time     `json:"first_created,omitempty"`
	LastCreated      *time.Time     `json:"last_created,omitempty"`
	Chunks           []ChunkPreview `json:"chunks,omitempty"`
	Error            string         `json:"error,omitempty"`
}

type ChunkPreview struct {
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
