package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is the primary metadata record owned by the ingestion API.
// Clients hold a read-only snapshot per invocation.
type Document struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	S3Bucket     string    `json:"s3_bucket,omitempty"`
	S3Key        string    `json:"s3_key,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// HasStorageRef reports whether the record carries a usable object-store
// location. A document without one cannot be probed.
func (d *Document) HasStorageRef() bool {
	return d.S3Bucket != "" && d.S3Key != ""
}

// DocumentRecord is the secondary ingestion-state row written by the
// worker fleet. It may be absent even when the primary Document exists.
type DocumentRecord struct {
	DocumentID   uuid.UUID `json:"document_id"`
	ChunkCount   int       `json:"chunk_count"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EmbeddingChunk is one stored chunk of a document's text. Chunk indices
// are unique per document but not required to be contiguous.
type EmbeddingChunk struct {
	DocumentID uuid.UUID       `json:"document_id"`
	ChunkIndex int             `json:"chunk_index"`
	Content    string          `json:"content"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EmbeddingStats is a derived aggregate over a document's embedding rows.
// Timestamps are nil and AvgContentLength zero when no rows exist.
type EmbeddingStats struct {
	TotalCount       int        `json:"total_count"`
	DistinctChunks   int        `json:"distinct_chunks"`
	AvgContentLength float64    `json:"avg_content_length"`
	FirstCreated     *time.Time `json:"first_created,omitempty"`
	LastCreated      *time.Time `json:"last_created,omitempty"`
}
