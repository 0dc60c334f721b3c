// Package metastore reads ingestion state straight from Postgres: the
// secondary document record, embedding-row aggregates, and pgvector
// similarity lookups. It is read-only diagnostics; nothing here mutates.
package metastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/raghq/docpipe/internal/models"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetRecord returns the secondary record for a document, or (nil, nil)
// when no row exists. Connection and query failures propagate.
func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*models.DocumentRecord, error) {
	var rec models.DocumentRecord
	err := s.db.QueryRow(ctx,
		`SELECT document_id, chunk_count, status, error_message, created_at
		 FROM document_records WHERE document_id = $1`,
		id,
	).Scan(&rec.DocumentID, &rec.ChunkCount, &rec.Status, &rec.ErrorMessage, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document record: %w", err)
	}
	return &rec, nil
}

// EmbeddingStats aggregates a document's embedding rows. Zero rows yield
// zero counts and nil timestamps, not an error.
func (s *Store) EmbeddingStats(ctx context.Context, id uuid.UUID) (models.EmbeddingStats, error) {
	var stats models.EmbeddingStats
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT chunk_index),
		        COALESCE(AVG(LENGTH(content)), 0)::float8,
		        MIN(created_at), MAX(created_at)
		 FROM embeddings WHERE document_id = $1`,
		id,
	).Scan(&stats.TotalCount, &stats.DistinctChunks, &stats.AvgContentLength, &stats.FirstCreated, &stats.LastCreated)
	if err != nil {
		return models.EmbeddingStats{}, fmt.Errorf("embedding stats: %w", err)
	}
	return stats, nil
}

// ChunkPreviews returns up to limit truncated chunk rows in index order.
func (s *Store) ChunkPreviews(ctx context.Context, id uuid.UUID, limit int) ([]models.EmbeddingChunk, error) {
	rows, err := s.db.Query(ctx,
		`SELECT document_id, chunk_index, LEFT(content, $2), metadata, created_at
		 FROM embeddings WHERE document_id = $1 ORDER BY chunk_index LIMIT $3`,
		id, previewContentLength, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("chunk previews: %w", err)
	}
	defer rows.Close()

	var chunks []models.EmbeddingChunk
	for rows.Next() {
		var c models.EmbeddingChunk
		if err := rows.Scan(&c.DocumentID, &c.ChunkIndex, &c.Content, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

const previewContentLength = 160

type SimilarChunk struct {
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
}

// SimilarChunks finds the k chunks closest to the named chunk's stored
// embedding, using pgvector's cosine-distance operator. The reference
// chunk itself is excluded.
func (s *Store) SimilarChunks(ctx context.Context, id uuid.UUID, chunkIndex, k int) ([]SimilarChunk, error) {
	if k <= 0 {
		k = 10
	}

	var ref pgvector.Vector
	err := s.db.QueryRow(ctx,
		`SELECT embedding FROM embeddings WHERE document_id = $1 AND chunk_index = $2`,
		id, chunkIndex,
	).Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reference embedding: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT document_id, chunk_index, LEFT(content, $1),
		        1 - (embedding <=> $2) AS score
		 FROM embeddings
		 WHERE NOT (document_id = $3 AND chunk_index = $4)
		 ORDER BY embedding <=> $2
		 LIMIT $5`,
		previewContentLength, ref, id, chunkIndex, k,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SimilarChunk
	for rows.Next() {
		var r SimilarChunk
		if err := rows.Scan(&r.DocumentID, &r.ChunkIndex, &r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
