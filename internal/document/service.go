// Package document owns the primary metadata records: upload, listing,
// deletion, and re-enqueueing for ingestion.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raghq/docpipe/internal/models"
	"github.com/raghq/docpipe/internal/objectstore"
	"github.com/raghq/docpipe/internal/queue"
)

// ErrNotFound marks a missing primary record.
var ErrNotFound = errors.New("document not found")

type Service struct {
	db     *pgxpool.Pool
	store  *objectstore.Client
	queue  *queue.Client
	bucket string
}

func NewService(db *pgxpool.Pool, store *objectstore.Client, q *queue.Client, bucket string) *Service {
	return &Service{db: db, store: store, queue: q, bucket: bucket}
}

type UploadRequest struct {
	Name        string
	ContentType string
	SizeBytes   int64
	Data        io.Reader
}

const docColumns = `id, name, status, size_bytes, content_type, s3_bucket, s3_key, error_message, created_at, updated_at`

func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	docID := uuid.New()
	key := fmt.Sprintf("documents/%s/%s", docID, req.Name)

	if err := s.store.Put(ctx, s.bucket, key, req.Data, req.ContentType); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	var doc models.Document
	err := s.db.QueryRow(ctx,
		`INSERT INTO documents (id, name, status, size_bytes, content_type, s3_bucket, s3_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+docColumns,
		docID, req.Name, models.StatusUploaded, req.SizeBytes, req.ContentType, s.bucket, key,
	).Scan(&doc.ID, &doc.Name, &doc.Status, &doc.SizeBytes, &doc.ContentType,
		&doc.S3Bucket, &doc.S3Key, &doc.ErrorMessage, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if s.queue != nil {
		if err := s.queue.EnqueueDocumentIngest(queue.DocumentIngestPayload{DocumentID: docID.String()}); err != nil {
			// The upload itself succeeded; ingestion can be requeued later.
			slog.Warn("enqueue ingest failed", "document_id", docID, "error", err)
		}
	}

	return &doc, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRow(ctx,
		`SELECT `+docColumns+` FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Name, &doc.Status, &doc.SizeBytes, &doc.ContentType,
		&doc.S3Bucket, &doc.S3Key, &doc.ErrorMessage, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+docColumns+` FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Status, &d.SizeBytes, &d.ContentType,
			&d.S3Bucket, &d.S3Key, &d.ErrorMessage, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if doc.HasStorageRef() {
		// Best effort; an orphaned blob is preferable to a stuck delete.
		if err := s.store.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
			slog.Warn("delete blob failed", "document_id", id, "error", err)
		}
	}

	_, err = s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Requeue pushes an existing document back onto the ingestion queue and
// marks it processing again.
func (s *Service) Requeue(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if s.queue == nil {
		return errors.New("ingestion queue not configured")
	}

	if err := s.queue.EnqueueDocumentIngest(queue.DocumentIngestPayload{DocumentID: id.String()}); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx,
		"UPDATE documents SET status = $1, error_message = NULL, updated_at = now() WHERE id = $2",
		models.StatusProcessing, id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}
