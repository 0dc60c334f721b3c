package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/raghq/docpipe/internal/cache"
	"github.com/raghq/docpipe/internal/models"
)

const analysisCacheTTL = 30 * time.Second

// MetadataReader is the slice of the metastore the analysis handler uses.
type MetadataReader interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*models.DocumentRecord, error)
	EmbeddingStats(ctx context.Context, id uuid.UUID) (models.EmbeddingStats, error)
	ChunkPreviews(ctx context.Context, id uuid.UUID, limit int) ([]models.EmbeddingChunk, error)
}

// AnalysisHandler serves the joint relational/embedding view for one
// document. Query failures land in the section's error field instead of
// failing the response; a broken Postgres table should still let the
// caller see the other section.
type AnalysisHandler struct {
	meta         MetadataReader
	cache        *cache.Cache
	previewLimit int
}

func NewAnalysisHandler(meta MetadataReader, c *cache.Cache, previewLimit int) *AnalysisHandler {
	return &AnalysisHandler{meta: meta, cache: c, previewLimit: previewLimit}
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	cacheKey := "analysis:" + id.String()

	if h.cache != nil {
		var cached models.AnalysisResult
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result := models.AnalysisResult{
		DocumentID: id.String(),
		PostgreSQL: h.postgresSection(ctx, id),
		Embeddings: h.embeddingsSection(ctx, id),
	}

	if h.cache != nil {
		// Best effort; the report is served either way.
		_ = h.cache.Set(ctx, cacheKey, result, analysisCacheTTL)
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) postgresSection(ctx context.Context, id uuid.UUID) models.PostgresSection {
	rec, err := h.meta.GetRecord(ctx, id)
	if err != nil {
		return models.PostgresSection{Error: err.Error()}
	}
	if rec == nil {
		return models.PostgresSection{Exists: false}
	}

	sec := models.PostgresSection{
		Exists:     true,
		ChunkCount: rec.ChunkCount,
		Status:     rec.Status,
		RecordID:   rec.DocumentID.String(),
	}
	if !rec.CreatedAt.IsZero() {
		created := rec.CreatedAt
		sec.CreatedAt = &created
	}
	return sec
}

func (h *AnalysisHandler) embeddingsSection(ctx context.Context, id uuid.UUID) models.EmbeddingsSection {
	stats, err := h.meta.EmbeddingStats(ctx, id)
	if err != nil {
		return models.EmbeddingsSection{Error: err.Error()}
	}

	sec := models.EmbeddingsSection{
		TotalCount:       stats.TotalCount,
		DistinctChunks:   stats.DistinctChunks,
		AvgContentLength: stats.AvgContentLength,
		FirstCreated:     stats.FirstCreated,
		LastCreated:      stats.LastCreated,
	}

	if h.previewLimit > 0 && stats.TotalCount > 0 && stats.TotalCount <= h.previewLimit {
		chunks, err := h.meta.ChunkPreviews(ctx, id, h.previewLimit)
		if err == nil {
			for _, c := range chunks {
				sec.Chunks = append(sec.Chunks, models.ChunkPreview{
					ChunkIndex: c.ChunkIndex,
					Content:    c.Content,
					CreatedAt:  c.CreatedAt,
				})
			}
		}
	}

	return sec
}
