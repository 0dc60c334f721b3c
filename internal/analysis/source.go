package analysis

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/raghq/docpipe/internal/apiclient"
	"github.com/raghq/docpipe/internal/models"
)

// ErrSourceUnavailable marks a deployment whose secondary source cannot
// serve joint data at all (e.g. the analysis endpoint is not deployed).
// The aggregator degrades instead of failing the sections.
var ErrSourceUnavailable = errors.New("secondary data source unavailable")

// SecondarySource returns the relational and embedding sections for a
// document in one call. Implementations must fold per-query failures
// into the section markers so that one query failing never hides the
// other section's result; a non-nil error means the source as a whole
// could not be consulted.
type SecondarySource interface {
	Fetch(ctx context.Context, id uuid.UUID) (RecordSection, EmbeddingSection, error)
}

// MetadataReader is the slice of the metastore the direct source needs.
type MetadataReader interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*models.DocumentRecord, error)
	EmbeddingStats(ctx context.Context, id uuid.UUID) (models.EmbeddingStats, error)
	ChunkPreviews(ctx context.Context, id uuid.UUID, limit int) ([]models.EmbeddingChunk, error)
}

// DirectSource queries Postgres directly.
type DirectSource struct {
	meta         MetadataReader
	previewLimit int
}

func NewDirectSource(meta MetadataReader, previewLimit int) *DirectSource {
	return &DirectSource{meta: meta, previewLimit: previewLimit}
}

func (s *DirectSource) Fetch(ctx context.Context, id uuid.UUID) (RecordSection, EmbeddingSection, error) {
	var recSec RecordSection
	rec, err := s.meta.GetRecord(ctx, id)
	switch {
	case err != nil:
		recSec = RecordSection{Status: SectionFailed, Error: err.Error()}
	case rec == nil:
		recSec = RecordSection{Status: SectionAbsent}
	default:
		recSec = RecordSection{Status: SectionPresent, Record: rec}
	}

	var embSec EmbeddingSection
	stats, err := s.meta.EmbeddingStats(ctx, id)
	switch {
	case err != nil:
		embSec = EmbeddingSection{Status: SectionFailed, Error: err.Error()}
	case stats.TotalCount == 0:
		embSec = EmbeddingSection{Status: SectionEmpty}
	default:
		embSec = EmbeddingSection{Status: SectionPresent, Stats: stats}
		if s.previewLimit > 0 && stats.TotalCount <= s.previewLimit {
			// Previews are garnish; losing them is not a section failure.
			if previews, err := s.meta.ChunkPreviews(ctx, id, s.previewLimit); err == nil {
				embSec.Previews = previews
			}
		}
	}

	return recSec, embSec, nil
}

// AnalysisClient is the slice of the API client the remote source needs.
type AnalysisClient interface {
	Analysis(ctx context.Context, id uuid.UUID) (*models.AnalysisResult, error)
}

// RemoteSource delegates the relational/embedding join to the service's
// analysis endpoint. Equivalent to DirectSource from the aggregator's
// point of view; the deployment picks one.
type RemoteSource struct {
	client AnalysisClient
}

func NewRemoteSource(client AnalysisClient) *RemoteSource {
	return &RemoteSource{client: client}
}

func (s *RemoteSource) Fetch(ctx context.Context, id uuid.UUID) (RecordSection, EmbeddingSection, error) {
	res, err := s.client.Analysis(ctx, id)
	if errors.Is(err, apiclient.ErrAnalysisUnsupported) {
		return RecordSection{}, EmbeddingSection{}, ErrSourceUnavailable
	}
	if err != nil {
		return RecordSection{}, EmbeddingSection{}, err
	}

	return recordSectionFrom(id, res.PostgreSQL), embeddingSectionFrom(id, res.Embeddings), nil
}

func recordSectionFrom(id uuid.UUID, pg models.PostgresSection) RecordSection {
	switch {
	case pg.Error != "":
		return RecordSection{Status: SectionFailed, Error: pg.Error}
	case !pg.Exists:
		return RecordSection{Status: SectionAbsent}
	}

	rec := &models.DocumentRecord{
		DocumentID: id,
		ChunkCount: pg.ChunkCount,
		Status:     pg.Status,
	}
	if pg.CreatedAt != nil {
		rec.CreatedAt = *pg.CreatedAt
	}
	return RecordSection{Status: SectionPresent, Record: rec}
}

func embeddingSectionFrom(id uuid.UUID, emb models.EmbeddingsSection) EmbeddingSection {
	switch {
	case emb.Error != "":
		return EmbeddingSection{Status: SectionFailed, Error: emb.Error}
	case emb.TotalCount == 0:
		return EmbeddingSection{Status: SectionEmpty}
	}

	sec := EmbeddingSection{
		Status: SectionPresent,
		Stats: models.EmbeddingStats{
			TotalCount:       emb.TotalCount,
			DistinctChunks:   emb.DistinctChunks,
			AvgContentLength: emb.AvgContentLength,
			FirstCreated:     emb.FirstCreated,
			LastCreated:      emb.LastCreated,
		},
	}
	for _, c := range emb.Chunks {
		sec.Previews = append(sec.Previews, models.EmbeddingChunk{
			DocumentID: id,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		})
	}
	return sec
}
