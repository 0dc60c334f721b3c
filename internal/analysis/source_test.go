package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghq/docpipe/internal/apiclient"
	"github.com/raghq/docpipe/internal/models"
)

type fakeMeta struct {
	record      *models.DocumentRecord
	recordErr   error
	stats       models.EmbeddingStats
	statsErr    error
	previews    []models.EmbeddingChunk
	previewsErr error
}

func (f *fakeMeta) GetRecord(ctx context.Context, id uuid.UUID) (*models.DocumentRecord, error) {
	return f.record, f.recordErr
}

func (f *fakeMeta) EmbeddingStats(ctx context.Context, id uuid.UUID) (models.EmbeddingStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeMeta) ChunkPreviews(ctx context.Context, id uuid.UUID, limit int) ([]models.EmbeddingChunk, error) {
	return f.previews, f.previewsErr
}

func TestDirectSource_RecordFailureDoesNotHideStats(t *testing.T) {
	meta := &fakeMeta{
		recordErr: errors.New("relation does not exist"),
		stats:     models.EmbeddingStats{TotalCount: 7, DistinctChunks: 7, AvgContentLength: 42},
	}

	rec, emb, err := NewDirectSource(meta, 0).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, SectionFailed, rec.Status)
	assert.Contains(t, rec.Error, "relation does not exist")
	assert.Equal(t, SectionPresent, emb.Status)
	assert.Equal(t, 7, emb.Stats.TotalCount)
}

func TestDirectSource_StatsFailureDoesNotHideRecord(t *testing.T) {
	meta := &fakeMeta{
		record:   &models.DocumentRecord{ChunkCount: 3, Status: "completed"},
		statsErr: errors.New("query canceled"),
	}

	rec, emb, err := NewDirectSource(meta, 0).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, SectionPresent, rec.Status)
	assert.Equal(t, 3, rec.Record.ChunkCount)
	assert.Equal(t, SectionFailed, emb.Status)
	assert.Contains(t, emb.Error, "query canceled")
}

func TestDirectSource_AbsentVersusEmpty(t *testing.T) {
	meta := &fakeMeta{}

	rec, emb, err := NewDirectSource(meta, 0).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, SectionAbsent, rec.Status)
	assert.Empty(t, rec.Error)
	assert.Equal(t, SectionEmpty, emb.Status)
	assert.Empty(t, emb.Error)
}

func TestDirectSource_PreviewsOnlyForSmallDocuments(t *testing.T) {
	meta := &fakeMeta{
		stats:    models.EmbeddingStats{TotalCount: 2, DistinctChunks: 2},
		previews: []models.EmbeddingChunk{{ChunkIndex: 0, Content: "a"}, {ChunkIndex: 1, Content: "b"}},
	}

	_, emb, err := NewDirectSource(meta, 5).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, emb.Previews, 2)

	meta.stats.TotalCount = 50
	_, emb, err = NewDirectSource(meta, 5).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, emb.Previews)
}

type fakeAnalysisClient struct {
	res *models.AnalysisResult
	err error
}

func (f *fakeAnalysisClient) Analysis(ctx context.Context, id uuid.UUID) (*models.AnalysisResult, error) {
	return f.res, f.err
}

func TestRemoteSource_MapsJointResponse(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	client := &fakeAnalysisClient{res: &models.AnalysisResult{
		PostgreSQL: models.PostgresSection{Exists: true, ChunkCount: 9, Status: "completed", CreatedAt: &created},
		Embeddings: models.EmbeddingsSection{
			TotalCount:       9,
			DistinctChunks:   9,
			AvgContentLength: 311.5,
			Chunks:           []models.ChunkPreview{{ChunkIndex: 0, Content: "intro"}},
		},
	}}

	id := uuid.New()
	rec, emb, err := NewRemoteSource(client).Fetch(context.Background(), id)
	require.NoError(t, err)

	require.Equal(t, SectionPresent, rec.Status)
	assert.Equal(t, 9, rec.Record.ChunkCount)
	assert.Equal(t, "completed", rec.Record.Status)
	assert.Equal(t, created, rec.Record.CreatedAt)

	require.Equal(t, SectionPresent, emb.Status)
	assert.Equal(t, 311.5, emb.Stats.AvgContentLength)
	require.Len(t, emb.Previews, 1)
	assert.Equal(t, id, emb.Previews[0].DocumentID)
}

func TestRemoteSource_SectionErrorsStayPerSection(t *testing.T) {
	client := &fakeAnalysisClient{res: &models.AnalysisResult{
		PostgreSQL: models.PostgresSection{Error: "timeout"},
		Embeddings: models.EmbeddingsSection{TotalCount: 3, DistinctChunks: 3},
	}}

	rec, emb, err := NewRemoteSource(client).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, SectionFailed, rec.Status)
	assert.Equal(t, "timeout", rec.Error)
	assert.Equal(t, SectionPresent, emb.Status)
}

func TestRemoteSource_MissingEndpointIsUnavailable(t *testing.T) {
	client := &fakeAnalysisClient{err: apiclient.ErrAnalysisUnsupported}

	_, _, err := NewRemoteSource(client).Fetch(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRemoteSource_AbsentRecord(t *testing.T) {
	client := &fakeAnalysisClient{res: &models.AnalysisResult{
		PostgreSQL: models.PostgresSection{Exists: false},
		Embeddings: models.EmbeddingsSection{},
	}}

	rec, emb, err := NewRemoteSource(client).Fetch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, SectionAbsent, rec.Status)
	assert.Equal(t, SectionEmpty, emb.Status)
}
