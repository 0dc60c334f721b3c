package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghq/docpipe/internal/models"
	"github.com/raghq/docpipe/internal/objectstore"
)

type fakePrimary struct {
	doc   *models.Document
	err   error
	calls int
}

func (f *fakePrimary) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	f.calls++
	return f.doc, f.err
}

type fakeProber struct {
	info  objectstore.ObjectInfo
	err   error
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	f.calls++
	return f.info, f.err
}

type fakeSource struct {
	rec   RecordSection
	emb   EmbeddingSection
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context, id uuid.UUID) (RecordSection, EmbeddingSection, error) {
	f.calls++
	return f.rec, f.emb, f.err
}

func processedDoc() *models.Document {
	return &models.Document{
		ID:       uuid.New(),
		Name:     "report.pdf",
		Status:   models.StatusProcessed,
		S3Bucket: "b",
		S3Key:    "k",
	}
}

func presentEmbeddings(count int) EmbeddingSection {
	return EmbeddingSection{Status: SectionPresent, Stats: models.EmbeddingStats{TotalCount: count, DistinctChunks: count}}
}

func TestAggregate_PrimaryFailureIsFatal(t *testing.T) {
	primary := &fakePrimary{err: errors.New("document not found")}
	prober := &fakeProber{}
	source := &fakeSource{}

	agg := NewAggregator(primary, prober, source)
	_, err := agg.Aggregate(context.Background(), uuid.New(), true)

	require.Error(t, err)
	assert.Equal(t, 0, prober.calls, "no secondary lookup after a failed primary fetch")
	assert.Equal(t, 0, source.calls, "no secondary lookup after a failed primary fetch")
}

func TestAggregate_FullyProcessed(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: true, SizeBytes: 1024, ContentType: "application/pdf"}}
	source := &fakeSource{
		rec: RecordSection{Status: SectionPresent, Record: &models.DocumentRecord{ChunkCount: 4}},
		emb: presentEmbeddings(4),
	}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, VerdictFullyProcessed, rep.Verdict)
	assert.Equal(t, SectionPresent, rep.Storage.Status)
	assert.True(t, rep.Storage.Exists)
	assert.Equal(t, int64(1024), rep.Storage.SizeBytes)
}

func TestAggregate_FailedStatusWinsOverHealthySections(t *testing.T) {
	doc := processedDoc()
	doc.Status = models.StatusFailed
	msg := "parse error"
	doc.ErrorMessage = &msg

	primary := &fakePrimary{doc: doc}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: true}}
	source := &fakeSource{emb: presentEmbeddings(10)}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, VerdictFailed, rep.Verdict)
	require.NotNil(t, rep.Document.ErrorMessage)
	assert.Equal(t, "parse error", *rep.Document.ErrorMessage)
}

func TestAggregate_FailedStatusBasicMode(t *testing.T) {
	doc := processedDoc()
	doc.Status = models.StatusFailed

	primary := &fakePrimary{doc: doc}
	prober := &fakeProber{}
	source := &fakeSource{}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), false)
	require.NoError(t, err)

	assert.Equal(t, VerdictFailed, rep.Verdict)
	assert.Equal(t, 0, prober.calls, "basic mode never probes storage")
	assert.Equal(t, 0, source.calls, "basic mode never consults secondary data")
}

func TestAggregate_MissingRecordAndZeroEmbeddings(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: true}}
	source := &fakeSource{
		rec: RecordSection{Status: SectionAbsent},
		emb: EmbeddingSection{Status: SectionEmpty},
	}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, VerdictIncomplete, rep.Verdict)
	assert.Equal(t, SectionAbsent, rep.Record.Status)
	assert.Equal(t, SectionEmpty, rep.Embeddings.Status)
	assert.Zero(t, rep.Embeddings.Stats.TotalCount)
	assert.Zero(t, rep.Embeddings.Stats.DistinctChunks)
}

func TestAggregate_MissingStorageRefSkipsProbe(t *testing.T) {
	doc := processedDoc()
	doc.S3Bucket = ""
	doc.S3Key = ""

	primary := &fakePrimary{doc: doc}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: true}}
	source := &fakeSource{emb: presentEmbeddings(3)}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, 0, prober.calls, "probe must not run without a storage reference")
	assert.Equal(t, SectionSkipped, rep.Storage.Status)
	assert.Equal(t, VerdictIncomplete, rep.Verdict, "unverified storage blocks fully_processed even with embeddings")
}

func TestAggregate_ProbeFailureDistinctFromMissing(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &fakeProber{err: errors.New("access denied")}
	source := &fakeSource{emb: presentEmbeddings(2)}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, SectionFailed, rep.Storage.Status)
	assert.Contains(t, rep.Storage.Error, "access denied")
	assert.Equal(t, VerdictIncomplete, rep.Verdict)

	// The failing probe must not contaminate the other sections.
	assert.Equal(t, SectionPresent, rep.Embeddings.Status)
	assert.Equal(t, 2, rep.Embeddings.Stats.TotalCount)
}

func TestAggregate_StorageMissingIsIncomplete(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: false}}
	source := &fakeSource{emb: presentEmbeddings(2)}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, SectionAbsent, rep.Storage.Status)
	assert.Empty(t, rep.Storage.Error, "a confirmed-missing object is not a probe failure")
	assert.Equal(t, VerdictIncomplete, rep.Verdict)
}

func TestAggregate_SecondarySourceErrorMarksBothSectionsFailed(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: true}}
	source := &fakeSource{err: errors.New("connection refused")}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, SectionFailed, rep.Record.Status)
	assert.Equal(t, SectionFailed, rep.Embeddings.Status)
	assert.Contains(t, rep.Record.Error, "connection refused")

	// The storage probe still ran and still reports independently.
	assert.Equal(t, SectionPresent, rep.Storage.Status)
	assert.Equal(t, VerdictIncomplete, rep.Verdict)
}

func TestAggregate_UnavailableSourceDegrades(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &fakeProber{info: objectstore.ObjectInfo{Exists: true}}
	source := &fakeSource{err: ErrSourceUnavailable}

	rep, err := NewAggregator(primary, prober, source).Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.True(t, rep.Degraded)
	assert.Equal(t, SectionAbsent, rep.Record.Status)
	assert.Equal(t, SectionAbsent, rep.Embeddings.Status)
	assert.Empty(t, rep.Record.Error, "degraded mode is not a section failure")
	assert.Equal(t, SectionPresent, rep.Storage.Status, "verdict still uses the direct probe")
	assert.Equal(t, VerdictIncomplete, rep.Verdict)
}

func TestAggregate_SectionTimeoutIsOrdinaryFailure(t *testing.T) {
	primary := &fakePrimary{doc: processedDoc()}
	prober := &slowProber{delay: 50 * time.Millisecond}
	source := &fakeSource{emb: presentEmbeddings(1)}

	agg := NewAggregator(primary, prober, source)
	agg.SetSectionTimeout(5 * time.Millisecond)

	rep, err := agg.Aggregate(context.Background(), uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, SectionFailed, rep.Storage.Status)
	assert.Equal(t, SectionPresent, rep.Embeddings.Status)
}

type slowProber struct {
	delay time.Duration
}

func (p *slowProber) Probe(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	select {
	case <-time.After(p.delay):
		return objectstore.ObjectInfo{Exists: true}, nil
	case <-ctx.Done():
		return objectstore.ObjectInfo{}, ctx.Err()
	}
}
