package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raghq/docpipe/internal/models"
	"github.com/raghq/docpipe/internal/objectstore"
)

const defaultSectionTimeout = 10 * time.Second

// PrimaryFetcher fetches the authoritative document record. Its failure,
// including not-found, is fatal to the whole aggregation.
type PrimaryFetcher interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
}

// StorageProber verifies the document's stored artifact.
type StorageProber interface {
	Probe(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error)
}

// Aggregator builds pipeline-health reports. The primary fetch is a hard
// prerequisite; the storage probe and the secondary source then run
// concurrently, each fault-isolated behind its own timeout.
type Aggregator struct {
	primary PrimaryFetcher
	prober  StorageProber
	source  SecondarySource
	timeout time.Duration
}

func NewAggregator(primary PrimaryFetcher, prober StorageProber, source SecondarySource) *Aggregator {
	return &Aggregator{
		primary: primary,
		prober:  prober,
		source:  source,
		timeout: defaultSectionTimeout,
	}
}

// SetSectionTimeout overrides the per-section lookup budget.
func (a *Aggregator) SetSectionTimeout(d time.Duration) {
	if d > 0 {
		a.timeout = d
	}
}

// Aggregate produces the report for one document. Without detailed, only
// the primary record is consulted and the verdict reflects it alone.
func (a *Aggregator) Aggregate(ctx context.Context, id uuid.UUID, detailed bool) (*Report, error) {
	doc, err := a.primary.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}

	rep := &Report{Document: *doc, Detailed: detailed}
	if !detailed {
		rep.Verdict = computeVerdict(*doc, StorageSection{}, EmbeddingSection{})
		return rep, nil
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		rep.Storage = a.probeStorage(ctx, *doc)
	}()

	go func() {
		defer wg.Done()
		rep.Record, rep.Embeddings, rep.Degraded = a.fetchSecondary(ctx, id)
	}()

	wg.Wait()

	rep.Verdict = computeVerdict(*doc, rep.Storage, rep.Embeddings)
	return rep, nil
}

func (a *Aggregator) probeStorage(ctx context.Context, doc models.Document) StorageSection {
	if !doc.HasStorageRef() {
		return StorageSection{Status: SectionSkipped}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	info, err := a.prober.Probe(ctx, doc.S3Bucket, doc.S3Key)
	if err != nil {
		return StorageSection{Status: SectionFailed, Error: err.Error()}
	}
	if !info.Exists {
		return StorageSection{Status: SectionAbsent}
	}
	return StorageSection{
		Status:       SectionPresent,
		Exists:       true,
		SizeBytes:    info.SizeBytes,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
	}
}

func (a *Aggregator) fetchSecondary(ctx context.Context, id uuid.UUID) (RecordSection, EmbeddingSection, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rec, emb, err := a.source.Fetch(ctx, id)
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return RecordSection{Status: SectionAbsent}, EmbeddingSection{Status: SectionAbsent}, true
	case err != nil:
		return RecordSection{Status: SectionFailed, Error: err.Error()},
			EmbeddingSection{Status: SectionFailed, Error: err.Error()}, false
	}
	return rec, emb, false
}

// computeVerdict classifies pipeline health from confirmed values only.
// A failed primary status wins outright; fully processed requires the
// primary status, the stored artifact, and at least one embedding row to
// all be positively confirmed. Everything else is incomplete.
func computeVerdict(doc models.Document, storage StorageSection, emb EmbeddingSection) Verdict {
	if doc.Status == models.StatusFailed {
		return VerdictFailed
	}
	if doc.Status == models.StatusProcessed && storage.Exists && emb.Stats.TotalCount > 0 {
		return VerdictFullyProcessed
	}
	return VerdictIncomplete
}
