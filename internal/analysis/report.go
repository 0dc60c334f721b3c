// Package analysis combines the primary metadata record with the
// object-store probe and the relational/embedding state into one
// pipeline-health report. It produces structure only; rendering is the
// CLI's problem.
package analysis

import (
	"time"

	"github.com/raghq/docpipe/internal/models"
)

// Verdict is the aggregate health classification for one document.
type Verdict string

const (
	VerdictFullyProcessed Verdict = "fully_processed"
	VerdictFailed         Verdict = "failed"
	VerdictIncomplete     Verdict = "incomplete"
)

// SectionStatus tags each secondary section of a report. A failed
// section carries the underlying error string; an absent one does not —
// they are different diagnostic signals.
type SectionStatus string

const (
	SectionPresent SectionStatus = "present"
	SectionEmpty   SectionStatus = "empty"
	SectionAbsent  SectionStatus = "absent"
	SectionFailed  SectionStatus = "failed"

	// SectionSkipped marks a storage section that was never probed
	// because the primary record carries no bucket/key reference.
	SectionSkipped SectionStatus = "skipped"
)

type StorageSection struct {
	Status       SectionStatus `json:"status"`
	Exists       bool          `json:"exists"`
	SizeBytes    int64         `json:"size_bytes,omitempty"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
	ContentType  string        `json:"content_type,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type RecordSection struct {
	Status SectionStatus          `json:"status"`
	Record *models.DocumentRecord `json:"record,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

type EmbeddingSection struct {
	Status   SectionStatus           `json:"status"`
	Stats    models.EmbeddingStats   `json:"stats"`
	Previews []models.EmbeddingChunk `json:"previews,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Report is the structured result of one Aggregate call. Secondary
// sections are only populated when Detailed is set.
type Report struct {
	Document   models.Document  `json:"document"`
	Detailed   bool             `json:"detailed"`
	Degraded   bool             `json:"degraded,omitempty"`
	Storage    StorageSection   `json:"storage,omitempty"`
	Record     RecordSection    `json:"record,omitempty"`
	Embeddings EmbeddingSection `json:"embeddings,omitempty"`
	Verdict    Verdict          `json:"verdict"`
}
