package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/raghq/docpipe/internal/analysis"
	"github.com/raghq/docpipe/internal/metastore"
	"github.com/raghq/docpipe/internal/models"
)

const timeFormat = "2006-01-02 15:04:05"

func renderDocuments(w io.Writer, docs []models.Document) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSIZE\tCREATED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			d.ID, d.Name, d.Status, d.SizeBytes, d.CreatedAt.Format(timeFormat))
	}
	tw.Flush()
}

func renderDocument(w io.Writer, doc *models.Document) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", doc.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", doc.Name)
	fmt.Fprintf(tw, "Status:\t%s\n", doc.Status)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", doc.SizeBytes)
	if doc.ContentType != "" {
		fmt.Fprintf(tw, "Content type:\t%s\n", doc.ContentType)
	}
	if doc.HasStorageRef() {
		fmt.Fprintf(tw, "Location:\ts3://%s/%s\n", doc.S3Bucket, doc.S3Key)
	}
	if doc.ErrorMessage != nil && *doc.ErrorMessage != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", *doc.ErrorMessage)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", doc.CreatedAt.Format(timeFormat))
	fmt.Fprintf(tw, "Updated:\t%s\n", doc.UpdatedAt.Format(timeFormat))
	tw.Flush()
}

func renderReport(w io.Writer, rep *analysis.Report, preview []byte) {
	renderDocument(w, &rep.Document)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "S3 storage:")
	renderStorage(w, rep.Storage, preview)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Relational record:")
	renderRecord(w, rep.Record)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Embeddings:")
	renderEmbeddings(w, rep.Embeddings)

	if rep.Degraded {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Note: analysis endpoint unavailable; report is degraded.")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Pipeline verdict: %s\n", strings.ToUpper(string(rep.Verdict)))
}

func renderStorage(w io.Writer, sec analysis.StorageSection, preview []byte) {
	switch sec.Status {
	case analysis.SectionSkipped:
		fmt.Fprintln(w, "  not checked: document has no storage reference")
	case analysis.SectionAbsent:
		fmt.Fprintln(w, "  object not found")
	case analysis.SectionFailed:
		fmt.Fprintf(w, "  probe failed: %s\n", sec.Error)
	default:
		fmt.Fprintf(w, "  exists, %d bytes", sec.SizeBytes)
		if sec.ContentType != "" {
			fmt.Fprintf(w, ", %s", sec.ContentType)
		}
		if sec.LastModified != nil {
			fmt.Fprintf(w, ", modified %s", sec.LastModified.Format(timeFormat))
		}
		fmt.Fprintln(w)
		if len(preview) > 0 {
			fmt.Fprintf(w, "  preview: %s\n", sanitizePreview(preview))
		}
	}
}

func renderRecord(w io.Writer, sec analysis.RecordSection) {
	switch sec.Status {
	case analysis.SectionAbsent:
		fmt.Fprintln(w, "  no record")
	case analysis.SectionFailed:
		fmt.Fprintf(w, "  query failed: %s\n", sec.Error)
	default:
		rec := sec.Record
		fmt.Fprintf(w, "  status %s, %d chunks, created %s\n",
			rec.Status, rec.ChunkCount, rec.CreatedAt.Format(timeFormat))
		if rec.ErrorMessage != nil && *rec.ErrorMessage != "" {
			fmt.Fprintf(w, "  error: %s\n", *rec.ErrorMessage)
		}
	}
}

func renderEmbeddings(w io.Writer, sec analysis.EmbeddingSection) {
	switch sec.Status {
	case analysis.SectionEmpty:
		fmt.Fprintln(w, "  0 rows")
	case analysis.SectionAbsent:
		fmt.Fprintln(w, "  unavailable")
	case analysis.SectionFailed:
		fmt.Fprintf(w, "  query failed: %s\n", sec.Error)
	default:
		s := sec.Stats
		fmt.Fprintf(w, "  %d rows, %d distinct chunks, avg length %.1f\n",
			s.TotalCount, s.DistinctChunks, s.AvgContentLength)
		if s.FirstCreated != nil && s.LastCreated != nil {
			fmt.Fprintf(w, "  written %s .. %s\n",
				s.FirstCreated.Format(timeFormat), s.LastCreated.Format(timeFormat))
		}
		for _, c := range sec.Previews {
			fmt.Fprintf(w, "  [%d] %s\n", c.ChunkIndex, sanitizePreview([]byte(c.Content)))
		}
	}
}

func renderSimilar(w io.Writer, results []metastore.SimilarChunk) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tDOCUMENT\tCHUNK\tCONTENT")
	for _, r := range results {
		fmt.Fprintf(tw, "%.4f\t%s\t%d\t%s\n",
			r.Score, r.DocumentID, r.ChunkIndex, sanitizePreview([]byte(r.Content)))
	}
	tw.Flush()
}

func sanitizePreview(b []byte) string {
	s := strings.ReplaceAll(string(b), "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
