package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/raghq/docpipe/internal/analysis"
	"github.com/raghq/docpipe/internal/config"
	"github.com/raghq/docpipe/internal/metastore"
)

var getStatus bool

var getCmd = &cobra.Command{
	Use:   "get <document-id>",
	Short: "Show a document's metadata, or its full pipeline status",
	Long: `Shows the document's primary metadata. With --status, also probes
the stored S3 artifact and the relational/embedding state, and reports
an aggregate pipeline verdict.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getStatus, "status", false, "include the detailed pipeline-status report")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	client := newClient(cfg)
	ctx := cmd.Context()

	if !getStatus {
		doc, err := client.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		renderDocument(os.Stdout, doc)
		return nil
	}

	prober, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	source, cleanup, err := newSecondarySource(ctx, cfg, client)
	if err != nil {
		return err
	}
	defer cleanup()

	agg := analysis.NewAggregator(client, prober, source)
	agg.SetSectionTimeout(time.Duration(cfg.Analysis.SectionTimeoutSeconds) * time.Second)

	rep, err := agg.Aggregate(ctx, id, true)
	if err != nil {
		return err
	}

	// Best-effort content peek straight from S3; absence is fine.
	var preview []byte
	if rep.Storage.Status == analysis.SectionPresent {
		preview = prober.Preview(ctx, rep.Document.S3Bucket, rep.Document.S3Key, previewBytes)
	}

	renderReport(os.Stdout, rep, preview)
	return nil
}

const previewBytes = 200

// newSecondarySource picks the deployment's secondary data strategy:
// the service's joint analysis endpoint, or direct Postgres queries.
func newSecondarySource(ctx context.Context, cfg *config.Config, client analysis.AnalysisClient) (analysis.SecondarySource, func(), error) {
	if cfg.Analysis.Source == config.SourceDirect {
		pool, closePool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		meta := metastore.NewStore(pool)
		return analysis.NewDirectSource(meta, cfg.Analysis.PreviewLimit), closePool, nil
	}
	return analysis.NewRemoteSource(client), func() {}, nil
}
