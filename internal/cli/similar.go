package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/raghq/docpipe/internal/metastore"
)

var similarTopK int

var similarCmd = &cobra.Command{
	Use:   "similar <document-id> <chunk-index>",
	Short: "Find stored chunks similar to one of a document's chunks",
	Long: `Runs a pgvector similarity search against the embeddings table,
using the named chunk's stored embedding as the query. Requires direct
database access (DATABASE_URL or DB_SECRET_ID).`,
	Args: cobra.ExactArgs(2),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVar(&similarTopK, "top-k", 10, "number of results")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}
	chunkIndex, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid chunk index %q", args[1])
	}

	ctx := cmd.Context()
	pool, closePool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	results, err := metastore.NewStore(pool).SimilarChunks(ctx, id, chunkIndex, similarTopK)
	if errors.Is(err, metastore.ErrChunkNotFound) {
		return fmt.Errorf("document %s has no chunk %d", id, chunkIndex)
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No similar chunks found.")
		return nil
	}

	renderSimilar(os.Stdout, results)
	return nil
}
