package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var requeueCmd = &cobra.Command{
	Use:   "requeue <document-id>",
	Short: "Push a document back onto the ingestion queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequeue,
}

func init() {
	rootCmd.AddCommand(requeueCmd)
}

func runRequeue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	if err := newClient(cfg).Requeue(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Printf("Requeued %s for ingestion\n", id)
	return nil
}
