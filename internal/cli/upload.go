package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raghq/docpipe/internal/models"
)

var (
	uploadAsFile   bool
	uploadAsString bool
	uploadAsURL    bool
	uploadName     string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <input>",
	Short: "Upload a document from a file, a URL, or literal text",
	Long: `Uploads a document to the pipeline. The input is interpreted as a
file path when one exists, then per an explicit --file/--string/--url
flag, and finally by a URL-vs-text heuristic.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadAsFile, "file", false, "treat the input as a file path")
	uploadCmd.Flags().BoolVar(&uploadAsString, "string", false, "treat the input as literal text")
	uploadCmd.Flags().BoolVar(&uploadAsURL, "url", false, "treat the input as a URL")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "display name for the document")
	rootCmd.AddCommand(uploadCmd)
}

type sourceKind int

const (
	sourceFile sourceKind = iota
	sourceString
	sourceURL
)

// resolveSource picks exactly one interpretation of the input:
// an existing file path wins, then an explicit flag, then the heuristic.
func resolveSource(input string, asFile, asString, asURL bool) (sourceKind, error) {
	flagged := 0
	for _, f := range []bool{asFile, asString, asURL} {
		if f {
			flagged++
		}
	}
	if flagged > 1 {
		return 0, errors.New("at most one of --file, --string, --url may be set")
	}

	if fileExists(input) {
		return sourceFile, nil
	}

	switch {
	case asFile:
		return 0, fmt.Errorf("file not found: %s", input)
	case asString:
		return sourceString, nil
	case asURL:
		return sourceURL, nil
	}

	if looksLikeURL(input) {
		return sourceURL, nil
	}
	return sourceString, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)
	ctx := cmd.Context()
	input := args[0]

	kind, err := resolveSource(input, uploadAsFile, uploadAsString, uploadAsURL)
	if err != nil {
		return err
	}

	doc, err := func() (*models.Document, error) {
		switch kind {
		case sourceFile:
			return client.UploadFile(ctx, input, uploadName)
		case sourceURL:
			return client.UploadURL(ctx, input, uploadName)
		default:
			return client.UploadText(ctx, input, uploadName)
		}
	}()
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s\n", doc.Name)
	renderDocument(os.Stdout, doc)
	return nil
}
