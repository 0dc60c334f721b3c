// Package cli implements the docpipe command surface.
package cli

import (
	"context"
	"errors"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/raghq/docpipe/internal/apiclient"
	"github.com/raghq/docpipe/internal/config"
	"github.com/raghq/docpipe/internal/database"
	"github.com/raghq/docpipe/internal/objectstore"
	"github.com/raghq/docpipe/internal/secrets"
)

var rootCmd = &cobra.Command{
	Use:   "docpipe",
	Short: "Client for the document-ingestion pipeline",
	Long: `docpipe uploads, lists, inspects, and deletes documents in the
ingestion pipeline, and reports per-document pipeline health by
combining the API's view with S3 and Postgres state.

Environment variables:
  API_BASE_URL     Base URL of the document API (required)
  ANALYSIS_SOURCE  Secondary data source for 'get --status': remote|direct
  DATABASE_URL     Postgres URL (direct mode and 'similar')
  DB_SECRET_ID     Secrets Manager secret holding DB credentials
  AWS_REGION       Region for S3 and Secrets Manager
  S3_BUCKET        Default bucket for uploads (server side)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and returns the top-level error, if any.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *apiclient.Client {
	return apiclient.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
}

func newObjectStore(ctx context.Context, cfg *config.Config) (*objectstore.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, err
	}
	return objectstore.NewFromConfig(awsCfg), nil
}

// openPool builds a pgx pool for commands that read Postgres directly,
// resolving credentials from Secrets Manager when DATABASE_URL is unset.
// The caller must Close the returned pool before the command exits.
func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	dbCfg := cfg.Database
	if dbCfg.URL == "" && cfg.AWS.SecretID == "" {
		return nil, nil, errors.New("missing required env vars: DATABASE_URL (or DB_SECRET_ID)")
	}
	if dbCfg.URL == "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, nil, err
		}
		dbCfg.URL, err = secrets.FetchDatabaseURL(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.AWS.SecretID)
		if err != nil {
			return nil, nil, err
		}
	}

	p, err := database.NewPool(ctx, dbCfg)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}
