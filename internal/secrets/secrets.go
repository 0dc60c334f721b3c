// Package secrets loads database credentials from AWS Secrets Manager
// for deployments that do not pass DATABASE_URL directly.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client the package uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// DatabaseSecret is the RDS-style JSON payload stored in Secrets Manager.
type DatabaseSecret struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// URL renders the secret as a postgres connection URL.
func (s DatabaseSecret) URL() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.Username, s.Password),
		Host:   fmt.Sprintf("%s:%d", s.Host, port),
		Path:   "/" + s.DBName,
	}
	return u.String()
}

// FetchDatabaseURL resolves a secret ID into a postgres connection URL.
// Failures here are configuration errors and fatal to the invocation.
func FetchDatabaseURL(ctx context.Context, api SecretsAPI, secretID string) (string, error) {
	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string payload", secretID)
	}

	var sec DatabaseSecret
	if err := json.Unmarshal([]byte(*out.SecretString), &sec); err != nil {
		return "", fmt.Errorf("parse secret %s: %w", secretID, err)
	}
	if sec.Host == "" || sec.DBName == "" {
		return "", fmt.Errorf("secret %s is missing host or dbname", secretID)
	}

	return sec.URL(), nil
}
