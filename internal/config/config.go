package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	API      APIConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AWS      AWSConfig
	Analysis AnalysisConfig
}

type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AWSConfig struct {
	Region   string
	SecretID string
	Bucket   string
}

type AnalysisConfig struct {
	// Source selects how secondary pipeline data is obtained:
	// "remote" (joint analysis endpoint) or "direct" (Postgres queries).
	Source                string
	SectionTimeoutSeconds int
	PreviewLimit          int
}

const (
	SourceRemote = "remote"
	SourceDirect = "direct"
)

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	apiTimeout, err := getEnvInt("API_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT_SECONDS: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sectionTimeout, err := getEnvInt("ANALYSIS_SECTION_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_SECTION_TIMEOUT_SECONDS: %w", err)
	}

	previewLimit, err := getEnvInt("ANALYSIS_PREVIEW_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_PREVIEW_LIMIT: %w", err)
	}

	source := getEnv("ANALYSIS_SOURCE", SourceRemote)
	if source != SourceRemote && source != SourceDirect {
		return nil, fmt.Errorf("invalid ANALYSIS_SOURCE %q: must be %q or %q", source, SourceRemote, SourceDirect)
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:        getEnv("API_BASE_URL", ""),
			TimeoutSeconds: apiTimeout,
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		AWS: AWSConfig{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			SecretID: getEnv("DB_SECRET_ID", ""),
			Bucket:   getEnv("S3_BUCKET", ""),
		},
		Analysis: AnalysisConfig{
			Source:                source,
			SectionTimeoutSeconds: sectionTimeout,
			PreviewLimit:          previewLimit,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ValidateClient checks the variables the CLI needs before any command runs.
func (c *Config) ValidateClient() error {
	var missing []string
	if c.API.BaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}
	if c.Analysis.Source == SourceDirect && c.Database.URL == "" && c.AWS.SecretID == "" {
		missing = append(missing, "DATABASE_URL (or DB_SECRET_ID)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateServer checks the variables analysisd needs at startup.
func (c *Config) ValidateServer() error {
	var missing []string
	if c.Database.URL == "" && c.AWS.SecretID == "" {
		missing = append(missing, "DATABASE_URL (or DB_SECRET_ID)")
	}
	if c.AWS.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
