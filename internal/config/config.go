package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name       string `envconfig:"APP_NAME" default:"Lumen"`
		Port       int    `envconfig:"PORT" default:"8080"`
		LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
		LogConsole bool   `envconfig:"LOG_CONSOLE" default:"false"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"lumen"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"60s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Gemini struct {
		APIKey         string `envconfig:"GEMINI_API_KEY"`
		Model          string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
		EmbeddingModel string `envconfig:"GEMINI_EMBEDDING_MODEL" default:"gemini-embedding-001"`
	}

	Gmail struct {
		ClientID       string        `envconfig:"GMAIL_CLIENT_ID"`
		ClientSecret   string        `envconfig:"GMAIL_CLIENT_SECRET"`
		RedirectURL    string        `envconfig:"GMAIL_REDIRECT_URL" default:"http://localhost:8080/api/v1/gmail/oauth/callback"`
		MonitoredEmail string        `envconfig:"GMAIL_MONITORED_EMAIL"`
		Identity       string        `envconfig:"GMAIL_CREDENTIAL_IDENTITY" default:"gmail-poller"`
		PollInterval   time.Duration `envconfig:"GMAIL_POLL_INTERVAL" default:"30s"`
	}

	// Operator is the account the TUI records transactions for.
	Operator struct {
		OwnerID   int64  `envconfig:"OPERATOR_OWNER_ID"`
		OwnerType string `envconfig:"OPERATOR_OWNER_TYPE" default:"consumer"`
	}

	Ingest struct {
		MaxUploadBytes  int64         `envconfig:"INGEST_MAX_UPLOAD_BYTES" default:"10485760"`
		IndexTimeout    time.Duration `envconfig:"INGEST_INDEX_TIMEOUT" default:"30s"`
		ClassifyTimeout time.Duration `envconfig:"INGEST_CLASSIFY_TIMEOUT" default:"20s"`
		MinConfidence   float64       `envconfig:"INGEST_MIN_CONFIDENCE" default:"0.3"`
		VocabularyFile  string        `envconfig:"INGEST_VOCABULARY_FILE"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// GmailConfigured reports whether the OAuth client for the mailbox poller is set.
func (c *Config) GmailConfigured() bool {
	return c.Gmail.ClientID != "" && c.Gmail.ClientSecret != ""
}

// ValidateServer checks the settings the API server cannot run without.
func (c *Config) ValidateServer() error {
	var errs []error

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}

	if c.Ingest.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("INGEST_MAX_UPLOAD_BYTES must be positive"))
	}

	if c.Gmail.PollInterval <= 0 {
		errs = append(errs, errors.New("GMAIL_POLL_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
