package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSummarizerURL is the hosted BART summarization model.
const DefaultSummarizerURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Summarization API settings
	HuggingFaceAPIToken string `json:"-"` // Don't expose in JSON
	SummarizerURL       string `json:"summarizer_url"`
	SummarizerTimeout   int    `json:"summarizer_timeout_seconds"`

	// Session settings
	SessionSecret        string `json:"-"` // Don't expose in JSON
	SessionTTLMinutes    int    `json:"session_ttl_minutes"`
	SessionSweepSchedule string `json:"session_sweep_schedule"`

	// Upload settings
	UploadDir          string `json:"upload_dir"`
	UploadBucket       string `json:"upload_bucket"`
	GCSCredentialsFile string `json:"-"`

	// Slack settings
	SlackBotToken string `json:"-"` // Don't expose in JSON
	SlackChannel  string `json:"slack_channel"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	config := read()
	return config, config.validate()
}

// LoadSummarizer is Load for tools that only call the summarization API.
// Session and upload settings are read but not required.
func LoadSummarizer() (*Config, error) {
	config := read()
	return config, config.validateSummarizer()
}

func read() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Host:                 getEnvOrDefault("HOST", "0.0.0.0"),
		HuggingFaceAPIToken:  getEnvOrDefault("HUGGINGFACE_API_TOKEN", ""),
		SummarizerURL:        getEnvOrDefault("SUMMARIZER_URL", DefaultSummarizerURL),
		SummarizerTimeout:    getEnvOrDefaultInt("SUMMARIZER_TIMEOUT_SECONDS", 60),
		SessionSecret:        getEnvOrDefault("SESSION_SECRET", ""),
		SessionTTLMinutes:    getEnvOrDefaultInt("SESSION_TTL_MINUTES", 24*60),
		SessionSweepSchedule: getEnvOrDefault("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		UploadDir:            getEnvOrDefault("UPLOAD_DIR", "uploads"),
		UploadBucket:         getEnvOrDefault("UPLOAD_BUCKET", ""),
		GCSCredentialsFile:   getEnvOrDefault("GCS_CREDENTIALS_FILE", ""),
		SlackBotToken:        getEnvOrDefault("SLACK_BOT_TOKEN", ""),
		SlackChannel:         getEnvOrDefault("SLACK_CHANNEL", "#paper-summaries"),
	}
}

// SlackEnabled reports whether completed uploads should be posted to Slack
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != ""
}

// ArchiveEnabled reports whether uploads are copied to Cloud Storage
func (c *Config) ArchiveEnabled() bool {
	return c.UploadBucket != ""
}

// validateSummarizer checks the settings needed to call the summarization API
func (c *Config) validateSummarizer() error {
	if c.HuggingFaceAPIToken == "" {
		return &ConfigError{Field: "HUGGINGFACE_API_TOKEN", Message: "summarization API token is required"}
	}
	if c.SummarizerTimeout <= 0 {
		return &ConfigError{Field: "SUMMARIZER_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	return nil
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if err := c.validateSummarizer(); err != nil {
		return err
	}
	if c.SessionSecret == "" {
		return &ConfigError{Field: "SESSION_SECRET", Message: "session signing secret is required"}
	}
	if c.SessionTTLMinutes <= 0 {
		return &ConfigError{Field: "SESSION_TTL_MINUTES", Message: "must be positive"}
	}
	if c.UploadDir == "" {
		return &ConfigError{Field: "UPLOAD_DIR", Message: "upload directory is required"}
	}
	if c.SlackBotToken != "" && !strings.HasPrefix(c.SlackBotToken, "xoxb-") {
		return &ConfigError{Field: "SLACK_BOT_TOKEN", Message: "must start with xoxb-"}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
