// Package config populates service settings from environment variables. A
// .env file in the working directory is loaded first when present, so local
// runs and deployments share one mechanism.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	InfrastructurePaths []string
	IslandsPath         string
	ContactsPath        string
	LedgerDir           string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration

	// Collector behaviour.
	UserAgent      string
	RequestTimeout time.Duration
	DownloadDelay  time.Duration

	// Mail delivery configuration.
	MailEnabled       bool
	MailAPIKey        string
	MailAPIURL        string
	MailSenderName    string
	MailSenderEmail   string
	MailSubjectPrefix string
	MailTimeout       time.Duration

	// Kafka audit stream configuration.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAuditTopic string
}

// Load reads configuration from the environment, applying defaults where
// unset. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pollInterval, err := parseDuration("POLL_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := parseDuration("REQUEST_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}
	downloadDelay, err := parseNonNegativeDuration("DOWNLOAD_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	mailTimeout, err := parseDuration("MAIL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	mailAPIKey := os.Getenv("MAIL_API_KEY")
	mailEnabled := mailAPIKey != ""
	if v := os.Getenv("MAIL_ENABLED"); v != "" {
		mailEnabled = v == "true"
	}

	kafkaBrokers := splitList(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		InfrastructurePaths: splitList(envOrDefault("INFRASTRUCTURE_FILES", "config/infrastructure.json")),
		IslandsPath:         envOrDefault("ISLANDS_FILE", "config/islands.json"),
		ContactsPath:        envOrDefault("CONTACTS_FILE", "config/contacts.json"),
		LedgerDir:           envOrDefault("LEDGER_DIR", "data"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		PollInterval:    pollInterval,
		ShutdownTimeout: shutdownTimeout,

		UserAgent:      envOrDefault("USER_AGENT", "island-notify/1.0"),
		RequestTimeout: requestTimeout,
		DownloadDelay:  downloadDelay,

		MailEnabled:       mailEnabled,
		MailAPIKey:        mailAPIKey,
		MailAPIURL:        envOrDefault("MAIL_API_URL", "https://api.brevo.com/v3/smtp/email"),
		MailSenderName:    envOrDefault("MAIL_SENDER_NAME", "Island Notify"),
		MailSenderEmail:   os.Getenv("MAIL_SENDER_EMAIL"),
		MailSubjectPrefix: os.Getenv("MAIL_SUBJECT_PREFIX"),
		MailTimeout:       mailTimeout,

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    kafkaBrokers,
		KafkaAuditTopic: envOrDefault("KAFKA_AUDIT_TOPIC", "island-notify-audit"),
	}

	if len(cfg.InfrastructurePaths) == 0 {
		return nil, errors.New("INFRASTRUCTURE_FILES is required")
	}
	if cfg.IslandsPath == "" {
		return nil, errors.New("ISLANDS_FILE is required")
	}
	if cfg.ContactsPath == "" {
		return nil, errors.New("CONTACTS_FILE is required")
	}
	if cfg.LedgerDir == "" {
		return nil, errors.New("LEDGER_DIR is required")
	}
	if cfg.MailEnabled && cfg.MailAPIKey == "" {
		return nil, errors.New("MAIL_ENABLED is true but MAIL_API_KEY is not set")
	}
	if cfg.MailEnabled && cfg.MailSenderEmail == "" {
		return nil, errors.New("MAIL_ENABLED is true but MAIL_SENDER_EMAIL is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseNonNegativeDuration allows zero, for settings where "off" is valid.
func parseNonNegativeDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empties.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
