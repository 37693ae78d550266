package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Reddit API credentials
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// Supabase sink
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string

	// Monitoring
	Subreddits         []string
	Keywords           []string
	PollInterval       time.Duration
	ErrorBackoff       time.Duration
	PageLimit          int
	MaxContentLength   int
	SentimentThreshold float64

	// Daily digest notification (optional)
	DigestSchedule    string // cron expression, with seconds
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	WebhookURL        string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "reddit-sentiment-bot/1.0"),

		SupabaseURL:   getEnv("SUPABASE_URL", ""),
		SupabaseKey:   getEnv("SUPABASE_KEY", ""),
		SupabaseTable: getEnv("SUPABASE_TABLE", "alerts"),

		Subreddits: getSliceEnv("SUBREDDITS", []string{
			"Meditation",
			"ArtOfLiving",
			"india",
			"MeditationPractice",
			"Ex_ArtOfLiving",
			"IndiaSpeaks",
			"breathwork",
		}),
		Keywords: getSliceEnv("KEYWORDS", []string{
			"art of living",
			"Gurudev",
			"Sri Sri Ravi Shankar",
			"meditation",
			"yoga",
			"calm anxiety",
			"stress",
			"breathe",
			"awareness",
			"peace",
			"present moment",
			"clarity",
			"compassionate",
			"equanimity",
		}),
		PollInterval:       getDurationEnv("POLL_INTERVAL", 30*time.Second),
		ErrorBackoff:       getDurationEnv("ERROR_BACKOFF", 60*time.Second),
		PageLimit:          getIntEnv("PAGE_LIMIT", 50),
		MaxContentLength:   getIntEnv("MAX_CONTENT_LENGTH", 1000),
		SentimentThreshold: getFloatEnv("SENTIMENT_THRESHOLD", 0.5),

		DigestSchedule:    getEnv("DIGEST_SCHEDULE", "0 0 9 * * *"),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		WebhookURL:        getEnv("WEBHOOK_URL", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SupabaseURL == "" || c.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required")
	}

	if len(c.Subreddits) == 0 {
		return fmt.Errorf("at least one subreddit must be configured")
	}

	if len(c.Keywords) == 0 {
		return fmt.Errorf("at least one keyword must be configured")
	}

	if c.SentimentThreshold <= 0 || c.SentimentThreshold > 1 {
		return fmt.Errorf("SENTIMENT_THRESHOLD must be in (0, 1]")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// DigestEnabled reports whether any digest channel is configured.
func (c *Config) DigestEnabled() bool {
	return c.NotificationEmail != "" || c.WebhookURL != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
