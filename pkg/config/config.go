package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	ServerPort  string
	LogLevel    string

	BotToken      string `validate:"required"`
	BotDebug      bool
	WebhookURL    string `validate:"omitempty,url"`
	WebhookSecret string `validate:"required_if=Environment production"`

	FirebaseProject        string `validate:"required"`
	StorageBucket          string
	ServiceAccountJSON     string
	ServiceAccountPath     string
	DialogueTTL            time.Duration `validate:"gt=0"`
	CategoryKeyboardColumn int           `validate:"min=1,max=8"`
	MediaMaxBytes          int64         `validate:"gt=0"`
	MediaDownloadTimeout   time.Duration
	ModerationLimit        int `validate:"min=1,max=100"`
	RateLimitPerMinute     int `validate:"min=1"`

	KafkaBrokers []string
	KafkaTopic   string
}

func Load() (*Config, error) {
	godotenv.Load()

	project := getEnv("FIREBASE_PROJECT_ID", "")

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BotToken:      getEnv("BOT_TOKEN", ""),
		BotDebug:      getEnvAsBool("BOT_DEBUG", false),
		WebhookURL:    strings.TrimSuffix(getEnv("WEBHOOK_URL", ""), "/"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		FirebaseProject:        project,
		StorageBucket:          getEnv("FIREBASE_STORAGE_BUCKET", project+".appspot.com"),
		ServiceAccountJSON:     getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath:     getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "./serviceAccountKey.json"),
		DialogueTTL:            getEnvAsDuration("DIALOGUE_TTL", 24*time.Hour),
		CategoryKeyboardColumn: int(getEnvAsInt64("CATEGORY_KEYBOARD_COLUMNS", 3)),
		MediaMaxBytes:          getEnvAsInt64("MEDIA_MAX_BYTES", 20*1024*1024),
		MediaDownloadTimeout:   getEnvAsDuration("MEDIA_DOWNLOAD_TIMEOUT", 2*time.Minute),
		ModerationLimit:        int(getEnvAsInt64("MODERATION_LIMIT", 10)),
		RateLimitPerMinute:     int(getEnvAsInt64("RATE_LIMIT_PER_MINUTE", 30)),

		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "tickets"),
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, err
	}
	if config.IsProduction() && config.WebhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required in production")
	}

	return config, nil
}

// WebhookEndpoint is the public address Telegram posts updates to.
func (c *Config) WebhookEndpoint() string {
	return c.WebhookURL + "/telegram/" + c.WebhookSecret
}

// IsProduction reports whether updates should arrive through the webhook.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits "host1:9092,host2:9092" into its non-empty parts.
func getEnvAsList(key string) []string {
	var out []string
	for _, t := range strings.Split(os.Getenv(key), ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
