// Package config defines configuration parsing and helpers.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Config holds all application configuration parsed from environment variables.
// Credentials have no defaults; Load fails when a required one is absent.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"dev" validate:"oneof=dev test prod"`
	Port        int    `env:"PORT" envDefault:"8080" validate:"gt=0"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9090" validate:"gt=0"`

	// Record store (Airtable).
	AirtableAPIKey   string `env:"AIRTABLE_API_KEY" validate:"required"`
	AirtableBaseID   string `env:"AIRTABLE_BASE_ID" validate:"required"`
	AirtableTable    string `env:"AIRTABLE_TABLE" envDefault:"Startup Submissions"`
	AirtableBaseURL  string `env:"AIRTABLE_BASE_URL" envDefault:"https://api.airtable.com/v0" validate:"url"`
	PendingBatchSize int    `env:"PENDING_BATCH_SIZE" envDefault:"10" validate:"gt=0"`

	// Models.
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY" validate:"required"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1" validate:"url"`
	VisionModel     string        `env:"VISION_MODEL" envDefault:"gpt-4o"`
	TextModel       string        `env:"TEXT_MODEL" envDefault:"gpt-4o"`
	VisionMaxTokens int           `env:"VISION_MAX_TOKENS" envDefault:"1500" validate:"gt=0"`
	TextMaxTokens   int           `env:"TEXT_MAX_TOKENS" envDefault:"3000" validate:"gt=0"`
	TextProvider    string        `env:"TEXT_PROVIDER" envDefault:"openai" validate:"oneof=openai anthropic"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY" validate:"required_if=TextProvider anthropic"`
	AnthropicModel  string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-latest"`
	ModelTimeout    time.Duration `env:"MODEL_TIMEOUT" envDefault:"120s"`

	// Pipeline.
	MaxDigestChars     int           `env:"MAX_DIGEST_CHARS" envDefault:"8000" validate:"gte=1000"`
	PromptTokenCeiling int           `env:"PROMPT_TOKEN_CEILING" envDefault:"7000" validate:"gt=0"`
	SlideDelay         time.Duration `env:"SLIDE_DELAY" envDefault:"1s"`
	SubmissionDelay    time.Duration `env:"SUBMISSION_DELAY" envDefault:"3s"`
	RenderDPI          int           `env:"RENDER_DPI" envDefault:"300" validate:"gte=72"`
	PdftoppmPath       string        `env:"PDFTOPPM_PATH" envDefault:"pdftoppm"`
	RubricPath         string        `env:"RUBRIC_PATH"`
	PollInterval       time.Duration `env:"POLL_INTERVAL" envDefault:"0s"`

	// Infrastructure. Empty values disable the optional component.
	DBURL            string   `env:"DB_URL"`
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:19092"`
	RedisURL         string   `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ArchiveEndpoint  string   `env:"ARCHIVE_ENDPOINT"`
	ArchiveAccessKey string   `env:"ARCHIVE_ACCESS_KEY" validate:"required_with=ArchiveEndpoint"`
	ArchiveSecretKey string   `env:"ARCHIVE_SECRET_KEY" validate:"required_with=ArchiveEndpoint"`
	ArchiveBucket    string   `env:"ARCHIVE_BUCKET" envDefault:"pitch-deck-artifacts"`
	ArchiveUseSSL    bool     `env:"ARCHIVE_USE_SSL" envDefault:"true"`

	// Observability.
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"pitch-deck-evaluator"`

	// HTTP.
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	WebhookSecret         string        `env:"WEBHOOK_SECRET"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// Upstream backoff for 429 and 5xx responses.
	BackoffMaxElapsedTime  time.Duration `env:"BACKOFF_MAX_ELAPSED_TIME" envDefault:"120s"`
	BackoffInitialInterval time.Duration `env:"BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	BackoffMaxInterval     time.Duration `env:"BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	BackoffMultiplier      float64       `env:"BACKOFF_MULTIPLIER" envDefault:"1.5"`
}

// Load parses environment variables into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field, wrapped in domain.ErrConfig.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: invalid %s", domain.ErrConfig, strings.Join(fields, ", "))
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// ArchiveEnabled reports whether raw artifacts are archived.
func (c Config) ArchiveEnabled() bool { return c.ArchiveEndpoint != "" }

// MirrorEnabled reports whether evaluation runs are mirrored to Postgres.
func (c Config) MirrorEnabled() bool { return c.DBURL != "" }

// GetBackoffConfig returns upstream retry settings. Tests get short timeouts.
func (c Config) GetBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.BackoffMaxElapsedTime, c.BackoffInitialInterval, c.BackoffMaxInterval, c.BackoffMultiplier
}
