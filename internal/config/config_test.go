package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AIRTABLE_API_KEY", "pat-test")
	t.Setenv("AIRTABLE_BASE_ID", "appTest")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
	assert.Equal(t, "Startup Submissions", cfg.AirtableTable)
	assert.Equal(t, 8000, cfg.MaxDigestChars)
	assert.Equal(t, 7000, cfg.PromptTokenCeiling)
	assert.Equal(t, time.Second, cfg.SlideDelay)
	assert.Equal(t, 3*time.Second, cfg.SubmissionDelay)
	assert.Equal(t, 300, cfg.RenderDPI)
	assert.Equal(t, 10, cfg.PendingBatchSize)
	assert.Equal(t, "openai", cfg.TextProvider)
	assert.Equal(t, []string{"localhost:19092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.MirrorEnabled())
}

func TestLoad_MissingCredentialsFailFast(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"airtable key", "AIRTABLE_API_KEY"},
		{"airtable base", "AIRTABLE_BASE_ID"},
		{"openai key", "OPENAI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfig)
			assert.Contains(t, err.Error(), "op=config.Load")
		})
	}
}

func TestLoad_AnthropicNeedsKey(t *testing.T) {
	setRequired(t)
	t.Setenv("TEXT_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "AnthropicAPIKey")

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.TextProvider)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown provider", "TEXT_PROVIDER", "cohere"},
		{"tiny digest", "MAX_DIGEST_CHARS", "10"},
		{"bad env", "APP_ENV", "staging"},
		{"archive without keys", "ARCHIVE_ENDPOINT", "localhost:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	setRequired(t)
	t.Setenv("SLIDE_DELAY", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConfig)
}

func TestGetBackoffConfig(t *testing.T) {
	t.Parallel()
	c := Config{AppEnv: "test"}
	maxElapsed, initial, _, mult := c.GetBackoffConfig()
	assert.Equal(t, 2*time.Second, maxElapsed)
	assert.Equal(t, 10*time.Millisecond, initial)
	assert.InDelta(t, 2.0, mult, 1e-9)

	c = Config{AppEnv: "prod", BackoffMaxElapsedTime: time.Minute, BackoffInitialInterval: time.Second, BackoffMaxInterval: 5 * time.Second, BackoffMultiplier: 1.5}
	maxElapsed, initial, maxInterval, mult := c.GetBackoffConfig()
	assert.Equal(t, time.Minute, maxElapsed)
	assert.Equal(t, time.Second, initial)
	assert.Equal(t, 5*time.Second, maxInterval)
	assert.InDelta(t, 1.5, mult, 1e-9)
}
