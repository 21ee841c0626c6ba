// Package anthropic adapts the Anthropic Messages API to the text model port.
package anthropic

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/retry"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

const (
	provider    = "anthropic"
	temperature = 0.2
)

// Client implements domain.TextModel.
type Client struct {
	cfg    config.Config
	api    sdk.Client
	logger *slog.Logger
}

var _ domain.TextModel = (*Client)(nil)

// New constructs a Client. baseURL overrides the API endpoint when set.
func New(cfg config.Config, baseURL string, logger *slog.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{
			Timeout:   cfg.ModelTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, api: sdk.NewClient(opts...), logger: logger}
}

// Complete sends the prompt as a single user message and joins the text
// blocks of the reply.
func (c *Client) Complete(ctx domain.Context, prompt string) (string, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.cfg.AnthropicModel),
		MaxTokens:   int64(c.cfg.TextMaxTokens),
		Temperature: sdk.Float(temperature),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	}

	var content string
	op := func() error {
		start := time.Now()
		resp, err := c.api.Messages.New(ctx, params)
		observability.ObserveAIRequest(provider, "completion", time.Since(start))
		if err != nil {
			status := 0
			var apiErr *sdk.Error
			if errors.As(err, &apiErr) {
				status = apiErr.StatusCode
			}
			c.logger.WarnContext(ctx, "model call failed",
				slog.String("provider", provider),
				slog.String("model", c.cfg.AnthropicModel),
				slog.Int("status", status),
				slog.Any("error", err))
			return retry.Classify(status, err)
		}
		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if strings.TrimSpace(sb.String()) == "" {
			return retry.Classify(0, errors.New("no text content"))
		}
		content = sb.String()
		return nil
	}
	if err := retry.Do(ctx, c.cfg, op); err != nil {
		return "", fmt.Errorf("op=anthropic.Complete: %w: %w", domain.ErrModelCall, err)
	}
	return content, nil
}
