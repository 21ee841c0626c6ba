// Package openai adapts the OpenAI chat completions API to the vision and
// text model ports.
package openai

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/retry"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

const (
	provider          = "openai"
	visionTemperature = 0.1
	textTemperature   = 0.2
)

// Client implements domain.VisionModel and domain.TextModel.
type Client struct {
	cfg    config.Config
	api    *goopenai.Client
	logger *slog.Logger
}

var (
	_ domain.VisionModel = (*Client)(nil)
	_ domain.TextModel   = (*Client)(nil)
)

// New constructs a Client for cfg.OpenAIBaseURL.
func New(cfg config.Config, logger *slog.Logger) *Client {
	oc := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	oc.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	oc.HTTPClient = &http.Client{
		Timeout:   cfg.ModelTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, api: goopenai.NewClientWithConfig(oc), logger: logger}
}

// Describe sends one slide image with the vision prompt and returns the
// model's description.
func (c *Client) Describe(ctx domain.Context, image []byte, prompt string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("op=openai.Describe: %w: empty image", domain.ErrInvalidArgument)
	}
	dataURL := "data:" + mimetype.Detect(image).String() + ";base64," + base64.StdEncoding.EncodeToString(image)
	req := goopenai.ChatCompletionRequest{
		Model:       c.cfg.VisionModel,
		Temperature: visionTemperature,
		MaxTokens:   c.cfg.VisionMaxTokens,
		Messages: []goopenai.ChatCompletionMessage{{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
				{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: goopenai.ImageURLDetailHigh,
				}},
			},
		}},
	}
	out, err := c.chat(ctx, "vision", req)
	if err != nil {
		return "", fmt.Errorf("op=openai.Describe: %w", err)
	}
	return out, nil
}

// Complete sends a text prompt and returns the completion.
func (c *Client) Complete(ctx domain.Context, prompt string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       c.cfg.TextModel,
		Temperature: textTemperature,
		MaxTokens:   c.cfg.TextMaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	out, err := c.chat(ctx, "completion", req)
	if err != nil {
		return "", fmt.Errorf("op=openai.Complete: %w", err)
	}
	return out, nil
}

func (c *Client) chat(ctx domain.Context, operation string, req goopenai.ChatCompletionRequest) (string, error) {
	var content string
	attempt := 0
	op := func() error {
		attempt++
		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, req)
		observability.ObserveAIRequest(provider, operation, time.Since(start))
		if err != nil {
			status := statusOf(err)
			c.logger.WarnContext(ctx, "model call failed",
				slog.String("provider", provider),
				slog.String("operation", operation),
				slog.String("model", req.Model),
				slog.Int("status", status),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return retry.Classify(status, err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return retry.Classify(0, errors.New("empty choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}
	if err := retry.Do(ctx, c.cfg, op); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrModelCall, err)
	}
	c.logger.DebugContext(ctx, "model call ok",
		slog.String("provider", provider),
		slog.String("operation", operation),
		slog.Int("attempts", attempt),
		slog.Int("chars", len(content)))
	return content, nil
}

func statusOf(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
