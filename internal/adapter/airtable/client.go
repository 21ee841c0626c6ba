// Package airtable implements domain.RecordStore over the Airtable REST API.
package airtable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/retry"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// PendingFormula selects submissions with a deck whose analysis has not
// started.
var PendingFormula = fmt.Sprintf("AND({%s} != '', OR({%s} = '', {%s} = '%s'))",
	domain.FieldPitchDeck, domain.FieldStatus, domain.FieldStatus, domain.StatusPending)

const maxAttachmentBytes = 64 << 20

// Client talks to one Airtable table.
type Client struct {
	cfg         config.Config
	hc          *http.Client
	tableURL    string
	logger      *slog.Logger
	maxDownload int64
}

var _ domain.RecordStore = (*Client)(nil)

// New constructs a Client for cfg.AirtableBaseID and cfg.AirtableTable.
func New(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimRight(cfg.AirtableBaseURL, "/")
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tableURL:    base + "/" + url.PathEscape(cfg.AirtableBaseID) + "/" + url.PathEscape(cfg.AirtableTable),
		logger:      logger,
		maxDownload: maxAttachmentBytes,
	}
}

type record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

// ListPending returns up to limit submissions awaiting analysis.
func (c *Client) ListPending(ctx domain.Context, limit int) ([]domain.Submission, error) {
	q := url.Values{}
	q.Set("filterByFormula", PendingFormula)
	if limit > 0 {
		q.Set("maxRecords", strconv.Itoa(limit))
	}
	var out listResponse
	if err := c.do(ctx, "list_pending", http.MethodGet, c.tableURL+"?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("op=airtable.ListPending: %w", err)
	}
	subs := make([]domain.Submission, 0, len(out.Records))
	for _, r := range out.Records {
		subs = append(subs, toSubmission(r))
	}
	return subs, nil
}

// GetSubmission fetches one record.
func (c *Client) GetSubmission(ctx domain.Context, recordID string) (domain.Submission, error) {
	if strings.TrimSpace(recordID) == "" {
		return domain.Submission{}, fmt.Errorf("op=airtable.GetSubmission: %w: empty record id", domain.ErrInvalidArgument)
	}
	var r record
	if err := c.do(ctx, "get", http.MethodGet, c.tableURL+"/"+url.PathEscape(recordID), nil, &r); err != nil {
		return domain.Submission{}, fmt.Errorf("op=airtable.GetSubmission: %w", err)
	}
	return toSubmission(r), nil
}

// UpdateFields patches the given fields. typecast lets Airtable coerce
// single-select and number values.
func (c *Client) UpdateFields(ctx domain.Context, recordID string, fields map[string]any) error {
	body, err := json.Marshal(map[string]any{"fields": fields, "typecast": true})
	if err != nil {
		return fmt.Errorf("op=airtable.UpdateFields: %w", err)
	}
	if err := c.do(ctx, "update", http.MethodPatch, c.tableURL+"/"+url.PathEscape(recordID), body, nil); err != nil {
		return fmt.Errorf("op=airtable.UpdateFields: %w", err)
	}
	return nil
}

// DownloadAttachment fetches the attachment bytes from its signed URL.
func (c *Client) DownloadAttachment(ctx domain.Context, att domain.Attachment) ([]byte, error) {
	if att.URL == "" {
		return nil, fmt.Errorf("op=airtable.DownloadAttachment: %w", domain.ErrAttachmentMissing)
	}
	var data []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
		if err != nil {
			return retry.Classify(0, err)
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.RecordStoreRequestsTotal.WithLabelValues("download", "error").Inc()
			return retry.Classify(0, err)
		}
		defer func() { _ = resp.Body.Close() }()
		observability.RecordStoreRequestsTotal.WithLabelValues("download", strconv.Itoa(resp.StatusCode)).Inc()
		if resp.StatusCode != http.StatusOK {
			return retry.Classify(resp.StatusCode, fmt.Errorf("download status %d", resp.StatusCode))
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
		if err != nil {
			return err
		}
		if int64(len(data)) > c.maxDownload {
			data = nil
			return retry.Classify(resp.StatusCode, fmt.Errorf("%w: larger than %d bytes", domain.ErrAttachmentTooLarge, c.maxDownload))
		}
		return nil
	}
	if err := retry.Do(ctx, c.cfg, op); err != nil {
		return nil, fmt.Errorf("op=airtable.DownloadAttachment: %w", err)
	}
	return data, nil
}

func (c *Client) do(ctx domain.Context, operation, method, target string, body []byte, out any) error {
	ctx, span := otel.Tracer("airtable").Start(ctx, "airtable."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("airtable.table", c.cfg.AirtableTable))

	op := func() error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rd)
		if err != nil {
			return retry.Classify(0, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.AirtableAPIKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.RecordStoreRequestsTotal.WithLabelValues(operation, "error").Inc()
			return retry.Classify(0, err)
		}
		defer func() { _ = resp.Body.Close() }()
		observability.RecordStoreRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			c.logger.WarnContext(ctx, "record store request failed",
				slog.String("operation", operation),
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(snippet)))
			return retry.Classify(resp.StatusCode, statusError(resp.StatusCode, snippet))
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Classify(0, fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	if err := retry.Do(ctx, c.cfg, op); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, operation)
		return err
	}
	return nil
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: status %d", domain.ErrNotFound, status)
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return fmt.Errorf("%w: status %d: %s", domain.ErrInvalidArgument, status, strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("upstream status %d: %s", status, strings.TrimSpace(string(body)))
	}
}

func toSubmission(r record) domain.Submission {
	s := domain.Submission{RecordID: r.ID}
	if name, ok := r.Fields[domain.FieldStartupName].(string); ok {
		s.StartupName = name
	}
	if st, ok := r.Fields[domain.FieldStatus].(string); ok {
		s.Status = domain.SubmissionStatus(st)
	}
	if ts, err := time.Parse(time.RFC3339, r.CreatedTime); err == nil {
		s.CreatedAt = ts
	}
	s.Attachment = firstAttachment(r.Fields[domain.FieldPitchDeck])
	return s
}

// firstAttachment decodes the first entry of an attachment field.
func firstAttachment(v any) *domain.Attachment {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	m, ok := list[0].(map[string]any)
	if !ok {
		return nil
	}
	att := &domain.Attachment{}
	att.ID, _ = m["id"].(string)
	att.URL, _ = m["url"].(string)
	att.Filename, _ = m["filename"].(string)
	att.Type, _ = m["type"].(string)
	if size, ok := m["size"].(float64); ok {
		att.Size = int64(size)
	}
	if att.URL == "" {
		return nil
	}
	return att
}
