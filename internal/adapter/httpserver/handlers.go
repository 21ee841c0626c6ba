package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/tracker"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/usecase"
)

// maxBodyBytes caps webhook and manual trigger bodies.
const maxBodyBytes = 1 << 20

// ReadyCheck is one dependency probed by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg     config.Config
	Queue   domain.Queue
	Tracker domain.SubmissionTracker
	Checks  []ReadyCheck

	now func() time.Time
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, queue domain.Queue, tr domain.SubmissionTracker, checks ...ReadyCheck) *Server {
	return &Server{Cfg: cfg, Queue: queue, Tracker: tr, Checks: checks, now: time.Now}
}

// queueSubmission tracks and enqueues one record. It returns false when the
// record is already queued.
func (s *Server) queueSubmission(ctx context.Context, req queueRequest) (bool, error) {
	added, err := s.Tracker.Track(ctx, req.RecordID, req.StartupName)
	if err != nil {
		return false, fmt.Errorf("op=httpserver.queueSubmission: %w", err)
	}
	lg := observability.LoggerFromContext(ctx).With(slog.String("record_id", req.RecordID), slog.String("trigger", req.Trigger))
	if !added {
		lg.InfoContext(ctx, "submission already queued")
		return false, nil
	}
	payload := domain.SubmissionTaskPayload{
		RecordID:    req.RecordID,
		StartupName: req.StartupName,
		Trigger:     req.Trigger,
		RequestID:   observability.RequestIDFromContext(ctx),
	}
	if err := s.Queue.EnqueueSubmission(ctx, payload); err != nil {
		if rerr := s.Tracker.Remove(context.WithoutCancel(ctx), req.RecordID); rerr != nil {
			lg.WarnContext(ctx, "tracker cleanup failed", slog.Any("error", rerr))
		}
		return false, fmt.Errorf("op=httpserver.queueSubmission: %w", err)
	}
	lg.InfoContext(ctx, "submission queued", slog.String("startup", req.StartupName))
	return true, nil
}

// AirtableWebhookHandler accepts record-store change payloads and queues the
// records that need evaluation.
func (s *Server) AirtableWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if s.Cfg.WebhookSecret != "" && !validSignature(s.Cfg.WebhookSecret, r.Header.Get(SignatureHeader), body) {
			writeError(w, r, fmt.Errorf("%w: bad webhook signature", domain.ErrUnauthorized), nil)
			return
		}
		if len(body) == 0 {
			writeError(w, r, fmt.Errorf("%w: no data received", domain.ErrInvalidArgument), nil)
			return
		}
		var payload changePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}

		queued, duplicates := 0, 0
		for _, req := range requestsFrom(payload) {
			added, err := s.queueSubmission(r.Context(), req)
			if err != nil {
				writeError(w, r, err, map[string]string{"record_id": req.RecordID})
				return
			}
			if added {
				queued++
			} else {
				duplicates++
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "success",
			"message":    "Webhook processed",
			"queued":     queued,
			"duplicates": duplicates,
		})
	}
}

type manualRequest struct {
	RecordID    string `json:"record_id" validate:"required,max=64,recordid"`
	StartupName string `json:"startup_name" validate:"max=200"`
}

// ManualTriggerHandler queues one record by id.
func (s *Server) ManualTriggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req manualRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if details, err := validateRequest(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		label := req.StartupName
		if label == "" {
			label = req.RecordID
		}
		added, err := s.queueSubmission(r.Context(), queueRequest{RecordID: req.RecordID, StartupName: req.StartupName, Trigger: TriggerManual})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		msg := "Analysis queued for " + label
		if !added {
			msg = "Already queued: " + label
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "queued": added, "message": msg})
	}
}

type queuedItem struct {
	RecordID         string  `json:"record_id"`
	StartupName      string  `json:"startup_name"`
	QueuedMinutesAgo float64 `json:"queued_minutes_ago"`
}

// StatusHandler lists queued submissions oldest first.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queued, err := s.Tracker.List(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		now := s.now()
		items := make([]queuedItem, 0, len(queued))
		for _, q := range queued {
			items = append(items, queuedItem{
				RecordID:         q.RecordID,
				StartupName:      q.StartupName,
				QueuedMinutesAgo: tracker.MinutesWaiting(q, now),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "running",
			"queue_size":   len(items),
			"queued_items": items,
			"timestamp":    now.Format(usecase.TimestampLayout),
		})
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"service":   s.Cfg.OTELServiceName,
			"timestamp": s.now().Format(usecase.TimestampLayout),
		})
	}
}

// ReadyzHandler probes every configured dependency.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		status := http.StatusOK
		for _, c := range s.Checks {
			res := check{Name: c.Name, OK: true}
			if err := c.Check(ctx); err != nil {
				res.OK = false
				res.Details = err.Error()
				status = http.StatusServiceUnavailable
				if errors.Is(err, context.DeadlineExceeded) {
					res.Details = "timeout"
				}
			}
			checks = append(checks, res)
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}
