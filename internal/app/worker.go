package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/usecase"
)

// TriggerPoll marks submissions queued by the pending poller.
const TriggerPoll = "poll"

// RecordProcessor evaluates one record.
type RecordProcessor interface {
	ProcessRecord(ctx context.Context, recordID string) (usecase.Outcome, error)
}

// PendingLister lists records waiting for evaluation.
type PendingLister interface {
	ListPending(ctx domain.Context, limit int) ([]domain.Submission, error)
}

// SubmissionHandler returns the queue handler: it evaluates the record and
// then releases it from the tracker so that it can be queued again.
func SubmissionHandler(p RecordProcessor, tr domain.SubmissionTracker, logger *slog.Logger) func(context.Context, domain.SubmissionTaskPayload) error {
	return func(ctx context.Context, payload domain.SubmissionTaskPayload) error {
		log := logger.With(
			slog.String("record_id", payload.RecordID),
			slog.String("trigger", payload.Trigger),
			slog.String("request_id", payload.RequestID),
		)
		ctx = observability.ContextWithLogger(ctx, log)
		ctx = observability.ContextWithRequestID(ctx, payload.RequestID)
		defer func() {
			if err := tr.Remove(context.WithoutCancel(ctx), payload.RecordID); err != nil {
				log.WarnContext(ctx, "tracker release failed", slog.Any("error", err))
			}
		}()

		out, err := p.ProcessRecord(ctx, payload.RecordID)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "submission processed", slog.String("status", string(out.Status)), slog.String("note", out.Note))
		return nil
	}
}

// Poller queues pending records on the submission queue. It never evaluates
// them itself, so every run goes through the single consumer and the tracker
// keeps a record from being queued twice.
type Poller struct {
	Store     PendingLister
	Queue     domain.Queue
	Tracker   domain.SubmissionTracker
	BatchSize int
	Logger    *slog.Logger
}

// Sweep lists pending records once and queues those not already tracked. It
// returns how many were queued.
func (p Poller) Sweep(ctx context.Context) (int, error) {
	subs, err := p.Store.ListPending(ctx, p.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("op=app.Poller.Sweep: %w", err)
	}
	queued := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			return queued, ctx.Err()
		}
		log := p.Logger.With(slog.String("record_id", sub.RecordID))
		added, err := p.Tracker.Track(ctx, sub.RecordID, sub.StartupName)
		if err != nil {
			return queued, fmt.Errorf("op=app.Poller.Sweep: %w", err)
		}
		if !added {
			continue
		}
		payload := domain.SubmissionTaskPayload{
			RecordID:    sub.RecordID,
			StartupName: sub.StartupName,
			Trigger:     TriggerPoll,
			RequestID:   ulid.Make().String(),
		}
		if err := p.Queue.EnqueueSubmission(ctx, payload); err != nil {
			if rerr := p.Tracker.Remove(context.WithoutCancel(ctx), sub.RecordID); rerr != nil {
				log.WarnContext(ctx, "tracker cleanup failed", slog.Any("error", rerr))
			}
			return queued, fmt.Errorf("op=app.Poller.Sweep: %w", err)
		}
		log.InfoContext(ctx, "pending submission queued")
		queued++
	}
	return queued, nil
}

// Run sweeps every interval until ctx is done. A failed sweep is logged and
// retried on the next tick.
func (p Poller) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		queued, err := p.Sweep(ctx)
		if err != nil && ctx.Err() == nil {
			p.Logger.ErrorContext(ctx, "pending sweep failed", slog.Any("error", err))
		} else if queued > 0 {
			p.Logger.InfoContext(ctx, "pending sweep done", slog.Int("queued", queued))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
