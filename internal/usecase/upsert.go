package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/parser"
)

// EvaluationMeta carries run details written next to a result.
type EvaluationMeta struct {
	RunID            string
	StartupName      string
	TherapeuticFocus string
	SlidesTotal      int
	SlidesFailed     int
	DigestChars      int
	PromptTokens     int
	Note             string
	At               time.Time
}

// EvaluationWriter persists evaluations. Writing the same result and meta
// twice leaves the record and the run history unchanged.
type EvaluationWriter struct {
	Store  domain.RecordStore
	Runs   domain.EvaluationRepository
	Logger *slog.Logger
}

// UpsertEvaluation writes the result fields to the record and mirrors the
// run to the repository when one is configured. Mirror failures are logged.
func (w EvaluationWriter) UpsertEvaluation(ctx domain.Context, recordID string, r domain.EvaluationResult, meta EvaluationMeta) error {
	if recordID == "" {
		return fmt.Errorf("op=usecase.UpsertEvaluation: %w: empty record id", domain.ErrInvalidArgument)
	}
	if meta.At.IsZero() {
		meta.At = time.Now()
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	storeErr := w.Store.UpdateFields(ctx, recordID, EvaluationFields(r, meta))
	if storeErr != nil {
		storeErr = fmt.Errorf("op=usecase.UpsertEvaluation: %w", storeErr)
	}
	if w.Runs != nil {
		run := runFromResult(recordID, r, meta)
		if storeErr != nil {
			run.Note = storeErr.Error()
		}
		if err := w.Runs.Upsert(ctx, run); err != nil {
			w.logger().WarnContext(ctx, "evaluation mirror failed", slog.String("record_id", recordID), slog.Any("error", err))
		}
	}
	return storeErr
}

// ImportResponse parses a saved model response and writes it as the
// evaluation of recordID.
func (w EvaluationWriter) ImportResponse(ctx domain.Context, p *parser.Parser, recordID, startupName, response string) (domain.EvaluationResult, error) {
	if strings.TrimSpace(response) == "" {
		return domain.EvaluationResult{}, fmt.Errorf("op=usecase.ImportResponse: %w: empty response", domain.ErrInvalidArgument)
	}
	result := p.Parse(response)
	meta := EvaluationMeta{StartupName: startupName, Note: "Imported from saved model response"}
	if err := w.UpsertEvaluation(ctx, recordID, result, meta); err != nil {
		return result, fmt.Errorf("op=usecase.ImportResponse: %w", err)
	}
	return result, nil
}

// RecordFailure mirrors a failed run when a repository is configured.
func (w EvaluationWriter) RecordFailure(ctx domain.Context, recordID string, meta EvaluationMeta) {
	if w.Runs == nil {
		return
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	run := domain.EvaluationRun{
		ID:           meta.RunID,
		RecordID:     recordID,
		StartupName:  meta.StartupName,
		Status:       domain.StatusError,
		SlidesTotal:  meta.SlidesTotal,
		SlidesFailed: meta.SlidesFailed,
		Note:         meta.Note,
		CreatedAt:    meta.At.UTC(),
	}
	if err := w.Runs.Upsert(ctx, run); err != nil {
		w.logger().WarnContext(ctx, "evaluation mirror failed", slog.String("record_id", recordID), slog.Any("error", err))
	}
}

func (w EvaluationWriter) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

func runFromResult(recordID string, r domain.EvaluationResult, meta EvaluationMeta) domain.EvaluationRun {
	return domain.EvaluationRun{
		ID:           meta.RunID,
		RecordID:     recordID,
		StartupName:  meta.StartupName,
		Status:       domain.StatusComplete,
		OverallScore: r.OverallScore,
		TeamScore:    r.Score(domain.CategoryTeam, 0),
		TechScore:    r.Score(domain.CategoryTechnology, 0),
		MarketScore:  r.Score(domain.CategoryMarket, 0),
		GTMScore:     r.Score(domain.CategoryGTMTraction, 0),
		CompScore:    r.Score(domain.CategoryCompetitive, 0),
		SlidesTotal:  meta.SlidesTotal,
		SlidesFailed: meta.SlidesFailed,
		DigestChars:  meta.DigestChars,
		PromptTokens: meta.PromptTokens,
		Warnings:     r.Warnings,
		RawResponse:  r.RawResponse,
		Note:         meta.Note,
		CreatedAt:    meta.At.UTC(),
	}
}
