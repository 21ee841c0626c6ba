package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// EvaluationRepo persists evaluation runs.
type EvaluationRepo struct{ Pool PgxPool }

var _ domain.EvaluationRepository = (*EvaluationRepo)(nil)

// NewEvaluationRepo constructs an EvaluationRepo with the given pool.
func NewEvaluationRepo(p PgxPool) *EvaluationRepo { return &EvaluationRepo{Pool: p} }

// Upsert inserts the run or replaces the stored run with the same id.
// A run without an id gets a fresh one.
func (r *EvaluationRepo) Upsert(ctx domain.Context, run domain.EvaluationRun) error {
	ctx, span := otel.Tracer("repo.evaluations").Start(ctx, "evaluations.Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", run.RecordID))

	if run.RecordID == "" {
		return fmt.Errorf("op=evaluations.Upsert: %w: empty record id", domain.ErrInvalidArgument)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	q := `INSERT INTO evaluation_runs (id, record_id, startup_name, status, overall_score, team_score, tech_score, market_score, gtm_score, comp_score,
	slides_total, slides_failed, digest_chars, prompt_tokens, warnings, raw_response, note, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	ON CONFLICT (id)
	DO UPDATE SET status=EXCLUDED.status, overall_score=EXCLUDED.overall_score, team_score=EXCLUDED.team_score, tech_score=EXCLUDED.tech_score,
	market_score=EXCLUDED.market_score, gtm_score=EXCLUDED.gtm_score, comp_score=EXCLUDED.comp_score, slides_total=EXCLUDED.slides_total,
	slides_failed=EXCLUDED.slides_failed, digest_chars=EXCLUDED.digest_chars, prompt_tokens=EXCLUDED.prompt_tokens, warnings=EXCLUDED.warnings,
	raw_response=EXCLUDED.raw_response, note=EXCLUDED.note, updated_at=EXCLUDED.updated_at`
	_, err := r.Pool.Exec(ctx, q, run.ID, run.RecordID, run.StartupName, string(run.Status), run.OverallScore,
		run.TeamScore, run.TechScore, run.MarketScore, run.GTMScore, run.CompScore,
		run.SlidesTotal, run.SlidesFailed, run.DigestChars, run.PromptTokens, warnings, run.RawResponse, run.Note,
		run.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("op=evaluations.Upsert: %w", err)
	}
	return nil
}

// GetLatest loads the most recent run of a record.
func (r *EvaluationRepo) GetLatest(ctx domain.Context, recordID string) (domain.EvaluationRun, error) {
	ctx, span := otel.Tracer("repo.evaluations").Start(ctx, "evaluations.GetLatest")
	defer span.End()
	q := `SELECT id, record_id, startup_name, status, overall_score, team_score, tech_score, market_score, gtm_score, comp_score,
	slides_total, slides_failed, digest_chars, prompt_tokens, warnings, raw_response, note, created_at, updated_at
	FROM evaluation_runs WHERE record_id=$1 ORDER BY created_at DESC LIMIT 1`
	var (
		run    domain.EvaluationRun
		status string
	)
	err := r.Pool.QueryRow(ctx, q, recordID).Scan(&run.ID, &run.RecordID, &run.StartupName, &status, &run.OverallScore,
		&run.TeamScore, &run.TechScore, &run.MarketScore, &run.GTMScore, &run.CompScore,
		&run.SlidesTotal, &run.SlidesFailed, &run.DigestChars, &run.PromptTokens, &run.Warnings, &run.RawResponse, &run.Note,
		&run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EvaluationRun{}, fmt.Errorf("op=evaluations.GetLatest: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.EvaluationRun{}, fmt.Errorf("op=evaluations.GetLatest: %w", err)
	}
	run.Status = domain.SubmissionStatus(status)
	return run, nil
}
