// Package usecase runs the submission pipeline: status transitions, slide
// extraction, digest and prompt construction, evaluation and persistence.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/archive"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/parser"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/prompt"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/scoring"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/summarizer"
)

// Progress notes written to the record while a submission is processed.
const (
	NoteStarting   = "Starting PDF analysis..."
	NoteConverting = "Converting PDF to slides..."
	NoteGenerating = "Generating comprehensive analysis..."
	NoteComplete   = "Analysis complete"
)

// Options tunes the pipeline.
type Options struct {
	MaxDigestChars     int
	MinDigestChars     int
	MaxShrinkAttempts  int
	PromptTokenCeiling int
	SlideDelay         time.Duration
	SubmissionDelay    time.Duration
	BatchSize          int
	TextModel          string
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		MaxDigestChars:     8000,
		MinDigestChars:     1000,
		MaxShrinkAttempts:  4,
		PromptTokenCeiling: 7000,
		SlideDelay:         time.Second,
		SubmissionDelay:    3 * time.Second,
		BatchSize:          10,
		TextModel:          "gpt-4o",
	}
}

// TokenCounter counts model tokens of a prompt.
type TokenCounter interface {
	Count(text, model string) int
}

// Pipeline evaluates submissions one at a time.
type Pipeline struct {
	Store      domain.RecordStore
	Renderer   domain.PageRenderer
	Vision     domain.VisionModel
	Text       domain.TextModel
	Summarizer *summarizer.Summarizer
	Parser     *parser.Parser
	Rubric     string
	Writer     EvaluationWriter
	// Optional.
	Archive domain.Archiver
	Tokens  TokenCounter

	Opts   Options
	Logger *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Outcome is the final state of one submission.
type Outcome struct {
	RecordID string
	Status   domain.SubmissionStatus
	Note     string
	Result   *domain.EvaluationResult
	Err      error
}

// BatchReport summarizes one ProcessPending run.
type BatchReport struct {
	Listed    int
	Completed int
	Failed    int
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p *Pipeline) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Pipeline) log(ctx context.Context) *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return observability.LoggerFromContext(ctx)
}

// ProcessPending evaluates up to Opts.BatchSize pending submissions in
// order, pausing Opts.SubmissionDelay between them.
func (p *Pipeline) ProcessPending(ctx context.Context) (BatchReport, error) {
	subs, err := p.Store.ListPending(ctx, p.Opts.BatchSize)
	if err != nil {
		return BatchReport{}, fmt.Errorf("op=usecase.ProcessPending: %w", err)
	}
	report := BatchReport{Listed: len(subs)}
	p.log(ctx).InfoContext(ctx, "pending submissions", slog.Int("count", len(subs)))
	for i, sub := range subs {
		if i > 0 {
			if err := p.wait(ctx, p.Opts.SubmissionDelay); err != nil {
				return report, fmt.Errorf("op=usecase.ProcessPending: %w", err)
			}
		}
		out := p.ProcessSubmission(ctx, sub)
		switch out.Status {
		case domain.StatusComplete:
			report.Completed++
		default:
			report.Failed++
		}
		if ctx.Err() != nil {
			return report, fmt.Errorf("op=usecase.ProcessPending: %w", ctx.Err())
		}
	}
	return report, nil
}

// ProcessRecord fetches one record and evaluates it.
func (p *Pipeline) ProcessRecord(ctx context.Context, recordID string) (Outcome, error) {
	sub, err := p.Store.GetSubmission(ctx, recordID)
	if err != nil {
		return Outcome{}, fmt.Errorf("op=usecase.ProcessRecord: %w", err)
	}
	return p.ProcessSubmission(ctx, sub), nil
}

// run holds the state of one submission while it moves through the stages.
type run struct {
	id     string
	sub    domain.Submission
	log    *slog.Logger
	meta   EvaluationMeta
	slides []domain.SlideExtraction
}

// ProcessSubmission moves one submission from PROCESSING to COMPLETE or
// ERROR. Only a missing or unreadable deck, a render failure and a failed
// text-model call end in ERROR.
func (p *Pipeline) ProcessSubmission(ctx context.Context, sub domain.Submission) Outcome {
	ctx, span := otel.Tracer("usecase.pipeline").Start(ctx, "Pipeline.ProcessSubmission")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", sub.RecordID))

	r := &run{
		id:  uuid.NewString(),
		sub: sub,
		log: p.log(ctx).With(slog.String("record_id", sub.RecordID), slog.String("startup", sub.StartupName)),
	}
	r.meta = EvaluationMeta{RunID: r.id, StartupName: sub.StartupName}
	ctx = observability.ContextWithLogger(ctx, r.log)

	observability.StartProcessingSubmission()
	p.status(ctx, r, domain.StatusProcessing, NoteStarting)

	out := p.evaluate(ctx, r)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Note)
	}
	span.SetAttributes(attribute.String("submission.status", string(out.Status)))
	return out
}

func (p *Pipeline) evaluate(ctx context.Context, r *run) Outcome {
	if r.sub.Attachment == nil {
		return p.fail(ctx, r, "attachment", fmt.Errorf("%w: no pitch deck attached", domain.ErrAttachmentMissing))
	}
	pdf, err := p.Store.DownloadAttachment(ctx, *r.sub.Attachment)
	if err != nil {
		return p.fail(ctx, r, "download", fmt.Errorf("%w: %w", domain.ErrAttachmentMissing, err))
	}
	if mt := mimetype.Detect(pdf); !mt.Is("application/pdf") {
		return p.fail(ctx, r, "download", fmt.Errorf("%w: attachment is %s, not a PDF", domain.ErrAttachmentMissing, mt.String()))
	}

	p.status(ctx, r, domain.StatusProcessing, NoteConverting)
	pages, err := p.Renderer.RenderPages(ctx, pdf)
	if err != nil {
		return p.fail(ctx, r, "render", err)
	}
	if len(pages) == 0 {
		return p.fail(ctx, r, "render", fmt.Errorf("%w: no pages", domain.ErrRenderFailure))
	}
	r.meta.SlidesTotal = len(pages)

	if err := p.extractSlides(ctx, r, pages); err != nil {
		return p.fail(ctx, r, "vision", err)
	}

	p.status(ctx, r, domain.StatusProcessing, NoteGenerating)
	hints := prompt.ExtractEntityHints(r.slides)
	r.meta.TherapeuticFocus = hints.TherapeuticFocus
	digest, fullPrompt := p.buildPrompt(ctx, r, hints)

	response, err := p.Text.Complete(ctx, fullPrompt)
	if err != nil {
		return p.fail(ctx, r, "text_model", err)
	}

	result := p.Parser.Parse(response)
	scoring.LogScoringDetails(ctx, r.log, result.CategoryScores, result.OverallScore)
	observability.ObserveEvaluation(result.OverallScore)
	for _, w := range result.Warnings {
		r.log.InfoContext(ctx, "parse warning", slog.String("warning", w))
	}
	p.archive(ctx, r, digest, fullPrompt, response)

	r.meta.At = p.clock()
	note := ""
	if err := p.Writer.UpsertEvaluation(ctx, r.sub.RecordID, result, r.meta); err != nil {
		note = "Analysis complete but save error: " + err.Error()
		r.log.ErrorContext(ctx, "evaluation save failed", slog.Any("error", err))
		p.status(ctx, r, domain.StatusComplete, note)
		observability.CompleteSubmission("save_error")
	} else {
		observability.CompleteSubmission("saved")
	}
	r.log.InfoContext(ctx, "submission evaluated",
		slog.Float64("overall", result.OverallScore),
		slog.Int("slides", r.meta.SlidesTotal),
		slog.Int("slides_failed", r.meta.SlidesFailed))
	return Outcome{RecordID: r.sub.RecordID, Status: domain.StatusComplete, Note: note, Result: &result}
}

// extractSlides describes every page in order. A failed call becomes an
// error extraction and the loop continues.
func (p *Pipeline) extractSlides(ctx context.Context, r *run, pages [][]byte) error {
	total := len(pages)
	r.slides = make([]domain.SlideExtraction, 0, total)
	for i, img := range pages {
		n := i + 1
		if i > 0 {
			if err := p.wait(ctx, p.Opts.SlideDelay); err != nil {
				return err
			}
		}
		p.status(ctx, r, domain.StatusProcessing, fmt.Sprintf("Analyzing slide %d/%d...", n, total))
		text, err := p.Vision.Describe(ctx, img, prompt.VisionPrompt(n, total))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.WarnContext(ctx, "slide analysis failed", slog.Int("slide", n), slog.Any("error", err))
			r.slides = append(r.slides, domain.SlideExtraction{SlideNumber: n, Text: "Error: " + err.Error(), IsError: true})
			r.meta.SlidesFailed++
			observability.ObserveSlide(false)
			continue
		}
		r.slides = append(r.slides, domain.SlideExtraction{SlideNumber: n, Text: text})
		observability.ObserveSlide(true)
	}
	return nil
}

// buildPrompt summarizes and renders the prompt, halving the digest budget
// while the estimate exceeds the ceiling. After the last attempt the prompt
// is sent as is.
func (p *Pipeline) buildPrompt(ctx context.Context, r *run, hints prompt.EntityHints) (domain.Digest, string) {
	maxChars := p.Opts.MaxDigestChars
	var (
		digest domain.Digest
		out    string
	)
	for attempt := 0; ; attempt++ {
		digest = p.Summarizer.Summarize(r.slides, maxChars)
		out = prompt.Build(p.Rubric, digest, hints)
		if !prompt.TooLarge(out, p.Opts.PromptTokenCeiling) {
			break
		}
		if attempt >= p.Opts.MaxShrinkAttempts || maxChars <= p.Opts.MinDigestChars {
			r.log.WarnContext(ctx, "prompt above token ceiling after shrinking",
				slog.Any("error", domain.ErrPromptTooLarge),
				slog.Int("estimated_tokens", prompt.EstimateTokens(out)))
			break
		}
		maxChars = max(maxChars/2, p.Opts.MinDigestChars)
		r.log.InfoContext(ctx, "prompt too large, re-summarizing",
			slog.Int("estimated_tokens", prompt.EstimateTokens(out)),
			slog.Int("max_digest_chars", maxChars))
	}

	tokens := prompt.EstimateTokens(out)
	if p.Tokens != nil {
		tokens = p.Tokens.Count(out, p.Opts.TextModel)
	}
	r.meta.DigestChars = len(digest)
	r.meta.PromptTokens = tokens
	observability.ObservePrompt(len(digest), tokens)
	return digest, out
}

func (p *Pipeline) archive(ctx context.Context, r *run, digest domain.Digest, fullPrompt, response string) {
	if p.Archive == nil {
		return
	}
	at := p.clock()
	for name, body := range map[string]string{
		"digest.txt":   string(digest),
		"prompt.txt":   fullPrompt,
		"response.txt": response,
	} {
		key := archive.Key(r.sub.RecordID, r.id, at, name)
		if err := p.Archive.Put(ctx, key, []byte(body), "text/plain; charset=utf-8"); err != nil {
			r.log.WarnContext(ctx, "artifact archive failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (p *Pipeline) fail(ctx context.Context, r *run, stage string, err error) Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// the status write must outlive the cancelled request
		ctx = context.WithoutCancel(ctx)
	}
	note := "Analysis failed: " + err.Error()
	r.log.ErrorContext(ctx, "submission failed", slog.String("stage", stage), slog.Any("error", err))
	p.status(ctx, r, domain.StatusError, note)
	observability.FailSubmission(stage)

	r.meta.Note = note
	r.meta.At = p.clock()
	p.Writer.RecordFailure(ctx, r.sub.RecordID, r.meta)
	return Outcome{RecordID: r.sub.RecordID, Status: domain.StatusError, Note: note, Err: err}
}

// status writes a transition. A failed write is logged; the pipeline keeps
// going.
func (p *Pipeline) status(ctx context.Context, r *run, s domain.SubmissionStatus, note string) {
	if err := p.Store.UpdateFields(ctx, r.sub.RecordID, StatusFields(s, note, p.clock())); err != nil {
		r.log.WarnContext(ctx, "status update failed", slog.String("status", string(s)), slog.Any("error", err))
	}
}
