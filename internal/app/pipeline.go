package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/ai/anthropic"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/ai/openai"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/ai/tokencount"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/airtable"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/archive"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/render"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/repo/postgres"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/parser"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/prompt"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/summarizer"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/usecase"
)

// Components holds a Pipeline and the clients it owns.
type Components struct {
	Pipeline *usecase.Pipeline
	Store    *airtable.Client
	// Pool is nil when the evaluation mirror is disabled.
	Pool *pgxpool.Pool
}

// Close releases pooled connections.
func (c *Components) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// PipelineOptions maps configuration onto pipeline tuning.
func PipelineOptions(cfg config.Config) usecase.Options {
	opts := usecase.DefaultOptions()
	opts.MaxDigestChars = cfg.MaxDigestChars
	opts.PromptTokenCeiling = cfg.PromptTokenCeiling
	opts.SlideDelay = cfg.SlideDelay
	opts.SubmissionDelay = cfg.SubmissionDelay
	opts.BatchSize = cfg.PendingBatchSize
	opts.TextModel = cfg.TextModel
	if cfg.TextProvider == "anthropic" {
		opts.TextModel = cfg.AnthropicModel
	}
	return opts
}

// BuildPipeline wires the record store, renderer, models and optional
// mirror and archive from cfg.
func BuildPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Components, error) {
	rubric, err := prompt.LoadRubric(cfg.RubricPath)
	if err != nil {
		return nil, fmt.Errorf("op=app.BuildPipeline: %w", err)
	}

	store := airtable.New(cfg, logger)
	vision := openai.New(cfg, logger)
	var text domain.TextModel = vision
	if cfg.TextProvider == "anthropic" {
		text = anthropic.New(cfg, "", logger)
	}

	c := &Components{Store: store}
	writer := usecase.EvaluationWriter{Store: store, Logger: logger}
	if cfg.MirrorEnabled() {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("op=app.BuildPipeline: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("op=app.BuildPipeline: %w", err)
		}
		c.Pool = pool
		writer.Runs = postgres.NewEvaluationRepo(pool)
	}

	p := &usecase.Pipeline{
		Store:      store,
		Renderer:   render.New(cfg.PdftoppmPath, cfg.RenderDPI, logger),
		Vision:     vision,
		Text:       text,
		Summarizer: summarizer.New(summarizer.DefaultOptions()),
		Parser:     parser.New(logger),
		Rubric:     rubric.Template(),
		Writer:     writer,
		Tokens:     tokencount.Default,
		Opts:       PipelineOptions(cfg),
		Logger:     logger,
	}
	if cfg.ArchiveEnabled() {
		arch, err := archive.New(ctx, cfg)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("op=app.BuildPipeline: %w", err)
		}
		p.Archive = arch
	}
	c.Pipeline = p
	logger.Info("pipeline ready",
		slog.String("text_provider", cfg.TextProvider),
		slog.String("text_model", p.Opts.TextModel),
		slog.Bool("mirror", cfg.MirrorEnabled()),
		slog.Bool("archive", cfg.ArchiveEnabled()))
	return c, nil
}
