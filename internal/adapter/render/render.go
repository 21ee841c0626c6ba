// Package render turns a PDF deck into one PNG per page. pdfcpu validates
// the document and counts pages; pdftoppm rasterizes.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Renderer implements domain.PageRenderer.
type Renderer struct {
	binary string
	dpi    int
	run    Runner
	logger *slog.Logger
}

var _ domain.PageRenderer = (*Renderer)(nil)

// New constructs a Renderer calling binary (usually "pdftoppm") at dpi.
func New(binary string, dpi int, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{binary: binary, dpi: dpi, run: execRunner, logger: logger}
}

// WithRunner replaces the command runner.
func (r *Renderer) WithRunner(run Runner) *Renderer {
	r.run = run
	return r
}

// PageCount validates pdf and returns its number of pages.
func PageCount(pdf []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, fmt.Errorf("op=render.PageCount: %w: %w", domain.ErrRenderFailure, err)
	}
	return n, nil
}

// RenderPages returns one PNG per page in page order.
func (r *Renderer) RenderPages(ctx domain.Context, pdf []byte) ([][]byte, error) {
	ctx, span := otel.Tracer("render").Start(ctx, "render.RenderPages")
	defer span.End()

	pages, err := PageCount(pdf)
	if err != nil {
		return nil, fmt.Errorf("op=render.RenderPages: %w", err)
	}
	span.SetAttributes(attribute.Int("pdf.pages", pages), attribute.Int("render.dpi", r.dpi))
	if pages == 0 {
		return nil, fmt.Errorf("op=render.RenderPages: %w: no pages", domain.ErrRenderFailure)
	}

	dir, err := os.MkdirTemp("", "deck-*")
	if err != nil {
		return nil, fmt.Errorf("op=render.RenderPages: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "deck.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("op=render.RenderPages: %w", err)
	}
	prefix := filepath.Join(dir, "page")
	out, err := r.run(ctx, r.binary, "-r", strconv.Itoa(r.dpi), "-png", in, prefix)
	if err != nil {
		return nil, fmt.Errorf("op=render.RenderPages: %w: %s: %w", domain.ErrRenderFailure, strings.TrimSpace(string(out)), err)
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("op=render.RenderPages: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return pageIndex(files[i]) < pageIndex(files[j]) })

	images := make([][]byte, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("op=render.RenderPages: %w", err)
		}
		images = append(images, b)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("op=render.RenderPages: %w: renderer produced no images", domain.ErrRenderFailure)
	}
	if len(images) != pages {
		r.logger.WarnContext(ctx, "rendered page count differs from document",
			slog.Int("pages", pages), slog.Int("images", len(images)))
	}
	return images, nil
}

// pageIndex extracts N from ".../page-N.png".
func pageIndex(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	i := strings.LastIndexByte(base, '-')
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return -1
	}
	return n
}
