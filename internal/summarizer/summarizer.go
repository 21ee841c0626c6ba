// Package summarizer compresses per-slide vision output into a bounded digest
// that keeps financial figures, percentages, scientific terms and named
// entities ahead of generic prose.
package summarizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/pkg/textx"
)

// Options tunes digest construction.
type Options struct {
	// SlideChars caps one slide summary, ellipsis included.
	SlideChars int
	// MaxFacts caps the facts kept per slide.
	MaxFacts int
	// MinOtherBudget is the space that must remain after the priority block
	// before non-priority slides are added.
	MinOtherBudget int
	// EarlySlides and LateSlides bound the positional priority ranges:
	// slide <= EarlySlides or slide >= LateSlides.
	EarlySlides int
	LateSlides  int
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		SlideChars:     400,
		MaxFacts:       5,
		MinOtherBudget: 1000,
		EarlySlides:    5,
		LateSlides:     15,
	}
}

// Summarizer builds digests. It holds no mutable state and is safe for
// concurrent use.
type Summarizer struct {
	opts Options
}

// New constructs a Summarizer; zero fields in opts take their defaults.
func New(opts Options) *Summarizer {
	def := DefaultOptions()
	if opts.SlideChars <= 0 {
		opts.SlideChars = def.SlideChars
	}
	if opts.MaxFacts <= 0 {
		opts.MaxFacts = def.MaxFacts
	}
	if opts.MinOtherBudget <= 0 {
		opts.MinOtherBudget = def.MinOtherBudget
	}
	if opts.EarlySlides <= 0 {
		opts.EarlySlides = def.EarlySlides
	}
	if opts.LateSlides <= 0 {
		opts.LateSlides = def.LateSlides
	}
	return &Summarizer{opts: opts}
}

type slideLine struct {
	number int
	line   string
}

// Summarize reduces extractions to a digest of at most maxChars bytes.
// Error entries are dropped; empty input yields an empty digest.
func (s *Summarizer) Summarize(extractions []domain.SlideExtraction, maxChars int) domain.Digest {
	if maxChars <= 0 {
		return ""
	}
	ordered := make([]domain.SlideExtraction, 0, len(extractions))
	for _, e := range extractions {
		if e.IsError || strings.HasPrefix(strings.TrimSpace(e.Text), "Error:") {
			continue
		}
		ordered = append(ordered, e)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SlideNumber < ordered[j].SlideNumber })

	lines := make([]slideLine, 0, len(ordered))
	for _, e := range ordered {
		summary := s.SummarizeSlide(e.Text, e.SlideNumber)
		if summary == "" {
			continue
		}
		lines = append(lines, slideLine{number: e.SlideNumber, line: fmt.Sprintf("Slide %d: %s", e.SlideNumber, summary)})
	}

	combined := joinLines(lines)
	if len(combined) <= maxChars {
		return domain.Digest(combined)
	}
	return domain.Digest(s.reduce(lines, maxChars))
}

// reduce keeps every priority slide and fills the rest of the budget with
// the other slides in order, cutting the last one with an ellipsis.
func (s *Summarizer) reduce(lines []slideLine, maxChars int) string {
	var priority, other []slideLine
	for _, l := range lines {
		if s.isPriority(l) {
			priority = append(priority, l)
		} else {
			other = append(other, l)
		}
	}

	head := joinLines(priority)
	if len(head) >= maxChars {
		return textx.Truncate(head, maxChars)
	}
	rest := joinLines(other)
	if rest == "" {
		return head
	}
	if head == "" {
		return textx.Truncate(rest, maxChars)
	}

	remaining := maxChars - len(head) - 1
	if remaining <= s.opts.MinOtherBudget {
		return head
	}
	return head + "\n" + textx.Truncate(rest, remaining)
}

func (s *Summarizer) isPriority(l slideLine) bool {
	if l.number <= s.opts.EarlySlides || l.number >= s.opts.LateSlides {
		return true
	}
	return keyTerms.any(l.line) || criticalSet.any(l.line)
}

func joinLines(lines []slideLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.line
	}
	return strings.Join(parts, "\n")
}
