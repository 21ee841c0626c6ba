package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/scoring"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/pkg/textx"
)

// TimestampLayout formats "Analysis Last Updated".
const TimestampLayout = "2006-01-02 15:04:05"

// summaryOrder lists categories by weight for the summary text.
var summaryOrder = []domain.Category{
	domain.CategoryTechnology,
	domain.CategoryTeam,
	domain.CategoryMarket,
	domain.CategoryGTMTraction,
	domain.CategoryCompetitive,
}

// StatusFields is the field map of a status transition.
func StatusFields(status domain.SubmissionStatus, note string, at time.Time) map[string]any {
	fields := map[string]any{
		domain.FieldStatus:      string(status),
		domain.FieldLastUpdated: at.Format(TimestampLayout),
	}
	if note != "" {
		fields[domain.FieldNotes] = textx.Cut(note, domain.MaxNotesChars)
	}
	return fields
}

// EvaluationFields maps a result to the record store schema.
func EvaluationFields(r domain.EvaluationResult, meta EvaluationMeta) map[string]any {
	note := meta.Note
	if note == "" {
		note = NoteComplete
	}
	fields := StatusFields(domain.StatusComplete, note, meta.At)
	fields[domain.FieldOverallScore] = r.OverallScore
	fields[domain.FieldTechnologyScore] = r.Score(domain.CategoryTechnology, scoring.Fallback)
	fields[domain.FieldMarketScore] = r.Score(domain.CategoryMarket, scoring.Fallback)
	fields[domain.FieldTeamScore] = r.Score(domain.CategoryTeam, scoring.Fallback)
	fields[domain.FieldTechnologyReason] = textx.Cut(reasoning(r, domain.CategoryTechnology), domain.MaxReasoningChars)
	fields[domain.FieldMarketReason] = textx.Cut(reasoning(r, domain.CategoryMarket), domain.MaxReasoningChars)
	fields[domain.FieldTeamReason] = textx.Cut(reasoning(r, domain.CategoryTeam), domain.MaxReasoningChars)
	fields[domain.FieldSummary] = textx.Cut(AnalysisSummary(r), domain.MaxSummaryChars)
	fields[domain.FieldInvestmentThesis] = textx.Cut(InvestmentThesis(r), domain.MaxThesisChars)
	fields[domain.FieldDifferentiation] = textx.Cut(Differentiation(r), domain.MaxThesisChars)
	if meta.TherapeuticFocus != "" {
		fields[domain.FieldTherapeuticFocus] = textx.Cut(meta.TherapeuticFocus, domain.MaxFocusChars)
	}
	return fields
}

// reasoning prefers the reasoning span and falls back to the justification.
func reasoning(r domain.EvaluationResult, c domain.Category) string {
	cs, ok := r.CategoryScores[c]
	if !ok {
		return ""
	}
	if cs.Reasoning.IsFound() && cs.Reasoning.Value() != "" {
		return cs.Reasoning.Value()
	}
	return cs.Justification.Value()
}

// AnalysisSummary renders the long-form summary field.
func AnalysisSummary(r domain.EvaluationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EXECUTIVE SUMMARY:\nOverall score %.1f/10 (weighted).", r.OverallScore)

	b.WriteString("\n\nCATEGORY BREAKDOWN:")
	for _, c := range summaryOrder {
		fmt.Fprintf(&b, "\n• %s: %d/10", c.Label(), r.Score(c, scoring.Fallback))
		if cs, ok := r.CategoryScores[c]; ok && cs.Justification.Value() != "" {
			b.WriteString(" - " + firstSentence(cs.Justification.Value()))
		}
	}
	b.WriteString("\n" + weightingLine())

	writeBlock(&b, "KEY STRENGTHS", r.SWOT.Strengths)
	writeBlock(&b, "KEY RISKS", r.SWOT.Weaknesses)
	if len(r.Recommendations) > 0 {
		b.WriteString("\n\nRECOMMENDATIONS:")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "\n%d. %s", i+1, rec)
		}
	}
	return b.String()
}

func writeBlock(b *strings.Builder, title string, o domain.Outcome[string]) {
	if !o.IsFound() || o.Value() == "" {
		return
	}
	fmt.Fprintf(b, "\n\n%s:\n• %s", title, o.Value())
}

func weightingLine() string {
	w := scoring.Weights()
	parts := make([]string, 0, len(summaryOrder))
	for _, c := range summaryOrder {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", c.Label(), w[c]*100))
	}
	return "Weighting: " + strings.Join(parts, ", ")
}

// InvestmentThesis combines the SWOT strengths and opportunities.
func InvestmentThesis(r domain.EvaluationResult) string {
	var parts []string
	if s := r.SWOT.Strengths.Value(); s != "" {
		parts = append(parts, "Strengths: "+s)
	}
	if o := r.SWOT.Opportunities.Value(); o != "" {
		parts = append(parts, "Opportunities: "+o)
	}
	return strings.Join(parts, "\n")
}

// Differentiation is the competitive category's justification and reasoning.
func Differentiation(r domain.EvaluationResult) string {
	cs, ok := r.CategoryScores[domain.CategoryCompetitive]
	if !ok {
		return ""
	}
	var parts []string
	for _, s := range []string{cs.Justification.Value(), cs.Reasoning.Value()} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
