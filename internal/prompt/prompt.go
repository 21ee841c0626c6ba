// Package prompt renders the evaluation prompt sent to the text model and the
// per-slide prompt sent to the vision model.
package prompt

import (
	"strings"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Build fills the digest and entity-hint placeholders of rubricTemplate.
// A placeholder missing from the template has its section appended.
func Build(rubricTemplate string, digest domain.Digest, hints EntityHints) string {
	out := rubricTemplate
	if !strings.Contains(out, DigestPlaceholder) {
		out += "\n\nPITCH DECK CONTENT:\n" + DigestPlaceholder
	}
	if !strings.Contains(out, HintsPlaceholder) {
		out += "\n\nEXTRACTED COMPANY INFO:\n" + HintsPlaceholder
	}
	// single pass, so placeholder text inside the digest stays literal
	return strings.NewReplacer(
		DigestPlaceholder, string(digest),
		HintsPlaceholder, hints.Render(),
	).Replace(out)
}

// EstimateTokens approximates the token count as one token per four bytes.
func EstimateTokens(prompt string) int {
	return len(prompt) / 4
}

// TooLarge reports whether prompt exceeds the token ceiling.
func TooLarge(prompt string, ceiling int) bool {
	return EstimateTokens(prompt) > ceiling
}
