package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant SubmissionStatus
		expected string
	}{
		{"StatusPending", StatusPending, "Pending"},
		{"StatusProcessing", StatusProcessing, "Processing"},
		{"StatusComplete", StatusComplete, "Complete"},
		{"StatusError", StatusError, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.constant))
		})
	}
}

func TestErrorConstants_Wrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrAttachmentMissing", ErrAttachmentMissing},
		{"ErrRenderFailure", ErrRenderFailure},
		{"ErrModelCall", ErrModelCall},
		{"ErrPromptTooLarge", ErrPromptTooLarge},
		{"ErrParseAmbiguity", ErrParseAmbiguity},
		{"ErrAttachmentTooLarge", ErrAttachmentTooLarge},
		{"ErrConfig", ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op=test: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.err))
			assert.Contains(t, wrapped.Error(), tt.err.Error())
		})
	}
}

func TestOutcome(t *testing.T) {
	f := Found(7)
	assert.True(t, f.IsFound())
	assert.Equal(t, 7, f.Value())

	m := Missing(5)
	assert.False(t, m.IsFound())
	assert.Equal(t, 5, m.Value())

	var zero Outcome[string]
	assert.False(t, zero.IsFound())
	assert.Equal(t, "", zero.Value())
}

func TestCategory_Label(t *testing.T) {
	assert.Len(t, AllCategories, 5)
	assert.Equal(t, "GTM/Traction", CategoryGTMTraction.Label())
	assert.Equal(t, "Team", CategoryTeam.Label())
	assert.Equal(t, "other", Category("other").Label())
}

func TestEvaluationResult_Score(t *testing.T) {
	r := EvaluationResult{CategoryScores: map[Category]CategoryScore{
		CategoryTeam: {Category: CategoryTeam, Score: Found(8)},
	}}
	assert.Equal(t, 8, r.Score(CategoryTeam, 5))
	assert.Equal(t, 5, r.Score(CategoryMarket, 5))
}
