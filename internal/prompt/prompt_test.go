package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

func TestLoadRubric_Embedded(t *testing.T) {
	t.Parallel()
	r, err := LoadRubric("")
	require.NoError(t, err)
	require.Len(t, r.Categories, 5)
	assert.Equal(t, "TEAM", r.Categories[0].Name)
	assert.Len(t, r.Categories[1].Bands, 5)

	tpl := r.Template()
	for _, want := range []string{
		"PITCH DECK CONTENT:\n" + DigestPlaceholder,
		"EXTRACTED COMPANY INFO:\n" + HintsPlaceholder,
		"🔹 CATEGORY 1: TEAM (Score 1-10)",
		"🔹 CATEGORY 4: GO-TO-MARKET & TRACTION (Score 1-10)",
		"6-7: BASELINE for funded biotech",
		"📊 SWOT SUMMARY (1-2 sentences each):",
		"🎯 STRATEGIC RECOMMENDATIONS (3-5 actionable items):",
		"1. A justification referencing exact signals from the deck",
	} {
		assert.Contains(t, tpl, want)
	}
	assert.True(t, strings.HasSuffix(tpl, "Reference specific content from the pitch deck."))
}

func TestLoadRubric_FromFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "rubric.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preamble: Score it.\ncategories:\n  - name: TEAM\n"), 0o600))

	r, err := LoadRubric(path)
	require.NoError(t, err)
	assert.Contains(t, r.Template(), "🔹 CATEGORY 1: TEAM")
}

func TestLoadRubric_Invalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "preamble: [unterminated"},
		{"no preamble", "categories:\n  - name: TEAM\n"},
		{"no categories", "preamble: hi\n"},
		{"unnamed category", "preamble: hi\ncategories:\n  - number: 1\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
		_, err := LoadRubric(path)
		require.Error(t, err, tt.name)
		assert.ErrorIs(t, err, domain.ErrConfig, tt.name)
	}

	_, err := LoadRubric(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild_FillsPlaceholders(t *testing.T) {
	t.Parallel()
	hints := EntityHints{Company: "Protirna Therapeutics", Stage: "Series A"}
	out := Build("A {{digest}} B {{entity_hints}} C", "Slide 1: hello {{entity_hints}}", hints)

	assert.True(t, strings.HasPrefix(out, "A Slide 1: hello {{entity_hints}} B - Company: Protirna Therapeutics"))
	assert.True(t, strings.HasSuffix(out, "- Stage: Series A C"))
}

func TestBuild_AppendsMissingSections(t *testing.T) {
	t.Parallel()
	out := Build("Evaluate this deck.", "Slide 1: hello", EntityHints{})
	assert.Equal(t, "Evaluate this deck.\n\nPITCH DECK CONTENT:\nSlide 1: hello\n\nEXTRACTED COMPANY INFO:\n"+EntityHints{}.Render(), out)
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 0, EstimateTokens("abc"))
	assert.Equal(t, 7000, EstimateTokens(strings.Repeat("a", 28000)))

	assert.False(t, TooLarge(strings.Repeat("a", 28003), 7000))
	assert.True(t, TooLarge(strings.Repeat("a", 28004), 7000))
}

func TestBuild_DefaultRubricFitsCeiling(t *testing.T) {
	t.Parallel()
	r, err := LoadRubric("")
	require.NoError(t, err)
	digest := domain.Digest(strings.Repeat("x", 8000))
	out := Build(r.Template(), digest, EntityHints{})
	assert.False(t, TooLarge(out, 7000))
}

func TestVisionPrompt(t *testing.T) {
	t.Parallel()
	p := VisionPrompt(11, 20)
	assert.Contains(t, p, "SCIENTIFIC CONTENT:")
	assert.Contains(t, p, "This is slide 11 of 20.")
	assert.Contains(t, p, "Probably team slide.")

	assert.True(t, strings.HasSuffix(VisionPrompt(17, 20), defaultFocus))
	assert.NotContains(t, VisionPrompt(1, 0), "This is slide")
}
