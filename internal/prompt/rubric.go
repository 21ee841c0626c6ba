package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Placeholders filled by Build.
const (
	DigestPlaceholder = "{{digest}}"
	HintsPlaceholder  = "{{entity_hints}}"
)

//go:embed rubric.yaml
var defaultRubric []byte

// Band is one score range of a category rubric.
type Band struct {
	Range string `yaml:"range"`
	Text  string `yaml:"text"`
}

// CategoryRubric describes how one category is scored.
type CategoryRubric struct {
	Number        int    `yaml:"number"`
	Name          string `yaml:"name"`
	Bands         []Band `yaml:"bands"`
	Justification string `yaml:"justification"`
	Reasoning     string `yaml:"reasoning"`
}

// Rubric is the YAML document the evaluation prompt is rendered from.
type Rubric struct {
	Preamble     string           `yaml:"preamble"`
	Calibration  string           `yaml:"calibration"`
	Instructions []string         `yaml:"instructions"`
	Categories   []CategoryRubric `yaml:"categories"`
	SWOT         struct {
		Strengths     string `yaml:"strengths"`
		Weaknesses    string `yaml:"weaknesses"`
		Opportunities string `yaml:"opportunities"`
		Threats       string `yaml:"threats"`
	} `yaml:"swot"`
	Recommendations string `yaml:"recommendations"`
	Closing         string `yaml:"closing"`
}

// LoadRubric reads the rubric at path, or the embedded one when path is empty.
func LoadRubric(path string) (Rubric, error) {
	raw := defaultRubric
	if path != "" {
		// #nosec G304 -- operator supplied rubric path
		b, err := os.ReadFile(path)
		if err != nil {
			return Rubric{}, fmt.Errorf("op=prompt.LoadRubric: %w", err)
		}
		raw = b
	}
	return parseRubric(raw)
}

func parseRubric(raw []byte) (Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Rubric{}, fmt.Errorf("op=prompt.LoadRubric: %w: %v", domain.ErrConfig, err)
	}
	if strings.TrimSpace(r.Preamble) == "" {
		return Rubric{}, fmt.Errorf("op=prompt.LoadRubric: %w: preamble is empty", domain.ErrConfig)
	}
	if len(r.Categories) == 0 {
		return Rubric{}, fmt.Errorf("op=prompt.LoadRubric: %w: no categories", domain.ErrConfig)
	}
	for i, c := range r.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return Rubric{}, fmt.Errorf("op=prompt.LoadRubric: %w: category %d has no name", domain.ErrConfig, i+1)
		}
	}
	return r, nil
}

// Template renders the rubric into a prompt template carrying the digest and
// entity-hint placeholders.
func (r Rubric) Template() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Preamble))
	b.WriteString("\n\nPITCH DECK CONTENT:\n" + DigestPlaceholder)
	b.WriteString("\n\nEXTRACTED COMPANY INFO:\n" + HintsPlaceholder + "\n\n")

	if r.Calibration != "" {
		b.WriteString(strings.TrimSpace(r.Calibration) + "\n\n")
	}
	if len(r.Instructions) > 0 {
		b.WriteString("For each category, provide:\n")
		for i, in := range r.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, in)
		}
		b.WriteString("\n")
	}

	for i, c := range r.Categories {
		n := c.Number
		if n == 0 {
			n = i + 1
		}
		fmt.Fprintf(&b, "🔹 CATEGORY %d: %s (Score 1-10) - FUNDED COMPANY CALIBRATION\n", n, c.Name)
		if len(c.Bands) > 0 {
			b.WriteString("SCORING RUBRIC:\n")
			for _, band := range c.Bands {
				fmt.Fprintf(&b, "%s: %s\n", band.Range, band.Text)
			}
		}
		fmt.Fprintf(&b, "\nJustification: %s\nReasoning: %s\n\n", c.Justification, c.Reasoning)
	}

	b.WriteString("📊 SWOT SUMMARY (1-2 sentences each):\n")
	fmt.Fprintf(&b, "Strengths: %s\nWeaknesses: %s\nOpportunities: %s\nThreats: %s\n\n",
		r.SWOT.Strengths, r.SWOT.Weaknesses, r.SWOT.Opportunities, r.SWOT.Threats)

	b.WriteString("🎯 STRATEGIC RECOMMENDATIONS (3-5 actionable items):\n")
	b.WriteString(r.Recommendations + "\n\n")
	b.WriteString(strings.TrimSpace(r.Closing))
	return b.String()
}
