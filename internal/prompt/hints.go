package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/pkg/textx"
)

// HintChars caps every free-text hint field.
const HintChars = 500

const renderedHintChars = 100

const unknown = "Unknown"

// EntityHints are coarse facts pulled from the raw slide text before
// summarization, given to the model alongside the digest.
type EntityHints struct {
	Company          string
	Modalities       []string
	Mechanism        string
	Market           string
	TherapeuticFocus string
	LeadershipSlides int
	Stage            string
}

var (
	orgSuffixes       = []string{"therapeutics", "inc.", "ltd.", "corp."}
	orgKeywords       = []string{"therapeutics", "inc", "ltd", "corp"}
	modalities        = []string{"small molecule", "antibody", "mrna", "protein", "gene therapy", "cell therapy", "oligonucleotide"}
	mechanismKeywords = []string{"mechanism", "pathway", "target", "binding"}
	teamKeywords      = []string{"team", "ceo", "cto", "founder", "advisor"}
	fundingKeywords   = []string{"funding", "investment", "series", "seed", "million", "valuation"}
	focusKeywords     = []string{"therapeutic", "disease", "indication", "treatment"}

	marketRe = regexp.MustCompile(`(?i)market|billion|million|\bTAM\b|\bSAM\b`)
	stageRe  = regexp.MustCompile(`(?i)\b(pre-seed|seed|series [a-e]|ipo)\b`)
)

// leadershipFrom is the first slide where team slides are expected.
const leadershipFrom = 10

// ExtractEntityHints scans successful extractions in slide order.
func ExtractEntityHints(extractions []domain.SlideExtraction) EntityHints {
	var (
		h                        EntityHints
		mechanism, market, focus []string
	)
	for _, e := range extractions {
		if e.IsError {
			continue
		}
		text := e.Text
		lower := strings.ToLower(text)

		if h.Company == "" && e.SlideNumber <= 2 && containsAny(lower, orgKeywords) {
			h.Company = companyLine(text)
		}
		for _, m := range modalities {
			if strings.Contains(lower, m) && !contains(h.Modalities, m) {
				h.Modalities = append(h.Modalities, m)
			}
		}
		if containsAny(lower, mechanismKeywords) {
			mechanism = append(mechanism, text)
		}
		if marketRe.MatchString(text) {
			market = append(market, text)
		}
		if e.SlideNumber >= leadershipFrom && containsAny(lower, teamKeywords) {
			h.LeadershipSlides++
		}
		if h.Stage == "" && containsAny(lower, fundingKeywords) {
			if m := stageRe.FindString(text); m != "" {
				h.Stage = normalizeStage(m)
			}
		}
		if containsAny(lower, focusKeywords) {
			focus = append(focus, text)
		}
	}
	h.Mechanism = capField(mechanism)
	h.Market = capField(market)
	h.TherapeuticFocus = capField(focus)
	return h
}

// Render formats the hints for the EXTRACTED COMPANY INFO block.
func (h EntityHints) Render() string {
	modality := unknown
	if len(h.Modalities) > 0 {
		modality = strings.Join(h.Modalities, ", ")
	}
	return strings.Join([]string{
		"- Company: " + orUnknown(h.Company),
		fmt.Sprintf("- Technology: %s targeting %s", modality, orUnknown(textx.Cut(h.Mechanism, renderedHintChars))),
		"- Market: " + orUnknown(textx.Cut(h.Market, renderedHintChars)),
		fmt.Sprintf("- Team: %d leadership slides identified", h.LeadershipSlides),
		"- Stage: " + orUnknown(h.Stage),
	}, "\n")
}

func companyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if containsAny(strings.ToLower(line), orgSuffixes) {
			return textx.Cut(strings.TrimSpace(line), HintChars)
		}
	}
	return ""
}

func normalizeStage(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "series "):
		return "Series " + strings.ToUpper(s[len("series "):])
	case s == "ipo":
		return "IPO"
	default:
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

func capField(parts []string) string {
	return textx.Cut(textx.CollapseSpaces(strings.Join(parts, " ")), HintChars)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
