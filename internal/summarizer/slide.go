package summarizer

import (
	"sort"
	"strings"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/pkg/textx"
)

const (
	maxTermFacts   = 3
	maxMetricFacts = 2
	maxFallback    = 2

	minFragment = 11
	maxFragment = 149

	minSentence = 21
	maxSentence = 199
)

// SummarizeSlide reduces one slide's extracted text to at most MaxFacts
// facts joined by "; " and capped at SlideChars.
func (s *Summarizer) SummarizeSlide(text string, slideNumber int) string {
	clean := cleanText(text)
	if clean == "" {
		return ""
	}

	var facts []string
	facts = appendUnique(facts, termFacts(clean)...)
	facts = appendUnique(facts, metricFacts(clean)...)
	facts = appendUnique(facts, entityFacts(clean)...)
	facts = appendUnique(facts, positionFacts(clean, slideNumber)...)
	if len(facts) == 0 {
		facts = keySentences(clean)
	}
	if len(facts) == 0 {
		// titles and unpunctuated runs
		facts = []string{clean}
	}
	if len(facts) > s.opts.MaxFacts {
		facts = facts[:s.opts.MaxFacts]
	}
	return textx.Truncate(strings.Join(facts, "; "), s.opts.SlideChars)
}

func cleanText(text string) string {
	text = textx.CollapseSpaces(text)
	text = boilerplate.ReplaceAllString(text, "")
	return textx.CollapseSpaces(text)
}

func termFacts(text string) []string {
	var out []string
	for _, t := range vocabulary {
		if len(out) == maxTermFacts {
			break
		}
		frag := t.fragment(text)
		if len(frag) < minFragment || len(frag) > maxFragment {
			continue
		}
		out = appendUnique(out, frag)
	}
	return out
}

func metricFacts(text string) []string {
	var out []string
	for _, m := range moneyPattern.FindAllString(text, 2) {
		out = append(out, "Financial: "+strings.TrimSpace(m))
	}
	for _, m := range percentPattern.FindAllString(text, 2) {
		out = append(out, "Metric: "+strings.TrimSpace(m))
	}
	for _, m := range countPattern.FindAllString(text, 1) {
		out = append(out, "Scale: "+strings.TrimSpace(m))
	}
	if len(out) > maxMetricFacts {
		out = out[:maxMetricFacts]
	}
	return out
}

func entityFacts(text string) []string {
	var out []string
	company := strings.TrimSpace(companyPattern.FindString(text))
	if company != "" {
		out = append(out, "Company: "+company)
	}
	for _, m := range productPattern.FindAllString(text, -1) {
		if _, common := commonWords[m]; common || len(m) <= 3 || strings.Contains(company, m) {
			continue
		}
		out = append(out, "Product: "+m)
		break
	}
	return out
}

func positionFacts(text string, slideNumber int) []string {
	lower := strings.ToLower(text)
	var out []string
	switch {
	case slideNumber <= 3:
		if strings.Contains(lower, "precision") && strings.Contains(lower, "immunotherapy") {
			out = append(out, "Focus: Precision immunotherapy")
		}
		if strings.Contains(lower, "dark genome") {
			out = append(out, "Technology: Dark genome targeting")
		}
	case slideNumber <= 8:
		if strings.Contains(text, "AI-powered") || strings.Contains(lower, "algorithm") {
			out = append(out, "Tech: AI-powered platform")
		}
		if strings.Contains(lower, "high-throughput") {
			out = append(out, "Capability: High-throughput validation")
		}
	case slideNumber >= 15:
		if strings.Contains(text, "CEO") || strings.Contains(lower, "founder") {
			out = append(out, "Leadership: C-suite identified")
		}
		if strings.Contains(text, "Series") || strings.Contains(lower, "funding") {
			out = append(out, "Status: Funding information")
		}
	}
	return out
}

// keySentences ranks sentences by keyword density and returns the best
// ones. Ties keep their order in the slide.
func keySentences(text string) []string {
	type scored struct {
		score    int
		sentence string
	}
	var candidates []scored
	for _, raw := range strings.Split(text, ".") {
		sentence := strings.TrimSpace(raw)
		if len(sentence) < minSentence || len(sentence) > maxSentence {
			continue
		}
		score := 0
		lower := strings.ToLower(sentence)
		for _, t := range scoringSubset {
			if strings.Contains(lower, t.text) {
				score++
			}
		}
		if signalPattern.MatchString(sentence) {
			score += 2
		}
		candidates = append(candidates, scored{score: score, sentence: sentence})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]string, 0, maxFallback)
	for i := 0; i < len(candidates) && i < maxFallback; i++ {
		out = append(out, candidates[i].sentence)
	}
	return out
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, d := range dst {
			if d == it {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, it)
		}
	}
	return dst
}
