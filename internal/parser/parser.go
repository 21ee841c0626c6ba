// Package parser extracts category scores, SWOT and recommendations from the
// free-text evaluation returned by the text model.
//
// The grammar is tolerant: every section is optional and a missing or
// malformed section yields a Missing outcome carrying its default.
package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/scoring"
)

// headerLead is the markup a section header may start with: indentation,
// markdown emphasis, quote or heading markers and the section emoji.
const headerLead = `^[ \t]*(?:[#*>_\-]|🔹|📊|🎯|[ \t])*`

var (
	boundaryRe = regexp.MustCompile(`(?im)^[ \t]*(?:🔹|📊|🎯)|` + headerLead + `(?:CATEGORY[ \t]*\d|SWOT\b|STRATEGIC RECOMMENDATIONS)`)
	categoryRe = regexp.MustCompile(`(?im)` + headerLead + `CATEGORY[ \t]*(\d+)[ \t]*[:.\-]?[ \t]*([^\n(]*)`)

	scoreColonRe = regexp.MustCompile(`(?i)\bScore\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(\S+)`)
	scoreOutOfRe = regexp.MustCompile(`(-?\d+)\s*/\s*10\b`)
	intRe        = regexp.MustCompile(`^-?\d+`)

	justificationRe = regexp.MustCompile(`(?i)Justification\s*(?:\*\*)?\s*:`)
	reasoningRe     = regexp.MustCompile(`(?i)Reasoning\s*(?:\*\*)?\s*:`)

	swotRe      = regexp.MustCompile(`(?im)` + headerLead + `SWOT\b(?:[ \t]+SUMMARY)?`)
	swotLabelRe = regexp.MustCompile(`(?i)\b(Strengths?|Weakness(?:es)?|Opportunit(?:y|ies)|Threats?)\s*(?:\*\*)?\s*:`)

	recommendationsRe = regexp.MustCompile(`(?im)` + headerLead + `STRATEGIC RECOMMENDATIONS`)
	closingRe         = regexp.MustCompile(`(?i)Focus on clarity`)
	bulletRe          = regexp.MustCompile(`^(?:[-•*]|\d+[.)])\s*`)
)

// categoryByNumber resolves headers whose name is not recognised.
var categoryByNumber = map[string]domain.Category{
	"1": domain.CategoryTeam,
	"2": domain.CategoryTechnology,
	"3": domain.CategoryMarket,
	"4": domain.CategoryGTMTraction,
	"5": domain.CategoryCompetitive,
}

// Parser is stateless apart from its logger and is safe for concurrent use.
type Parser struct {
	log      *slog.Logger
	fallback int
}

// New returns a Parser that logs validation warnings to log.
func New(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{log: log, fallback: scoring.Fallback}
}

// document is the response text plus the offsets of every section boundary.
type document struct {
	text   string
	bounds []int
}

func newDocument(text string) *document {
	d := &document{text: text}
	for _, loc := range boundaryRe.FindAllStringIndex(text, -1) {
		d.bounds = append(d.bounds, loc[0])
	}
	return d
}

// sectionEnd returns the first boundary strictly after from, or the end.
func (d *document) sectionEnd(from int) int {
	i := sort.SearchInts(d.bounds, from+1)
	if i < len(d.bounds) {
		return d.bounds[i]
	}
	return len(d.text)
}

type parseState struct {
	doc *document
	res *domain.EvaluationResult
}

func (s *parseState) warn(format string, args ...any) {
	s.res.Warnings = append(s.res.Warnings, fmt.Sprintf(format, args...))
}

// matcher is one optional section of the grammar.
type matcher func(p *Parser, s *parseState)

var grammar = []matcher{
	(*Parser).matchCategories,
	(*Parser).matchSWOT,
	(*Parser).matchRecommendations,
}

// Parse never fails: sections it cannot find keep their defaults and are
// reported in Warnings.
func (p *Parser) Parse(response string) domain.EvaluationResult {
	res := domain.EvaluationResult{
		CategoryScores: make(map[domain.Category]domain.CategoryScore, len(domain.AllCategories)),
		RawResponse:    response,
	}
	st := &parseState{doc: newDocument(response), res: &res}
	for _, m := range grammar {
		m(p, st)
	}
	res.OverallScore = scoring.Aggregate(res.CategoryScores)
	return res
}

// candidate is one parsed category section with the warnings it raised.
type candidate struct {
	score    domain.CategoryScore
	warnings []string
}

// matchCategories keeps the first section per category, unless a later
// duplicate carries a score and the first does not.
func (p *Parser) matchCategories(s *parseState) {
	text := s.doc.text
	chosen := make(map[domain.Category]candidate, len(domain.AllCategories))
	var order []domain.Category
	for _, m := range categoryRe.FindAllStringSubmatchIndex(text, -1) {
		number := text[m[2]:m[3]]
		name := text[m[4]:m[5]]
		cat, ok := classify(name, number)
		if !ok {
			s.warn("unrecognised category header %q", strings.TrimSpace(text[m[0]:m[1]]))
			continue
		}
		body := text[m[0]:s.doc.sectionEnd(m[0])]
		c := p.parseCategory(cat, body)
		prev, dup := chosen[cat]
		if !dup {
			chosen[cat] = c
			order = append(order, cat)
			continue
		}
		s.warn("%s: duplicate section ignored", cat.Label())
		if !prev.score.Score.IsFound() && c.score.Score.IsFound() {
			chosen[cat] = c
		}
	}
	for _, cat := range order {
		c := chosen[cat]
		s.res.Warnings = append(s.res.Warnings, c.warnings...)
		if c.score.OutOfRange {
			p.log.Warn("score out of range",
				slog.String("category", string(cat)),
				slog.Int("score", c.score.Score.Value()))
		}
		s.res.CategoryScores[cat] = c.score
	}

	for _, cat := range domain.AllCategories {
		if _, ok := s.res.CategoryScores[cat]; ok {
			continue
		}
		s.warn("%s: section missing, using fallback score %d", cat.Label(), p.fallback)
		s.res.CategoryScores[cat] = domain.CategoryScore{
			Category:      cat,
			Score:         domain.Missing(p.fallback),
			Justification: domain.Missing(""),
			Reasoning:     domain.Missing(""),
		}
	}
}

// classify maps a header name to its category. Names are checked before
// numbers; GO-TO-MARKET is tested ahead of MARKET.
func classify(name, number string) (domain.Category, bool) {
	n := strings.ToUpper(name)
	switch {
	case strings.Contains(n, "COMPETITIVE") || strings.Contains(n, "DEFENSIB"):
		return domain.CategoryCompetitive, true
	case strings.Contains(n, "GO-TO-MARKET") || strings.Contains(n, "GTM") || strings.Contains(n, "TRACTION"):
		return domain.CategoryGTMTraction, true
	case strings.Contains(n, "TECHNOLOGY") || strings.Contains(n, "PRODUCT"):
		return domain.CategoryTechnology, true
	case strings.Contains(n, "TEAM"):
		return domain.CategoryTeam, true
	case strings.Contains(n, "MARKET"):
		return domain.CategoryMarket, true
	}
	cat, ok := categoryByNumber[number]
	return cat, ok
}

func (p *Parser) parseCategory(cat domain.Category, body string) candidate {
	c := candidate{score: domain.CategoryScore{
		Category:      cat,
		Justification: span(body, justificationRe, reasoningRe),
		Reasoning:     span(body, reasoningRe, justificationRe),
	}}
	warn := func(format string, args ...any) {
		c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
	}

	score, ok, raw := findScore(body)
	switch {
	case !ok && raw == "":
		warn("%s: score not found, using fallback %d", cat.Label(), p.fallback)
		c.score.Score = domain.Missing(p.fallback)
	case !ok:
		warn("%s: malformed score %q, using fallback %d", cat.Label(), raw, p.fallback)
		c.score.Score = domain.Missing(p.fallback)
	default:
		c.score.Score = domain.Found(score)
		if score < scoring.MinScore || score > scoring.MaxScore {
			c.score.OutOfRange = true
			warn("%s: score %d outside %d-%d", cat.Label(), score, scoring.MinScore, scoring.MaxScore)
		}
	}
	return c
}

// findScore looks for "Score: n" first and then "n/10". raw is the token
// that followed "Score:" when it was not an integer.
func findScore(body string) (score int, ok bool, raw string) {
	if m := scoreColonRe.FindStringSubmatch(body); m != nil {
		tok := strings.Trim(m[1], "*()[]")
		if digits := intRe.FindString(tok); digits != "" {
			if v, err := strconv.Atoi(digits); err == nil {
				return v, true, ""
			}
		}
		raw = tok
	}
	if m := scoreOutOfRe.FindStringSubmatch(body); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v, true, ""
		}
	}
	return 0, false, raw
}

// span returns the text after label up to stop or the end of body.
func span(body string, label, stop *regexp.Regexp) domain.Outcome[string] {
	loc := label.FindStringIndex(body)
	if loc == nil {
		return domain.Missing("")
	}
	rest := body[loc[1]:]
	if end := stop.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	v := cleanSpan(rest)
	if v == "" {
		return domain.Missing("")
	}
	return domain.Found(v)
}

func cleanSpan(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -•*[]")
}

func (p *Parser) matchSWOT(s *parseState) {
	missing := domain.Missing("")
	s.res.SWOT = domain.SWOT{Strengths: missing, Weaknesses: missing, Opportunities: missing, Threats: missing}

	loc := swotRe.FindStringIndex(s.doc.text)
	if loc == nil {
		s.warn("SWOT: section missing")
		return
	}
	body := s.doc.text[loc[1]:s.doc.sectionEnd(loc[0])]
	labels := swotLabelRe.FindAllStringSubmatchIndex(body, -1)
	if len(labels) == 0 {
		s.warn("SWOT: section empty")
		return
	}
	for i, m := range labels {
		end := len(body)
		if i+1 < len(labels) {
			end = labels[i+1][0]
		}
		v := cleanSpan(body[m[1]:end])
		if v == "" {
			continue
		}
		label := strings.ToLower(body[m[2]:m[3]])
		var field *domain.Outcome[string]
		switch {
		case strings.HasPrefix(label, "strength"):
			field = &s.res.SWOT.Strengths
		case strings.HasPrefix(label, "weakness"):
			field = &s.res.SWOT.Weaknesses
		case strings.HasPrefix(label, "opportunit"):
			field = &s.res.SWOT.Opportunities
		default:
			field = &s.res.SWOT.Threats
		}
		if !field.IsFound() {
			*field = domain.Found(v)
		}
	}
}

func (p *Parser) matchRecommendations(s *parseState) {
	loc := recommendationsRe.FindStringIndex(s.doc.text)
	if loc == nil {
		s.warn("recommendations: section missing")
		return
	}
	body := s.doc.text[loc[1]:s.doc.sectionEnd(loc[0])]
	if c := closingRe.FindStringIndex(body); c != nil {
		body = body[:c[0]]
	}

	lines := strings.Split(body, "\n")
	// the remainder of the header line, e.g. "(3-5 actionable items):"
	lines = lines[1:]
	var items []string
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		if bulletRe.MatchString(line) {
			if item := strings.TrimSpace(bulletRe.ReplaceAllString(line, "")); item != "" {
				items = append(items, item)
			}
			continue
		}
		if len(items) == 0 {
			items = append(items, line)
			continue
		}
		items[len(items)-1] += " " + line
	}
	if len(items) == 0 {
		s.warn("recommendations: section empty")
	}
	s.res.Recommendations = items
}
