package summarizer

import (
	"regexp"
	"strings"
	"unicode"
)

// domainTerms is the fixed scientific, technology, business and regulatory
// vocabulary. The first scoringTerms entries also weight fallback sentences.
var domainTerms = []string{
	// science
	"genome", "genomic", "epigenetic", "transcription", "translation", "protein",
	"peptide", "antigen", "antibody", "immunotherapy", "cancer", "tumor", "oncology",
	"therapeutic", "drug", "clinical", "preclinical", "trial", "study", "efficacy",
	"safety", "biomarker", "assay", "validation", "discovery", "development",
	// technology
	"platform", "algorithm", "AI-powered", "machine learning", "high-throughput",
	"multi-omics", "scalable", "systematic", "proprietary", "novel", "precision",
	// business and regulatory
	"market", "TAM", "SAM", "SOM", "revenue", "funding", "investment", "partnership",
	"collaboration", "license", "patent", "IP", "regulatory", "FDA", "approval",
	// modalities and targets
	"mRNA", "DNA", "RNA", "CRISPR", "gene therapy", "cell therapy", "immunooncology",
	"checkpoint inhibitor", "CAR-T", "TCR", "neoantigen", "tumor antigen",
	"MHC", "HLA", "epitope", "transposable elements", "dark genome",
}

const scoringTerms = 20

// keyIndicators mark slides with decision-relevant content.
var keyIndicators = []string{
	"technology", "platform", "clinical", "market", "funding", "partnership",
	"AI-powered", "precision", "therapeutic", "patent", "IP", "validation",
}

// criticalTerms mark slides that must survive digest reduction.
var criticalTerms = []string{
	"dark genome", "transposable elements", "epigenetic", "genomic instability",
	"AI-powered", "multi-omics", "precision immunotherapy", "dark antigens",
	"immunogenic", "tumor-specific", "clinical trial", "Phase I", "Phase II",
	"FDA approval", "IP", "patent", "proprietary", "breakthrough", "novel",
	"Series A", "Series B", "funding", "million", "billion", "partnership",
}

// boilerplate is stripped from vision output before extraction.
var boilerplate = regexp.MustCompile(`This slide shows|The slide displays|This image contains`)

// term matches one vocabulary entry. Short all-caps acronyms match
// case-sensitively on word boundaries so that "IP" does not hit "ship".
type term struct {
	text    string
	context *regexp.Regexp
}

func newTerm(t string) term {
	q := regexp.QuoteMeta(t)
	if isAcronym(t) {
		return term{text: t, context: regexp.MustCompile(`[^.]*\b` + q + `\b[^.]*`)}
	}
	return term{text: t, context: regexp.MustCompile(`(?i)[^.]*` + q + `[^.]*`)}
}

func isAcronym(s string) bool {
	if len(s) > 5 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// in reports whether the term occurs in s.
func (t term) in(s string) bool { return t.context.MatchString(s) }

// fragment returns the sentence fragment around the first occurrence.
func (t term) fragment(s string) string {
	return strings.TrimSpace(t.context.FindString(s))
}

type termSet []term

func newTermSet(words []string) termSet {
	out := make(termSet, 0, len(words))
	for _, w := range words {
		out = append(out, newTerm(w))
	}
	return out
}

func (ts termSet) any(s string) bool {
	for _, t := range ts {
		if t.in(s) {
			return true
		}
	}
	return false
}

var (
	vocabulary    = newTermSet(domainTerms)
	keyTerms      = newTermSet(keyIndicators)
	criticalSet   = newTermSet(criticalTerms)
	scoringSubset = vocabulary[:scoringTerms]
)

var (
	moneyPattern   = regexp.MustCompile(`(?i)\$[\d,]+[KMB]?(?:\s*(?:million|billion|funding|valuation|revenue|ARR))?`)
	percentPattern = regexp.MustCompile(`(?i)\d+%(?:\s*(?:of|increase|decrease|improvement|efficacy|success|growth))?`)
	countPattern   = regexp.MustCompile(`(?i)\d+(?:,\d+)*\s*(?:patients|subjects|trials|studies|customers|users|employees|genes|proteins|compounds)`)

	companyPattern = regexp.MustCompile(`\b[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*){0,3}\s+(?:Therapeutics|Pharmaceuticals?|Biotech|Inc|Ltd|Corp|GmbH)\b`)
	productPattern = regexp.MustCompile(`\b(?:[A-Z][a-z]+(?:-[A-Z][a-z]+)+|[A-Z]{2,5}-\d{2,5}|[A-Z][a-z]+\s+(?:therapy|treatment|drug))\b`)

	signalPattern = regexp.MustCompile(`\d+%|\$[\d,]+|Phase\s+[I1-3]`)
)

// commonWords are capitalized words that are never product names.
var commonWords = map[string]struct{}{
	"The": {}, "This": {}, "These": {}, "However": {}, "Cancer": {}, "Genome": {}, "Dark": {},
}
