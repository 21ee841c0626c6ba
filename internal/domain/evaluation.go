package domain

// Category is one of the five fixed evaluation dimensions.
type Category string

const (
	CategoryTeam        Category = "team"
	CategoryTechnology  Category = "technology"
	CategoryMarket      Category = "market"
	CategoryGTMTraction Category = "gtm_traction"
	CategoryCompetitive Category = "competitive"
)

// AllCategories lists categories in rubric order.
var AllCategories = []Category{
	CategoryTeam,
	CategoryTechnology,
	CategoryMarket,
	CategoryGTMTraction,
	CategoryCompetitive,
}

// Label returns the human readable name used in summaries.
func (c Category) Label() string {
	switch c {
	case CategoryTeam:
		return "Team"
	case CategoryTechnology:
		return "Technology"
	case CategoryMarket:
		return "Market"
	case CategoryGTMTraction:
		return "GTM/Traction"
	case CategoryCompetitive:
		return "Competitive"
	default:
		return string(c)
	}
}

// Outcome is the result of extracting one field from model output:
// either Found with the extracted value or Missing with a default.
type Outcome[T any] struct {
	value T
	found bool
}

// Found wraps an extracted value.
func Found[T any](v T) Outcome[T] { return Outcome[T]{value: v, found: true} }

// Missing wraps the default used when extraction failed.
func Missing[T any](def T) Outcome[T] { return Outcome[T]{value: def} }

// Value returns the extracted value or the default.
func (o Outcome[T]) Value() T { return o.value }

// IsFound reports whether the value came from the response.
func (o Outcome[T]) IsFound() bool { return o.found }

// CategoryScore holds the parsed score and prose of one category.
// OutOfRange is set when the literal score lies outside 1..10; the
// value is kept as written.
type CategoryScore struct {
	Category      Category
	Score         Outcome[int]
	Justification Outcome[string]
	Reasoning     Outcome[string]
	OutOfRange    bool
}

// SWOT is the qualitative block attached to an evaluation.
type SWOT struct {
	Strengths     Outcome[string]
	Weaknesses    Outcome[string]
	Opportunities Outcome[string]
	Threats       Outcome[string]
}

// EvaluationResult is created once per submission and never mutated.
type EvaluationResult struct {
	CategoryScores  map[Category]CategoryScore
	OverallScore    float64
	SWOT            SWOT
	Recommendations []string
	RawResponse     string
	// Warnings collects non-fatal parse findings (missing sections,
	// malformed or out-of-range scores).
	Warnings []string
}

// Score returns the numeric score of a category, or def when the category
// is absent from the result.
func (r EvaluationResult) Score(c Category, def int) int {
	cs, ok := r.CategoryScores[c]
	if !ok {
		return def
	}
	return cs.Score.Value()
}
