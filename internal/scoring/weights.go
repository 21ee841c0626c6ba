// Package scoring turns per-category scores into the weighted overall score.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Fallback is the score used for a category whose score is missing.
const Fallback = 5

// MinScore and MaxScore bound a valid category score.
const (
	MinScore = 1
	MaxScore = 10
)

// weights are stored in hundredths so the overall score is exact.
var weights = map[domain.Category]int{
	domain.CategoryTechnology:  30,
	domain.CategoryTeam:        25,
	domain.CategoryMarket:      25,
	domain.CategoryGTMTraction: 10,
	domain.CategoryCompetitive: 10,
}

// Weights returns the category weights as fractions summing to 1.
func Weights() map[domain.Category]float64 {
	out := make(map[domain.Category]float64, len(weights))
	for c, w := range weights {
		out[c] = float64(w) / 100
	}
	return out
}

// Aggregate computes the weighted overall score rounded half-up to one
// decimal. A category with no score contributes Fallback. Out-of-range
// scores are weighted as given, so the sum is kept in a big.Int.
func Aggregate(scores map[domain.Category]domain.CategoryScore) float64 {
	hundredths := new(big.Int)
	term := new(big.Int)
	for _, c := range domain.AllCategories {
		s := Fallback
		if cs, ok := scores[c]; ok {
			s = cs.Score.Value()
		}
		term.SetInt64(int64(s))
		hundredths.Add(hundredths, term.Mul(term, big.NewInt(int64(weights[c]))))
	}
	// Div rounds toward negative infinity for a positive divisor
	tenths := new(big.Int).Div(hundredths.Add(hundredths, big.NewInt(5)), big.NewInt(10))
	f, _ := new(big.Float).SetInt(tenths).Float64()
	return f / 10
}

// ValidateScores lists categories whose score lies outside MinScore..MaxScore.
func ValidateScores(scores map[domain.Category]domain.CategoryScore) []string {
	var issues []string
	for _, c := range domain.AllCategories {
		cs, ok := scores[c]
		if !ok || !cs.Score.IsFound() {
			continue
		}
		if v := cs.Score.Value(); v < MinScore || v > MaxScore {
			issues = append(issues, fmt.Sprintf("%s score %d outside %d-%d", c.Label(), v, MinScore, MaxScore))
		}
	}
	return issues
}

// LogScoringDetails emits the per-category contribution at debug level.
func LogScoringDetails(ctx context.Context, log *slog.Logger, scores map[domain.Category]domain.CategoryScore, overall float64) {
	if log == nil {
		log = slog.Default()
	}
	attrs := make([]any, 0, len(domain.AllCategories)+1)
	for _, c := range domain.AllCategories {
		s := Fallback
		found := false
		if cs, ok := scores[c]; ok {
			s, found = cs.Score.Value(), cs.Score.IsFound()
		}
		attrs = append(attrs, slog.Group(string(c),
			slog.Int("score", s),
			slog.Bool("found", found),
			slog.Float64("weight", float64(weights[c])/100),
		))
	}
	attrs = append(attrs, slog.Float64("overall", overall))
	log.DebugContext(ctx, "scoring details", attrs...)
}
