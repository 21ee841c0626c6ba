package scoring

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

func found(scores map[domain.Category]int) map[domain.Category]domain.CategoryScore {
	out := make(map[domain.Category]domain.CategoryScore, len(scores))
	for c, s := range scores {
		out[c] = domain.CategoryScore{Category: c, Score: domain.Found(s)}
	}
	return out
}

func TestWeights_SumToOne(t *testing.T) {
	t.Parallel()
	total := 0.0
	for _, w := range Weights() {
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 0.30, Weights()[domain.CategoryTechnology], 1e-9)
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		scores map[domain.Category]int
		want   float64
	}{
		{"all equal", map[domain.Category]int{
			domain.CategoryTeam: 7, domain.CategoryTechnology: 7, domain.CategoryMarket: 7,
			domain.CategoryGTMTraction: 7, domain.CategoryCompetitive: 7,
		}, 7.0},
		// 3*.25 + 7*.30 + 2*.25 + 1*.10 + 3*.10 = 3.75
		{"mixed low scores", map[domain.Category]int{
			domain.CategoryTeam: 3, domain.CategoryTechnology: 7, domain.CategoryMarket: 2,
			domain.CategoryGTMTraction: 1, domain.CategoryCompetitive: 3,
		}, 3.8},
		// 4*.25 + 5*.30 + 3*.25 + 2*.10 + 2*.10 = 3.65
		{"half rounds up", map[domain.Category]int{
			domain.CategoryTeam: 4, domain.CategoryTechnology: 5, domain.CategoryMarket: 3,
			domain.CategoryGTMTraction: 2, domain.CategoryCompetitive: 2,
		}, 3.7},
		{"top marks", map[domain.Category]int{
			domain.CategoryTeam: 10, domain.CategoryTechnology: 10, domain.CategoryMarket: 10,
			domain.CategoryGTMTraction: 10, domain.CategoryCompetitive: 10,
		}, 10.0},
		// market falls back to 5: 8*.25 + 8*.30 + 5*.25 + 8*.10 + 8*.10 = 7.25
		{"missing market", map[domain.Category]int{
			domain.CategoryTeam: 8, domain.CategoryTechnology: 8,
			domain.CategoryGTMTraction: 8, domain.CategoryCompetitive: 8,
		}, 7.3},
		{"nothing parsed", map[domain.Category]int{}, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Aggregate(found(tt.scores)))
		})
	}
}

func TestAggregate_MissingOutcomeUsesDefault(t *testing.T) {
	t.Parallel()
	scores := found(map[domain.Category]int{
		domain.CategoryTeam: 6, domain.CategoryTechnology: 6,
		domain.CategoryGTMTraction: 6, domain.CategoryCompetitive: 6,
	})
	scores[domain.CategoryMarket] = domain.CategoryScore{Category: domain.CategoryMarket, Score: domain.Missing(Fallback)}
	// 6*.75 + 5*.25 = 5.75
	assert.Equal(t, 5.8, Aggregate(scores))
}

func TestAggregate_OutOfRangeKeptLiterally(t *testing.T) {
	t.Parallel()
	scores := found(map[domain.Category]int{
		domain.CategoryTeam: 12, domain.CategoryTechnology: 5, domain.CategoryMarket: 5,
		domain.CategoryGTMTraction: 5, domain.CategoryCompetitive: 5,
	})
	// 12*.25 + 5*.75 = 6.75
	assert.Equal(t, 6.8, Aggregate(scores))
}

func TestAggregate_HugeScoresDoNotOverflow(t *testing.T) {
	t.Parallel()
	scores := found(map[domain.Category]int{
		domain.CategoryTeam: 9000000000000000000, domain.CategoryTechnology: 9000000000000000000,
		domain.CategoryMarket: 5, domain.CategoryGTMTraction: 5, domain.CategoryCompetitive: 5,
	})
	got := Aggregate(scores)
	assert.Greater(t, got, 0.0)
	assert.InEpsilon(t, 0.55*9e18, got, 1e-9)

	scores[domain.CategoryTeam] = domain.CategoryScore{Category: domain.CategoryTeam, Score: domain.Found(-9000000000000000000)}
	scores[domain.CategoryTechnology] = domain.CategoryScore{Category: domain.CategoryTechnology, Score: domain.Found(-9000000000000000000)}
	got = Aggregate(scores)
	assert.Less(t, got, 0.0)
	assert.InEpsilon(t, -0.55*9e18, got, 1e-9)
}

func TestValidateScores(t *testing.T) {
	t.Parallel()
	scores := found(map[domain.Category]int{
		domain.CategoryTeam: 0, domain.CategoryTechnology: 11, domain.CategoryMarket: 5,
	})
	scores[domain.CategoryGTMTraction] = domain.CategoryScore{Score: domain.Missing(Fallback)}

	issues := ValidateScores(scores)
	require.Len(t, issues, 2)
	assert.Equal(t, "Team score 0 outside 1-10", issues[0])
	assert.Equal(t, "Technology score 11 outside 1-10", issues[1])
	assert.Empty(t, ValidateScores(nil))
}

func TestLogScoringDetails(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	LogScoringDetails(context.Background(), log, found(map[domain.Category]int{domain.CategoryTeam: 9}), 6.0)

	out := buf.String()
	assert.Contains(t, out, `"msg":"scoring details"`)
	assert.Contains(t, out, `"team":{"score":9,"found":true,"weight":0.25}`)
	assert.Contains(t, out, `"market":{"score":5,"found":false`)
	assert.Contains(t, out, `"overall":6`)
}
