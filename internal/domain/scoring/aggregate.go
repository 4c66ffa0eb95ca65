package scoring

import (
	"math"

	"perfreview/internal/domain/catalog"
)

const fullWeight = 100

type PillarScore struct {
	Pillar catalog.Pillar `json:"pillar"`
	Title  string         `json:"title"`
	Weight float64        `json:"weight"`
	// Score is nil when no metric of the pillar applies to the role.
	Score *float64 `json:"score"`
}

type Result struct {
	Final       float64       `json:"finalScore"`
	Pillars     []PillarScore `json:"pillarScores"`
	TotalWeight float64       `json:"totalWeight"`
}

// Drift reports whether the applicable weights fall short of or exceed 100.
func (r Result) Drift() bool {
	return math.Abs(r.TotalWeight-fullWeight) > 1e-9
}

// Aggregate computes the weighted pillar scores and the overall score.
// scores maps metric id to a 1-5 value; a missing entry or 0 is unset and
// counts as 0 while its weight stays in the denominator. Numerator and
// denominator are accumulated in weight points and divided once, which is
// Σ(s·w/100) / (Σw/100) without the intermediate rounding.
func Aggregate(groups []catalog.PillarGroup, scores map[string]int) Result {
	result := Result{Pillars: make([]PillarScore, 0, len(groups))}
	var points, weights float64
	for _, group := range groups {
		var groupPoints, groupWeight float64
		for _, metric := range group.Metrics {
			groupPoints += float64(clampScore(scores[metric.ID])) * metric.Weight
			groupWeight += metric.Weight
		}
		pillar := PillarScore{Pillar: group.Pillar, Title: group.Title, Weight: groupWeight}
		if groupWeight > 0 {
			score := groupPoints / groupWeight
			pillar.Score = &score
		}
		result.Pillars = append(result.Pillars, pillar)
		points += groupPoints
		weights += groupWeight
	}
	result.TotalWeight = weights
	if weights > 0 {
		result.Final = points / weights
	}
	return result
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 5 {
		return 5
	}
	return score
}

// Round2 rounds a score to two decimals for presentation.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
