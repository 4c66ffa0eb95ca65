package assessment

import "perfreview/internal/domain/scoring"

func buildPeriodSummary(period string, assessments []Assessment) PeriodSummary {
	summary := PeriodSummary{
		Period:             period,
		Total:              len(assessments),
		RatingDistribution: map[string]int{},
	}
	var finalTotal float64
	for _, a := range assessments {
		if a.Status != StatusFinal {
			summary.Drafts++
			continue
		}
		summary.Finalized++
		finalTotal += a.FinalScore
		summary.RatingDistribution[scoring.Classify(a.FinalScore).Label]++
	}
	if summary.Total > 0 {
		summary.CompletionRate = float64(summary.Finalized) / float64(summary.Total)
	}
	if summary.Finalized > 0 {
		summary.AverageFinalScore = scoring.Round2(finalTotal / float64(summary.Finalized))
	}
	return summary
}
