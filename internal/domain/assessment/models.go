package assessment

import (
	"time"

	"perfreview/internal/domain/catalog"
	"perfreview/internal/domain/scoring"
)

type MetricScore struct {
	MetricID string         `json:"metricId"`
	Pillar   catalog.Pillar `json:"pillar"`
	Name     string         `json:"name"`
	Weight   float64        `json:"weight"`
	// Score is 1-5, or 0 while unset.
	Score        int         `json:"score,omitempty"`
	ManagerNote  string      `json:"managerNote"`
	EmployeeNote string      `json:"employeeNote"`
	Suggestion   *Suggestion `json:"suggestion,omitempty"`
}

func (m MetricScore) Scored() bool {
	return m.Score >= 1 && m.Score <= 5
}

// Suggestion is the advisory attendance figure shown for the attendance metric.
type Suggestion struct {
	LatenessPercent float64 `json:"latenessPercent"`
	Score           int     `json:"score"`
}

type Assessment struct {
	ID             string                `json:"id,omitempty"`
	EmployeeID     string                `json:"employeeId"`
	Period         string                `json:"period"`
	Role           catalog.Role          `json:"role"`
	Status         string                `json:"status"`
	CatalogVersion string                `json:"catalogVersion"`
	Scores         []MetricScore         `json:"scores"`
	PillarScores   []scoring.PillarScore `json:"pillarScores"`
	FinalScore     float64               `json:"finalScore"`
	Rating         scoring.Rating        `json:"rating"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	FinalizedAt    *time.Time            `json:"finalizedAt,omitempty"`
}

func (a *Assessment) Persisted() bool {
	return a.ID != ""
}

func (a *Assessment) Final() bool {
	return a.Status == StatusFinal
}

func (a *Assessment) score(metricID string) (*MetricScore, bool) {
	for i := range a.Scores {
		if a.Scores[i].MetricID == metricID {
			return &a.Scores[i], true
		}
	}
	return nil, false
}

// ScoreInput is one manager edit. Nil fields are left unchanged.
type ScoreInput struct {
	MetricID    string
	Score       *int
	ManagerNote *string
}

type JobProfile struct {
	EmployeeID string
	JobLevel   string
	JobType    string
}

type PeriodSummary struct {
	Period             string         `json:"period"`
	Total              int            `json:"total"`
	Drafts             int            `json:"drafts"`
	Finalized          int            `json:"finalized"`
	CompletionRate     float64        `json:"completionRate"`
	AverageFinalScore  float64        `json:"averageFinalScore"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}
