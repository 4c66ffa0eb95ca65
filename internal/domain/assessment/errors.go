package assessment

import (
	"errors"
	"fmt"
	"strings"

	"perfreview/internal/domain/catalog"
)

var (
	ErrNotFound         = errors.New("assessment not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNotReviewable    = errors.New("employee is not subject to performance review")
	ErrAlreadyFinalized = errors.New("assessment already finalized")
	ErrIncompleteScores = errors.New("assessment has unscored metrics")
	ErrScoreOutOfRange  = errors.New("score must be between 1 and 5")
	ErrUnknownMetric    = errors.New("metric does not apply to this assessment")

	ErrUnknownRole       = catalog.ErrUnknownRole
	ErrWeightConfigDrift = catalog.ErrWeightConfigDrift
)

// IncompleteScoresError lists the unscored metrics of an assessment, grouped by pillar.
type IncompleteScoresError struct {
	Missing map[catalog.Pillar][]string
}

func (e *IncompleteScoresError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncompleteScores, strings.Join(e.MetricIDs(), ", "))
}

func (e *IncompleteScoresError) Unwrap() error {
	return ErrIncompleteScores
}

// MetricIDs flattens the missing metrics in pillar order.
func (e *IncompleteScoresError) MetricIDs() []string {
	var ids []string
	for _, pillar := range catalog.Pillars {
		ids = append(ids, e.Missing[pillar]...)
	}
	return ids
}
