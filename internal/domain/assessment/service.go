package assessment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"perfreview/internal/domain/attendance"
	"perfreview/internal/domain/catalog"
	"perfreview/internal/domain/scoring"
	"perfreview/internal/requestctx"
)

type Service struct {
	store      StoreAPI
	directory  EmployeeDirectory
	roles      RoleResolver
	attendance AttendanceSource
	catalog    *catalog.Catalog
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the workflow. attendance may be nil, in which case no
// attendance suggestion is offered.
func NewService(store StoreAPI, directory EmployeeDirectory, roles RoleResolver, attendance AttendanceSource, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		directory:  directory,
		roles:      roles,
		attendance: attendance,
		catalog:    cat,
		logger:     logger.Named("assessment"),
		now:        time.Now,
	}
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Load returns the stored assessment for employee and period. When none has
// been saved yet, an unsaved draft with every metric unset is returned.
func (s *Service) Load(ctx context.Context, employeeID, period string) (*Assessment, error) {
	a, err := s.fetchOrNew(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	if err := s.present(a); err != nil {
		return nil, err
	}
	s.suggestAttendance(ctx, a)
	return a, nil
}

// Get returns the stored assessment only; ErrNotFound when none was saved.
func (s *Service) Get(ctx context.Context, employeeID, period string) (*Assessment, error) {
	a, err := s.store.GetAssessment(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	if err := s.present(a); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveDraft merges manager edits into the draft, creating it on first save,
// and persists it together with the recomputed derived scores.
func (s *Service) SaveDraft(ctx context.Context, employeeID, period string, inputs []ScoreInput) (*Assessment, error) {
	a, err := s.fetchOrNew(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	if a.Final() {
		return nil, ErrAlreadyFinalized
	}
	if err := s.derive(a); err != nil {
		return nil, err
	}
	if err := applyInputs(a, inputs); err != nil {
		return nil, err
	}
	if err := s.derive(a); err != nil {
		return nil, err
	}
	a.Status = StatusDraft
	if err := s.store.SaveAssessment(ctx, a); err != nil {
		return nil, err
	}
	s.logger.With(requestctx.Fields(ctx)...).Info("assessment draft saved",
		zap.String("assessmentId", a.ID),
		zap.String("employeeId", a.EmployeeID),
		zap.String("period", a.Period),
		zap.Int("edits", len(inputs)),
		zap.Float64("projectedScore", a.FinalScore),
	)
	return a, nil
}

// Finalize validates that every applicable metric is scored and moves the
// assessment to its terminal state.
func (s *Service) Finalize(ctx context.Context, employeeID, period string) (*Assessment, error) {
	a, err := s.store.GetAssessment(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	if a.Final() {
		return nil, ErrAlreadyFinalized
	}
	if err := s.derive(a); err != nil {
		return nil, err
	}
	if missing := missingScores(a); len(missing) > 0 {
		incomplete := &IncompleteScoresError{Missing: missing}
		s.logger.With(requestctx.Fields(ctx)...).Info("assessment finalize refused",
			zap.String("assessmentId", a.ID),
			zap.Strings("missing", incomplete.MetricIDs()),
		)
		return nil, incomplete
	}

	finalizedAt := s.now().UTC()
	a.Status = StatusFinal
	a.FinalizedAt = &finalizedAt
	if err := s.store.SaveAssessment(ctx, a); err != nil {
		return nil, err
	}
	s.logger.With(requestctx.Fields(ctx)...).Info("assessment finalized",
		zap.String("assessmentId", a.ID),
		zap.String("employeeId", a.EmployeeID),
		zap.String("period", a.Period),
		zap.Float64("finalScore", a.FinalScore),
		zap.String("rating", a.Rating.Label),
	)
	return a, nil
}

// SetEmployeeNote stores the employee's note for one metric and returns the
// assessment id. It is allowed in both states and leaves scores and status
// untouched.
func (s *Service) SetEmployeeNote(ctx context.Context, employeeID, period, metricID, note string) (string, error) {
	a, err := s.store.GetAssessment(ctx, employeeID, period)
	if err != nil {
		return "", err
	}
	ok, err := s.applies(a, metricID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMetric, metricID)
	}
	if err := s.store.UpsertEmployeeNote(ctx, a.ID, metricID, note); err != nil {
		return "", err
	}
	return a.ID, nil
}

// applies reports whether metricID belongs to a. A final assessment is
// limited to the metrics it was finalized with.
func (s *Service) applies(a *Assessment, metricID string) (bool, error) {
	if a.Final() {
		_, ok := a.score(metricID)
		return ok, nil
	}
	metrics, err := s.catalog.Applicable(a.Role)
	if err != nil {
		return false, err
	}
	for _, metric := range metrics {
		if metric.ID == metricID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) RatingForScore(score float64) scoring.Rating {
	return scoring.Classify(score)
}

// PeriodSummary reports workflow progress and the rating spread of one period.
func (s *Service) PeriodSummary(ctx context.Context, period string) (PeriodSummary, error) {
	assessments, err := s.store.ListAssessments(ctx, period)
	if err != nil {
		return PeriodSummary{}, err
	}
	return buildPeriodSummary(period, assessments), nil
}

func (s *Service) fetchOrNew(ctx context.Context, employeeID, period string) (*Assessment, error) {
	a, err := s.store.GetAssessment(ctx, employeeID, period)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.newAssessment(ctx, employeeID, period)
}

// newAssessment resolves the role once; it stays frozen on the assessment.
func (s *Service) newAssessment(ctx context.Context, employeeID, period string) (*Assessment, error) {
	profile, err := s.directory.JobProfile(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	role, ok := s.roles.ResolveRole(profile.JobLevel, profile.JobType)
	if !ok {
		return nil, ErrNotReviewable
	}
	metrics, err := s.catalog.Applicable(role)
	if err != nil {
		s.logger.Error("resolved role missing from catalog", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	a := &Assessment{
		EmployeeID:     employeeID,
		Period:         period,
		Role:           role,
		Status:         StatusDraft,
		CatalogVersion: s.catalog.Version(),
		Scores:         make([]MetricScore, 0, len(metrics)),
	}
	for _, metric := range metrics {
		a.Scores = append(a.Scores, MetricScore{MetricID: metric.ID})
	}
	return a, nil
}

// present prepares a stored or new assessment for reading. Drafts follow the
// current catalog; a final assessment keeps the scores it was finalized with.
func (s *Service) present(a *Assessment) error {
	if a.Final() {
		s.describeFinal(a)
		return nil
	}
	return s.derive(a)
}

// describeFinal fills the display fields of the stored slots and orders them
// like derive does. Scores, pillar scores and the final score are untouched.
func (s *Service) describeFinal(a *Assessment) {
	pillarRank := make(map[catalog.Pillar]int, len(catalog.Pillars))
	for i, pillar := range catalog.Pillars {
		pillarRank[pillar] = i
	}
	metrics := s.catalog.Metrics()
	catalogRank := make(map[string]int, len(metrics))
	for i, metric := range metrics {
		catalogRank[metric.ID] = i
	}
	rank := func(slot MetricScore) int {
		idx, ok := catalogRank[slot.MetricID]
		if !ok {
			return len(catalog.Pillars) * len(metrics)
		}
		return pillarRank[slot.Pillar]*len(metrics) + idx
	}

	for i := range a.Scores {
		slot := &a.Scores[i]
		metric, ok := s.catalog.Metric(slot.MetricID)
		if !ok {
			continue
		}
		slot.Pillar = metric.Pillar
		slot.Name = metric.Name
		slot.Weight = metric.Weights[a.Role]
	}
	sort.SliceStable(a.Scores, func(i, j int) bool {
		return rank(a.Scores[i]) < rank(a.Scores[j])
	})
	a.Rating = scoring.Classify(a.FinalScore)
}

// derive lays out one slot per applicable metric in catalog order and
// recomputes pillar scores, the final score and the rating.
func (s *Service) derive(a *Assessment) error {
	groups, err := s.catalog.Groups(a.Role)
	if err != nil {
		s.logger.Error("assessment role missing from catalog",
			zap.String("assessmentId", a.ID),
			zap.String("role", string(a.Role)),
			zap.Error(err),
		)
		return err
	}

	existing := make(map[string]MetricScore, len(a.Scores))
	for _, score := range a.Scores {
		existing[score.MetricID] = score
	}
	slots := make([]MetricScore, 0, len(a.Scores))
	values := make(map[string]int, len(a.Scores))
	for _, group := range groups {
		for _, metric := range group.Metrics {
			slot := existing[metric.ID]
			slot.MetricID = metric.ID
			slot.Pillar = metric.Pillar
			slot.Name = metric.Name
			slot.Weight = metric.Weight
			if slot.Scored() {
				values[metric.ID] = slot.Score
			} else {
				slot.Score = 0
			}
			slots = append(slots, slot)
		}
	}
	a.Scores = slots

	result := scoring.Aggregate(groups, values)
	if result.Drift() {
		s.logger.Warn("aggregating with drifted weights",
			zap.String("role", string(a.Role)),
			zap.Float64("totalWeight", result.TotalWeight),
			zap.Error(ErrWeightConfigDrift),
		)
	}
	a.PillarScores = result.Pillars
	a.FinalScore = result.Final
	a.Rating = scoring.Classify(result.Final)
	return nil
}

func (s *Service) suggestAttendance(ctx context.Context, a *Assessment) {
	if s.attendance == nil || a.Final() {
		return
	}
	start, ok := PeriodStart(a.Period)
	if !ok {
		return
	}
	for i := range a.Scores {
		slot := &a.Scores[i]
		metric, found := s.catalog.Metric(slot.MetricID)
		if !found || !metric.Attendance || slot.Scored() {
			continue
		}
		pct, err := s.attendance.LatenessPercent(ctx, a.EmployeeID, start)
		if err != nil {
			if !errors.Is(err, attendance.ErrNoAttendance) {
				s.logger.With(requestctx.Fields(ctx)...).Warn("attendance lookup failed", zap.String("employeeId", a.EmployeeID), zap.Error(err))
			}
			return
		}
		slot.Suggestion = &Suggestion{LatenessPercent: scoring.Round2(pct), Score: attendance.SuggestedScore(pct)}
	}
}

// applyInputs validates every edit before changing anything.
func applyInputs(a *Assessment, inputs []ScoreInput) error {
	for _, input := range inputs {
		if _, ok := a.score(input.MetricID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMetric, input.MetricID)
		}
		if input.Score != nil && (*input.Score < 1 || *input.Score > 5) {
			return fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, input.MetricID, *input.Score)
		}
	}
	for _, input := range inputs {
		slot, _ := a.score(input.MetricID)
		if input.Score != nil {
			slot.Score = *input.Score
		}
		if input.ManagerNote != nil {
			slot.ManagerNote = *input.ManagerNote
		}
	}
	return nil
}

func missingScores(a *Assessment) map[catalog.Pillar][]string {
	missing := map[catalog.Pillar][]string{}
	for _, slot := range a.Scores {
		if !slot.Scored() {
			missing[slot.Pillar] = append(missing[slot.Pillar], slot.MetricID)
		}
	}
	return missing
}
