package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfreview/internal/domain/catalog"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) JobProfile(ctx context.Context, employeeID string) (JobProfile, error) {
	profile := JobProfile{EmployeeID: employeeID}
	err := s.DB.QueryRow(ctx, `
    SELECT job_level, job_type FROM employees WHERE id = $1
  `, employeeID).Scan(&profile.JobLevel, &profile.JobType)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobProfile{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	if err != nil {
		return JobProfile{}, err
	}
	return profile, nil
}

func (s *Store) GetAssessment(ctx context.Context, employeeID, period string) (*Assessment, error) {
	var a Assessment
	var role string
	var pillarJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, period, role, status, catalog_version, final_score, pillar_scores,
           created_at, updated_at, finalized_at
    FROM assessments
    WHERE employee_id = $1 AND period = $2
  `, employeeID, period).Scan(&a.ID, &a.EmployeeID, &a.Period, &role, &a.Status, &a.CatalogVersion, &a.FinalScore, &pillarJSON,
		&a.CreatedAt, &a.UpdatedAt, &a.FinalizedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Role = catalog.Role(role)
	if len(pillarJSON) > 0 {
		if err := json.Unmarshal(pillarJSON, &a.PillarScores); err != nil {
			return nil, fmt.Errorf("decode pillar scores: %w", err)
		}
	}

	rows, err := s.DB.Query(ctx, `
    SELECT metric_id, COALESCE(score, 0), manager_note, employee_note
    FROM assessment_scores
    WHERE assessment_id = $1
    ORDER BY metric_id
  `, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var score MetricScore
		if err := rows.Scan(&score.MetricID, &score.Score, &score.ManagerNote, &score.EmployeeNote); err != nil {
			return nil, err
		}
		a.Scores = append(a.Scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAssessment upserts the header and every score row in one transaction.
// The header only changes while the stored row is a draft; a write against a
// finalized row returns ErrAlreadyFinalized and nothing is committed.
func (s *Store) SaveAssessment(ctx context.Context, a *Assessment) error {
	pillarJSON, err := json.Marshal(a.PillarScores)
	if err != nil {
		return err
	}
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
    INSERT INTO assessments (id, employee_id, period, role, status, catalog_version, final_score, rating_label, pillar_scores, finalized_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (employee_id, period) DO UPDATE
    SET status = EXCLUDED.status,
        catalog_version = EXCLUDED.catalog_version,
        final_score = EXCLUDED.final_score,
        rating_label = EXCLUDED.rating_label,
        pillar_scores = EXCLUDED.pillar_scores,
        finalized_at = EXCLUDED.finalized_at,
        updated_at = now()
    WHERE assessments.status = $11
    RETURNING id, created_at, updated_at
  `, id, a.EmployeeID, a.Period, string(a.Role), a.Status, a.CatalogVersion, a.FinalScore, a.Rating.Label, pillarJSON, a.FinalizedAt,
		StatusDraft).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyFinalized
	}
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, score := range a.Scores {
		batch.Queue(`
      INSERT INTO assessment_scores (assessment_id, metric_id, score, manager_note, employee_note)
      VALUES ($1,$2,$3,$4,$5)
      ON CONFLICT (assessment_id, metric_id) DO UPDATE
      SET score = EXCLUDED.score, manager_note = EXCLUDED.manager_note, updated_at = now()
    `, a.ID, score.MetricID, nullableScore(score.Score), score.ManagerNote, score.EmployeeNote)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) UpsertEmployeeNote(ctx context.Context, assessmentID, metricID, note string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO assessment_scores (assessment_id, metric_id, employee_note)
    VALUES ($1,$2,$3)
    ON CONFLICT (assessment_id, metric_id) DO UPDATE
    SET employee_note = EXCLUDED.employee_note, updated_at = now()
  `, assessmentID, metricID, note)
	return err
}

func (s *Store) ListAssessments(ctx context.Context, period string) ([]Assessment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, period, role, status, catalog_version, final_score, created_at, updated_at, finalized_at
    FROM assessments
    WHERE period = $1
    ORDER BY employee_id
  `, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var role string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Period, &role, &a.Status, &a.CatalogVersion, &a.FinalScore, &a.CreatedAt, &a.UpdatedAt, &a.FinalizedAt); err != nil {
			return nil, err
		}
		a.Role = catalog.Role(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullableScore(score int) any {
	if score < 1 || score > 5 {
		return nil
	}
	return score
}
