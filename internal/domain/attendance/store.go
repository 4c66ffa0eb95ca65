package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// LatenessPercent is the share of recorded working days since periodStart on
// which the employee clocked in late.
func (s *Store) LatenessPercent(ctx context.Context, employeeID string, periodStart time.Time) (float64, error) {
	var late, total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE late), COUNT(1)
    FROM attendance_records
    WHERE employee_id = $1 AND work_date >= $2
  `, employeeID, periodStart).Scan(&late, &total); err != nil {
		return 0, err
	}
	return Percent(late, total)
}
