package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfreview/internal/platform/db/dbtest"
)

func TestStoreLatenessPercent(t *testing.T) {
	pool := dbtest.Pool(t)
	store := NewStore(pool)
	ctx := context.Background()

	employee := "emp-" + uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO employees (id, job_level, job_type) VALUES ($1, 'Staff', 'Analyst')`, employee)
	require.NoError(t, err)

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err = store.LatenessPercent(ctx, employee, start)
	require.ErrorIs(t, err, ErrNoAttendance)

	records := []struct {
		day  time.Time
		late bool
	}{
		{start.AddDate(0, 0, -1), true},
		{start, true},
		{start.AddDate(0, 0, 1), false},
		{start.AddDate(0, 0, 2), false},
		{start.AddDate(0, 0, 3), false},
	}
	for _, r := range records {
		_, err := pool.Exec(ctx, `INSERT INTO attendance_records (employee_id, work_date, late) VALUES ($1, $2, $3)`, employee, r.day, r.late)
		require.NoError(t, err)
	}

	pct, err := store.LatenessPercent(ctx, employee, start)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, pct, 1e-9, "records before the period start are ignored")
	assert.Equal(t, 1, SuggestedScore(pct))
}
