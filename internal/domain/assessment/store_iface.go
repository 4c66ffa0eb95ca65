package assessment

import (
	"context"
	"time"

	"perfreview/internal/domain/catalog"
)

type StoreAPI interface {
	GetAssessment(ctx context.Context, employeeID, period string) (*Assessment, error)
	SaveAssessment(ctx context.Context, a *Assessment) error
	UpsertEmployeeNote(ctx context.Context, assessmentID, metricID, note string) error
	ListAssessments(ctx context.Context, period string) ([]Assessment, error)
}

type EmployeeDirectory interface {
	JobProfile(ctx context.Context, employeeID string) (JobProfile, error)
}

type RoleResolver interface {
	ResolveRole(jobLevel, jobType string) (catalog.Role, bool)
}

type AttendanceSource interface {
	LatenessPercent(ctx context.Context, employeeID string, periodStart time.Time) (float64, error)
}
