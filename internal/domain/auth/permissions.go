package auth

import "context"

const (
	PermAssessmentRead     = "assessment.read"
	PermAssessmentWrite    = "assessment.write"
	PermAssessmentFinalize = "assessment.finalize"
	PermAssessmentNote     = "assessment.note"
	PermSummaryRead        = "summary.read"
	PermAuditRead          = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermAssessmentRead,
		PermAssessmentNote,
	},
	RoleManager: {
		PermAssessmentRead,
		PermAssessmentWrite,
		PermAssessmentFinalize,
		PermSummaryRead,
	},
	RoleHR: {
		PermAssessmentRead,
		PermAssessmentWrite,
		PermAssessmentFinalize,
		PermSummaryRead,
		PermAuditRead,
	},
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, roleName, permission string) (bool, error) {
	for _, perm := range RolePermissions[roleName] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}

func ValidRole(roleName string) bool {
	_, ok := RolePermissions[roleName]
	return ok
}
