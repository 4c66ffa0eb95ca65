package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perfreview/internal/domain/catalog"
)

func TestResolveRole(t *testing.T) {
	resolver := NewResolver()

	cases := []struct {
		level, jobType string
		role           catalog.Role
		ok             bool
	}{
		{"staff", "analyst", catalog.RoleStaffAnalyst, true},
		{"Supervisor", "Analyst", catalog.RoleSupervisorAnalyst, true},
		{"senior", "sales", catalog.RoleSalesStaff, true},
		{"staff", "Business Development", catalog.RoleBizDevStaff, true},
		{"intern", "analyst", "", false},
		{"staff", "hr", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		role, ok := resolver.ResolveRole(tc.level, tc.jobType)
		assert.Equal(t, tc.ok, ok, "%s/%s", tc.level, tc.jobType)
		assert.Equal(t, tc.role, role, "%s/%s", tc.level, tc.jobType)
	}
}

func TestResolvedRolesExistInCatalog(t *testing.T) {
	for _, role := range defaultTable {
		assert.True(t, role.Valid(), "role %s", role)
	}
}
