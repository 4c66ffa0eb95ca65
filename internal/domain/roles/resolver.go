package roles

import (
	"strings"

	"perfreview/internal/domain/catalog"
)

const (
	LevelIntern     = "intern"
	LevelStaff      = "staff"
	LevelSenior     = "senior"
	LevelSupervisor = "supervisor"

	TypeAnalyst             = "analyst"
	TypeSales               = "sales"
	TypeBusinessDevelopment = "business_development"
	TypeHR                  = "hr"
)

type key struct {
	level   string
	jobType string
}

var defaultTable = map[key]catalog.Role{
	{LevelStaff, TypeAnalyst}:              catalog.RoleStaffAnalyst,
	{LevelSenior, TypeAnalyst}:             catalog.RoleStaffAnalyst,
	{LevelSupervisor, TypeAnalyst}:         catalog.RoleSupervisorAnalyst,
	{LevelStaff, TypeSales}:                catalog.RoleSalesStaff,
	{LevelSenior, TypeSales}:               catalog.RoleSalesStaff,
	{LevelStaff, TypeBusinessDevelopment}:  catalog.RoleBizDevStaff,
	{LevelSenior, TypeBusinessDevelopment}: catalog.RoleBizDevStaff,
}

// Resolver maps a job level and job type to a review role. Combinations
// missing from the table (interns, HR staff) are not subject to review.
type Resolver struct {
	table map[key]catalog.Role
}

func NewResolver() *Resolver {
	return &Resolver{table: defaultTable}
}

func (r *Resolver) ResolveRole(jobLevel, jobType string) (catalog.Role, bool) {
	role, ok := r.table[key{normalize(jobLevel), normalize(jobType)}]
	return role, ok
}

func normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(value, " ", "_")
}
