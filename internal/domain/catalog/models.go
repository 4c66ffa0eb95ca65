package catalog

type Pillar string

const (
	PillarKnowledge  Pillar = "knowledge"
	PillarPeople     Pillar = "people"
	PillarService    Pillar = "service"
	PillarBusiness   Pillar = "business"
	PillarLeadership Pillar = "leadership"
)

// Pillars lists every pillar in display and aggregation order.
var Pillars = []Pillar{PillarKnowledge, PillarPeople, PillarService, PillarBusiness, PillarLeadership}

var pillarTitles = map[Pillar]string{
	PillarKnowledge:  "Knowledge",
	PillarPeople:     "People",
	PillarService:    "Service",
	PillarBusiness:   "Business",
	PillarLeadership: "Leadership",
}

func (p Pillar) Valid() bool {
	_, ok := pillarTitles[p]
	return ok
}

func (p Pillar) Title() string {
	if title, ok := pillarTitles[p]; ok {
		return title
	}
	return string(p)
}

type Role string

const (
	RoleStaffAnalyst      Role = "staff_analyst"
	RoleSupervisorAnalyst Role = "supervisor_analyst"
	RoleSalesStaff        Role = "sales_staff"
	RoleBizDevStaff       Role = "bizdev_staff"
)

var Roles = []Role{RoleStaffAnalyst, RoleSupervisorAnalyst, RoleSalesStaff, RoleBizDevStaff}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Metric struct {
	ID           string           `json:"id" yaml:"id"`
	Pillar       Pillar           `json:"pillar" yaml:"pillar"`
	Name         string           `json:"name" yaml:"name"`
	Description  string           `json:"description" yaml:"description"`
	Attendance   bool             `json:"attendance,omitempty" yaml:"attendance"`
	ScoringGuide map[int]string   `json:"scoringGuide,omitempty" yaml:"guide"`
	Weights      map[Role]float64 `json:"-" yaml:"weights"`
}

// WeightedMetric is a metric annotated with the weight of one role.
type WeightedMetric struct {
	Metric
	Weight float64 `json:"weight"`
}

type PillarGroup struct {
	Pillar      Pillar           `json:"pillar"`
	Title       string           `json:"title"`
	Metrics     []WeightedMetric `json:"metrics"`
	TotalWeight float64          `json:"totalWeight"`
}

func (g PillarGroup) Empty() bool {
	return len(g.Metrics) == 0
}

// WeightDrift reports a role whose weights do not add up to 100.
type WeightDrift struct {
	Role  Role    `json:"role"`
	Total float64 `json:"total"`
}
