package roster

import (
	"sort"

	"github.com/hrm-go/roster-api/internal/models"
)

// CoverageGap marks a department/day slot where fewer shifts were assigned
// than required. Gaps are informational data, never errors.
type CoverageGap struct {
	Department string `json:"department"`
	Date       string `json:"date"`
	Required   int    `json:"required"`
	Assigned   int    `json:"assigned"`
}

// Metrics summarises utilization and coverage over a shift set.
type Metrics struct {
	TotalHours             float64                  `json:"total_hours"`
	AverageHoursPerStaff   float64                  `json:"average_hours_per_staff"`
	DepartmentDistribution map[string]int           `json:"department_distribution"`
	ShiftTypeDistribution  map[models.ShiftType]int `json:"shift_type_distribution"`
	CoverageGaps           []CoverageGap            `json:"coverage_gaps"`
}

// Aggregator computes roster statistics under a policy's duration rules.
type Aggregator struct {
	policy Policy
}

// NewAggregator builds an aggregator bound to the given policy.
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{policy: policy}
}

// Aggregate computes totals, distributions and coverage gaps. The average
// divides by the active staff headcount and is zero when there is none.
// Distribution maps only carry categories with at least one shift. Gaps are
// computed from the same requirement input the generator consumed; when
// weekStart or requirements are absent the gap list stays empty.
func (a *Aggregator) Aggregate(shifts []models.Shift, staff []models.StaffMember, weekStart string, requirements map[string]int) Metrics {
	metrics := Metrics{
		DepartmentDistribution: make(map[string]int),
		ShiftTypeDistribution:  make(map[models.ShiftType]int),
		CoverageGaps:           []CoverageGap{},
	}

	assigned := make(map[string]map[string]int)
	for _, shift := range shifts {
		if shift.Status == models.ShiftCancelled {
			continue
		}
		metrics.TotalHours += a.policy.ShiftHours(shift)
		metrics.DepartmentDistribution[shift.Department]++
		metrics.ShiftTypeDistribution[shift.ShiftType]++
		if assigned[shift.Department] == nil {
			assigned[shift.Department] = make(map[string]int)
		}
		assigned[shift.Department][shift.Date]++
	}

	activeStaff := 0
	for _, member := range staff {
		if member.Active {
			activeStaff++
		}
	}
	if activeStaff > 0 {
		metrics.AverageHoursPerStaff = metrics.TotalHours / float64(activeStaff)
	}

	if weekStart == "" || len(requirements) == 0 {
		return metrics
	}
	dates, err := WeekDates(weekStart)
	if err != nil {
		return metrics
	}

	departments := make([]string, 0, len(requirements))
	for dept := range requirements {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	for _, dept := range departments {
		required := requirements[dept]
		if required <= 0 {
			continue
		}
		for _, date := range dates {
			got := assigned[dept][date]
			if got < required {
				metrics.CoverageGaps = append(metrics.CoverageGaps, CoverageGap{
					Department: dept,
					Date:       date,
					Required:   required,
					Assigned:   got,
				})
			}
		}
	}

	return metrics
}
