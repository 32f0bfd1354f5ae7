package roster

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hrm-go/roster-api/internal/models"
)

// Generator produces a week of shift assignments from department requirements
// and staff availability. It does not enforce compliance rules; that is a
// separate pass the caller runs over the generated set.
type Generator struct {
	policy Policy
}

// NewGenerator builds a generator bound to the given policy.
func NewGenerator(policy Policy) *Generator {
	return &Generator{policy: policy}
}

// Generate walks the 7 calendar days from weekStart and, per department,
// distributes the daily requirement across the ordinary shift types. Staff are
// picked first-come from the active, available pool; a member works at most
// one shift per calendar date, counting any non-cancelled shifts in existing.
// A day/department combination that cannot be fully staffed is emitted short;
// the deficit shows up as a coverage gap in the metrics, not as an error.
func (g *Generator) Generate(weekStart string, staff []models.StaffMember, requirements map[string]int, existing []models.Shift) ([]models.Shift, error) {
	dates, err := WeekDates(weekStart)
	if err != nil {
		return nil, err
	}

	departments := make([]string, 0, len(requirements))
	for dept := range requirements {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	occupied := make(map[string]map[string]bool)
	for _, shift := range existing {
		if shift.Status == models.ShiftCancelled {
			continue
		}
		if occupied[shift.Date] == nil {
			occupied[shift.Date] = make(map[string]bool)
		}
		occupied[shift.Date][shift.StaffID] = true
	}

	var generated []models.Shift
	for _, date := range dates {
		weekday, err := WeekdayName(date)
		if err != nil {
			return nil, err
		}
		if occupied[date] == nil {
			occupied[date] = make(map[string]bool)
		}

		for _, dept := range departments {
			needed := requirements[dept]
			if needed <= 0 {
				continue
			}

			pool := eligibleStaff(staff, dept, weekday)
			perType := (needed + len(models.OrdinaryShiftTypes) - 1) / len(models.OrdinaryShiftTypes)

			emitted := 0
			for _, shiftType := range models.OrdinaryShiftTypes {
				window, ok := g.policy.Window(shiftType)
				if !ok {
					continue
				}
				for _, member := range pool {
					if emitted >= needed {
						break
					}
					if occupied[date][member.ID] {
						continue
					}
					generated = append(generated, models.Shift{
						ID:         uuid.NewString(),
						StaffID:    member.ID,
						Date:       date,
						StartTime:  window.Start,
						EndTime:    window.End,
						ShiftType:  shiftType,
						Department: dept,
						Status:     models.ShiftScheduled,
					})
					occupied[date][member.ID] = true
					emitted++
					if perTypeCount(generated, date, dept, shiftType) >= perType {
						break
					}
				}
				if emitted >= needed {
					break
				}
			}
		}
	}

	return generated, nil
}

func eligibleStaff(staff []models.StaffMember, department, weekday string) []models.StaffMember {
	var pool []models.StaffMember
	for _, member := range staff {
		if !member.Active || member.Department != department {
			continue
		}
		if !member.AvailableOn(weekday) {
			continue
		}
		pool = append(pool, member)
	}
	return pool
}

func perTypeCount(shifts []models.Shift, date, department string, shiftType models.ShiftType) int {
	count := 0
	for _, shift := range shifts {
		if shift.Date == date && shift.Department == department && shift.ShiftType == shiftType {
			count++
		}
	}
	return count
}
