package roster

import (
	"github.com/hrm-go/roster-api/internal/models"
)

// Window describes one shift type's clock window. Hours is the nominal
// duration and is authoritative for windows that cross midnight, where raw
// end-minus-start arithmetic would be wrong.
type Window struct {
	Start string
	End   string
	Hours float64
}

// Policy bundles the labor-rule thresholds and shift windows the engine
// evaluates against. It is always passed in explicitly so the same code can be
// exercised under different rule sets.
type Policy struct {
	MaxHoursPerWeek    float64
	MaxShiftsPerWeek   int
	MaxConsecutiveDays int
	MinRestHours       float64
	Windows            map[models.ShiftType]Window
	Departments        []string
}

// DefaultPolicy mirrors the service's configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxHoursPerWeek:    40,
		MaxShiftsPerWeek:   5,
		MaxConsecutiveDays: 7,
		MinRestHours:       11,
		Windows: map[models.ShiftType]Window{
			models.ShiftMorning:   {Start: "06:00", End: "14:00", Hours: 8},
			models.ShiftAfternoon: {Start: "14:00", End: "22:00", Hours: 8},
			models.ShiftNight:     {Start: "22:00", End: "06:00", Hours: 8},
			models.ShiftEmergency: {Start: "08:00", End: "20:00", Hours: 12},
		},
		Departments: []string{"Surgery", "Emergency", "Pediatrics", "Radiology", "General"},
	}
}

// Window returns the configured window for a shift type.
func (p Policy) Window(t models.ShiftType) (Window, bool) {
	w, ok := p.Windows[t]
	return w, ok
}

// ShiftHours resolves a shift's duration in hours. The configured window
// duration wins when the shift type has one; otherwise the clock times are
// used with overnight wrap-around.
func (p Policy) ShiftHours(shift models.Shift) float64 {
	if w, ok := p.Windows[shift.ShiftType]; ok && w.Hours > 0 {
		return w.Hours
	}
	hours, err := Duration(shift.StartTime, shift.EndTime)
	if err != nil {
		return 0
	}
	return hours
}
