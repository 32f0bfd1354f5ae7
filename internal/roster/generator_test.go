package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrm-go/roster-api/internal/models"
)

func surgeryStaff(n int) []models.StaffMember {
	staff := make([]models.StaffMember, 0, n)
	for i := 0; i < n; i++ {
		staff = append(staff, models.StaffMember{
			ID:         string(rune('a' + i)),
			FullName:   "Member " + string(rune('A'+i)),
			Role:       models.RoleNurse,
			Department: "Surgery",
			Active:     true,
		})
	}
	return staff
}

func TestGenerateMeetsDailyRequirement(t *testing.T) {
	gen := NewGenerator(DefaultPolicy())
	staff := surgeryStaff(5)

	shifts, err := gen.Generate("2025-03-03", staff, map[string]int{"Surgery": 3}, nil)
	require.NoError(t, err)
	require.Len(t, shifts, 21, "3 shifts per day for 7 days")

	byDate := make(map[string][]models.Shift)
	for _, shift := range shifts {
		byDate[shift.Date] = append(byDate[shift.Date], shift)
	}
	require.Len(t, byDate, 7)
	for date, day := range byDate {
		assert.Len(t, day, 3, "date %s", date)
		seen := make(map[string]bool)
		for _, shift := range day {
			assert.False(t, seen[shift.StaffID], "staff %s double-booked on %s", shift.StaffID, date)
			seen[shift.StaffID] = true
			assert.Equal(t, "Surgery", shift.Department)
			assert.Equal(t, models.ShiftScheduled, shift.Status)
			assert.NotEmpty(t, shift.ID)
		}
	}
}

func TestGenerateUsesConfiguredWindows(t *testing.T) {
	gen := NewGenerator(DefaultPolicy())
	shifts, err := gen.Generate("2025-03-03", surgeryStaff(3), map[string]int{"Surgery": 3}, nil)
	require.NoError(t, err)

	for _, shift := range shifts {
		window, ok := DefaultPolicy().Window(shift.ShiftType)
		require.True(t, ok)
		assert.Equal(t, window.Start, shift.StartTime)
		assert.Equal(t, window.End, shift.EndTime)
	}
}

func TestGenerateSkipsUnavailableAndInactiveStaff(t *testing.T) {
	staff := surgeryStaff(3)
	staff[0].Active = false
	staff[1].Availability = []byte(`{"MONDAY": false, "TUESDAY": true, "WEDNESDAY": true, "THURSDAY": true, "FRIDAY": true, "SATURDAY": true, "SUNDAY": true}`)

	gen := NewGenerator(DefaultPolicy())
	shifts, err := gen.Generate("2025-03-03", staff, map[string]int{"Surgery": 2}, nil)
	require.NoError(t, err)

	for _, shift := range shifts {
		assert.NotEqual(t, staff[0].ID, shift.StaffID, "inactive staff must never be rostered")
		if shift.Date == "2025-03-03" { // a Monday
			assert.NotEqual(t, staff[1].ID, shift.StaffID)
		}
	}
}

func TestGenerateUnderProvisionsSilently(t *testing.T) {
	gen := NewGenerator(DefaultPolicy())
	shifts, err := gen.Generate("2025-03-03", surgeryStaff(1), map[string]int{"Surgery": 3}, nil)
	require.NoError(t, err, "an unstaffable requirement is a coverage gap, not a failure")
	assert.Len(t, shifts, 7, "one available member can cover one shift per day")
}

func TestGenerateRespectsExistingShifts(t *testing.T) {
	staff := surgeryStaff(2)
	existing := []models.Shift{{
		ID: "x", StaffID: staff[0].ID, Date: "2025-03-03",
		StartTime: "08:00", EndTime: "20:00",
		ShiftType: models.ShiftEmergency, Department: "Surgery",
		Status: models.ShiftScheduled,
	}}

	gen := NewGenerator(DefaultPolicy())
	shifts, err := gen.Generate("2025-03-03", staff, map[string]int{"Surgery": 2}, existing)
	require.NoError(t, err)

	for _, shift := range shifts {
		if shift.Date == "2025-03-03" {
			assert.NotEqual(t, staff[0].ID, shift.StaffID, "already-booked staff must not be double-assigned")
		}
	}
}

func TestGenerateIgnoresUnknownDepartments(t *testing.T) {
	gen := NewGenerator(DefaultPolicy())
	shifts, err := gen.Generate("2025-03-03", surgeryStaff(3), map[string]int{"Cardiology": 2}, nil)
	require.NoError(t, err)
	assert.Empty(t, shifts, "no staff pool means nothing to emit")
}

func TestGenerateRejectsMalformedWeekStart(t *testing.T) {
	gen := NewGenerator(DefaultPolicy())
	_, err := gen.Generate("March 3rd", surgeryStaff(3), map[string]int{"Surgery": 1}, nil)
	assert.Error(t, err)
}
