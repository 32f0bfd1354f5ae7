package roster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrm-go/roster-api/internal/models"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

func swapFixture() []models.Shift {
	return []models.Shift{
		{
			ID: "shift-a", StaffID: "staff-x", Date: "2025-03-03",
			StartTime: "06:00", EndTime: "14:00",
			ShiftType: models.ShiftMorning, Department: "Surgery",
			Status: models.ShiftScheduled,
		},
		{
			ID: "shift-b", StaffID: "staff-y", Date: "2025-03-05",
			StartTime: "06:00", EndTime: "14:00",
			ShiftType: models.ShiftMorning, Department: "Surgery",
			Status: models.ShiftConfirmed,
		},
		{
			ID: "shift-c", StaffID: "staff-z", Date: "2025-03-04",
			StartTime: "14:00", EndTime: "22:00",
			ShiftType: models.ShiftAfternoon, Department: "Radiology",
			Status: models.ShiftScheduled,
		},
	}
}

func TestSwapExchangesStaffOnly(t *testing.T) {
	shifts := swapFixture()

	updated, err := Swap("shift-a", "shift-b", shifts)
	require.NoError(t, err)

	assert.Equal(t, "staff-y", updated[0].StaffID)
	assert.Equal(t, "staff-x", updated[1].StaffID)

	// Everything except the staff assignment is swap-invariant.
	assert.Equal(t, shifts[0].Date, updated[0].Date)
	assert.Equal(t, shifts[0].StartTime, updated[0].StartTime)
	assert.Equal(t, shifts[0].EndTime, updated[0].EndTime)
	assert.Equal(t, shifts[0].Department, updated[0].Department)
	assert.Equal(t, shifts[0].ShiftType, updated[0].ShiftType)
	assert.Equal(t, shifts[0].Status, updated[0].Status)
	assert.Equal(t, shifts[2], updated[2], "uninvolved shifts pass through untouched")

	// The input collection is never mutated.
	assert.Equal(t, "staff-x", shifts[0].StaffID)
	assert.Equal(t, "staff-y", shifts[1].StaffID)
}

func TestSwapDepartmentMismatch(t *testing.T) {
	shifts := swapFixture()

	_, err := Swap("shift-a", "shift-c", shifts)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDepartmentMismatch.Code, appErr.Code)
	assert.Equal(t, "staff-x", shifts[0].StaffID, "failed swap must leave shifts unmodified")
	assert.Equal(t, "staff-z", shifts[2].StaffID)
}

func TestSwapShiftTypeMismatch(t *testing.T) {
	shifts := swapFixture()
	shifts[2].Department = "Surgery"

	_, err := Swap("shift-a", "shift-c", shifts)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrShiftTypeMismatch.Code, appErr.Code)
}

func TestSwapShiftNotFound(t *testing.T) {
	shifts := swapFixture()

	for _, pair := range [][2]string{{"missing", "shift-b"}, {"shift-a", "missing"}} {
		_, err := Swap(pair[0], pair[1], shifts)
		require.Error(t, err)

		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrShiftNotFound.Code, appErr.Code)
	}
}
