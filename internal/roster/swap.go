package roster

import (
	"fmt"

	"github.com/hrm-go/roster-api/internal/models"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

// Swap exchanges the staff assignments of two shifts and returns a new shift
// collection; the input is never mutated. Preconditions are checked in order
// and the first failure short-circuits: both ids must resolve, the shifts must
// share a department, and they must share a shift type. Date, times,
// department and type are swap-invariant.
//
// Swap does not re-run compliance; callers must validate both affected staff
// members' weekly, consecutive-day and rest constraints before committing.
func Swap(fromID, toID string, shifts []models.Shift) ([]models.Shift, error) {
	fromIdx, toIdx := -1, -1
	for i := range shifts {
		switch shifts[i].ID {
		case fromID:
			fromIdx = i
		case toID:
			toIdx = i
		}
	}
	if fromIdx < 0 {
		return nil, appErrors.Clone(appErrors.ErrShiftNotFound, fmt.Sprintf("shift %s not found", fromID))
	}
	if toIdx < 0 {
		return nil, appErrors.Clone(appErrors.ErrShiftNotFound, fmt.Sprintf("shift %s not found", toID))
	}

	from, to := shifts[fromIdx], shifts[toIdx]
	if from.Department != to.Department {
		return nil, appErrors.ErrDepartmentMismatch
	}
	if from.ShiftType != to.ShiftType {
		return nil, appErrors.ErrShiftTypeMismatch
	}

	updated := make([]models.Shift, len(shifts))
	copy(updated, shifts)
	updated[fromIdx].StaffID = to.StaffID
	updated[toIdx].StaffID = from.StaffID
	return updated, nil
}
