package roster

import (
	"fmt"
	"time"

	"github.com/hrm-go/roster-api/internal/models"
)

// ViolationKind tags a labor-rule breach.
type ViolationKind string

const (
	OverHours           ViolationKind = "OVER_HOURS"
	OverShiftCount      ViolationKind = "OVER_SHIFT_COUNT"
	OverConsecutiveDays ViolationKind = "OVER_CONSECUTIVE_DAYS"
	InsufficientRest    ViolationKind = "INSUFFICIENT_REST"
)

// Violation is a structured verdict entry. Violations are data for the caller
// to act on, never raised as errors.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail"`
}

// ComplianceResult is the per-staff-member weekly verdict. It is derived on
// demand and never persisted.
type ComplianceResult struct {
	StaffID            string      `json:"staff_id"`
	WeekStart          string      `json:"week_start"`
	Valid              bool        `json:"valid"`
	WeeklyHours        float64     `json:"weekly_hours"`
	ShiftCount         int         `json:"shift_count"`
	ConsecutiveDays    int         `json:"consecutive_days"`
	ExceedsConsecutive bool        `json:"exceeds_consecutive"`
	Violations         []Violation `json:"violations,omitempty"`
}

// ComplianceEngine evaluates shift collections against a labor policy. All
// checks are pure functions over the supplied history.
type ComplianceEngine struct {
	policy Policy
}

// NewComplianceEngine builds an engine bound to the given policy.
func NewComplianceEngine(policy Policy) *ComplianceEngine {
	return &ComplianceEngine{policy: policy}
}

// WeeklyLimits sums hours and counts shifts in the 7-day window starting at
// weekStart (inclusive on both ends) for one staff member.
func (e *ComplianceEngine) WeeklyLimits(staffID, weekStart string, shifts []models.Shift) (ComplianceResult, error) {
	week, err := WeekDates(weekStart)
	if err != nil {
		return ComplianceResult{}, err
	}
	inWeek := make(map[string]bool, len(week))
	for _, day := range week {
		inWeek[day] = true
	}

	result := ComplianceResult{StaffID: staffID, WeekStart: weekStart, Valid: true}
	for _, shift := range shifts {
		if shift.StaffID != staffID || shift.Status == models.ShiftCancelled || !inWeek[shift.Date] {
			continue
		}
		result.WeeklyHours += e.policy.ShiftHours(shift)
		result.ShiftCount++
	}

	if e.policy.MaxHoursPerWeek > 0 && result.WeeklyHours > e.policy.MaxHoursPerWeek {
		result.Valid = false
		result.Violations = append(result.Violations, Violation{
			Kind:   OverHours,
			Detail: fmt.Sprintf("%.1f weekly hours exceed the %.1f hour cap", result.WeeklyHours, e.policy.MaxHoursPerWeek),
		})
	}
	if e.policy.MaxShiftsPerWeek > 0 && result.ShiftCount > e.policy.MaxShiftsPerWeek {
		result.Valid = false
		result.Violations = append(result.Violations, Violation{
			Kind:   OverShiftCount,
			Detail: fmt.Sprintf("%d shifts exceed the %d shift cap", result.ShiftCount, e.policy.MaxShiftsPerWeek),
		})
	}

	return result, nil
}

// Evaluate runs the weekly limit checks plus the consecutive-day rule. The
// consecutive-day count is the longest contiguous run anchored on any of the
// member's working days inside the week.
func (e *ComplianceEngine) Evaluate(staffID, weekStart string, shifts []models.Shift) (ComplianceResult, error) {
	result, err := e.WeeklyLimits(staffID, weekStart, shifts)
	if err != nil {
		return ComplianceResult{}, err
	}

	week, err := WeekDates(weekStart)
	if err != nil {
		return ComplianceResult{}, err
	}
	inWeek := make(map[string]bool, len(week))
	for _, day := range week {
		inWeek[day] = true
	}

	seen := make(map[string]bool)
	for _, shift := range shifts {
		if shift.StaffID != staffID || shift.Status == models.ShiftCancelled || !inWeek[shift.Date] || seen[shift.Date] {
			continue
		}
		seen[shift.Date] = true
		run, err := ConsecutiveDays(staffID, shift.Date, shifts, e.policy.MaxConsecutiveDays)
		if err != nil {
			return ComplianceResult{}, err
		}
		if run.Count > result.ConsecutiveDays {
			result.ConsecutiveDays = run.Count
			result.ExceedsConsecutive = run.ExceedsLimit
		}
	}

	if result.ExceedsConsecutive {
		result.Valid = false
		result.Violations = append(result.Violations, Violation{
			Kind:   OverConsecutiveDays,
			Detail: fmt.Sprintf("%d consecutive working days exceed the %d day cap", result.ConsecutiveDays, e.policy.MaxConsecutiveDays),
		})
	}

	return result, nil
}

// CheckRest verifies the rest-period rule for a candidate shift against the
// same staff member's existing shifts. A violation is reported when the gap
// between the end of one shift and the start of the next falls below the
// configured minimum, in either direction.
func (e *ComplianceEngine) CheckRest(candidate models.Shift, existing []models.Shift) []Violation {
	candStart, candEnd, err := e.shiftInstants(candidate)
	if err != nil {
		return nil
	}

	var violations []Violation
	for _, other := range existing {
		if other.StaffID != candidate.StaffID || other.ID == candidate.ID || other.Status == models.ShiftCancelled {
			continue
		}
		otherStart, otherEnd, err := e.shiftInstants(other)
		if err != nil {
			continue
		}

		var gap time.Duration
		switch {
		case !otherEnd.After(candStart):
			gap = candStart.Sub(otherEnd)
		case !candEnd.After(otherStart):
			gap = otherStart.Sub(candEnd)
		default:
			// Overlapping shifts leave no rest at all.
			gap = 0
		}

		if gap.Hours() < e.policy.MinRestHours {
			violations = append(violations, Violation{
				Kind: InsufficientRest,
				Detail: fmt.Sprintf("only %.1f hours between shift on %s and shift on %s (minimum %.1f)",
					gap.Hours(), other.Date, candidate.Date, e.policy.MinRestHours),
			})
		}
	}
	return violations
}

// shiftInstants anchors a shift's clock window on its calendar date. The end
// instant is derived from the resolved duration so midnight-crossing windows
// land on the following day.
func (e *ComplianceEngine) shiftInstants(shift models.Shift) (time.Time, time.Time, error) {
	day, err := time.Parse(dateLayout, shift.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startMin, err := ParseClock(shift.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := day.Add(time.Duration(startMin) * time.Minute)
	end := start.Add(time.Duration(e.policy.ShiftHours(shift) * float64(time.Hour)))
	return start, end, nil
}
