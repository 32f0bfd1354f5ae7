package roster

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hrm-go/roster-api/internal/models"
)

const dateLayout = "2006-01-02"

// ParseClock converts an "HH:MM" clock string to minutes since midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	return hours*60 + minutes, nil
}

// Duration computes elapsed hours between two clock times. An end at or before
// the start is taken to cross midnight and gains 24 hours, so the result is
// always positive; fixed-duration shift types should prefer their configured
// window hours over clock arithmetic (see Policy.ShiftHours).
func Duration(start, end string) (float64, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	diff := endMin - startMin
	if diff <= 0 {
		diff += 24 * 60
	}
	return float64(diff) / 60, nil
}

// AddDays shifts an ISO date string by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", date)
	}
	return t.AddDate(0, 0, n).Format(dateLayout), nil
}

// WeekDates expands a week-start date into its 7 consecutive calendar days.
func WeekDates(weekStart string) ([]string, error) {
	t, err := time.Parse(dateLayout, weekStart)
	if err != nil {
		return nil, fmt.Errorf("invalid week start %q", weekStart)
	}
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = t.AddDate(0, 0, i).Format(dateLayout)
	}
	return dates, nil
}

// WeekStart returns the Monday of the week containing the given date.
func WeekStart(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", date)
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dateLayout), nil
}

// WeekdayName returns the uppercase English weekday for an ISO date.
func WeekdayName(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", date)
	}
	return strings.ToUpper(t.Weekday().String()), nil
}

// ConsecutiveRun reports a staff member's contiguous working streak around an
// anchor date.
type ConsecutiveRun struct {
	Count        int  `json:"count"`
	ExceedsLimit bool `json:"exceeds_limit"`
}

// ConsecutiveDays walks backward then forward from the anchor date, one
// calendar day at a time, counting contiguous days on which the staff member
// has at least one non-cancelled shift. Date comparison is by string equality.
// The anchor day itself is always counted, and the walk is bounded to
// maxConsecutive days in each direction.
func ConsecutiveDays(staffID, anchorDate string, shifts []models.Shift, maxConsecutive int) (ConsecutiveRun, error) {
	if _, err := time.Parse(dateLayout, anchorDate); err != nil {
		return ConsecutiveRun{}, fmt.Errorf("invalid anchor date %q", anchorDate)
	}

	worked := make(map[string]bool)
	for _, shift := range shifts {
		if shift.StaffID != staffID || shift.Status == models.ShiftCancelled {
			continue
		}
		worked[shift.Date] = true
	}

	count := 1
	for step := 1; step <= maxConsecutive; step++ {
		day, err := AddDays(anchorDate, -step)
		if err != nil || !worked[day] {
			break
		}
		count++
	}
	for step := 1; step <= maxConsecutive; step++ {
		day, err := AddDays(anchorDate, step)
		if err != nil || !worked[day] {
			break
		}
		count++
	}

	return ConsecutiveRun{Count: count, ExceedsLimit: maxConsecutive > 0 && count > maxConsecutive}, nil
}
