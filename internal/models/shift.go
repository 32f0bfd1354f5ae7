package models

import "time"

// ShiftType enumerates the scheduling windows a shift can occupy.
type ShiftType string

const (
	ShiftMorning   ShiftType = "MORNING"
	ShiftAfternoon ShiftType = "AFTERNOON"
	ShiftNight     ShiftType = "NIGHT"
	ShiftEmergency ShiftType = "EMERGENCY"
)

// OrdinaryShiftTypes are the rotation types the generator distributes daily
// requirements across. Emergency shifts are only created manually.
var OrdinaryShiftTypes = []ShiftType{ShiftMorning, ShiftAfternoon, ShiftNight}

// ShiftStatus enumerates the lifecycle states of a shift record.
type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "SCHEDULED"
	ShiftConfirmed ShiftStatus = "CONFIRMED"
	ShiftPending   ShiftStatus = "PENDING"
	ShiftCancelled ShiftStatus = "CANCELLED"
)

// Shift is the atomic scheduling unit: one staff member working one window on
// one calendar date. Dates are ISO strings (2006-01-02) and times are clock
// strings (15:04); a night shift's end time is numerically before its start
// because the window crosses midnight.
type Shift struct {
	ID         string      `db:"id" json:"id"`
	StaffID    string      `db:"staff_id" json:"staff_id"`
	Date       string      `db:"date" json:"date"`
	StartTime  string      `db:"start_time" json:"start_time"`
	EndTime    string      `db:"end_time" json:"end_time"`
	ShiftType  ShiftType   `db:"shift_type" json:"shift_type"`
	Department string      `db:"department" json:"department"`
	Status     ShiftStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// ShiftFilter describes query params for listing shifts.
type ShiftFilter struct {
	StaffID    string
	Department string
	ShiftType  ShiftType
	Status     ShiftStatus
	DateFrom   string
	DateTo     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
