package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StaffRole enumerates the job roles recognised by the directory.
type StaffRole string

const (
	RoleDoctor     StaffRole = "DOCTOR"
	RoleNurse      StaffRole = "NURSE"
	RoleTechnician StaffRole = "TECHNICIAN"
	RoleSupport    StaffRole = "SUPPORT"
)

// StaffMember represents an employee eligible for rostering. Members are
// deactivated on termination, never hard-deleted.
type StaffMember struct {
	ID                  string         `db:"id" json:"id"`
	FullName            string         `db:"full_name" json:"full_name"`
	Email               string         `db:"email" json:"email"`
	Role                StaffRole      `db:"role" json:"role"`
	Department          string         `db:"department" json:"department"`
	CanTakeAppointments bool           `db:"can_take_appointments" json:"can_take_appointments"`
	DefaultSlotMinutes  int            `db:"default_slot_minutes" json:"default_slot_minutes"`
	Active              bool           `db:"active" json:"active"`
	Availability        types.JSONText `db:"availability" json:"availability"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// AvailabilityMap decodes the stored availability into a weekday → available
// lookup. Weekday keys use uppercase English names (MONDAY..SUNDAY). A member
// with no stored availability is treated as available every day.
func (s *StaffMember) AvailabilityMap() map[string]bool {
	if len(s.Availability) == 0 {
		return nil
	}
	var m map[string]bool
	if err := json.Unmarshal(s.Availability, &m); err != nil {
		return nil
	}
	return m
}

// AvailableOn reports whether the member can work the given weekday.
func (s *StaffMember) AvailableOn(weekday string) bool {
	m := s.AvailabilityMap()
	if m == nil {
		return true
	}
	available, ok := m[weekday]
	if !ok {
		return false
	}
	return available
}

// StaffFilter captures filtering options for listing staff members.
type StaffFilter struct {
	Search     string
	Department string
	Role       *StaffRole
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
