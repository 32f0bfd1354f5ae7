package dto

// CreateStaffRequest registers a new staff member in the directory.
type CreateStaffRequest struct {
	FullName            string          `json:"fullName" validate:"required,min=2,max=150"`
	Email               string          `json:"email" validate:"required,email"`
	Role                string          `json:"role" validate:"required,oneof=DOCTOR NURSE TECHNICIAN SUPPORT"`
	Department          string          `json:"department" validate:"required"`
	CanTakeAppointments bool            `json:"canTakeAppointments"`
	DefaultSlotMinutes  int             `json:"defaultSlotMinutes" validate:"omitempty,min=5,max=240"`
	Availability        map[string]bool `json:"availability" validate:"omitempty,dive,keys,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY,endkeys"`
}

// UpdateStaffRequest modifies an existing staff member. Nil fields are left untouched.
type UpdateStaffRequest struct {
	FullName            *string         `json:"fullName" validate:"omitempty,min=2,max=150"`
	Email               *string         `json:"email" validate:"omitempty,email"`
	Role                *string         `json:"role" validate:"omitempty,oneof=DOCTOR NURSE TECHNICIAN SUPPORT"`
	Department          *string         `json:"department"`
	CanTakeAppointments *bool           `json:"canTakeAppointments"`
	DefaultSlotMinutes  *int            `json:"defaultSlotMinutes" validate:"omitempty,min=5,max=240"`
	Active              *bool           `json:"active"`
	Availability        map[string]bool `json:"availability" validate:"omitempty,dive,keys,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY,endkeys"`
}

// StaffListQuery mirrors the query params accepted by the staff list endpoint.
type StaffListQuery struct {
	Search     string `form:"search"`
	Department string `form:"department"`
	Role       string `form:"role" validate:"omitempty,oneof=DOCTOR NURSE TECHNICIAN SUPPORT"`
	Active     *bool  `form:"active"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}
