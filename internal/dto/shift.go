package dto

import (
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
)

// CreateShiftRequest schedules a single shift outside the weekly generator,
// typically an emergency callout or a manual correction.
type CreateShiftRequest struct {
	StaffID    string `json:"staffId" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	ShiftType  string `json:"shiftType" validate:"required,oneof=MORNING AFTERNOON NIGHT EMERGENCY"`
	Department string `json:"department" validate:"required"`
	StartTime  string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime    string `json:"endTime" validate:"omitempty,datetime=15:04"`
}

// CreateShiftResponse returns the stored shift plus any labor-rule warnings
// the assignment introduced. Warnings do not block creation.
type CreateShiftResponse struct {
	Shift    models.Shift       `json:"shift"`
	Warnings []roster.Violation `json:"warnings,omitempty"`
}

// UpdateShiftStatusRequest transitions a shift's lifecycle state.
type UpdateShiftStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED CONFIRMED PENDING CANCELLED"`
}

// ShiftListQuery mirrors the query params accepted by the shift list endpoint.
type ShiftListQuery struct {
	StaffID    string `form:"staffId"`
	Department string `form:"department"`
	ShiftType  string `form:"shiftType" validate:"omitempty,oneof=MORNING AFTERNOON NIGHT EMERGENCY"`
	Status     string `form:"status" validate:"omitempty,oneof=SCHEDULED CONFIRMED PENDING CANCELLED"`
	DateFrom   string `form:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `form:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}
