package dto

import (
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
)

// GenerateRosterRequest instructs the generator to build a weekly roster proposal.
type GenerateRosterRequest struct {
	WeekStart    string         `json:"weekStart" validate:"required,datetime=2006-01-02"`
	Requirements map[string]int `json:"requirements" validate:"required,min=1,dive,min=0"`
}

// GenerateRosterResponse returns the built roster proposal.
type GenerateRosterResponse struct {
	ProposalID   string                    `json:"proposalId"`
	WeekStart    string                    `json:"weekStart"`
	Shifts       []models.Shift            `json:"shifts"`
	Metrics      roster.Metrics            `json:"metrics"`
	Verdicts     []roster.ComplianceResult `json:"verdicts,omitempty"`
	CoverageGaps []roster.CoverageGap      `json:"coverageGaps"`
}

// SaveRosterRequest persists a previously generated proposal. Proposals whose
// verdicts carry violations are refused unless Force is set.
type SaveRosterRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Force      bool   `json:"force"`
}

// SaveRosterResponse reports how many shifts were committed.
type SaveRosterResponse struct {
	WeekStart  string `json:"weekStart"`
	ShiftCount int    `json:"shiftCount"`
}

// SwapRequest exchanges the assignees of two stored shifts. A swap that would
// break labor rules for either new assignee is rejected unless Force is set.
type SwapRequest struct {
	FromShiftID string `json:"fromShiftId" validate:"required"`
	ToShiftID   string `json:"toShiftId" validate:"required"`
	Force       bool   `json:"force"`
}

// SwapResponse returns both shifts after the exchange, along with any
// compliance warnings the swap introduced for the new assignees.
type SwapResponse struct {
	From     models.Shift              `json:"from"`
	To       models.Shift              `json:"to"`
	Warnings []roster.Violation        `json:"warnings,omitempty"`
	Results  []roster.ComplianceResult `json:"results,omitempty"`
}

// MetricsRequest aggregates utilization for a stored week.
type MetricsRequest struct {
	WeekStart    string         `json:"weekStart" validate:"required,datetime=2006-01-02"`
	Requirements map[string]int `json:"requirements" validate:"omitempty,dive,min=0"`
	Department   string         `json:"department"`
}

// RosterExportQuery selects the week and format for roster export.
type RosterExportQuery struct {
	WeekStart  string `form:"weekStart" json:"weekStart" validate:"required,datetime=2006-01-02"`
	Format     string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
	Department string `form:"department" json:"department"`
}
