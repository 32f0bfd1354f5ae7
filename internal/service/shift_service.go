package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type shiftRepository interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error)
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	ListByDateRange(ctx context.Context, from, to, staffID string) ([]models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	UpdateStatus(ctx context.Context, id string, status models.ShiftStatus) error
	Cancel(ctx context.Context, id string) error
}

type shiftStaffReader interface {
	FindByID(ctx context.Context, id string) (*models.StaffMember, error)
}

// ShiftService manages individual shift records outside the weekly generator.
type ShiftService struct {
	shifts    shiftRepository
	staff     shiftStaffReader
	engine    *roster.ComplianceEngine
	policy    roster.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftService constructs a ShiftService.
func NewShiftService(shifts shiftRepository, staff shiftStaffReader, policy roster.Policy, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{
		shifts:    shifts,
		staff:     staff,
		engine:    roster.NewComplianceEngine(policy),
		policy:    policy,
		validator: validate,
		logger:    logger,
	}
}

// List returns shifts plus pagination data.
func (s *ShiftService) List(ctx context.Context, query dto.ShiftListQuery) ([]models.Shift, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift query")
	}

	filter := models.ShiftFilter{
		StaffID:    query.StaffID,
		Department: query.Department,
		ShiftType:  models.ShiftType(query.ShiftType),
		Status:     models.ShiftStatus(query.Status),
		DateFrom:   query.DateFrom,
		DateTo:     query.DateTo,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}

	shifts, total, err := s.shifts.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return shifts, pagination, nil
}

// Get returns a shift by id.
func (s *ShiftService) Get(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.shifts.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrShiftNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	return shift, nil
}

// Create schedules a single shift. Labor-rule breaches the new shift would
// introduce are returned as warnings alongside the stored record; they never
// block creation.
func (s *ShiftService) Create(ctx context.Context, req dto.CreateShiftRequest) (*dto.CreateShiftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}

	member, err := s.staff.FindByID(ctx, req.StaffID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if !member.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "staff member is inactive")
	}

	shiftType := models.ShiftType(req.ShiftType)
	start, end := req.StartTime, req.EndTime
	if start == "" || end == "" {
		window, ok := s.policy.Window(shiftType)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "startTime and endTime are required for this shift type")
		}
		start, end = window.Start, window.End
	}
	if _, err := roster.Duration(start, end); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift times")
	}

	shift := models.Shift{
		StaffID:    req.StaffID,
		Date:       req.Date,
		StartTime:  start,
		EndTime:    end,
		ShiftType:  shiftType,
		Department: strings.TrimSpace(req.Department),
		Status:     models.ShiftScheduled,
	}

	warnings, err := s.collectWarnings(ctx, shift)
	if err != nil {
		return nil, err
	}

	if err := s.shifts.Create(ctx, &shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}
	return &dto.CreateShiftResponse{Shift: shift, Warnings: warnings}, nil
}

// UpdateStatus transitions a shift's lifecycle state. Cancelled is terminal.
func (s *ShiftService) UpdateStatus(ctx context.Context, id string, req dto.UpdateShiftStatusRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	shift, err := s.shifts.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrShiftNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	if shift.Status == models.ShiftCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cancelled shifts cannot change status")
	}

	status := models.ShiftStatus(req.Status)
	if err := s.shifts.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift status")
	}
	shift.Status = status
	return shift, nil
}

// Cancel marks a shift cancelled, keeping the row for history.
func (s *ShiftService) Cancel(ctx context.Context, id string) error {
	if _, err := s.shifts.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrShiftNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	if err := s.shifts.Cancel(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel shift")
	}
	return nil
}

// collectWarnings evaluates the candidate against the assignee's surrounding
// schedule: rest gaps against neighbouring days and the weekly limits of the
// week the shift lands in.
func (s *ShiftService) collectWarnings(ctx context.Context, candidate models.Shift) ([]roster.Violation, error) {
	weekStart, err := roster.WeekStart(candidate.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift date")
	}
	from, _ := roster.AddDays(candidate.Date, -7)
	to, _ := roster.AddDays(candidate.Date, 7)

	history, err := s.shifts.ListByDateRange(ctx, from, to, candidate.StaffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift history")
	}

	warnings := s.engine.CheckRest(candidate, history)

	result, err := s.engine.Evaluate(candidate.StaffID, weekStart, append(history, candidate))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate weekly limits")
	}
	warnings = append(warnings, result.Violations...)
	return warnings, nil
}
