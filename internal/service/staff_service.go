package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/models"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error)
	FindByID(ctx context.Context, id string) (*models.StaffMember, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, member *models.StaffMember) error
	Update(ctx context.Context, member *models.StaffMember) error
	Deactivate(ctx context.Context, id string) error
}

// StaffService orchestrates staff directory operations.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns staff members plus pagination data.
func (s *StaffService) List(ctx context.Context, query dto.StaffListQuery) ([]models.StaffMember, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff query")
	}

	filter := models.StaffFilter{
		Search:     query.Search,
		Department: query.Department,
		Active:     query.Active,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}
	if query.Role != "" {
		role := models.StaffRole(query.Role)
		filter.Role = &role
	}

	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return staff, pagination, nil
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, id string) (*models.StaffMember, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return member, nil
}

// Create registers a new staff member.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	member := &models.StaffMember{
		FullName:            strings.TrimSpace(req.FullName),
		Email:               strings.TrimSpace(req.Email),
		Role:                models.StaffRole(req.Role),
		Department:          strings.TrimSpace(req.Department),
		CanTakeAppointments: req.CanTakeAppointments,
		DefaultSlotMinutes:  req.DefaultSlotMinutes,
		Active:              true,
	}
	if member.DefaultSlotMinutes == 0 {
		member.DefaultSlotMinutes = 30
	}
	if len(req.Availability) > 0 {
		raw, marshalErr := json.Marshal(req.Availability)
		if marshalErr != nil {
			return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode availability")
		}
		member.Availability = types.JSONText(raw)
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	return member, nil
}

// Update modifies an existing staff member. Only supplied fields change.
func (s *StaffService) Update(ctx context.Context, id string, req dto.UpdateStaffRequest) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		exists, existsErr := s.repo.ExistsByEmail(ctx, email, id)
		if existsErr != nil {
			return nil, appErrors.Wrap(existsErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
		member.Email = email
	}
	if req.FullName != nil {
		member.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		member.Role = models.StaffRole(*req.Role)
	}
	if req.Department != nil {
		member.Department = strings.TrimSpace(*req.Department)
	}
	if req.CanTakeAppointments != nil {
		member.CanTakeAppointments = *req.CanTakeAppointments
	}
	if req.DefaultSlotMinutes != nil {
		member.DefaultSlotMinutes = *req.DefaultSlotMinutes
	}
	if req.Active != nil {
		member.Active = *req.Active
	}
	if req.Availability != nil {
		raw, marshalErr := json.Marshal(req.Availability)
		if marshalErr != nil {
			return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode availability")
		}
		member.Availability = types.JSONText(raw)
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	return member, nil
}

// Deactivate marks a staff member inactive so the generator skips them.
func (s *StaffService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate staff member")
	}
	return nil
}
