package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/service"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
	"github.com/hrm-go/roster-api/pkg/response"
)

type shiftManager interface {
	List(ctx context.Context, query dto.ShiftListQuery) ([]models.Shift, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Shift, error)
	Create(ctx context.Context, req dto.CreateShiftRequest) (*dto.CreateShiftResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateShiftStatusRequest) (*models.Shift, error)
	Cancel(ctx context.Context, id string) error
}

// ShiftHandler wires the shift service to HTTP routes.
type ShiftHandler struct {
	shifts shiftManager
}

// NewShiftHandler constructs a new ShiftHandler.
func NewShiftHandler(shifts *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// List godoc
// @Summary List shifts
// @Tags Shifts
// @Produce json
// @Param staffId query string false "Filter by staff member"
// @Param department query string false "Filter by department"
// @Param shiftType query string false "Filter by type (MORNING,AFTERNOON,NIGHT,EMERGENCY)"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Start of date range (YYYY-MM-DD)"
// @Param dateTo query string false "End of date range (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	query := dto.ShiftListQuery{
		StaffID:    c.Query("staffId"),
		Department: c.Query("department"),
		ShiftType:  c.Query("shiftType"),
		Status:     c.Query("status"),
		DateFrom:   c.Query("dateFrom"),
		DateTo:     c.Query("dateTo"),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		query.PageSize = size
	}

	shifts, pagination, err := h.shifts.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, pagination)
}

// Get godoc
// @Summary Get shift detail
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.shifts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Create godoc
// @Summary Schedule a single shift
// @Description Creates one shift outside the weekly generator. Labor-rule breaches are returned as warnings.
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.CreateShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift payload"))
		return
	}
	resp, err := h.shifts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// UpdateStatus godoc
// @Summary Update shift status
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.UpdateShiftStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id}/status [patch]
func (h *ShiftHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateShiftStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	shift, err := h.shifts.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Delete godoc
// @Summary Cancel shift
// @Tags Shifts
// @Param id path string true "Shift ID"
// @Success 204
// @Router /shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	if err := h.shifts.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
