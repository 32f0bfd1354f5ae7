package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/roster"
	"github.com/hrm-go/roster-api/internal/service"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
	"github.com/hrm-go/roster-api/pkg/response"
)

type rosterOrchestrator interface {
	Generate(ctx context.Context, req dto.GenerateRosterRequest) (*dto.GenerateRosterResponse, error)
	Save(ctx context.Context, req dto.SaveRosterRequest) (*dto.SaveRosterResponse, error)
	Swap(ctx context.Context, req dto.SwapRequest) (*dto.SwapResponse, error)
	Compliance(ctx context.Context, staffID, weekStart string) (*roster.ComplianceResult, error)
	Metrics(ctx context.Context, req dto.MetricsRequest) (*roster.Metrics, error)
}

// RosterHandler exposes roster generation, swap, compliance and metrics endpoints.
type RosterHandler struct {
	service rosterOrchestrator
	metrics *service.MetricsService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc *service.RosterService, metrics *service.MetricsService) *RosterHandler {
	return &RosterHandler{service: svc, metrics: metrics}
}

// Generate godoc
// @Summary Generate weekly roster proposal
// @Description Builds a roster for the week from department requirements. The proposal is held under a TTL until saved.
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRosterRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /roster/generate [post]
func (h *RosterHandler) Generate(c *gin.Context) {
	var req dto.GenerateRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid roster payload"))
		return
	}
	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordRosterGeneration()
	response.JSON(c, http.StatusOK, resp, nil)
}

// Save godoc
// @Summary Persist a generated roster proposal
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.SaveRosterRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Router /roster/save [post]
func (h *RosterHandler) Save(c *gin.Context) {
	var req dto.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	resp, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Swap godoc
// @Summary Swap the assignees of two shifts
// @Description Both shifts must share department and shift type. Swaps that break labor rules are rejected unless force is set.
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.SwapRequest true "Swap payload"
// @Success 200 {object} response.Envelope
// @Router /roster/swap [post]
func (h *RosterHandler) Swap(c *gin.Context) {
	var req dto.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid swap payload"))
		return
	}
	resp, err := h.service.Swap(c.Request.Context(), req)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code != appErrors.ErrInternal.Code {
			h.metrics.RecordSwap("rejected")
		}
		response.Error(c, err)
		return
	}
	h.metrics.RecordSwap("ok")
	response.JSON(c, http.StatusOK, resp, nil)
}

// Compliance godoc
// @Summary Weekly compliance verdict for one staff member
// @Tags Roster
// @Produce json
// @Param id path string true "Staff ID"
// @Param weekStart query string true "Week start date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /roster/compliance/{id} [get]
func (h *RosterHandler) Compliance(c *gin.Context) {
	weekStart := c.Query("weekStart")
	if weekStart == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart query parameter is required"))
		return
	}
	result, err := h.service.Compliance(c.Request.Context(), c.Param("id"), weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Metrics godoc
// @Summary Aggregate roster utilization metrics for a week
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.MetricsRequest true "Metrics payload"
// @Success 200 {object} response.Envelope
// @Router /roster/metrics [post]
func (h *RosterHandler) Metrics(c *gin.Context) {
	var req dto.MetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid metrics payload"))
		return
	}
	metrics, err := h.service.Metrics(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}
