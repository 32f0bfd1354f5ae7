package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/service"
	"github.com/hrm-go/roster-api/pkg/response"
)

type rosterExporter interface {
	Export(ctx context.Context, query dto.RosterExportQuery) (*service.ReportResult, error)
}

// ReportHandler serves roster export downloads.
type ReportHandler struct {
	reports rosterExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Export godoc
// @Summary Export the stored weekly roster
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param weekStart query string true "Week start date (YYYY-MM-DD)"
// @Param format query string false "Export format (csv/pdf), default csv"
// @Param department query string false "Restrict to one department"
// @Success 200 {file} byte
// @Router /roster/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	query := dto.RosterExportQuery{
		WeekStart:  c.Query("weekStart"),
		Format:     c.Query("format"),
		Department: c.Query("department"),
	}
	result, err := h.reports.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
