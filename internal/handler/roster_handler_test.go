package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hrm-go/roster-api/internal/dto"
	internalmiddleware "github.com/hrm-go/roster-api/internal/middleware"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type rosterOrchestratorMock struct {
	captured    dto.GenerateRosterRequest
	swapCalled  bool
	swapErr     error
	complianceP string
	metricsReq  dto.MetricsRequest
}

func (m *rosterOrchestratorMock) Generate(ctx context.Context, req dto.GenerateRosterRequest) (*dto.GenerateRosterResponse, error) {
	m.captured = req
	return &dto.GenerateRosterResponse{ProposalID: "proposal-1", WeekStart: req.WeekStart}, nil
}

func (m *rosterOrchestratorMock) Save(ctx context.Context, req dto.SaveRosterRequest) (*dto.SaveRosterResponse, error) {
	if req.ProposalID != "proposal-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return &dto.SaveRosterResponse{WeekStart: "2026-01-05", ShiftCount: 21}, nil
}

func (m *rosterOrchestratorMock) Swap(ctx context.Context, req dto.SwapRequest) (*dto.SwapResponse, error) {
	m.swapCalled = true
	if m.swapErr != nil {
		return nil, m.swapErr
	}
	return &dto.SwapResponse{}, nil
}

func (m *rosterOrchestratorMock) Compliance(ctx context.Context, staffID, weekStart string) (*roster.ComplianceResult, error) {
	m.complianceP = staffID
	return &roster.ComplianceResult{StaffID: staffID, Valid: true}, nil
}

func (m *rosterOrchestratorMock) Metrics(ctx context.Context, req dto.MetricsRequest) (*roster.Metrics, error) {
	m.metricsReq = req
	return &roster.Metrics{TotalHours: 168, AverageHoursPerStaff: 33.6}, nil
}

func TestRosterGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterOrchestratorMock{}
	handler := &RosterHandler{service: mockSvc}
	payload := []byte(`{"weekStart":"2026-01-05","requirements":{"Surgery":3}}`)
	req, _ := http.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-01-05", mockSvc.captured.WeekStart)
	require.Equal(t, 3, mockSvc.captured.Requirements["Surgery"])
	require.Contains(t, w.Body.String(), `"proposalId":"proposal-1"`)
}

func TestRosterGenerateMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RosterHandler{service: &rosterOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader([]byte(`{"weekStart":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterSaveCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RosterHandler{service: &rosterOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/roster/save", bytes.NewReader([]byte(`{"proposalId":"proposal-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"shiftCount":21`)
}

func TestRosterSaveExpiredProposal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RosterHandler{service: &rosterOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/roster/save", bytes.NewReader([]byte(`{"proposalId":"stale"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Save(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRosterSwapBlocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterOrchestratorMock{
		swapErr: appErrors.Clone(appErrors.ErrComplianceBlocked, "swap would violate labor rules; set force to override"),
	}
	handler := &RosterHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/roster/swap", bytes.NewReader([]byte(`{"fromShiftId":"sh1","toShiftId":"sh2"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Swap(c)

	require.True(t, mockSvc.swapCalled)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "COMPLIANCE_BLOCKED")
}

func TestRosterMetricsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterOrchestratorMock{}
	handler := &RosterHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/roster/metrics", bytes.NewReader([]byte(`{"weekStart":"2026-01-05","department":"Surgery"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Metrics(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-01-05", mockSvc.metricsReq.WeekStart)
	require.Equal(t, "Surgery", mockSvc.metricsReq.Department)
	require.Contains(t, w.Body.String(), `"total_hours":168`)
}

func TestRosterComplianceRequiresWeekStart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterOrchestratorMock{}
	handler := &RosterHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodGet, "/roster/compliance/s1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Compliance(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, mockSvc.complianceP)
}

func TestRosterComplianceSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rosterOrchestratorMock{}
	handler := &RosterHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodGet, "/roster/compliance/s1?weekStart=2026-01-05", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Compliance(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "s1", mockSvc.complianceP)
}

func TestRosterGenerateForbiddenForStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RosterHandler{service: &rosterOrchestratorMock{}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStaff})
		c.Next()
	})
	router.POST("/roster/generate", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleHRManager), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader([]byte(`{"weekStart":"2026-01-05","requirements":{"Surgery":3}}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRosterGenerateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &RosterHandler{service: &rosterOrchestratorMock{}}
	router := gin.New()
	router.POST("/roster/generate", internalmiddleware.RequireRoles(models.RoleAdmin), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/roster/generate", bytes.NewReader([]byte(`{"weekStart":"2026-01-05","requirements":{"Surgery":3}}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
