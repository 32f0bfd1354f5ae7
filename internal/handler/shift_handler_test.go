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
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type shiftManagerMock struct {
	listQuery dto.ShiftListQuery
	created   dto.CreateShiftRequest
	warnings  []roster.Violation
	statusErr error
	cancelled string
}

func (m *shiftManagerMock) List(ctx context.Context, query dto.ShiftListQuery) ([]models.Shift, *models.Pagination, error) {
	m.listQuery = query
	shifts := []models.Shift{{ID: "sh1", StaffID: "s1", Department: "Surgery"}}
	return shifts, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 1}, nil
}

func (m *shiftManagerMock) Get(ctx context.Context, id string) (*models.Shift, error) {
	return &models.Shift{ID: id}, nil
}

func (m *shiftManagerMock) Create(ctx context.Context, req dto.CreateShiftRequest) (*dto.CreateShiftResponse, error) {
	m.created = req
	return &dto.CreateShiftResponse{
		Shift:    models.Shift{ID: "sh-new", StaffID: req.StaffID, ShiftType: models.ShiftType(req.ShiftType)},
		Warnings: m.warnings,
	}, nil
}

func (m *shiftManagerMock) UpdateStatus(ctx context.Context, id string, req dto.UpdateShiftStatusRequest) (*models.Shift, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &models.Shift{ID: id, Status: models.ShiftStatus(req.Status)}, nil
}

func (m *shiftManagerMock) Cancel(ctx context.Context, id string) error {
	m.cancelled = id
	return nil
}

func TestShiftListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftManagerMock{}
	handler := &ShiftHandler{shifts: mockSvc}
	req, _ := http.NewRequest(http.MethodGet, "/shifts?staffId=s1&shiftType=NIGHT&dateFrom=2026-01-05&dateTo=2026-01-11", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "s1", mockSvc.listQuery.StaffID)
	require.Equal(t, "NIGHT", mockSvc.listQuery.ShiftType)
	require.Equal(t, "2026-01-05", mockSvc.listQuery.DateFrom)
	require.Equal(t, 50, mockSvc.listQuery.PageSize)
}

func TestShiftCreateReturnsWarnings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftManagerMock{
		warnings: []roster.Violation{{Kind: roster.InsufficientRest, Detail: "only 0.0h rest before shift on 2026-01-06"}},
	}
	handler := &ShiftHandler{shifts: mockSvc}
	payload := []byte(`{"staffId":"s1","date":"2026-01-06","shiftType":"MORNING","department":"Surgery"}`)
	req, _ := http.NewRequest(http.MethodPost, "/shifts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "s1", mockSvc.created.StaffID)
	require.Contains(t, w.Body.String(), "INSUFFICIENT_REST")
}

func TestShiftUpdateStatusConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftManagerMock{
		statusErr: appErrors.Clone(appErrors.ErrConflict, "cancelled shifts cannot change status"),
	}
	handler := &ShiftHandler{shifts: mockSvc}
	req, _ := http.NewRequest(http.MethodPatch, "/shifts/sh1/status", bytes.NewReader([]byte(`{"status":"CONFIRMED"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "sh1"}}

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestShiftDeleteCancels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &shiftManagerMock{}
	handler := &ShiftHandler{shifts: mockSvc}
	req, _ := http.NewRequest(http.MethodDelete, "/shifts/sh1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "sh1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "sh1", mockSvc.cancelled)
}
