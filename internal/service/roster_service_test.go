package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type rosterFeederStub struct {
	shifts     map[string]models.Shift
	created    []models.Shift
	reassigned map[string]string
}

func (s *rosterFeederStub) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	if shift, ok := s.shifts[id]; ok {
		cp := shift
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *rosterFeederStub) ListByDateRange(ctx context.Context, from, to, staffID string) ([]models.Shift, error) {
	var out []models.Shift
	for _, shift := range s.shifts {
		if shift.Date < from || shift.Date > to {
			continue
		}
		if staffID != "" && shift.StaffID != staffID {
			continue
		}
		out = append(out, shift)
	}
	return out, nil
}

func (s *rosterFeederStub) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, shifts []models.Shift) error {
	s.created = append(s.created, shifts...)
	return nil
}

func (s *rosterFeederStub) UpdateStaffWithTx(ctx context.Context, tx *sqlx.Tx, shiftID, staffID string) error {
	if s.reassigned == nil {
		s.reassigned = make(map[string]string)
	}
	s.reassigned[shiftID] = staffID
	return nil
}

type staffReaderStub struct {
	members []models.StaffMember
}

func (s *staffReaderStub) FindByID(ctx context.Context, id string) (*models.StaffMember, error) {
	for _, member := range s.members {
		if member.ID == id {
			cp := member
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *staffReaderStub) ListActive(ctx context.Context, department string) ([]models.StaffMember, error) {
	var out []models.StaffMember
	for _, member := range s.members {
		if !member.Active {
			continue
		}
		if department != "" && member.Department != department {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}

type cacheStub struct {
	values map[string][]byte
	gets   int
	hits   int
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.values == nil {
		c.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.values = nil
	return nil
}

type rosterTxMock struct {
	db *sqlx.DB
}

func newRosterTxMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &rosterTxMock{db: sqlxdb}, mock
}

func (m *rosterTxMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, opts)
}

func surgeryStaff(n int) []models.StaffMember {
	names := []string{"Ada", "Ben", "Cleo", "Dan", "Eve", "Finn", "Gia"}
	members := make([]models.StaffMember, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, models.StaffMember{
			ID:         names[i],
			FullName:   "Dr. " + names[i],
			Email:      names[i] + "@example.com",
			Role:       models.RoleDoctor,
			Department: "Surgery",
			Active:     true,
		})
	}
	return members
}

func newRosterFixture(t *testing.T, feeder *rosterFeederStub, staff *staffReaderStub, tx txProvider) *RosterService {
	if feeder == nil {
		feeder = &rosterFeederStub{shifts: map[string]models.Shift{}}
	}
	if staff == nil {
		staff = &staffReaderStub{members: surgeryStaff(5)}
	}
	return NewRosterService(feeder, staff, &cacheStub{}, tx, nil, roster.DefaultPolicy(), validator.New(), zap.NewNop(), RosterServiceConfig{})
}

func TestRosterServiceGenerateFullCoverage(t *testing.T) {
	service := newRosterFixture(t, nil, nil, nil)

	resp, err := service.Generate(context.Background(), dto.GenerateRosterRequest{
		WeekStart:    "2026-01-05",
		Requirements: map[string]int{"Surgery": 3},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Shifts, 21)
	assert.Empty(t, resp.CoverageGaps)
	assert.NotEmpty(t, resp.ProposalID)
	assert.Equal(t, 21, resp.Metrics.DepartmentDistribution["Surgery"])

	// first-come assignment loads the front of the pool all week, so the
	// verdicts flag those members over the weekly limits
	require.NotEmpty(t, resp.Verdicts)
	for _, verdict := range resp.Verdicts {
		assert.False(t, verdict.Valid)
		assert.Equal(t, 7, verdict.ShiftCount)
		assert.InDelta(t, 56.0, verdict.WeeklyHours, 0.001)
	}
}

func TestRosterServiceGenerateUnderProvisioned(t *testing.T) {
	service := newRosterFixture(t, nil, &staffReaderStub{members: surgeryStaff(1)}, nil)

	resp, err := service.Generate(context.Background(), dto.GenerateRosterRequest{
		WeekStart:    "2026-01-05",
		Requirements: map[string]int{"Surgery": 3},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Shifts, 7)
	assert.NotEmpty(t, resp.CoverageGaps)
	for _, gap := range resp.CoverageGaps {
		assert.Equal(t, "Surgery", gap.Department)
		assert.Less(t, gap.Assigned, gap.Required)
	}
}

func TestRosterServiceGenerateRejectsBadWeekStart(t *testing.T) {
	service := newRosterFixture(t, nil, nil, nil)

	_, err := service.Generate(context.Background(), dto.GenerateRosterRequest{
		WeekStart:    "05-01-2026",
		Requirements: map[string]int{"Surgery": 3},
	})
	require.Error(t, err)
}

func TestRosterServiceSaveCommitsProposal(t *testing.T) {
	feeder := &rosterFeederStub{shifts: map[string]models.Shift{}}
	tx, mock := newRosterTxMock(t)
	service := newRosterFixture(t, feeder, nil, tx)

	resp, err := service.Generate(context.Background(), dto.GenerateRosterRequest{
		WeekStart:    "2026-01-05",
		Requirements: map[string]int{"Surgery": 3},
	})
	require.NoError(t, err)

	// verdicts carry violations, so an unforced save is refused and the
	// proposal stays available
	_, err = service.Save(context.Background(), dto.SaveRosterRequest{ProposalID: resp.ProposalID})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrComplianceBlocked.Code, appErr.Code)
	assert.Empty(t, feeder.created)

	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := service.Save(context.Background(), dto.SaveRosterRequest{ProposalID: resp.ProposalID, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 21, saved.ShiftCount)
	assert.Len(t, feeder.created, 21)
	assert.NoError(t, mock.ExpectationsWereMet())

	// proposals are one-shot
	_, err = service.Save(context.Background(), dto.SaveRosterRequest{ProposalID: resp.ProposalID, Force: true})
	require.Error(t, err)
}

func TestRosterServiceSaveCleanProposalWithoutForce(t *testing.T) {
	members := surgeryStaff(2)
	members[0].Availability = types.JSONText(`{"MONDAY":true,"TUESDAY":true,"WEDNESDAY":true}`)
	members[1].Availability = types.JSONText(`{"THURSDAY":true,"FRIDAY":true,"SATURDAY":true,"SUNDAY":true}`)

	feeder := &rosterFeederStub{shifts: map[string]models.Shift{}}
	tx, mock := newRosterTxMock(t)
	service := newRosterFixture(t, feeder, &staffReaderStub{members: members}, tx)

	resp, err := service.Generate(context.Background(), dto.GenerateRosterRequest{
		WeekStart:    "2026-01-05",
		Requirements: map[string]int{"Surgery": 1},
	})
	require.NoError(t, err)
	require.Len(t, resp.Shifts, 7)
	for _, verdict := range resp.Verdicts {
		assert.True(t, verdict.Valid)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := service.Save(context.Background(), dto.SaveRosterRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, 7, saved.ShiftCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterServiceSaveUnknownProposal(t *testing.T) {
	tx, _ := newRosterTxMock(t)
	service := newRosterFixture(t, nil, nil, tx)

	_, err := service.Save(context.Background(), dto.SaveRosterRequest{ProposalID: "missing"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRosterServiceSwapExchangesAssignees(t *testing.T) {
	feeder := &rosterFeederStub{shifts: map[string]models.Shift{
		"sh1": {ID: "sh1", StaffID: "Ada", Date: "2026-01-05", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
		"sh2": {ID: "sh2", StaffID: "Ben", Date: "2026-01-06", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
	}}
	tx, mock := newRosterTxMock(t)
	service := newRosterFixture(t, feeder, nil, tx)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := service.Swap(context.Background(), dto.SwapRequest{FromShiftID: "sh1", ToShiftID: "sh2"})
	require.NoError(t, err)
	assert.Equal(t, "Ben", resp.From.StaffID)
	assert.Equal(t, "Ada", resp.To.StaffID)
	assert.Equal(t, "Ben", feeder.reassigned["sh1"])
	assert.Equal(t, "Ada", feeder.reassigned["sh2"])
	assert.Empty(t, resp.Warnings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterServiceSwapDepartmentMismatch(t *testing.T) {
	feeder := &rosterFeederStub{shifts: map[string]models.Shift{
		"sh1": {ID: "sh1", StaffID: "Ada", Date: "2026-01-05", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
		"sh2": {ID: "sh2", StaffID: "Ben", Date: "2026-01-06", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Radiology", Status: models.ShiftScheduled},
	}}
	service := newRosterFixture(t, feeder, nil, nil)

	_, err := service.Swap(context.Background(), dto.SwapRequest{FromShiftID: "sh1", ToShiftID: "sh2"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDepartmentMismatch.Code, appErr.Code)
	assert.Empty(t, feeder.reassigned)
}

func TestRosterServiceSwapMissingShift(t *testing.T) {
	service := newRosterFixture(t, &rosterFeederStub{shifts: map[string]models.Shift{}}, nil, nil)

	_, err := service.Swap(context.Background(), dto.SwapRequest{FromShiftID: "ghost", ToShiftID: "other"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrShiftNotFound.Code, appErr.Code)
}

func TestRosterServiceSwapBlockedByCompliance(t *testing.T) {
	// Ben already has a night shift ending 06:00 on the 6th; giving him the
	// morning shift that starts at 06:00 on the 6th leaves no rest at all.
	feeder := &rosterFeederStub{shifts: map[string]models.Shift{
		"sh1": {ID: "sh1", StaffID: "Ada", Date: "2026-01-06", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
		"sh2": {ID: "sh2", StaffID: "Ben", Date: "2026-01-08", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
		"sh3": {ID: "sh3", StaffID: "Ben", Date: "2026-01-05", StartTime: "22:00", EndTime: "06:00", ShiftType: models.ShiftNight, Department: "Surgery", Status: models.ShiftScheduled},
	}}
	tx, mock := newRosterTxMock(t)
	service := newRosterFixture(t, feeder, nil, tx)

	_, err := service.Swap(context.Background(), dto.SwapRequest{FromShiftID: "sh1", ToShiftID: "sh2"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrComplianceBlocked.Code, appErr.Code)
	assert.Empty(t, feeder.reassigned)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := service.Swap(context.Background(), dto.SwapRequest{FromShiftID: "sh1", ToShiftID: "sh2", Force: true})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Warnings)
	assert.Equal(t, "Ben", feeder.reassigned["sh1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterServiceComplianceVerdict(t *testing.T) {
	feeder := &rosterFeederStub{shifts: map[string]models.Shift{
		"sh1": {ID: "sh1", StaffID: "Ada", Date: "2026-01-05", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
		"sh2": {ID: "sh2", StaffID: "Ada", Date: "2026-01-06", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
	}}
	service := newRosterFixture(t, feeder, nil, nil)

	result, err := service.Compliance(context.Background(), "Ada", "2026-01-05")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 16.0, result.WeeklyHours)
	assert.Equal(t, 2, result.ShiftCount)
}

func TestRosterServiceComplianceUnknownStaff(t *testing.T) {
	service := newRosterFixture(t, nil, nil, nil)

	_, err := service.Compliance(context.Background(), "ghost", "2026-01-05")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRosterServiceMetricsUsesCache(t *testing.T) {
	feeder := &rosterFeederStub{shifts: map[string]models.Shift{
		"sh1": {ID: "sh1", StaffID: "Ada", Date: "2026-01-05", StartTime: "06:00", EndTime: "14:00", ShiftType: models.ShiftMorning, Department: "Surgery", Status: models.ShiftScheduled},
	}}
	staff := &staffReaderStub{members: surgeryStaff(2)}
	cache := &cacheStub{}
	prom := NewMetricsService()
	service := NewRosterService(feeder, staff, cache, nil, prom, roster.DefaultPolicy(), validator.New(), zap.NewNop(), RosterServiceConfig{})

	first, err := service.Metrics(context.Background(), dto.MetricsRequest{WeekStart: "2026-01-05"})
	require.NoError(t, err)
	assert.Equal(t, 8.0, first.TotalHours)
	assert.Equal(t, 0, cache.hits)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.cacheMisses))

	second, err := service.Metrics(context.Background(), dto.MetricsRequest{WeekStart: "2026-01-05"})
	require.NoError(t, err)
	assert.Equal(t, first.TotalHours, second.TotalHours)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.cacheHits))

	// requirement-bearing requests bypass the cache entirely and record
	// neither a hit nor a miss
	third, err := service.Metrics(context.Background(), dto.MetricsRequest{
		WeekStart:    "2026-01-05",
		Requirements: map[string]int{"Surgery": 3},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, third.CoverageGaps)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.cacheMisses))
}
