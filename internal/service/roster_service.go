package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/roster"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type rosterShiftFeeder interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	ListByDateRange(ctx context.Context, from, to, staffID string) ([]models.Shift, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, shifts []models.Shift) error
	UpdateStaffWithTx(ctx context.Context, tx *sqlx.Tx, shiftID, staffID string) error
}

type rosterStaffReader interface {
	FindByID(ctx context.Context, id string) (*models.StaffMember, error)
	ListActive(ctx context.Context, department string) ([]models.StaffMember, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// RosterService orchestrates weekly roster generation, persistence, swaps,
// compliance verdicts and utilization metrics.
type RosterService struct {
	shifts     rosterShiftFeeder
	staff      rosterStaffReader
	cache      rosterCache
	tx         txProvider
	metrics    *MetricsService
	generator  *roster.Generator
	engine     *roster.ComplianceEngine
	aggregator *roster.Aggregator
	validator  *validator.Validate
	logger     *zap.Logger
	store      *proposalStore
	cacheTTL   time.Duration
}

// RosterServiceConfig governs proposal and cache behaviour.
type RosterServiceConfig struct {
	ProposalTTL     time.Duration
	MetricsCacheTTL time.Duration
}

// NewRosterService wires roster dependencies.
func NewRosterService(
	shifts rosterShiftFeeder,
	staff rosterStaffReader,
	cache rosterCache,
	tx txProvider,
	metrics *MetricsService,
	policy roster.Policy,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RosterServiceConfig,
) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.MetricsCacheTTL <= 0 {
		cfg.MetricsCacheTTL = 5 * time.Minute
	}
	return &RosterService{
		shifts:     shifts,
		staff:      staff,
		cache:      cache,
		tx:         tx,
		metrics:    metrics,
		generator:  roster.NewGenerator(policy),
		engine:     roster.NewComplianceEngine(policy),
		aggregator: roster.NewAggregator(policy),
		validator:  validate,
		logger:     logger,
		store:      newProposalStore(cfg.ProposalTTL),
		cacheTTL:   cfg.MetricsCacheTTL,
	}
}

// Generate builds a weekly roster proposal. The proposal is held in memory
// under a TTL and committed to storage only via Save. Departments that cannot
// be fully staffed come back as coverage gaps, never as errors.
func (s *RosterService) Generate(ctx context.Context, req dto.GenerateRosterRequest) (*dto.GenerateRosterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster generation payload")
	}

	staff, err := s.staff.ListActive(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff pool")
	}
	if len(staff) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active staff available for rostering")
	}

	weekEnd, err := roster.AddDays(req.WeekStart, 6)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be a valid date")
	}
	existing, err := s.shifts.ListByDateRange(ctx, req.WeekStart, weekEnd, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing shifts")
	}

	shifts, err := s.generator.Generate(req.WeekStart, staff, req.Requirements, existing)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "roster generation failed")
	}

	metrics := s.aggregator.Aggregate(shifts, staff, req.WeekStart, req.Requirements)

	verdicts, err := s.proposalVerdicts(req.WeekStart, staff, existing, shifts)
	if err != nil {
		return nil, err
	}

	proposal := rosterProposal{
		ProposalID:   uuid.NewString(),
		WeekStart:    req.WeekStart,
		Requirements: req.Requirements,
		Shifts:       shifts,
		Metrics:      metrics,
		Verdicts:     verdicts,
		RequestedAt:  time.Now().UTC(),
	}
	s.store.Save(proposal)

	return &dto.GenerateRosterResponse{
		ProposalID:   proposal.ProposalID,
		WeekStart:    proposal.WeekStart,
		Shifts:       shifts,
		Metrics:      metrics,
		Verdicts:     verdicts,
		CoverageGaps: metrics.CoverageGaps,
	}, nil
}

// proposalVerdicts evaluates the week for every staff member the generator
// assigned, against existing and proposed shifts combined.
func (s *RosterService) proposalVerdicts(weekStart string, staff []models.StaffMember, existing, generated []models.Shift) ([]roster.ComplianceResult, error) {
	assigned := make(map[string]struct{}, len(generated))
	for _, shift := range generated {
		assigned[shift.StaffID] = struct{}{}
	}

	combined := make([]models.Shift, 0, len(existing)+len(generated))
	combined = append(combined, existing...)
	combined = append(combined, generated...)

	verdicts := make([]roster.ComplianceResult, 0, len(assigned))
	for _, member := range staff {
		if _, ok := assigned[member.ID]; !ok {
			continue
		}
		result, err := s.engine.Evaluate(member.ID, weekStart, combined)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate proposal compliance")
		}
		verdicts = append(verdicts, result)
	}
	return verdicts, nil
}

// Save commits a generated proposal to storage inside one transaction.
func (s *RosterService) Save(ctx context.Context, req dto.SaveRosterRequest) (*dto.SaveRosterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save roster payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if !req.Force {
		for _, verdict := range proposal.Verdicts {
			if !verdict.Valid {
				return nil, appErrors.Clone(appErrors.ErrComplianceBlocked, "proposal carries compliance violations; set force to override")
			}
		}
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.shifts.BulkCreateWithTx(ctx, tx, proposal.Shifts); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist roster shifts")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit roster transaction")
		return nil, err
	}

	s.store.Delete(req.ProposalID)
	s.invalidateMetrics(ctx, proposal.WeekStart)

	return &dto.SaveRosterResponse{WeekStart: proposal.WeekStart, ShiftCount: len(proposal.Shifts)}, nil
}

// Swap exchanges the assignees of two stored shifts. Preconditions are
// checked in a fixed order: both shifts must exist, belong to the same
// department and share a shift type. The prospective schedules of both new
// assignees are evaluated before anything is written; breaches reject the
// swap unless the request forces it through, in which case they are returned
// as warnings.
func (s *RosterService) Swap(ctx context.Context, req dto.SwapRequest) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap payload")
	}

	from, err := s.loadShift(ctx, req.FromShiftID)
	if err != nil {
		return nil, err
	}
	to, err := s.loadShift(ctx, req.ToShiftID)
	if err != nil {
		return nil, err
	}

	swapped, err := roster.Swap(from.ID, to.ID, []models.Shift{*from, *to})
	if err != nil {
		return nil, err
	}

	resp := &dto.SwapResponse{From: swapped[0], To: swapped[1]}
	for _, shift := range swapped {
		result, evalErr := s.evaluateSwappedWeek(ctx, shift, swapped)
		if evalErr != nil {
			return nil, evalErr
		}
		resp.Results = append(resp.Results, result)
		resp.Warnings = append(resp.Warnings, result.Violations...)
	}
	if len(resp.Warnings) > 0 && !req.Force {
		return nil, appErrors.Clone(appErrors.ErrComplianceBlocked, "swap would violate labor rules; set force to override")
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, shift := range swapped {
		if err = s.shifts.UpdateStaffWithTx(ctx, tx, shift.ID, shift.StaffID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist swap")
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit swap transaction")
		return nil, err
	}

	s.invalidateMetrics(ctx, swapped[0].Date)
	return resp, nil
}

// Compliance evaluates one staff member's week against the labor policy.
func (s *RosterService) Compliance(ctx context.Context, staffID, weekStart string) (*roster.ComplianceResult, error) {
	if staffID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "staff id is required")
	}
	if _, err := s.staff.FindByID(ctx, staffID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}

	history, err := s.weekHistory(ctx, staffID, weekStart)
	if err != nil {
		return nil, err
	}
	result, err := s.engine.Evaluate(staffID, weekStart, history)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to evaluate compliance")
	}
	return &result, nil
}

// Metrics aggregates utilization for a stored week, cached per week and
// department.
func (s *RosterService) Metrics(ctx context.Context, req dto.MetricsRequest) (*roster.Metrics, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid metrics payload")
	}

	// requirement maps vary per caller and change the coverage-gap output,
	// so only requirement-free responses are cached
	cacheable := len(req.Requirements) == 0
	key := metricsCacheKey(req.WeekStart, req.Department)
	if s.cache != nil && cacheable {
		var cached roster.Metrics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	weekEnd, err := roster.AddDays(req.WeekStart, 6)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be a valid date")
	}
	shifts, err := s.shifts.ListByDateRange(ctx, req.WeekStart, weekEnd, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
	}
	if req.Department != "" {
		filtered := shifts[:0]
		for _, shift := range shifts {
			if shift.Department == req.Department {
				filtered = append(filtered, shift)
			}
		}
		shifts = filtered
	}

	staff, err := s.staff.ListActive(ctx, req.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff pool")
	}

	metrics := s.aggregator.Aggregate(shifts, staff, req.WeekStart, req.Requirements)
	if s.cache != nil && cacheable {
		if err := s.cache.Set(ctx, key, metrics, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache roster metrics", zap.String("key", key), zap.Error(err))
		}
	}
	return &metrics, nil
}

// WeekShifts returns the stored shifts for a week, optionally one department.
// Used by roster export.
func (s *RosterService) WeekShifts(ctx context.Context, weekStart, department string) ([]models.Shift, error) {
	weekEnd, err := roster.AddDays(weekStart, 6)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be a valid date")
	}
	shifts, err := s.shifts.ListByDateRange(ctx, weekStart, weekEnd, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
	}
	if department == "" {
		return shifts, nil
	}
	filtered := make([]models.Shift, 0, len(shifts))
	for _, shift := range shifts {
		if shift.Department == department {
			filtered = append(filtered, shift)
		}
	}
	return filtered, nil
}

func (s *RosterService) loadShift(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.shifts.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrShiftNotFound, fmt.Sprintf("shift %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	return shift, nil
}

// weekHistory loads the evaluated week padded by a week on both sides so
// consecutive-day runs crossing the boundary are visible.
func (s *RosterService) weekHistory(ctx context.Context, staffID, weekStart string) ([]models.Shift, error) {
	from, err := roster.AddDays(weekStart, -7)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be a valid date")
	}
	to, _ := roster.AddDays(weekStart, 13)
	history, err := s.shifts.ListByDateRange(ctx, from, to, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift history")
	}
	return history, nil
}

// evaluateSwappedWeek runs the weekly verdict for a shift's new assignee as
// if the swap had already been applied: stored history rows for the swapped
// pair are replaced by their exchanged versions.
func (s *RosterService) evaluateSwappedWeek(ctx context.Context, shift models.Shift, swapped []models.Shift) (roster.ComplianceResult, error) {
	weekStart, err := roster.WeekStart(shift.Date)
	if err != nil {
		return roster.ComplianceResult{}, appErrors.Clone(appErrors.ErrValidation, "invalid shift date")
	}

	from, err := roster.AddDays(weekStart, -7)
	if err != nil {
		return roster.ComplianceResult{}, appErrors.Clone(appErrors.ErrValidation, "invalid shift date")
	}
	to, _ := roster.AddDays(weekStart, 13)
	history, err := s.shifts.ListByDateRange(ctx, from, to, "")
	if err != nil {
		return roster.ComplianceResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift history")
	}

	replaced := make(map[string]models.Shift, len(swapped))
	for _, sw := range swapped {
		replaced[sw.ID] = sw
	}
	for i := range history {
		if sw, ok := replaced[history[i].ID]; ok {
			history[i] = sw
		}
	}

	result, err := s.engine.Evaluate(shift.StaffID, weekStart, history)
	if err != nil {
		return roster.ComplianceResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate compliance")
	}
	if restViolations := s.engine.CheckRest(shift, history); len(restViolations) > 0 {
		result.Valid = false
		result.Violations = append(result.Violations, restViolations...)
	}
	return result, nil
}

func (s *RosterService) invalidateMetrics(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	weekStart, err := roster.WeekStart(date)
	if err != nil {
		weekStart = date
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("roster:metrics:%s:*", weekStart)); err != nil {
		s.logger.Warn("failed to invalidate roster metrics cache", zap.String("week_start", weekStart), zap.Error(err))
	}
}

func metricsCacheKey(weekStart, department string) string {
	if department == "" {
		department = "all"
	}
	return fmt.Sprintf("roster:metrics:%s:%s", weekStart, department)
}

// --- Proposal cache ---

type rosterProposal struct {
	ProposalID   string
	WeekStart    string
	Requirements map[string]int
	Shifts       []models.Shift
	Metrics      roster.Metrics
	Verdicts     []roster.ComplianceResult
	RequestedAt  time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]rosterProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]rosterProposal),
	}
}

func (s *proposalStore) Save(proposal rosterProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (rosterProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return rosterProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return rosterProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
