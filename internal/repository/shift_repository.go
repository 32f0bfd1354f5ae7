package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrm-go/roster-api/internal/models"
)

const shiftColumns = "id, staff_id, date, start_time, end_time, shift_type, department, status, created_at, updated_at"

// ShiftRepository provides persistence for shifts.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository creates a new shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// List returns shifts with optional filtering and pagination.
func (r *ShiftRepository) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error) {
	base := "FROM shifts WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.ShiftType != "" {
		conditions = append(conditions, fmt.Sprintf("shift_type = $%d", len(args)+1))
		args = append(args, string(filter.ShiftType))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "date"
	}
	allowedSorts := map[string]string{
		"date":       "date",
		"start_time": "start_time",
		"department": "department",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", shiftColumns, base, column, order, size, offset)
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shifts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count shifts: %w", err)
	}

	return shifts, total, nil
}

// FindByID fetches a shift by ID.
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts WHERE id = $1", shiftColumns)
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListByDateRange returns all shifts inside [from, to] inclusive, optionally
// narrowed to one staff member. This is the history feed for compliance
// checks and metrics.
func (r *ShiftRepository) ListByDateRange(ctx context.Context, from, to, staffID string) ([]models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts WHERE date >= $1 AND date <= $2", shiftColumns)
	args := []interface{}{from, to}
	if staffID != "" {
		query += " AND staff_id = $3"
		args = append(args, staffID)
	}
	query += " ORDER BY date ASC, start_time ASC"

	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, fmt.Errorf("list shifts by range: %w", err)
	}
	return shifts, nil
}

// Create inserts a single shift record.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	prepareShift(shift)
	const query = `INSERT INTO shifts (id, staff_id, date, start_time, end_time, shift_type, department, status, created_at, updated_at)
		VALUES (:id, :staff_id, :date, :start_time, :end_time, :shift_type, :department, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// BulkCreateWithTx inserts a batch of shifts inside the supplied transaction.
func (r *ShiftRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, shifts []models.Shift) error {
	const query = `INSERT INTO shifts (id, staff_id, date, start_time, end_time, shift_type, department, status, created_at, updated_at)
		VALUES (:id, :staff_id, :date, :start_time, :end_time, :shift_type, :department, :status, :created_at, :updated_at)`
	for i := range shifts {
		prepareShift(&shifts[i])
		if _, err := tx.NamedExecContext(ctx, query, shifts[i]); err != nil {
			return fmt.Errorf("bulk create shift %s: %w", shifts[i].ID, err)
		}
	}
	return nil
}

// UpdateStaffWithTx reassigns a shift to another staff member inside the
// supplied transaction. Only the assignment changes; swap-invariant fields
// are left alone.
func (r *ShiftRepository) UpdateStaffWithTx(ctx context.Context, tx *sqlx.Tx, shiftID, staffID string) error {
	const query = `UPDATE shifts SET staff_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, shiftID, staffID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reassign shift %s: %w", shiftID, err)
	}
	return nil
}

// UpdateStatus transitions a shift's lifecycle state.
func (r *ShiftRepository) UpdateStatus(ctx context.Context, id string, status models.ShiftStatus) error {
	const query = `UPDATE shifts SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update shift status: %w", err)
	}
	return nil
}

// Cancel marks a shift cancelled. Shift rows are kept for history.
func (r *ShiftRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE shifts SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ShiftCancelled, time.Now().UTC()); err != nil {
		return fmt.Errorf("cancel shift: %w", err)
	}
	return nil
}

func prepareShift(shift *models.Shift) {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now
}
