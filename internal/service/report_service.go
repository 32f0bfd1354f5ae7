package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hrm-go/roster-api/internal/dto"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/pkg/export"
	appErrors "github.com/hrm-go/roster-api/pkg/errors"
)

type weekShiftReader interface {
	WeekShifts(ctx context.Context, weekStart, department string) ([]models.Shift, error)
}

type reportStaffReader interface {
	ListActive(ctx context.Context, department string) ([]models.StaffMember, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportResult carries a rendered roster export.
type ReportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportService renders stored weekly rosters as downloadable files.
type ReportService struct {
	roster    weekShiftReader
	staff     reportStaffReader
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(roster weekShiftReader, staff reportStaffReader, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		roster:    roster,
		staff:     staff,
		csv:       csv,
		pdf:       pdf,
		validator: validate,
		logger:    logger,
	}
}

// Export renders the stored roster for one week as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, query dto.RosterExportQuery) (*ReportResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}

	shifts, err := s.roster.WeekShifts(ctx, query.WeekStart, query.Department)
	if err != nil {
		return nil, err
	}

	names, err := s.staffNames(ctx, query.Department)
	if err != nil {
		return nil, err
	}
	dataset := buildRosterDataset(shifts, names)

	format := query.Format
	if format == "" {
		format = "csv"
	}

	var payload []byte
	var contentType, extension string
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
		contentType, extension = "text/csv", "csv"
	case "pdf":
		title := fmt.Sprintf("Weekly Roster %s", query.WeekStart)
		if query.Department != "" {
			title = fmt.Sprintf("%s - %s", title, query.Department)
		}
		payload, err = s.pdf.Render(dataset, title)
		contentType, extension = "application/pdf", "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export")
	}

	return &ReportResult{
		Filename:    fmt.Sprintf("roster_%s.%s", query.WeekStart, extension),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ReportService) staffNames(ctx context.Context, department string) (map[string]string, error) {
	staff, err := s.staff.ListActive(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff pool")
	}
	names := make(map[string]string, len(staff))
	for _, member := range staff {
		names[member.ID] = member.FullName
	}
	return names, nil
}

func buildRosterDataset(shifts []models.Shift, names map[string]string) export.Dataset {
	sorted := make([]models.Shift, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		if sorted[i].Department != sorted[j].Department {
			return sorted[i].Department < sorted[j].Department
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	rows := make([]map[string]string, 0, len(sorted))
	for _, shift := range sorted {
		name := names[shift.StaffID]
		if name == "" {
			name = shift.StaffID
		}
		rows = append(rows, map[string]string{
			"Date":       shift.Date,
			"Department": shift.Department,
			"Shift":      string(shift.ShiftType),
			"Start":      shift.StartTime,
			"End":        shift.EndTime,
			"Staff":      name,
			"Status":     string(shift.Status),
		})
	}

	return export.Dataset{
		Headers: []string{"Date", "Department", "Shift", "Start", "End", "Staff", "Status"},
		Rows:    rows,
	}
}
