package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/edutrack-mx/sira-api/internal/models"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
	"github.com/edutrack-mx/sira-api/pkg/export"
)

const exportPageSize = 100

type recordLister interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.EnrollmentRecordDetail, int, error)
}

// ExportFile is a rendered export ready to be served as a download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders enrollment record listings as downloadable files.
type ExportService struct {
	records recordLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(records recordLister, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{records: records, csv: csv, pdf: pdf, logger: logger}
}

// Records renders the filtered record list in the requested format.
func (s *ExportService) Records(ctx context.Context, format string, filter models.RecordFilter) (*ExportFile, error) {
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	records, err := s.collect(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect records for export")
	}

	dataset := buildRecordDataset(records)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: fmt.Sprintf("enrollment_records_%s.csv", stamp)}, nil
	default:
		content, err := s.pdf.Render(dataset, "Enrollment Records")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: fmt.Sprintf("enrollment_records_%s.pdf", stamp)}, nil
	}
}

// collect pages through the repository until the filtered listing is exhausted.
func (s *ExportService) collect(ctx context.Context, filter models.RecordFilter) ([]models.EnrollmentRecordDetail, error) {
	var all []models.EnrollmentRecordDetail
	filter.PageSize = exportPageSize
	for page := 1; ; page++ {
		filter.Page = page
		records, _, err := s.records.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) < exportPageSize {
			return all, nil
		}
	}
}

func buildRecordDataset(records []models.EnrollmentRecordDetail) export.Dataset {
	headers := []string{"Control Number", "Student", "Subject", "Semester", "Unit 1", "Unit 2", "Unit 3", "Final", "Attendance %", "Status", "Risk Factors"}
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"Control Number": r.ControlNumber,
			"Student":        r.StudentName,
			"Subject":        r.SubjectName,
			"Semester":       strconv.Itoa(r.Semester),
			"Unit 1":         formatGrade(r.Unit1Grade),
			"Unit 2":         formatGrade(r.Unit2Grade),
			"Unit 3":         formatGrade(r.Unit3Grade),
			"Final":          formatGrade(r.FinalGrade),
			"Attendance %":   formatGrade(r.AttendancePercentage),
			"Status":         string(r.Status),
			"Risk Factors":   strconv.Itoa(r.RiskFactorCount),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatGrade(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
