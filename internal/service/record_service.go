package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edutrack-mx/sira-api/internal/models"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
)

// DefaultWithdrawalNotes is recorded on the risk association when the caller
// supplies none.
const DefaultWithdrawalNotes = "Student withdrawal"

type recordRepository interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.EnrollmentRecordDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRecordDetail, error)
	Create(ctx context.Context, record *models.EnrollmentRecord) error
	Withdraw(ctx context.Context, recordID string, assoc *models.StudentRiskFactor) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type riskFactorResolver interface {
	FindCategoryByID(ctx context.Context, id string) (*models.RiskFactorCategory, error)
	FindFactorByCategory(ctx context.Context, categoryID string) (*models.RiskFactor, error)
	CreateFactor(ctx context.Context, factor *models.RiskFactor) error
}

// SubmitRecordRequest holds payload for submitting a subject enrollment.
type SubmitRecordRequest struct {
	StudentID            string   `json:"student_id" validate:"required"`
	SubjectID            string   `json:"subject_id" validate:"required"`
	Semester             int      `json:"semester" validate:"required,min=1,max=12"`
	Unit1Grade           *float64 `json:"unit1_grade" validate:"omitempty,min=0,max=100"`
	Unit2Grade           *float64 `json:"unit2_grade" validate:"omitempty,min=0,max=100"`
	Unit3Grade           *float64 `json:"unit3_grade" validate:"omitempty,min=0,max=100"`
	AttendancePercentage *float64 `json:"attendance_percentage" validate:"omitempty,min=0,max=100"`
}

// WithdrawRequest holds payload for the administrative withdrawal action.
type WithdrawRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Notes      string `json:"notes"`
}

// RecordService orchestrates the enrollment record lifecycle: grade
// evaluation at submission and the withdrawal transition.
type RecordService struct {
	repo      recordRepository
	students  studentReader
	subjects  subjectReader
	risks     riskFactorResolver
	evaluator Evaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs the record service.
func NewRecordService(repo recordRepository, students studentReader, subjects subjectReader, risks riskFactorResolver, evaluator Evaluator, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{
		repo:      repo,
		students:  students,
		subjects:  subjects,
		risks:     risks,
		evaluator: evaluator,
		validator: validate,
		logger:    logger,
	}
}

// List returns enrollment records with pagination metadata.
func (s *RecordService) List(ctx context.Context, filter models.RecordFilter) ([]models.EnrollmentRecordDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown record status")
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Get returns a record with joined display fields.
func (s *RecordService) Get(ctx context.Context, id string) (*models.EnrollmentRecordDetail, error) {
	record, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}

// Submit creates a new enrollment record with the computed final grade and
// status. Every submission inserts a fresh row, even for the same
// student/subject/semester; prior attempts are kept as history.
func (s *RecordService) Submit(ctx context.Context, req SubmitRecordRequest) (*models.EnrollmentRecordDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid record payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	finalGrade := s.evaluator.ComputeFinalGrade(req.Unit1Grade, req.Unit2Grade, req.Unit3Grade)
	status := s.evaluator.Classify(finalGrade)

	record := &models.EnrollmentRecord{
		StudentID:            req.StudentID,
		SubjectID:            req.SubjectID,
		Semester:             req.Semester,
		Unit1Grade:           req.Unit1Grade,
		Unit2Grade:           req.Unit2Grade,
		Unit3Grade:           req.Unit3Grade,
		FinalGrade:           &finalGrade,
		AttendancePercentage: req.AttendancePercentage,
		Status:               status,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create record")
	}

	detail, err := s.repo.FindDetailByID(ctx, record.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record detail")
	}
	return detail, nil
}

// Withdraw forces a record into withdrawn status. It resolves (or creates) the
// risk factor for the given category, then inserts the high-severity
// association and flips the status in one transaction. A record already
// withdrawn is rejected.
func (s *RecordService) Withdraw(ctx context.Context, recordID string, req WithdrawRequest) (*models.EnrollmentRecordDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid withdrawal payload")
	}
	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	if record.Status == models.RecordStatusWithdrawn {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "record already withdrawn")
	}

	factor, err := s.resolveFactor(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	notes := req.Notes
	if notes == "" {
		notes = DefaultWithdrawalNotes
	}
	assoc := &models.StudentRiskFactor{
		RiskFactorID: factor.ID,
		Severity:     models.SeverityHigh,
		Notes:        &notes,
	}
	if err := s.repo.Withdraw(ctx, recordID, assoc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw record")
	}

	s.logger.Info("record withdrawn",
		zap.String("record_id", recordID),
		zap.String("category_id", req.CategoryID),
		zap.String("risk_factor_id", factor.ID),
	)

	detail, err := s.repo.FindDetailByID(ctx, recordID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record detail")
	}
	return detail, nil
}

// resolveFactor returns the category's risk factor, creating one from the
// category's name and description when the category has none yet. The created
// factor is reused by later withdrawals under the same category.
func (s *RecordService) resolveFactor(ctx context.Context, categoryID string) (*models.RiskFactor, error) {
	category, err := s.risks.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "risk category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load risk category")
	}

	factor, err := s.risks.FindFactorByCategory(ctx, categoryID)
	if err == nil {
		return factor, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load risk factor")
	}

	name := category.Name
	if name == "" {
		name = "Withdrawal factor"
	}
	factor = &models.RiskFactor{CategoryID: categoryID, Name: name, Description: category.Description}
	if err := s.risks.CreateFactor(ctx, factor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create risk factor")
	}
	return factor, nil
}
