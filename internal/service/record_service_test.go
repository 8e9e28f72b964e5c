package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edutrack-mx/sira-api/internal/models"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
)

type mockRecordRepo struct {
	records      map[string]*models.EnrollmentRecord
	associations []models.StudentRiskFactor
	listErr      error
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[string]*models.EnrollmentRecord)}
}

func (m *mockRecordRepo) List(ctx context.Context, filter models.RecordFilter) ([]models.EnrollmentRecordDetail, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	details := make([]models.EnrollmentRecordDetail, 0, len(m.records))
	for _, r := range m.records {
		details = append(details, models.EnrollmentRecordDetail{EnrollmentRecord: *r})
	}
	return details, len(details), nil
}

func (m *mockRecordRepo) FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (m *mockRecordRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRecordDetail, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	count := 0
	for _, assoc := range m.associations {
		if assoc.RecordID == id {
			count++
		}
	}
	return &models.EnrollmentRecordDetail{EnrollmentRecord: *record, RiskFactorCount: count}, nil
}

func (m *mockRecordRepo) Create(ctx context.Context, record *models.EnrollmentRecord) error {
	if record.ID == "" {
		record.ID = fmt.Sprintf("rec-%d", len(m.records)+1)
	}
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *mockRecordRepo) Withdraw(ctx context.Context, recordID string, assoc *models.StudentRiskFactor) error {
	record, ok := m.records[recordID]
	if !ok {
		return sql.ErrNoRows
	}
	assoc.RecordID = recordID
	m.associations = append(m.associations, *assoc)
	record.Status = models.RecordStatusWithdrawn
	return nil
}

type mockStudentReader struct {
	students map[string]*models.StudentDetail
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type mockSubjectReader struct {
	subjects map[string]*models.Subject
}

func (m *mockSubjectReader) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

type mockRiskResolver struct {
	categories  map[string]*models.RiskFactorCategory
	factors     map[string]*models.RiskFactor
	createCalls int
}

func newMockRiskResolver() *mockRiskResolver {
	return &mockRiskResolver{
		categories: make(map[string]*models.RiskFactorCategory),
		factors:    make(map[string]*models.RiskFactor),
	}
}

func (m *mockRiskResolver) FindCategoryByID(ctx context.Context, id string) (*models.RiskFactorCategory, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return category, nil
}

func (m *mockRiskResolver) FindFactorByCategory(ctx context.Context, categoryID string) (*models.RiskFactor, error) {
	factor, ok := m.factors[categoryID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return factor, nil
}

func (m *mockRiskResolver) CreateFactor(ctx context.Context, factor *models.RiskFactor) error {
	m.createCalls++
	if factor.ID == "" {
		factor.ID = fmt.Sprintf("factor-%d", m.createCalls)
	}
	copied := *factor
	m.factors[factor.CategoryID] = &copied
	return nil
}

func newRecordServiceForTest(repo *mockRecordRepo, risks *mockRiskResolver) *RecordService {
	students := &mockStudentReader{students: map[string]*models.StudentDetail{
		"student-1": {Student: models.Student{ID: "student-1", ControlNumber: "20290001"}},
	}}
	subjects := &mockSubjectReader{subjects: map[string]*models.Subject{
		"subject-1": {ID: "subject-1", Name: "Cálculo Diferencial", Semester: 1},
	}}
	return NewRecordService(repo, students, subjects, risks, NewEvaluator(70), nil, zap.NewNop())
}

func TestRecordServiceSubmitComputesGradeAndStatus(t *testing.T) {
	repo := newMockRecordRepo()
	svc := newRecordServiceForTest(repo, newMockRiskResolver())

	detail, err := svc.Submit(context.Background(), SubmitRecordRequest{
		StudentID:  "student-1",
		SubjectID:  "subject-1",
		Semester:   1,
		Unit1Grade: gradePtr(80),
		Unit2Grade: gradePtr(70),
		Unit3Grade: gradePtr(90),
	})
	require.NoError(t, err)
	require.NotNil(t, detail.FinalGrade)
	assert.Equal(t, 80.0, *detail.FinalGrade)
	assert.Equal(t, models.RecordStatusApproved, detail.Status)
}

func TestRecordServiceSubmitMissingUnitsCountAsZero(t *testing.T) {
	repo := newMockRecordRepo()
	svc := newRecordServiceForTest(repo, newMockRiskResolver())

	detail, err := svc.Submit(context.Background(), SubmitRecordRequest{
		StudentID:  "student-1",
		SubjectID:  "subject-1",
		Semester:   1,
		Unit1Grade: gradePtr(80),
	})
	require.NoError(t, err)
	require.NotNil(t, detail.FinalGrade)
	assert.Equal(t, 26.67, *detail.FinalGrade)
	assert.Equal(t, models.RecordStatusFailed, detail.Status)
}

func TestRecordServiceSubmitAlwaysInsertsNewRecord(t *testing.T) {
	repo := newMockRecordRepo()
	svc := newRecordServiceForTest(repo, newMockRiskResolver())

	req := SubmitRecordRequest{
		StudentID:  "student-1",
		SubjectID:  "subject-1",
		Semester:   1,
		Unit1Grade: gradePtr(75),
		Unit2Grade: gradePtr(75),
		Unit3Grade: gradePtr(75),
	}

	first, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.records, 2)
}

func TestRecordServiceSubmitUnknownStudent(t *testing.T) {
	svc := newRecordServiceForTest(newMockRecordRepo(), newMockRiskResolver())

	_, err := svc.Submit(context.Background(), SubmitRecordRequest{
		StudentID: "missing",
		SubjectID: "subject-1",
		Semester:  1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceSubmitRejectsOutOfRangeGrade(t *testing.T) {
	svc := newRecordServiceForTest(newMockRecordRepo(), newMockRiskResolver())

	_, err := svc.Submit(context.Background(), SubmitRecordRequest{
		StudentID:  "student-1",
		SubjectID:  "subject-1",
		Semester:   1,
		Unit1Grade: gradePtr(101),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceWithdraw(t *testing.T) {
	repo := newMockRecordRepo()
	risks := newMockRiskResolver()
	risks.categories["cat-economic"] = &models.RiskFactorCategory{ID: "cat-economic", Name: "Económico"}
	repo.records["rec-1"] = &models.EnrollmentRecord{ID: "rec-1", StudentID: "student-1", SubjectID: "subject-1", Status: models.RecordStatusApproved}

	svc := newRecordServiceForTest(repo, risks)

	detail, err := svc.Withdraw(context.Background(), "rec-1", WithdrawRequest{CategoryID: "cat-economic"})
	require.NoError(t, err)
	assert.Equal(t, models.RecordStatusWithdrawn, detail.Status)
	assert.Equal(t, 1, detail.RiskFactorCount)

	require.Len(t, repo.associations, 1)
	assoc := repo.associations[0]
	assert.Equal(t, models.SeverityHigh, assoc.Severity)
	require.NotNil(t, assoc.Notes)
	assert.Equal(t, DefaultWithdrawalNotes, *assoc.Notes)

	// Factor was created on demand from the category name.
	assert.Equal(t, 1, risks.createCalls)
	assert.Equal(t, "Económico", risks.factors["cat-economic"].Name)
}

func TestRecordServiceWithdrawReusesExistingFactor(t *testing.T) {
	repo := newMockRecordRepo()
	risks := newMockRiskResolver()
	risks.categories["cat-1"] = &models.RiskFactorCategory{ID: "cat-1", Name: "Personal"}
	risks.factors["cat-1"] = &models.RiskFactor{ID: "factor-1", CategoryID: "cat-1", Name: "Personal"}
	repo.records["rec-1"] = &models.EnrollmentRecord{ID: "rec-1", Status: models.RecordStatusInProgress}

	svc := newRecordServiceForTest(repo, risks)

	_, err := svc.Withdraw(context.Background(), "rec-1", WithdrawRequest{CategoryID: "cat-1", Notes: "moved away"})
	require.NoError(t, err)

	assert.Equal(t, 0, risks.createCalls)
	require.Len(t, repo.associations, 1)
	assert.Equal(t, "factor-1", repo.associations[0].RiskFactorID)
	assert.Equal(t, "moved away", *repo.associations[0].Notes)
}

func TestRecordServiceWithdrawAlreadyWithdrawn(t *testing.T) {
	repo := newMockRecordRepo()
	risks := newMockRiskResolver()
	risks.categories["cat-1"] = &models.RiskFactorCategory{ID: "cat-1", Name: "Personal"}
	repo.records["rec-1"] = &models.EnrollmentRecord{ID: "rec-1", Status: models.RecordStatusWithdrawn}

	svc := newRecordServiceForTest(repo, risks)

	_, err := svc.Withdraw(context.Background(), "rec-1", WithdrawRequest{CategoryID: "cat-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.associations)
}

func TestRecordServiceWithdrawUnknownCategory(t *testing.T) {
	repo := newMockRecordRepo()
	repo.records["rec-1"] = &models.EnrollmentRecord{ID: "rec-1", Status: models.RecordStatusFailed}

	svc := newRecordServiceForTest(repo, newMockRiskResolver())

	_, err := svc.Withdraw(context.Background(), "rec-1", WithdrawRequest{CategoryID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newRecordServiceForTest(newMockRecordRepo(), newMockRiskResolver())

	_, _, err := svc.List(context.Background(), models.RecordFilter{Status: "paused"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
