package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edutrack-mx/sira-api/internal/models"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects  map[string]*models.Subject
	listCalls int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*models.Subject)}
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	m.listCalls++
	result := make([]models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		if filter.ProgramID != "" && (s.ProgramID == nil || *s.ProgramID != filter.ProgramID) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = fmt.Sprintf("subject-%d", len(m.subjects)+1)
	}
	copied := *subject
	m.subjects[subject.ID] = &copied
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.subjects, id)
	return nil
}

type mockProgramReader struct {
	programs map[string]*models.Program
}

func (m *mockProgramReader) FindByID(ctx context.Context, id string) (*models.Program, error) {
	program, ok := m.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return program, nil
}

func TestSubjectServiceCreateValidatesProgram(t *testing.T) {
	repo := newMockSubjectRepo()
	programs := &mockProgramReader{programs: map[string]*models.Program{}}
	svc := NewSubjectService(repo, programs, nil, nil, zap.NewNop())

	missing := "missing-program"
	_, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Cálculo", Semester: 1, ProgramID: &missing})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.subjects)
}

func TestSubjectServiceCreateWithProgram(t *testing.T) {
	repo := newMockSubjectRepo()
	programs := &mockProgramReader{programs: map[string]*models.Program{
		"program-1": {ID: "program-1", Name: "Ingeniería en Sistemas"},
	}}
	svc := NewSubjectService(repo, programs, nil, nil, zap.NewNop())

	programID := "program-1"
	subject, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Cálculo", Semester: 1, ProgramID: &programID})
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	assert.Len(t, repo.subjects, 1)
}

func TestSubjectServiceCreateSemesterRange(t *testing.T) {
	svc := NewSubjectService(newMockSubjectRepo(), &mockProgramReader{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Cálculo", Semester: 13})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceListCachesOnlyUnfiltered(t *testing.T) {
	repo := newMockSubjectRepo()
	programID := "program-1"
	repo.subjects["subject-1"] = &models.Subject{ID: "subject-1", Name: "Cálculo", Semester: 1, ProgramID: &programID}
	cache := NewReferenceCache(&stubCacheStore{}, time.Minute, nil, zap.NewNop())
	svc := NewSubjectService(repo, &mockProgramReader{}, cache, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.List(ctx, models.SubjectFilter{})
	require.NoError(t, err)
	_, err = svc.List(ctx, models.SubjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	// Filtered listings bypass the cache.
	_, err = svc.List(ctx, models.SubjectFilter{ProgramID: programID})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestSubjectServiceDeleteNotFound(t *testing.T) {
	svc := NewSubjectService(newMockSubjectRepo(), &mockProgramReader{}, nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
