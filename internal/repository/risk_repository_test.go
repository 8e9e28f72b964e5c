package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack-mx/sira-api/internal/models"
)

func TestRiskRepositoryListCategories(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRiskRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
		AddRow("cat-1", "Económico", nil, time.Now()).
		AddRow("cat-2", "Personal", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM risk_factor_categories ORDER BY name")).
		WillReturnRows(rows)

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskRepositoryFindFactorByCategoryNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRiskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM risk_factors WHERE category_id = $1 ORDER BY created_at LIMIT 1")).
		WithArgs("cat-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindFactorByCategory(context.Background(), "cat-1")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskRepositoryCreateFactorAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRiskRepository(db)

	mock.ExpectExec("INSERT INTO risk_factors").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	factor := &models.RiskFactor{CategoryID: "cat-1", Name: "Económico"}
	err := repo.CreateFactor(context.Background(), factor)
	require.NoError(t, err)
	assert.NotEmpty(t, factor.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskRepositoryListAssociations(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRiskRepository(db)

	notes := "Student withdrawal"
	rows := sqlmock.NewRows([]string{"id", "record_id", "risk_factor_id", "severity", "notes", "created_at", "factor_name", "category_name"}).
		AddRow("assoc-1", "rec-1", "factor-1", "high", notes, time.Now(), "Económico", "Económico")
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_risk_factors srf")).
		WithArgs("rec-1").
		WillReturnRows(rows)

	associations, err := repo.ListAssociations(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, associations, 1)
	assert.Equal(t, models.SeverityHigh, associations[0].Severity)
	assert.Equal(t, "Económico", associations[0].FactorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskRepositoryCountAssociationsZero(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRiskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_risk_factors WHERE record_id = $1")).
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountAssociations(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
