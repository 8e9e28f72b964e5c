package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edutrack-mx/sira-api/internal/models"
)

// RiskRepository manages persistence for the risk factor taxonomy and the
// associations linking factors to enrollment records.
type RiskRepository struct {
	db *sqlx.DB
}

// NewRiskRepository constructs a RiskRepository.
func NewRiskRepository(db *sqlx.DB) *RiskRepository {
	return &RiskRepository{db: db}
}

// ListCategories returns all risk factor categories ordered by name.
func (r *RiskRepository) ListCategories(ctx context.Context) ([]models.RiskFactorCategory, error) {
	const query = `SELECT id, name, description, created_at FROM risk_factor_categories ORDER BY name`
	var categories []models.RiskFactorCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list risk categories: %w", err)
	}
	return categories, nil
}

// FindCategoryByID fetches a category by ID.
func (r *RiskRepository) FindCategoryByID(ctx context.Context, id string) (*models.RiskFactorCategory, error) {
	const query = `SELECT id, name, description, created_at FROM risk_factor_categories WHERE id = $1`
	var category models.RiskFactorCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a new risk factor category.
func (r *RiskRepository) CreateCategory(ctx context.Context, category *models.RiskFactorCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO risk_factor_categories (id, name, description, created_at) VALUES (:id, :name, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create risk category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category by ID.
func (r *RiskRepository) DeleteCategory(ctx context.Context, id string) error {
	const query = `DELETE FROM risk_factor_categories WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete risk category: %w", err)
	}
	return nil
}

// ListFactors returns all risk factors ordered by name.
func (r *RiskRepository) ListFactors(ctx context.Context) ([]models.RiskFactor, error) {
	const query = `SELECT id, category_id, name, description, created_at FROM risk_factors ORDER BY name`
	var factors []models.RiskFactor
	if err := r.db.SelectContext(ctx, &factors, query); err != nil {
		return nil, fmt.Errorf("list risk factors: %w", err)
	}
	return factors, nil
}

// FindFactorByCategory returns the default factor for a category. The lookup
// is effectively 1:1 per category; the oldest factor wins when several exist.
// Returns sql.ErrNoRows when the category has no factor yet.
func (r *RiskRepository) FindFactorByCategory(ctx context.Context, categoryID string) (*models.RiskFactor, error) {
	const query = `SELECT id, category_id, name, description, created_at FROM risk_factors WHERE category_id = $1 ORDER BY created_at LIMIT 1`
	var factor models.RiskFactor
	if err := r.db.GetContext(ctx, &factor, query, categoryID); err != nil {
		return nil, err
	}
	return &factor, nil
}

// CreateFactor inserts a new risk factor.
func (r *RiskRepository) CreateFactor(ctx context.Context, factor *models.RiskFactor) error {
	if factor.ID == "" {
		factor.ID = uuid.NewString()
	}
	if factor.CreatedAt.IsZero() {
		factor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO risk_factors (id, category_id, name, description, created_at) VALUES (:id, :category_id, :name, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, factor); err != nil {
		return fmt.Errorf("create risk factor: %w", err)
	}
	return nil
}

// ListAssociations returns the risk factor associations for a record with
// factor and category display names.
func (r *RiskRepository) ListAssociations(ctx context.Context, recordID string) ([]models.StudentRiskFactorDetail, error) {
	const query = `SELECT srf.id, srf.record_id, srf.risk_factor_id, srf.severity, srf.notes, srf.created_at,
        rf.name AS factor_name, rfc.name AS category_name
        FROM student_risk_factors srf
        JOIN risk_factors rf ON rf.id = srf.risk_factor_id
        JOIN risk_factor_categories rfc ON rfc.id = rf.category_id
        WHERE srf.record_id = $1
        ORDER BY srf.created_at DESC`
	var associations []models.StudentRiskFactorDetail
	if err := r.db.SelectContext(ctx, &associations, query, recordID); err != nil {
		return nil, fmt.Errorf("list risk associations: %w", err)
	}
	return associations, nil
}

// CountAssociations returns the number of associations attached to a record.
// A record with none yields 0, not an error.
func (r *RiskRepository) CountAssociations(ctx context.Context, recordID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_risk_factors WHERE record_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, recordID); err != nil {
		return 0, fmt.Errorf("count risk associations: %w", err)
	}
	return count, nil
}
