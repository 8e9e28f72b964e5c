package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edutrack-mx/sira-api/internal/models"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
)

type riskRepository interface {
	ListCategories(ctx context.Context) ([]models.RiskFactorCategory, error)
	FindCategoryByID(ctx context.Context, id string) (*models.RiskFactorCategory, error)
	CreateCategory(ctx context.Context, category *models.RiskFactorCategory) error
	DeleteCategory(ctx context.Context, id string) error
	ListFactors(ctx context.Context) ([]models.RiskFactor, error)
	ListAssociations(ctx context.Context, recordID string) ([]models.StudentRiskFactorDetail, error)
	CountAssociations(ctx context.Context, recordID string) (int, error)
}

// CreateRiskCategoryRequest holds payload for creating risk factor categories.
type CreateRiskCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// RiskService handles the risk factor taxonomy and per-record associations.
type RiskService struct {
	repo      riskRepository
	cache     *ReferenceCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRiskService constructs the risk service.
func NewRiskService(repo riskRepository, cache *ReferenceCache, validate *validator.Validate, logger *zap.Logger) *RiskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListCategories returns all risk factor categories ordered by name.
func (s *RiskService) ListCategories(ctx context.Context) ([]models.RiskFactorCategory, error) {
	var cached []models.RiskFactorCategory
	if s.cache.Fetch(ctx, CacheKeyRiskCategories, &cached) {
		return cached, nil
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risk categories")
	}
	s.cache.Store(ctx, CacheKeyRiskCategories, categories)
	return categories, nil
}

// CreateCategory registers a new risk factor category.
func (s *RiskService) CreateCategory(ctx context.Context, req CreateRiskCategoryRequest) (*models.RiskFactorCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid risk category payload")
	}
	category := &models.RiskFactorCategory{Name: req.Name, Description: req.Description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create risk category")
	}
	s.cache.Invalidate(ctx, CacheKeyRiskCategories)
	return category, nil
}

// DeleteCategory removes a risk factor category.
func (s *RiskService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "risk category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load risk category")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete risk category")
	}
	s.cache.Invalidate(ctx, CacheKeyRiskCategories)
	return nil
}

// ListFactors returns all risk factors.
func (s *RiskService) ListFactors(ctx context.Context) ([]models.RiskFactor, error) {
	factors, err := s.repo.ListFactors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risk factors")
	}
	return factors, nil
}

// ListAssociations returns a record's risk factor associations. A record with
// none yields an empty list.
func (s *RiskService) ListAssociations(ctx context.Context, recordID string) ([]models.StudentRiskFactorDetail, error) {
	associations, err := s.repo.ListAssociations(ctx, recordID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risk associations")
	}
	if associations == nil {
		associations = []models.StudentRiskFactorDetail{}
	}
	return associations, nil
}

// CountAssociations returns the number of associations attached to a record.
func (s *RiskService) CountAssociations(ctx context.Context, recordID string) (int, error) {
	count, err := s.repo.CountAssociations(ctx, recordID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count risk associations")
	}
	return count, nil
}
