package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ats-checker/internal/models"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository interface {
	Create(analysis *models.Analysis) error
	FindByID(id uuid.UUID) (*models.Analysis, error)
	FindByIDs(ids []uuid.UUID) ([]models.Analysis, error)
	FindUnindexed(limit int) ([]models.Analysis, error)
	MarkIndexed(id uuid.UUID) error
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(analysis *models.Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.UserID == "" {
		analysis.UserID = models.GuestUserID
	}

	if err := r.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (r *analysisRepository) FindByID(id uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := r.db.Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepository) FindByIDs(ids []uuid.UUID) ([]models.Analysis, error) {
	var analyses []models.Analysis
	if len(ids) == 0 {
		return analyses, nil
	}

	if err := r.db.Where("id IN ?", ids).Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepository) FindUnindexed(limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.
		Where("indexed_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&analyses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find unindexed analyses: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepository) MarkIndexed(id uuid.UUID) error {
	now := time.Now()
	result := r.db.Model(&models.Analysis{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"indexed_at": now,
			"updated_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark analysis indexed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}

	return nil
}
