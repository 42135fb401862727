package repositories

import (
	"context"
	"fmt"

	"harvest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMMediaRepository is a GORM implementation of MediaRepository.
type GORMMediaRepository struct {
	db *gorm.DB
}

func NewGORMMediaRepository(db *gorm.DB) *GORMMediaRepository {
	return &GORMMediaRepository{db: db}
}

func (r *GORMMediaRepository) Get(ctx context.Context) (*models.LandingPageMedia, error) {
	empty := &models.LandingPageMedia{ID: models.LandingPageMediaID}
	empty.Normalize()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(empty).Error; err != nil {
		return nil, fmt.Errorf("failed to create landing page media: %w", err)
	}

	var media models.LandingPageMedia
	if err := r.db.WithContext(ctx).First(&media, "id = ?", models.LandingPageMediaID).Error; err != nil {
		return nil, fmt.Errorf("failed to get landing page media: %w", err)
	}
	media.Normalize()
	return &media, nil
}

func (r *GORMMediaRepository) Save(ctx context.Context, media *models.LandingPageMedia) error {
	media.ID = models.LandingPageMediaID
	media.Normalize()
	if err := r.db.WithContext(ctx).Save(media).Error; err != nil {
		return fmt.Errorf("failed to save landing page media: %w", err)
	}
	return nil
}
