package repositories

import (
	"context"

	"harvest/internal/models"
)

// MediaRepository stores the landing page media document.
type MediaRepository interface {
	// Get returns the document, creating an empty one on first use.
	Get(ctx context.Context) (*models.LandingPageMedia, error)
	Save(ctx context.Context, media *models.LandingPageMedia) error
}
