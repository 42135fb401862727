package services

import (
	"context"
	"log"

	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/pkg/lock"
)

const mediaLockKey = "media:landing"

// MediaUpdate changes only the fields that are set.
type MediaUpdate struct {
	HeroImages         *models.HeroImages
	VideoTestimonials  *models.VideoTestimonials
	IngredientVideoURL *string
	LogoURL            *string
	PreloaderIcons     *models.PreloaderIcons
}

// MediaService manages the landing page media document.
type MediaService struct {
	repo   repositories.MediaRepository
	locker lock.Locker
}

func NewMediaService(repo repositories.MediaRepository, locker lock.Locker) *MediaService {
	return &MediaService{repo: repo, locker: locker}
}

// GetLandingPageMedia returns the document, empty until an admin fills it in.
func (s *MediaService) GetLandingPageMedia(ctx context.Context) (*models.LandingPageMedia, error) {
	return s.repo.Get(ctx)
}

// UpdateLandingPageMedia applies a partial update.
func (s *MediaService) UpdateLandingPageMedia(ctx context.Context, in MediaUpdate) (*models.LandingPageMedia, error) {
	unlock, err := s.locker.Lock(ctx, mediaLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	media, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if in.HeroImages != nil {
		media.HeroImages = *in.HeroImages
	}
	if in.VideoTestimonials != nil {
		media.VideoTestimonials = *in.VideoTestimonials
	}
	if in.IngredientVideoURL != nil {
		media.IngredientVideoURL = *in.IngredientVideoURL
	}
	if in.LogoURL != nil {
		media.LogoURL = *in.LogoURL
	}
	if in.PreloaderIcons != nil {
		media.PreloaderIcons = *in.PreloaderIcons
	}

	if err := s.repo.Save(ctx, media); err != nil {
		return nil, err
	}
	log.Println("Landing page media updated")
	return media, nil
}
