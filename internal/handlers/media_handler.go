package handlers

import (
	"harvest/internal/models"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MediaHandler serves the landing page media document.
type MediaHandler struct {
	mediaService *services.MediaService
}

func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// RegisterRoutes registers the public read route.
func (h *MediaHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/landing-page-media", h.HandleGet)
}

// RegisterAdminRoutes registers the update routes on the admin group.
func (h *MediaHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/landing-page-media", h.HandleGet)
	admin.Put("/landing-page-media", h.HandleUpdate)
}

type updateMediaRequest struct {
	HeroImages         *models.HeroImages        `json:"hero_images" validate:"omitempty,dive"`
	VideoTestimonials  *models.VideoTestimonials `json:"video_testimonials" validate:"omitempty,dive"`
	IngredientVideoURL *string                   `json:"ingredient_video_url" validate:"omitempty,max=500"`
	LogoURL            *string                   `json:"logo_url" validate:"omitempty,max=500"`
	PreloaderIcons     *models.PreloaderIcons    `json:"preloader_icons" validate:"omitempty,dive"`
}

func (h *MediaHandler) HandleGet(c *fiber.Ctx) error {
	media, err := h.mediaService.GetLandingPageMedia(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", media)
}

func (h *MediaHandler) HandleUpdate(c *fiber.Ctx) error {
	var req updateMediaRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	media, err := h.mediaService.UpdateLandingPageMedia(c.UserContext(), services.MediaUpdate{
		HeroImages:         req.HeroImages,
		VideoTestimonials:  req.VideoTestimonials,
		IngredientVideoURL: req.IngredientVideoURL,
		LogoURL:            req.LogoURL,
		PreloaderIcons:     req.PreloaderIcons,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Landing page media updated successfully", media)
}
