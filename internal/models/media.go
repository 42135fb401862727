package models

import (
	"database/sql/driver"
	"time"
)

// LandingPageMediaID is the primary key of the single landing page document.
const LandingPageMediaID = "landing"

// HeroImage is one slide of the landing page hero carousel.
type HeroImage struct {
	URL string `json:"url" validate:"required,max=500"`
	Alt string `json:"alt" validate:"omitempty,max=200"`
}

// HeroImages is stored as a JSON text column.
type HeroImages []HeroImage

func (h HeroImages) Value() (driver.Value, error) {
	return marshalColumn(h)
}

func (h *HeroImages) Scan(src interface{}) error {
	return unmarshalColumn(src, h)
}

// VideoTestimonial is a customer video shown on the landing page.
type VideoTestimonial struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	VideoURL    string `json:"video_url" validate:"required,max=500"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,max=500"`
}

// VideoTestimonials is stored as a JSON text column.
type VideoTestimonials []VideoTestimonial

func (v VideoTestimonials) Value() (driver.Value, error) {
	return marshalColumn(v)
}

func (v *VideoTestimonials) Scan(src interface{}) error {
	return unmarshalColumn(src, v)
}

// PreloaderIcon is an icon cycled by the storefront preloader.
type PreloaderIcon struct {
	Name    string `json:"name" validate:"required,max=100"`
	IconURL string `json:"icon_url" validate:"required,max=500"`
}

// PreloaderIcons is stored as a JSON text column.
type PreloaderIcons []PreloaderIcon

func (p PreloaderIcons) Value() (driver.Value, error) {
	return marshalColumn(p)
}

func (p *PreloaderIcons) Scan(src interface{}) error {
	return unmarshalColumn(src, p)
}

// LandingPageMedia holds the storefront's landing page assets. There is
// exactly one row, keyed by LandingPageMediaID.
type LandingPageMedia struct {
	ID                 string            `json:"-" gorm:"primaryKey;type:varchar(36)"`
	HeroImages         HeroImages        `json:"hero_images" gorm:"type:text"`
	VideoTestimonials  VideoTestimonials `json:"video_testimonials" gorm:"type:text"`
	IngredientVideoURL string            `json:"ingredient_video_url"`
	LogoURL            string            `json:"logo_url"`
	PreloaderIcons     PreloaderIcons    `json:"preloader_icons" gorm:"type:text"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Normalize replaces nil lists with empty ones so they encode as [].
func (m *LandingPageMedia) Normalize() {
	if m.HeroImages == nil {
		m.HeroImages = HeroImages{}
	}
	if m.VideoTestimonials == nil {
		m.VideoTestimonials = VideoTestimonials{}
	}
	if m.PreloaderIcons == nil {
		m.PreloaderIcons = PreloaderIcons{}
	}
}
