package models

import (
	"database/sql/driver"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ProductSize is one purchasable variant of a product, addressed by its weight.
type ProductSize struct {
	Weight   int              `json:"weight" validate:"required,gt=0"`
	Price    decimal.Decimal  `json:"price"`
	OldPrice *decimal.Decimal `json:"old_price,omitempty"`
	Servings string           `json:"servings,omitempty"`
}

// Key is the identifier clients use to select the size.
func (s ProductSize) Key() string {
	return strconv.Itoa(s.Weight)
}

// ProductSizes is stored as a JSON text column.
type ProductSizes []ProductSize

func (s ProductSizes) Value() (driver.Value, error) {
	return marshalColumn(s)
}

func (s *ProductSizes) Scan(src interface{}) error {
	return unmarshalColumn(src, s)
}

// Product represents a product in the store.
type Product struct {
	ID               string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string       `json:"name" gorm:"index;type:varchar(200)" validate:"required,min=2,max=200"`
	Brand            string       `json:"brand" validate:"omitempty,max=100"`
	SmallDescription string       `json:"small_description" validate:"omitempty,max=500"`
	LongDescription  string       `json:"long_description"`
	Sizes            ProductSizes `json:"sizes" gorm:"type:text" validate:"required,min=1,dive"`
	Images           StringList   `json:"images" gorm:"type:text"`
	Ingredients      StringList   `json:"ingredients" gorm:"type:text"`
	Rating           float64      `json:"rating" validate:"gte=0,lte=5"`
	TotalReviews     int          `json:"total_reviews" validate:"gte=0"`
	Stock            int          `json:"stock" validate:"gte=0"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// SizeByKey returns the size whose key matches key.
func (p *Product) SizeByKey(key string) (ProductSize, bool) {
	for _, s := range p.Sizes {
		if s.Key() == key {
			return s, true
		}
	}
	return ProductSize{}, false
}
