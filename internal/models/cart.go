package models

import "time"

// CartItem is one line of a user's cart.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36)"`
	Size      string    `json:"size" gorm:"type:varchar(20)"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cart is the view of a user's cart returned to clients.
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}
