package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a customer or an administrator.
type User struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string     `json:"name" gorm:"type:varchar(100)"`
	Email       string     `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	PhoneNumber string     `json:"phone_number" gorm:"type:varchar(30)"`
	CountryCode string     `json:"country_code" gorm:"type:varchar(8)"`
	Address     Address    `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Role        string     `json:"role" gorm:"type:varchar(10);default:user"`
	IsVerified  bool       `json:"is_verified"`
	IsBlocked   bool       `json:"is_blocked"`
	OTPHash     string     `json:"-" gorm:"type:varchar(255)"`
	OTPExpiry   *time.Time `json:"-"`
	Password    string     `json:"-" gorm:"type:varchar(255)"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
