package models

import "time"

// User roles understood by the RBAC middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account able to submit answers.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user may call administrative endpoints.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
