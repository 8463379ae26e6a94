package models

import "gorm.io/gorm"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Profile mirrors the identity provider's user and carries the role
type Profile struct {
	gorm.Model
	UserID string `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Email  string `json:"email"`
	Role   string `json:"role" gorm:"type:varchar(16);default:'USER'"`
}
