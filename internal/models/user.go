// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is fixed at signup and never changes through login.
type Role string

const (
	// RoleSeeker is a property buyer.
	RoleSeeker Role = "seeker"
	// RoleBuilder is a property seller or realtor.
	RoleBuilder Role = "builder"
	// RoleAdmin is an operator account.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleBuilder, RoleAdmin:
		return true
	}
	return false
}

// User is an account with its role claim.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"column:user_role;type:varchar(20);not null;default:'seeker'" json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Session identifies the caller of an operation. It is created on login,
// dropped on logout, and passed explicitly to every service call.
type Session struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsBuilder reports whether the session belongs to a builder.
func (s Session) IsBuilder() bool {
	return s.Role == RoleBuilder
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
