package models

import "time"

const (
	// RoleStudent is the default role for people who submit homework.
	RoleStudent = "student"
	// RoleGrader may review and finalize self-evaluations.
	RoleGrader = "grader"
	// RoleAdmin has unrestricted access.
	RoleAdmin = "admin"
)

// User is an account that owns submissions or grades them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Role      string    `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanAdmin reports whether the user has administrative capability.
func (u User) CanAdmin() bool {
	return u.Role == RoleAdmin
}

// CanGrade reports whether the user may write grader evaluations.
func (u User) CanGrade() bool {
	return u.Role == RoleGrader || u.Role == RoleAdmin
}
