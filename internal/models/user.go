package models

import "time"

// Role values assignable to a user account.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// User represents a registered account. The password column always holds a
// bcrypt hash, never plaintext.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:32;not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsStaff reports whether the user may author courses.
func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeacher
}
