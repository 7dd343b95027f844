package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleProfessor UserRole = "PROFESSOR"
	RoleStudent   UserRole = "STUDENT"
)

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

// HashList stores an ordered list of bcrypt hashes as jsonb.
type HashList []string

// Value implements driver.Valuer.
func (h HashList) Value() (driver.Value, error) {
	if h == nil {
		h = HashList{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *HashList) Scan(src interface{}) error {
	if src == nil {
		*h = HashList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	}
	return fmt.Errorf("unsupported hash list type %T", src)
}

// User represents an application user stored in the users table.
// Professors additionally carry a primary teaching assignment in the
// assigned_* columns; secondary assignments live in their own table.
type User struct {
	ID                  string     `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FullName            string     `db:"full_name" json:"full_name"`
	Role                UserRole   `db:"role" json:"role"`
	EmailVerified       bool       `db:"email_verified" json:"email_verified"`
	Active              bool       `db:"active" json:"active"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockoutUntil        *time.Time `db:"lockout_until" json:"-"`
	LastPasswordChange  *time.Time `db:"last_password_change" json:"-"`
	PasswordHistory     HashList   `db:"password_history" json:"-"`
	AssignedGradeLevel  *string    `db:"assigned_grade_level" json:"assigned_grade_level,omitempty"`
	AssignedSection     *int       `db:"assigned_section" json:"assigned_section,omitempty"`
	AssignedSubject     *string    `db:"assigned_subject" json:"assigned_subject,omitempty"`
	AssignedRoom        *string    `db:"assigned_room" json:"assigned_room,omitempty"`
	LastLogin           *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Locked reports whether the account is currently locked out.
func (u *User) Locked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
