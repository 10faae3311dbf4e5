package models

import "time"

// Role represents what kind of account a user holds
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
)

// AuthType represents how a user authenticates
type AuthType string

const (
	AuthTypeLocal AuthType = "local" // password stored locally
	AuthTypeSSO   AuthType = "sso"   // institutional OIDC sign-on
)

// User represents a student or lecturer account.
// IDs are university identifiers, e.g. '240101' for students.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         Role      `json:"role"`
	AuthType     AuthType  `json:"auth_type"`
	Year         *int      `json:"year,omitempty"`       // 1-4, students only
	Department   string    `json:"department,omitempty"` // e.g. 'Computing'
	Program      string    `json:"program,omitempty"`    // e.g. 'NCSC'
	College      string    `json:"college,omitempty"`    // e.g. 'CBMS'
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLogin    time.Time `json:"last_login,omitempty"`
}

// IsLecturer returns true if the user holds a lecturer account
func (u *User) IsLecturer() bool {
	return u.Role == RoleLecturer
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	IDNumber string `json:"idNumber,omitempty"`
}
