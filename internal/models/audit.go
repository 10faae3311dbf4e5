package models

import "time"

// AuditLog represents a record of user actions
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"` // JSON string
	IPAddress string    `json:"ip_address,omitempty"`
}

// Common audit actions
const (
	ActionLogin       = "login"
	ActionLogout      = "logout"
	ActionRegister    = "user.register"
	ActionSessionOpen = "attendance.open"
	ActionMark        = "attendance.mark"
	ActionBulkMark    = "attendance.bulk_mark"
	ActionClassCreate = "class.create"
	ActionClassUpdate = "class.update"
)

// AuditFilter narrows audit log listings
type AuditFilter struct {
	UserID       string
	Action       string
	ActionPrefix string
	StartTime    time.Time
	EndTime      time.Time
	Limit        int
	Offset       int
}
