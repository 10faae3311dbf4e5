package models

import "time"

// AttendanceSession is one instructor-opened attendance window for a
// class. The shared secret drives the rotating one-time code; the
// session expires lazily and is kept afterwards for audit.
type AttendanceSession struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	Secret     string    `json:"-"` // Never expose in JSON
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Active     bool      `json:"active"`
	LecturerIP string    `json:"lecturer_ip,omitempty"`
}

// Mark status values
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Mark method values
const (
	MethodCode   = "totp"
	MethodManual = "manual"
)

// AttendanceMark is one recorded instance of a student being counted
// present for a class on a calendar day. (user_id, class_id, date) is
// unique: re-submitting a valid code the same day changes nothing.
type AttendanceMark struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	ClassID  string    `json:"class_id"`
	Date     string    `json:"date"` // 'YYYY-MM-DD', not a timestamp
	Status   string    `json:"status"`
	Method   string    `json:"method"`
	MarkedAt time.Time `json:"marked_at"`
}

// GenerateCodeRequest represents the lecturer's request for a code
type GenerateCodeRequest struct {
	ClassID string `json:"classId"`
}

// GenerateCodeResponse carries the current code and the milliseconds
// left before it rotates, for the display countdown.
type GenerateCodeResponse struct {
	Code     string `json:"code"`
	TimeLeft int64  `json:"timeLeft"`
}

// ValidateCodeRequest represents a student's code submission. The
// location hints are accepted for forward compatibility but carry no
// weight in validation.
type ValidateCodeRequest struct {
	ClassID   string   `json:"classId"`
	StudentID string   `json:"studentId"`
	Code      string   `json:"code"`
	UserLat   *float64 `json:"userLat,omitempty"`
	UserLon   *float64 `json:"userLon,omitempty"`
}

// BulkMarkRequest represents a lecturer's manual bulk marking
type BulkMarkRequest struct {
	ClassID  string   `json:"classId"`
	Students []string `json:"students"`
	Date     string   `json:"date,omitempty"`
}

// CourseStat is one row of a student's per-course attendance summary
type CourseStat struct {
	CourseCode string `json:"courseCode"`
	Name       string `json:"name"`
	Attended   int    `json:"attended"`
	Total      int    `json:"total"`
}

// CourseOverview summarizes attendance across a whole course
type CourseOverview struct {
	CourseID      string `json:"courseId"`
	TotalSessions int    `json:"totalSessions"`
	TotalStudents int    `json:"totalStudents"`
	AvgAttendance int    `json:"avgAttendance"`
	PresentCount  int    `json:"presentCount"`
}

// StudentStanding is one roster row with attendance risk status
type StudentStanding struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Program    string `json:"program"`
	Year       *int   `json:"year"`
	Attended   int    `json:"attended"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Status     string `json:"status"` // 'good', 'warning', 'risk', 'danger'
}
