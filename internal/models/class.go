package models

// Class represents one timetable entry. A course can appear in several
// rows (one per program/section); attendance class IDs are prefixed by
// the course code, e.g. 'NCSC211-L1' belongs to course 'NCSC211'.
type Class struct {
	College      string   `json:"college,omitempty"`
	Department   string   `json:"department,omitempty"`
	Program      string   `json:"program"`
	YearSemester string   `json:"year_semester"` // 'Y1 S1' or 'All'
	CourseCode   string   `json:"course_code"`
	CourseName   string   `json:"course_name"`
	Section      string   `json:"section,omitempty"`
	Day          string   `json:"day,omitempty"`
	FromTime     string   `json:"from_time,omitempty"`
	ToTime       string   `json:"to_time,omitempty"`
	Venue        string   `json:"venue,omitempty"`
	Lecturer     string   `json:"lecturer,omitempty"`
	LecturerID   string   `json:"lecturer_id,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	AllowedIPs   string   `json:"allowed_ips,omitempty"` // reserved, not enforced
}

// CreateClassRequest represents the request body for creating a class
type CreateClassRequest struct {
	CourseCode   string `json:"code"`
	CourseName   string `json:"name"`
	Program      string `json:"program"`
	YearSemester string `json:"yearSemester"`
	Day          string `json:"day"`
	FromTime     string `json:"time"`
	ToTime       string `json:"toTime"`
	Venue        string `json:"room"`
	Lecturer     string `json:"lecturerName"`
	LecturerID   string `json:"lecturerId"`
}

// UpdateClassRequest represents the request body for rescheduling a class
type UpdateClassRequest struct {
	Day      *string `json:"day,omitempty"`
	FromTime *string `json:"time,omitempty"`
	Venue    *string `json:"room,omitempty"`
}
