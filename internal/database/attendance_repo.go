package database

import (
	"time"

	"github.com/google/uuid"

	"attendance-backend/internal/models"
)

// AttendanceRepo is the append-only ledger of attendance marks.
// (user_id, class_id, date) is unique at the storage layer, so marking
// is idempotent under concurrent submissions from the same student.
type AttendanceRepo struct {
	// Now is the time source; tests override it.
	Now func() time.Time
}

// NewAttendanceRepo creates a new attendance repository
func NewAttendanceRepo() *AttendanceRepo {
	return &AttendanceRepo{Now: time.Now}
}

// MarkPresent records a student as present for a class on a calendar
// day. Returns true if a new mark was created, false if the student
// was already marked that day. The conflict is resolved by the unique
// constraint, not by a check-then-insert in application code.
func (r *AttendanceRepo) MarkPresent(userID, classID, date, method string) (bool, error) {
	result, err := DB.Exec(`
		INSERT INTO attendance_marks (id, user_id, class_id, date, status, method, marked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, class_id, date) DO NOTHING
	`, uuid.New().String(), userID, classID, date, models.StatusPresent, method, r.Now())
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Today returns the current calendar day in the ledger's date format
func (r *AttendanceRepo) Today() string {
	return r.Now().Format("2006-01-02")
}

// ListClassIDsForUserOn returns the classIds the user is marked
// present for on the given day
func (r *AttendanceRepo) ListClassIDsForUserOn(userID, date string) ([]string, error) {
	rows, err := DB.Query("SELECT class_id FROM attendance_marks WHERE user_id = ? AND date = ?", userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classIDs []string
	for rows.Next() {
		var classID string
		if err := rows.Scan(&classID); err != nil {
			return nil, err
		}
		classIDs = append(classIDs, classID)
	}

	return classIDs, rows.Err()
}

// CountForUserByCourse returns how many marks the user has for classes
// of the given course (attendance class IDs are prefixed by the course
// code)
func (r *AttendanceRepo) CountForUserByCourse(userID, courseCode string) (int, error) {
	var count int
	err := DB.QueryRow(`
		SELECT COUNT(*) FROM attendance_marks WHERE user_id = ? AND class_id LIKE ? || '%'
	`, userID, courseCode).Scan(&count)
	return count, err
}

// CountSessionsByCourse returns the number of distinct days any
// attendance was recorded for the course
func (r *AttendanceRepo) CountSessionsByCourse(courseCode string) (int, error) {
	var count int
	err := DB.QueryRow(`
		SELECT COUNT(DISTINCT date) FROM attendance_marks WHERE class_id LIKE ? || '%'
	`, courseCode).Scan(&count)
	return count, err
}

// CountMarksByCourse returns the total number of marks for the course
func (r *AttendanceRepo) CountMarksByCourse(courseCode string) (int, error) {
	var count int
	err := DB.QueryRow(`
		SELECT COUNT(*) FROM attendance_marks WHERE class_id LIKE ? || '%'
	`, courseCode).Scan(&count)
	return count, err
}

// CountStudentsByCourse returns the number of distinct students with
// at least one mark for the course
func (r *AttendanceRepo) CountStudentsByCourse(courseCode string) (int, error) {
	var count int
	err := DB.QueryRow(`
		SELECT COUNT(DISTINCT user_id) FROM attendance_marks WHERE class_id LIKE ? || '%'
	`, courseCode).Scan(&count)
	return count, err
}
