package database

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"attendance-backend/internal/models"
)

var ErrClassNotFound = errors.New("class not found")

// ClassRepo handles timetable database operations
type ClassRepo struct{}

// NewClassRepo creates a new class repository
func NewClassRepo() *ClassRepo {
	return &ClassRepo{}
}

const classColumns = `college, department, program, year_semester, course_code, course_name,
	       section, day, from_time, to_time, venue, lecturer, lecturer_id, latitude, longitude, allowed_ips`

func scanClass(row interface{ Scan(...any) error }) (*models.Class, error) {
	class := &models.Class{}
	var college, department, section, day, fromTime, toTime, venue, lecturer, lecturerID, allowedIPs sql.NullString
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&college, &department, &class.Program, &class.YearSemester,
		&class.CourseCode, &class.CourseName, &section, &day,
		&fromTime, &toTime, &venue, &lecturer, &lecturerID,
		&latitude, &longitude, &allowedIPs,
	)
	if err != nil {
		return nil, err
	}

	class.College = college.String
	class.Department = department.String
	class.Section = section.String
	class.Day = day.String
	class.FromTime = fromTime.String
	class.ToTime = toTime.String
	class.Venue = venue.String
	class.Lecturer = lecturer.String
	class.LecturerID = lecturerID.String
	class.AllowedIPs = allowedIPs.String
	if latitude.Valid {
		class.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		class.Longitude = &longitude.Float64
	}

	return class, nil
}

func (r *ClassRepo) queryClasses(query string, args ...any) ([]*models.Class, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}

	return classes, rows.Err()
}

// List retrieves all timetable entries
func (r *ClassRepo) List() ([]*models.Class, error) {
	return r.queryClasses(`SELECT ` + classColumns + ` FROM timetable ORDER BY course_code`)
}

// ListByLecturer retrieves timetable entries taught by the lecturer
func (r *ClassRepo) ListByLecturer(lecturerID string) ([]*models.Class, error) {
	return r.queryClasses(`SELECT `+classColumns+` FROM timetable WHERE lecturer_id = ? ORDER BY course_code`, lecturerID)
}

// ListForStudent retrieves timetable entries matching the student's
// exact program and year ('Y<year>%' or any '%All%' entry)
func (r *ClassRepo) ListForStudent(program string, year int) ([]*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM timetable WHERE (year_semester LIKE ? OR year_semester LIKE '%All%')`
	args := []any{"Y" + strconv.Itoa(year) + "%"}
	if program != "" {
		query += " AND program = ?"
		args = append(args, program)
	}
	query += " ORDER BY course_code"
	return r.queryClasses(query, args...)
}

// GetByCourseCode retrieves the first timetable entry for a course
func (r *ClassRepo) GetByCourseCode(courseCode string) (*models.Class, error) {
	class, err := scanClass(DB.QueryRow(`SELECT `+classColumns+` FROM timetable WHERE course_code = ? LIMIT 1`, courseCode))
	if err == sql.ErrNoRows {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return class, nil
}

// ProgramsForCourse returns every program that takes the course
func (r *ClassRepo) ProgramsForCourse(courseCode string) ([]string, error) {
	rows, err := DB.Query(`
		SELECT DISTINCT program FROM timetable WHERE course_code = ? AND program IS NOT NULL AND program != ''
	`, courseCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []string
	for rows.Next() {
		var program string
		if err := rows.Scan(&program); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}

	return programs, rows.Err()
}

// IsLecturerFor reports whether the lecturer teaches the class.
// Attendance class IDs are prefixed by the course code, so the check
// matches any timetable row whose course code prefixes classID.
func (r *ClassRepo) IsLecturerFor(classID, lecturerID string) (bool, error) {
	var count int
	err := DB.QueryRow(`
		SELECT COUNT(*) FROM timetable WHERE lecturer_id = ? AND ? LIKE course_code || '%'
	`, lecturerID, classID).Scan(&count)
	return count > 0, err
}

// Create creates a new timetable entry
func (r *ClassRepo) Create(class *models.Class) error {
	_, err := DB.Exec(`
		INSERT INTO timetable (college, department, program, year_semester, course_code, course_name,
			section, day, from_time, to_time, venue, lecturer, lecturer_id, latitude, longitude, allowed_ips)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, class.College, class.Department, class.Program, class.YearSemester,
		class.CourseCode, class.CourseName, class.Section, class.Day,
		class.FromTime, class.ToTime, class.Venue, class.Lecturer, class.LecturerID,
		class.Latitude, class.Longitude, class.AllowedIPs)
	return err
}

// Update changes the schedule fields of a course's timetable entries
func (r *ClassRepo) Update(courseCode string, req *models.UpdateClassRequest) error {
	sets := []string{}
	args := []any{}
	if req.Day != nil {
		sets = append(sets, "day = ?")
		args = append(args, *req.Day)
	}
	if req.FromTime != nil {
		sets = append(sets, "from_time = ?")
		args = append(args, *req.FromTime)
	}
	if req.Venue != nil {
		sets = append(sets, "venue = ?")
		args = append(args, *req.Venue)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, courseCode)
	result, err := DB.Exec("UPDATE timetable SET "+strings.Join(sets, ", ")+" WHERE course_code = ?", args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClassNotFound
	}

	return nil
}
