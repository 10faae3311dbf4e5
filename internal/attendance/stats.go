package attendance

import (
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

// Reporting reads the ledger only; the uniqueness constraint on marks
// means plain counts are correct without any deduplication here.

const (
	// minSessionsStudent is the per-course session floor used for
	// student-facing percentages early in the semester
	minSessionsStudent = 12
	// minSessionsRoster is the floor used for the lecturer roster view
	minSessionsRoster = 6
)

// StudentStats computes the per-course attendance summary for a
// student across the classes their program and year take
func (s *Service) StudentStats(student *models.User) ([]*models.CourseStat, error) {
	year := 1
	if student.Year != nil {
		year = *student.Year
	}

	classes, err := s.classes.ListForStudent(student.Program, year)
	if err != nil {
		return nil, err
	}

	stats := []*models.CourseStat{}
	seen := map[string]bool{}
	for _, class := range classes {
		if seen[class.CourseCode] {
			continue
		}
		seen[class.CourseCode] = true

		attended, err := s.marks.CountForUserByCourse(student.ID, class.CourseCode)
		if err != nil {
			return nil, err
		}

		total, err := s.marks.CountSessionsByCourse(class.CourseCode)
		if err != nil {
			return nil, err
		}
		if total < minSessionsStudent {
			total = minSessionsStudent
		}

		stats = append(stats, &models.CourseStat{
			CourseCode: class.CourseCode,
			Name:       class.CourseName,
			Attended:   attended,
			Total:      total,
		})
	}

	return stats, nil
}

// TodayClassIDs returns the classIds the student is already marked
// present for today
func (s *Service) TodayClassIDs(studentID string) ([]string, error) {
	return s.marks.ListClassIDsForUserOn(studentID, s.marks.Today())
}

// CourseOverview summarizes recorded attendance across a course
func (s *Service) CourseOverview(courseID string) (*models.CourseOverview, error) {
	totalSessions, err := s.marks.CountSessionsByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if totalSessions == 0 {
		totalSessions = 1
	}

	presentCount, err := s.marks.CountMarksByCourse(courseID)
	if err != nil {
		return nil, err
	}

	totalStudents, err := s.marks.CountStudentsByCourse(courseID)
	if err != nil {
		return nil, err
	}

	avg := 0
	if expected := totalSessions * totalStudents; expected > 0 {
		avg = (presentCount*100 + expected/2) / expected
	}

	return &models.CourseOverview{
		CourseID:      courseID,
		TotalSessions: totalSessions,
		TotalStudents: totalStudents,
		AvgAttendance: avg,
		PresentCount:  presentCount,
	}, nil
}

// CourseRoster returns every enrolled student for a course with their
// attendance counts and a risk status, plus the session total used
func (s *Service) CourseRoster(courseCode string, users *database.UserRepo) ([]*models.StudentStanding, int, error) {
	class, err := s.classes.GetByCourseCode(courseCode)
	if err != nil {
		return nil, 0, err
	}

	year := 2
	if class.YearSemester != "" {
		for _, r := range class.YearSemester {
			if r >= '0' && r <= '9' {
				year = int(r - '0')
				break
			}
		}
	}

	programs, err := s.classes.ProgramsForCourse(courseCode)
	if err != nil {
		return nil, 0, err
	}

	students, err := users.ListStudents(programs, year)
	if err != nil {
		return nil, 0, err
	}

	totalSessions, err := s.marks.CountSessionsByCourse(courseCode)
	if err != nil {
		return nil, 0, err
	}
	if totalSessions < minSessionsRoster {
		totalSessions = minSessionsRoster
	}

	roster := []*models.StudentStanding{}
	for _, student := range students {
		attended, err := s.marks.CountForUserByCourse(student.ID, courseCode)
		if err != nil {
			return nil, 0, err
		}

		pct := 0
		if totalSessions > 0 {
			pct = (attended*100 + totalSessions/2) / totalSessions
		}

		status := "good"
		switch {
		case attended == 0:
			status = "danger"
		case pct < 50:
			status = "risk"
		case pct < 75:
			status = "warning"
		}

		roster = append(roster, &models.StudentStanding{
			ID:         student.ID,
			FullName:   student.FullName,
			Program:    student.Program,
			Year:       student.Year,
			Attended:   attended,
			Total:      totalSessions,
			Percentage: pct,
			Status:     status,
		})
	}

	return roster, totalSessions, nil
}
