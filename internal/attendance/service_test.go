package attendance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/otp"
)

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Open(database.Config{Path: path}))
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})

	require.NoError(t, database.NewClassRepo().Create(&models.Class{
		Program:      "BScCS",
		YearSemester: "Y2S1",
		CourseCode:   "NCSC211",
		CourseName:   "Data Structures",
		LecturerID:   "210001",
	}))

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	service := NewService()
	service.SetClock(func() time.Time { return now })
	return service, &now
}

func TestCodeFlow(t *testing.T) {
	service, now := newTestService(t)

	// Lecturer opens the window and gets the current code
	grant, err := service.RequestCode("NCSC211-A", "210001", "10.0.0.1")
	require.NoError(t, err)
	assert.Len(t, grant.Code, otp.Digits)
	assert.Equal(t, int64(30000), grant.ExpiresInMs)

	// Student submits it and is marked present
	result, err := service.SubmitCode("NCSC211-A", "250001", grant.Code)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, "2026-03-02", result.Date)

	// Resubmitting is accepted but creates nothing
	result, err = service.SubmitCode("NCSC211-A", "250001", grant.Code)
	require.NoError(t, err)
	assert.False(t, result.Created)

	// A wrong code is rejected
	wrong := "000000"
	if wrong == grant.Code {
		wrong = "000001"
	}
	_, err = service.SubmitCode("NCSC211-A", "250002", wrong)
	assert.ErrorIs(t, err, ErrInvalidCode)

	// After the window expires, submissions find no session
	*now = now.Add(3 * time.Hour)
	_, err = service.SubmitCode("NCSC211-A", "250002", grant.Code)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestRequestCodeKeepsSecretWhileLive(t *testing.T) {
	service, now := newTestService(t)

	first, err := service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)

	// A refresh inside the same step returns the same code: the live
	// session's secret survives the repeated request
	second, err := service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)

	// The displayed code rotates every step even without a refresh
	*now = now.Add(30 * time.Second)
	third, err := service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, third.Code)
}

func TestSubmitCodeAcceptsAdjacentStep(t *testing.T) {
	service, now := newTestService(t)

	grant, err := service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)

	// The code from the previous step is still accepted one step later
	*now = now.Add(30 * time.Second)
	_, err = service.SubmitCode("NCSC211-A", "250001", grant.Code)
	require.NoError(t, err)

	// Two steps later it is stale
	*now = now.Add(30 * time.Second)
	_, err = service.SubmitCode("NCSC211-A", "250002", grant.Code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestRequestCodeRejectsWrongLecturer(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.RequestCode("NCSC211-A", "210099", "")
	assert.ErrorIs(t, err, ErrNotClassLecturer)
}

func TestExpiredSessionRotatesSecret(t *testing.T) {
	service, now := newTestService(t)

	first, err := service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)

	// Reopening after expiry mints a new secret; the old code series is
	// dead even at the same step offset
	*now = now.Add(3 * time.Hour)
	_, err = service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)

	_, err = service.SubmitCode("NCSC211-A", "250001", first.Code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestBulkMarkSkipsExisting(t *testing.T) {
	service, _ := newTestService(t)

	grant, err := service.RequestCode("NCSC211-A", "210001", "")
	require.NoError(t, err)
	_, err = service.SubmitCode("NCSC211-A", "250001", grant.Code)
	require.NoError(t, err)

	created, err := service.BulkMark("NCSC211-A", []string{"250001", "250002", "250003"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, created, "the student already marked by code is skipped")
}

func TestStudentStats(t *testing.T) {
	service, _ := newTestService(t)

	year := 2
	student := &models.User{ID: "250001", Role: models.RoleStudent, Program: "BScCS", Year: &year}

	_, err := service.BulkMark("NCSC211-A", []string{"250001"}, "2026-03-02")
	require.NoError(t, err)
	_, err = service.BulkMark("NCSC211-A", []string{"250001"}, "2026-03-09")
	require.NoError(t, err)

	stats, err := service.StudentStats(student)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "NCSC211", stats[0].CourseCode)
	assert.Equal(t, 2, stats[0].Attended)
	// Early in the semester the total is floored so percentages don't
	// start at 100
	assert.Equal(t, 12, stats[0].Total)
}

func TestCourseOverview(t *testing.T) {
	service, _ := newTestService(t)

	// Two sessions, three students, four marks present
	_, err := service.BulkMark("NCSC211-A", []string{"250001", "250002", "250003"}, "2026-03-02")
	require.NoError(t, err)
	_, err = service.BulkMark("NCSC211-A", []string{"250001"}, "2026-03-09")
	require.NoError(t, err)

	overview, err := service.CourseOverview("NCSC211")
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalSessions)
	assert.Equal(t, 3, overview.TotalStudents)
	assert.Equal(t, 4, overview.PresentCount)
	// 4 of 6 expected marks, rounded
	assert.Equal(t, 67, overview.AvgAttendance)
}

func TestCourseRoster(t *testing.T) {
	service, _ := newTestService(t)
	users := database.NewUserRepo()

	year := 2
	for _, id := range []string{"250001", "250002", "250003"} {
		require.NoError(t, users.Create(&models.User{
			ID: id, FullName: "Student " + id, Role: models.RoleStudent,
			AuthType: models.AuthTypeLocal, Program: "BScCS", Year: &year,
		}))
	}

	for _, date := range []string{"2026-03-02", "2026-03-09", "2026-03-16", "2026-03-23", "2026-03-30", "2026-04-06"} {
		_, err := service.BulkMark("NCSC211-A", []string{"250001"}, date)
		require.NoError(t, err)
	}
	_, err := service.BulkMark("NCSC211-A", []string{"250002"}, "2026-03-02")
	require.NoError(t, err)

	roster, totalSessions, err := service.CourseRoster("NCSC211", users)
	require.NoError(t, err)
	assert.Equal(t, 6, totalSessions)
	require.Len(t, roster, 3)

	byID := map[string]*models.StudentStanding{}
	for _, s := range roster {
		byID[s.ID] = s
	}
	assert.Equal(t, "good", byID["250001"].Status)
	assert.Equal(t, 100, byID["250001"].Percentage)
	assert.Equal(t, "risk", byID["250002"].Status)
	assert.Equal(t, "danger", byID["250003"].Status)

	_, _, err = service.CourseRoster("NCSC999", users)
	assert.ErrorIs(t, err, database.ErrClassNotFound)
}
