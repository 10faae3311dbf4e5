package database

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/internal/models"
)

func TestMarkPresentIsIdempotent(t *testing.T) {
	openTestDB(t)
	repo := NewAttendanceRepo()

	created, err := repo.MarkPresent("250001", "NCSC211-A", "2026-03-02", models.MethodCode)
	require.NoError(t, err)
	assert.True(t, created)

	// The duplicate is swallowed by the unique constraint
	created, err = repo.MarkPresent("250001", "NCSC211-A", "2026-03-02", models.MethodCode)
	require.NoError(t, err)
	assert.False(t, created)

	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM attendance_marks").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMarkPresentDistinctKeys(t *testing.T) {
	openTestDB(t)
	repo := NewAttendanceRepo()

	for _, mark := range []struct{ user, class, date string }{
		{"250001", "NCSC211-A", "2026-03-02"},
		{"250002", "NCSC211-A", "2026-03-02"}, // different student
		{"250001", "NCSC212-A", "2026-03-02"}, // different class
		{"250001", "NCSC211-A", "2026-03-09"}, // different day
	} {
		created, err := repo.MarkPresent(mark.user, mark.class, mark.date, models.MethodManual)
		require.NoError(t, err)
		assert.True(t, created, "%+v", mark)
	}
}

func TestMarkPresentConcurrent(t *testing.T) {
	openTestDB(t)
	repo := NewAttendanceRepo()

	const workers = 20
	results := make([]bool, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.MarkPresent("250001", "NCSC211-A", "2026-03-02", models.MethodCode)
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i] {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount, "exactly one submission creates the mark")

	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM attendance_marks").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestToday(t *testing.T) {
	repo := NewAttendanceRepo()
	repo.Now = func() time.Time { return time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC) }
	assert.Equal(t, "2026-03-02", repo.Today())
}

func TestListClassIDsForUserOn(t *testing.T) {
	openTestDB(t)
	repo := NewAttendanceRepo()

	_, err := repo.MarkPresent("250001", "NCSC211-A", "2026-03-02", models.MethodCode)
	require.NoError(t, err)
	_, err = repo.MarkPresent("250001", "NCSC212-B", "2026-03-02", models.MethodCode)
	require.NoError(t, err)
	_, err = repo.MarkPresent("250001", "NCSC213-A", "2026-03-03", models.MethodCode)
	require.NoError(t, err)

	classIDs, err := repo.ListClassIDsForUserOn("250001", "2026-03-02")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"NCSC211-A", "NCSC212-B"}, classIDs)
}

func TestCourseCounts(t *testing.T) {
	openTestDB(t)
	repo := NewAttendanceRepo()

	// Two sections of NCSC211 over two days, plus an unrelated course
	marks := []struct{ user, class, date string }{
		{"250001", "NCSC211-A", "2026-03-02"},
		{"250002", "NCSC211-B", "2026-03-02"},
		{"250001", "NCSC211-A", "2026-03-09"},
		{"250001", "NCSC299-A", "2026-03-02"},
	}
	for _, m := range marks {
		_, err := repo.MarkPresent(m.user, m.class, m.date, models.MethodCode)
		require.NoError(t, err)
	}

	count, err := repo.CountForUserByCourse("250001", "NCSC211")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sessions, err := repo.CountSessionsByCourse("NCSC211")
	require.NoError(t, err)
	assert.Equal(t, 2, sessions)

	total, err := repo.CountMarksByCourse("NCSC211")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	students, err := repo.CountStudentsByCourse("NCSC211")
	require.NoError(t, err)
	assert.Equal(t, 2, students)
}
