package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"attendance-backend/internal/models"
)

// openTestDB points the package-level DB at a fresh sqlite file and
// runs migrations. Repos all go through the global, so tests using it
// must not run in parallel.
func openTestDB(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Open(Config{Path: path}))
	t.Cleanup(func() {
		require.NoError(t, Close())
	})
}

func createTestUser(t *testing.T, id string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ID:       id,
		FullName: "Test " + id,
		Email:    id + "@university.edu",
		Role:     role,
		AuthType: models.AuthTypeLocal,
	}
	require.NoError(t, NewUserRepo().Create(user))
	return user
}

func createTestClass(t *testing.T, courseCode, lecturerID string) {
	t.Helper()

	require.NoError(t, NewClassRepo().Create(&models.Class{
		Program:      "BScCS",
		YearSemester: "Y2S1",
		CourseCode:   courseCode,
		CourseName:   "Test Course " + courseCode,
		Day:          "Monday",
		FromTime:     "08:00",
		ToTime:       "10:00",
		Venue:        "LT1",
		LecturerID:   lecturerID,
	}))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	openTestDB(t)

	// Re-running against an already-migrated database must be a no-op
	require.NoError(t, migrate())

	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	require.Equal(t, len(migrations), count)
}

func TestMigrationsSeedDefaultSettings(t *testing.T) {
	openTestDB(t)

	repo := NewSettingsRepo()
	value, err := repo.Get(SettingSessionLifetime)
	require.NoError(t, err)
	require.Equal(t, "120", value)
}
