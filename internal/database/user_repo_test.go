package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/internal/models"
)

func TestUserCreateAndGet(t *testing.T) {
	openTestDB(t)
	repo := NewUserRepo()
	createTestUser(t, "250001", models.RoleStudent)

	user, err := repo.GetByID("250001")
	require.NoError(t, err)
	assert.Equal(t, "250001@university.edu", user.Email)

	user, err = repo.GetByEmail("250001@university.edu")
	require.NoError(t, err)
	assert.Equal(t, "250001", user.ID)

	_, err = repo.GetByID("999999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserExists(t *testing.T) {
	openTestDB(t)
	repo := NewUserRepo()
	createTestUser(t, "250001", models.RoleStudent)

	exists, err := repo.Exists("250001", "nobody@university.edu")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists("999999", "250001@university.edu")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists("999999", "nobody@university.edu")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserListStudents(t *testing.T) {
	openTestDB(t)
	repo := NewUserRepo()

	year2 := 2
	year3 := 3
	users := []*models.User{
		{ID: "250001", FullName: "A", Role: models.RoleStudent, AuthType: models.AuthTypeLocal, Program: "BScCS", Year: &year2},
		{ID: "250002", FullName: "B", Role: models.RoleStudent, AuthType: models.AuthTypeLocal, Program: "BScIT", Year: &year2},
		{ID: "250003", FullName: "C", Role: models.RoleStudent, AuthType: models.AuthTypeLocal, Program: "BScCS", Year: &year3},
		{ID: "210001", FullName: "D", Role: models.RoleLecturer, AuthType: models.AuthTypeLocal},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(u))
	}

	students, err := repo.ListStudents([]string{"BScCS", "BScIT"}, 2)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "250001", students[0].ID)
	assert.Equal(t, "250002", students[1].ID)

	students, err = repo.ListStudents(nil, 2)
	require.NoError(t, err)
	assert.Empty(t, students)
}
