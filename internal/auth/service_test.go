package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Open(database.Config{Path: path}))
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})

	return NewService()
}

func registerTestUser(t *testing.T, s *Service, id, email string, role models.Role) *models.User {
	t.Helper()

	user, err := s.Register(&models.RegisterRequest{
		FullName: "Test User",
		Email:    email,
		Password: "secret123",
		IDNumber: id,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterGeneratesMockID(t *testing.T) {
	s := newTestService(t)

	student, err := s.Register(&models.RegisterRequest{
		FullName: "A Student",
		Email:    "student@university.edu",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Len(t, student.ID, 6)
	assert.Equal(t, "25", student.ID[:2])
	assert.Equal(t, models.RoleStudent, student.Role)
	require.NotNil(t, student.Year)
	assert.Equal(t, 1, *student.Year)

	lecturer, err := s.Register(&models.RegisterRequest{
		FullName: "A Lecturer",
		Email:    "lecturer@university.edu",
		Password: "secret123",
		Role:     models.RoleLecturer,
	})
	require.NoError(t, err)
	assert.Equal(t, "21", lecturer.ID[:2])
	assert.Equal(t, "Computer Science", lecturer.Department)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := newTestService(t)
	registerTestUser(t, s, "250001", "student@university.edu", models.RoleStudent)

	_, err := s.Register(&models.RegisterRequest{
		FullName: "Same ID",
		Email:    "other@university.edu",
		Password: "secret123",
		IDNumber: "250001",
	})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.Register(&models.RegisterRequest{
		FullName: "Same Email",
		Email:    "student@university.edu",
		Password: "secret123",
		IDNumber: "250099",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginByEmailOrID(t *testing.T) {
	s := newTestService(t)
	registerTestUser(t, s, "250001", "student@university.edu", models.RoleStudent)

	resp, err := s.Login("student@university.edu", "secret123", "10.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, "250001", resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	resp, err = s.Login("250001", "secret123", "10.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, "250001", resp.User.ID)

	// Surrounding whitespace is tolerated
	_, err = s.Login(" 250001 ", " secret123 ", "", "")
	assert.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService(t)
	registerTestUser(t, s, "250001", "student@university.edu", models.RoleStudent)

	_, err := s.Login("250001", "wrongpass", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login("999999", "secret123", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login("", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateAndLogout(t *testing.T) {
	s := newTestService(t)
	registerTestUser(t, s, "250001", "student@university.edu", models.RoleStudent)

	resp, err := s.Login("250001", "secret123", "", "")
	require.NoError(t, err)

	user, session, err := s.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "250001", user.ID)
	assert.Equal(t, "250001", session.UserID)

	require.NoError(t, s.Logout(resp.Token))

	_, _, err = s.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestLoginSSOProvisionsUser(t *testing.T) {
	s := newTestService(t)

	resp, err := s.LoginSSO("250077", "SSO Student", "sso@university.edu", models.RoleStudent, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.AuthTypeSSO, resp.User.AuthType)

	// Second login finds the provisioned account instead of recreating it
	again, err := s.LoginSSO("250077", "SSO Student", "sso@university.edu", models.RoleStudent, "", "")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)

	count, err := database.NewUserRepo().Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, VerifyPassword("secret123", hash))
	assert.False(t, VerifyPassword("secret124", hash))
	assert.False(t, VerifyPassword("secret123", "not-a-hash"))
}
