package database

import (
	"database/sql"
	"errors"
	"time"

	"attendance-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

const userColumns = `id, full_name, email, password_hash, role, auth_type, year, department, program, college, disabled,
	       created_at, updated_at, last_login`

// Create creates a new user
func (r *UserRepo) Create(user *models.User) error {
	_, err := DB.Exec(`
		INSERT INTO users (id, full_name, email, password_hash, role, auth_type, year, department, program, college, disabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.FullName, user.Email, user.PasswordHash, user.Role, user.AuthType,
		user.Year, user.Department, user.Program, user.College, user.Disabled)
	if err != nil {
		return err
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var email, department, program, college sql.NullString
	var year sql.NullInt64
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.FullName, &email, &user.PasswordHash,
		&user.Role, &user.AuthType, &year, &department, &program, &college,
		&user.Disabled, &user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	user.Department = department.String
	user.Program = program.String
	user.College = college.String
	if year.Valid {
		y := int(year.Int64)
		user.Year = &y
	}
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return user, nil
}

// GetByID retrieves a user by university ID
func (r *UserRepo) GetByID(id string) (*models.User, error) {
	user, err := scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	user, err := scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListStudents retrieves students in any of the given programs and year
func (r *UserRepo) ListStudents(programs []string, year int) ([]*models.User, error) {
	if len(programs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'student' AND year = ? AND program IN (?`
	args := []any{year, programs[0]}
	for _, p := range programs[1:] {
		query += ", ?"
		args = append(args, p)
	}
	query += ") ORDER BY id"

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepo) UpdateLastLogin(id string) error {
	_, err := DB.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now(), id)
	return err
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// Exists checks if a user with the given ID or email exists
func (r *UserRepo) Exists(id, email string) (bool, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE id = ? OR email = ?", id, email).Scan(&count)
	return count > 0, err
}
