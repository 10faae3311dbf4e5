package auth

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrUserExists         = errors.New("user already exists")
)

// Service handles authentication logic
type Service struct {
	userRepo     *database.UserRepo
	sessionRepo  *database.SessionRepo
	settingsRepo *database.SettingsRepo
}

// NewService creates a new auth service
func NewService() *Service {
	return &Service{
		userRepo:     database.NewUserRepo(),
		sessionRepo:  database.NewSessionRepo(),
		settingsRepo: database.NewSettingsRepo(),
	}
}

// LoginResponse represents a successful login
type LoginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Login authenticates a user and creates a session. The identifier is
// an email address or a university ID; clients send either in the
// email field.
func (s *Service) Login(identifier, password, ipAddress, userAgent string) (*LoginResponse, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(identifier)
	if errors.Is(err, database.ErrUserNotFound) {
		user, err = s.userRepo.GetByID(identifier)
	}
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if user.Disabled {
		return nil, ErrUserDisabled
	}

	token, session, err := s.createSession(user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Register creates a new local account. University IDs follow the
// registrar convention: lecturers start with '21', students with '25';
// when no ID is supplied a mock one is generated.
func (s *Service) Register(req *models.RegisterRequest) (*models.User, error) {
	if req.Role != models.RoleLecturer {
		req.Role = models.RoleStudent
	}

	id := strings.TrimSpace(req.IDNumber)
	if id == "" {
		prefix := "25"
		if req.Role == models.RoleLecturer {
			prefix = "21"
		}
		id = fmt.Sprintf("%s%04d", prefix, 1000+rand.Intn(9000))
	}

	exists, err := s.userRepo.Exists(id, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           id,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		AuthType:     models.AuthTypeLocal,
	}
	if req.Role == models.RoleStudent {
		year := 1
		user.Year = &year
	} else {
		user.Department = "Computer Science"
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// LoginSSO finds or provisions an account for an SSO identity and
// creates a session. SSO users carry no local password.
func (s *Service) LoginSSO(id, fullName, email string, role models.Role, ipAddress, userAgent string) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, database.ErrUserNotFound) {
		user = &models.User{
			ID:       id,
			FullName: fullName,
			Email:    email,
			Role:     role,
			AuthType: models.AuthTypeSSO,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if user.Disabled {
		return nil, ErrUserDisabled
	}

	token, session, err := s.createSession(user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) createSession(user *models.User, ipAddress, userAgent string) (string, *models.Session, error) {
	timeoutMinutes, err := s.settingsRepo.GetInt(database.SettingSessionTimeout)
	if err != nil || timeoutMinutes <= 0 {
		timeoutMinutes = 60 // Default 1 hour
	}
	duration := time.Duration(timeoutMinutes) * time.Minute

	token, session, err := s.sessionRepo.Create(user.ID, ipAddress, userAgent, duration)
	if err != nil {
		return "", nil, err
	}

	s.userRepo.UpdateLastLogin(user.ID)

	return token, session, nil
}

// Logout invalidates a session
func (s *Service) Logout(token string) error {
	return s.sessionRepo.DeleteByToken(token)
}

// ValidateToken validates a session token and returns the user
func (s *Service) ValidateToken(token string) (*models.User, *models.Session, error) {
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, nil, err
	}

	if user.Disabled {
		return nil, nil, ErrUserDisabled
	}

	return user, session, nil
}

// RefreshToken extends the session expiration
func (s *Service) RefreshToken(token string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}

	timeoutMinutes, err := s.settingsRepo.GetInt(database.SettingSessionTimeout)
	if err != nil || timeoutMinutes <= 0 {
		timeoutMinutes = 60
	}
	duration := time.Duration(timeoutMinutes) * time.Minute

	if err := s.sessionRepo.Extend(session.ID, duration); err != nil {
		return nil, err
	}

	session.ExpiresAt = time.Now().Add(duration)
	return session, nil
}
