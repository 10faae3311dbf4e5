package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

// registerHandler handles POST /api/auth/register
func registerHandler(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "all fields are required",
		})
	}

	user, err := authService.Register(&req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "user already exists",
			})
		}
		c.Logger().Error("register error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "registration failed",
		})
	}

	auditRepo.Log(user.ID, user.FullName, models.ActionRegister, user.ID, nil, c.RealIP())

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "registration successful",
		"user": map[string]interface{}{
			"id":   user.ID,
			"name": user.FullName,
			"role": user.Role,
		},
	})
}

// loginHandler handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}

	// Get client info
	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	resp, err := authService.Login(req.Email, req.Password, ipAddress, userAgent)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid email or password",
			})
		case errors.Is(err, auth.ErrUserDisabled):
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "user account is disabled",
			})
		default:
			c.Logger().Error("login error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "authentication failed",
			})
		}
	}

	auth.LoginRateLimiter.RecordSuccess(ipAddress)
	auditRepo.Log(resp.User.ID, resp.User.FullName, models.ActionLogin, "", nil, ipAddress)

	setSessionCookie(c, resp.Token, resp.ExpiresAt)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":       resp.User,
		"token":      resp.Token,
		"expires_at": resp.ExpiresAt,
	})
}

// logoutHandler handles POST /api/auth/logout
func logoutHandler(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no session token",
		})
	}

	user, _, userErr := authService.ValidateToken(token)

	if err := authService.Logout(token); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			// Session already gone, that's fine
		} else {
			c.Logger().Error("logout error: ", err)
		}
	}

	if userErr == nil {
		auditRepo.Log(user.ID, user.FullName, models.ActionLogout, "", nil, c.RealIP())
	}

	// Clear cookie
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// refreshTokenHandler handles POST /api/auth/refresh
func refreshTokenHandler(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "no session token",
		})
	}

	session, err := authService.RefreshToken(token)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) || errors.Is(err, database.ErrSessionExpired) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "session expired or invalid",
			})
		}
		c.Logger().Error("refresh token error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to refresh session",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"expires_at": session.ExpiresAt,
	})
}

// getCurrentUser handles GET /api/auth/me
func getCurrentUser(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "not authenticated",
		})
	}

	user, session, err := authService.ValidateToken(token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "session expired or invalid",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":    user,
		"session": session,
	})
}

func setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil, // Secure if HTTPS
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	}
	c.SetCookie(cookie)
}
