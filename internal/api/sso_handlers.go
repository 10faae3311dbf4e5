package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/sso"
)

var ssoClient *sso.Client

// InitSSO enables the institutional sign-on endpoints and flips the
// sso_enabled setting so clients can discover the feature. When never
// called, the SSO routes report the feature as unavailable.
func InitSSO(client *sso.Client) {
	ssoClient = client
	database.NewSettingsRepo().Set(database.SettingSSOEnabled, "true")
}

// ssoAvailable reports whether sign-on is configured and not switched
// off at runtime
func ssoAvailable() bool {
	if ssoClient == nil {
		return false
	}
	enabled, err := database.NewSettingsRepo().GetBool(database.SettingSSOEnabled)
	return err == nil && enabled
}

// ssoLoginHandler handles GET /api/auth/sso/login
func ssoLoginHandler(c echo.Context) error {
	if !ssoAvailable() {
		return c.JSON(http.StatusNotImplemented, map[string]string{
			"error": "single sign-on is not configured",
		})
	}

	return c.Redirect(http.StatusFound, ssoClient.AuthURL(""))
}

// ssoCallbackHandler handles GET /api/auth/sso/callback
func ssoCallbackHandler(c echo.Context) error {
	if !ssoAvailable() {
		return c.JSON(http.StatusNotImplemented, map[string]string{
			"error": "single sign-on is not configured",
		})
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "missing authorization code",
		})
	}

	ctx := c.Request().Context()

	token, err := ssoClient.Exchange(ctx, code)
	if err != nil {
		c.Logger().Error("sso exchange error: ", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "sign-on failed",
		})
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "identity provider returned no ID token",
		})
	}

	identity, err := ssoClient.IdentityFromToken(ctx, rawIDToken)
	if err != nil {
		c.Logger().Error("sso verify error: ", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "sign-on failed",
		})
	}

	resp, err := authService.LoginSSO(identity.UniversityID, identity.FullName, identity.Email,
		identity.Role, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		c.Logger().Error("sso login error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "sign-on failed",
		})
	}

	auditRepo.Log(resp.User.ID, resp.User.FullName, models.ActionLogin, "sso", nil, c.RealIP())

	setSessionCookie(c, resp.Token, resp.ExpiresAt)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":       resp.User,
		"token":      resp.Token,
		"expires_at": resp.ExpiresAt,
	})
}
