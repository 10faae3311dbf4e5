// Package sso integrates the university's OIDC identity provider as
// an alternative to local password login. Accounts are provisioned on
// first sign-in from the ID token claims.
package sso

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"attendance-backend/internal/models"
)

// Config holds the identity provider settings
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	// IDClaim names the claim carrying the university ID (default "student_id")
	IDClaim string
	// RoleClaim names the claim carrying the account role (default "role")
	RoleClaim string
}

// Client wraps the go-oidc provider for institutional sign-on
type Client struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	config       *Config
}

// Identity is the user information extracted from a verified ID token
type Identity struct {
	Subject      string
	UniversityID string
	Email        string
	FullName     string
	Role         models.Role
}

// NewClient initializes an OIDC client against the configured issuer
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if config.IssuerURL == "" {
		return nil, fmt.Errorf("issuer URL is required")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	// Create context with timeout for provider initialization
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(initCtx, config.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURI,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: config.ClientID,
	})

	return &Client{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		config:       config,
	}, nil
}

// AuthURL generates the authorization URL for the login redirect
func (c *Client) AuthURL(state string) string {
	if state == "" {
		state = generateState()
	}
	return c.oauth2Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := c.oauth2Config.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// IdentityFromToken verifies a raw ID token and extracts the identity
func (c *Client) IdentityFromToken(ctx context.Context, rawIDToken string) (*Identity, error) {
	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	idToken, err := c.verifier.Verify(verifyCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	identity := &Identity{Subject: idToken.Subject}

	idClaim := c.config.IDClaim
	if idClaim == "" {
		idClaim = "student_id"
	}
	if universityID, ok := claims[idClaim].(string); ok {
		identity.UniversityID = universityID
	} else {
		identity.UniversityID = idToken.Subject
	}

	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}

	if name, ok := claims["name"].(string); ok {
		identity.FullName = name
	} else if given, ok := claims["given_name"].(string); ok {
		if family, ok := claims["family_name"].(string); ok {
			identity.FullName = given + " " + family
		} else {
			identity.FullName = given
		}
	} else {
		identity.FullName = identity.UniversityID
	}

	roleClaim := c.config.RoleClaim
	if roleClaim == "" {
		roleClaim = "role"
	}
	identity.Role = models.RoleStudent
	if role, ok := claims[roleClaim].(string); ok && models.Role(role) == models.RoleLecturer {
		identity.Role = models.RoleLecturer
	}

	return identity, nil
}

// generateState generates a random state parameter for the OAuth2 flow
func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
