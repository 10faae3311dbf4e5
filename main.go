package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"attendance-backend/internal/api"
	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/sso"
)

func main() {
	// Get database path from environment or default
	dbPath := os.Getenv("ATTENDANCE_DB_PATH")
	if dbPath == "" {
		// Default to current directory for development
		dbPath = "./attendance.db"
	}

	// Ensure absolute path
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	// Initialize database
	log.Printf("Initializing database at %s", dbPath)
	if err := database.Open(database.Config{Path: dbPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Create a default lecturer account if no users exist
	if err := createDefaultLecturerIfNeeded(); err != nil {
		log.Printf("Warning: failed to create default lecturer: %v", err)
	}

	// Initialize auth service
	authSvc := auth.NewService()

	// Optional institutional sign-on
	if issuer := os.Getenv("ATTENDANCE_SSO_ISSUER"); issuer != "" {
		client, err := sso.NewClient(context.Background(), &sso.Config{
			IssuerURL:    issuer,
			ClientID:     os.Getenv("ATTENDANCE_SSO_CLIENT_ID"),
			ClientSecret: os.Getenv("ATTENDANCE_SSO_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("ATTENDANCE_SSO_REDIRECT_URI"),
		})
		if err != nil {
			log.Printf("Warning: SSO disabled: %v", err)
		} else {
			api.InitSSO(client)
			log.Printf("SSO enabled against %s", issuer)
		}
	}

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// API routes
	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, authSvc)

	// Get port from environment or default
	port := os.Getenv("ATTENDANCE_PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Starting attendance backend on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}

// createDefaultLecturerIfNeeded creates a default lecturer account if no users exist
func createDefaultLecturerIfNeeded() error {
	userRepo := database.NewUserRepo()

	count, err := userRepo.Count()
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Users already exist
	}

	// Create default lecturer
	log.Println("Creating default lecturer (210001 / admin@university.edu / admin) - CHANGE THIS PASSWORD!")

	passwordHash, err := auth.HashPassword("admin")
	if err != nil {
		return err
	}

	lecturer := &models.User{
		ID:           "210001",
		FullName:     "Administrator",
		Email:        "admin@university.edu",
		PasswordHash: passwordHash,
		Role:         models.RoleLecturer,
		AuthType:     models.AuthTypeLocal,
		Department:   "Computer Science",
	}

	return userRepo.Create(lecturer)
}
