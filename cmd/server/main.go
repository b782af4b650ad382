package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"nestling/internal/config"
	"nestling/internal/database"
	"nestling/internal/handlers"
	"nestling/internal/repository"
	"nestling/internal/security"
	"nestling/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	growthRepo := repository.NewGrowthRepository(db)
	medicationRepo := repository.NewMedicationRepository(db)
	vaccineRepo := repository.NewVaccineRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
	authService := service.NewAuthService(userRepo, tokens, cfg.GoogleAudience, emailService)
	memberService := service.NewMemberService(memberRepo, userRepo, emailService)
	childService := service.NewChildService(childRepo, memberService, vaccineRepo)
	healthService := service.NewHealthService(memberService, childRepo, growthRepo, medicationRepo, vaccineRepo)
	pdfService := service.NewPDFService()

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	middleware := handlers.NewMiddleware(authService, tokens, limiter, cfg.CORSOrigins)
	authHandler := handlers.NewAuthHandler(authService, googleOAuth, cfg.OAuthRedirectBaseURL, cfg.FrontendBaseURL)
	childHandler := handlers.NewChildHandler(childService)
	memberHandler := handlers.NewMemberHandler(memberService)
	healthHandler := handlers.NewHealthHandler(healthService, pdfService)
	systemHandler := handlers.NewSystemHandler(db)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", systemHandler.Healthz)

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/v1/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/v1/auth/google", middleware.RateLimit(authHandler.GoogleLogin))
	mux.HandleFunc("GET /api/v1/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Child routes
	mux.HandleFunc("POST /api/v1/children", middleware.RequireAuth(childHandler.Create))
	mux.HandleFunc("GET /api/v1/children", middleware.RequireAuth(childHandler.List))
	mux.HandleFunc("GET /api/v1/children/{childID}", middleware.RequireAuth(childHandler.Get))
	mux.HandleFunc("PUT /api/v1/children/{childID}", middleware.RequireAuth(childHandler.Update))
	mux.HandleFunc("DELETE /api/v1/children/{childID}", middleware.RequireAuth(childHandler.Delete))

	// Care team routes
	mux.HandleFunc("GET /api/v1/children/{childID}/members", middleware.RequireAuth(memberHandler.List))
	mux.HandleFunc("POST /api/v1/children/{childID}/members", middleware.RequireAuth(memberHandler.Invite))
	mux.HandleFunc("PUT /api/v1/children/{childID}/members/{memberID}", middleware.RequireAuth(memberHandler.UpdateRole))
	mux.HandleFunc("DELETE /api/v1/children/{childID}/members/{memberID}", middleware.RequireAuth(memberHandler.Remove))

	// Growth routes
	mux.HandleFunc("POST /api/v1/children/{childID}/growth", middleware.RequireAuth(healthHandler.CreateGrowthLog))
	mux.HandleFunc("GET /api/v1/children/{childID}/growth", middleware.RequireAuth(healthHandler.ListGrowthLogs))
	mux.HandleFunc("GET /api/v1/health/growth", middleware.RequireAuth(healthHandler.ListAllGrowthLogs))
	mux.HandleFunc("PUT /api/v1/health/growth/{logID}", middleware.RequireAuth(healthHandler.UpdateGrowthLog))
	mux.HandleFunc("DELETE /api/v1/health/growth/{logID}", middleware.RequireAuth(healthHandler.DeleteGrowthLog))

	// Medication routes
	mux.HandleFunc("POST /api/v1/children/{childID}/medications", middleware.RequireAuth(healthHandler.CreateMedicationLog))
	mux.HandleFunc("GET /api/v1/children/{childID}/medications", middleware.RequireAuth(healthHandler.ListMedicationLogs))
	mux.HandleFunc("GET /api/v1/health/medications", middleware.RequireAuth(healthHandler.ListAllMedicationLogs))
	mux.HandleFunc("PUT /api/v1/health/medications/{logID}", middleware.RequireAuth(healthHandler.UpdateMedicationLog))
	mux.HandleFunc("DELETE /api/v1/health/medications/{logID}", middleware.RequireAuth(healthHandler.DeleteMedicationLog))
	mux.HandleFunc("GET /api/v1/health/medications/export/pdf", middleware.RequireAuth(healthHandler.ExportMedicationsPDF))

	// Vaccine routes
	mux.HandleFunc("POST /api/v1/children/{childID}/vaccines", middleware.RequireAuth(healthHandler.CreateVaccineRecord))
	mux.HandleFunc("GET /api/v1/children/{childID}/vaccines", middleware.RequireAuth(healthHandler.ListVaccineRecords))
	mux.HandleFunc("GET /api/v1/health/vaccines", middleware.RequireAuth(healthHandler.ListAllVaccineRecords))
	mux.HandleFunc("PUT /api/v1/health/vaccines/{recordID}", middleware.RequireAuth(healthHandler.UpdateVaccineRecord))
	mux.HandleFunc("DELETE /api/v1/health/vaccines/{recordID}", middleware.RequireAuth(healthHandler.DeleteVaccineRecord))
	mux.HandleFunc("GET /api/v1/health/vaccines/export/pdf", middleware.RequireAuth(healthHandler.ExportVaccinesPDF))

	// Wrap with CORS and logging middleware
	handler := handlers.Logging(middleware.CORS(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
