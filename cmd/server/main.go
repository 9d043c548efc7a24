package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"parqueadero/internal/api"
	"parqueadero/internal/auth"
	"parqueadero/internal/repository"
	"parqueadero/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	reservationRepo := repository.NewReservationRepository(db)
	cellRepo := repository.NewCellRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	settingsSvc := service.NewSettingsService(settingsRepo, 5*time.Minute)
	reservationSvc := service.NewReservationService(reservationRepo, cellRepo, settingsSvc)
	cellSvc := service.NewCellService(cellRepo)
	sweepSvc := service.NewSweepService(reservationRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, jwtSecret)

	if email, pass := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"); email != "" && pass != "" {
		if err := adminAuthSvc.CreateAdmin(email, pass); err != nil {
			log.Printf("Failed to seed admin account: %v", err)
		}
	}

	userHandler := api.NewUserReservationHandler(reservationSvc)
	adminHandler := api.NewAdminHandler(cellSvc, settingsSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", userHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/reservations", userHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations", userHandler.ListReservations).Methods("GET")
	r.HandleFunc("/api/reservations/{id}", userHandler.CancelReservation).Methods("DELETE")
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(jwtSecret))
	admin.HandleFunc("/cells", adminHandler.ListCells).Methods("GET")
	admin.HandleFunc("/cells", adminHandler.CreateCell).Methods("POST")
	admin.HandleFunc("/cells/{id}", adminHandler.UpdateCell).Methods("PUT")
	admin.HandleFunc("/cells/{id}", adminHandler.DeleteCell).Methods("DELETE")
	admin.HandleFunc("/settings", adminHandler.GetSettings).Methods("GET")
	admin.HandleFunc("/settings", adminHandler.UpdateSettings).Methods("PUT")

	// Periodic re-check for bookings that raced past validation.
	schedule := os.Getenv("SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = "@every 5m"
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := sweepSvc.Run(); err != nil {
			log.Printf("Sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid SWEEP_SCHEDULE %q: %v", schedule, err)
	}
	c.Start()
	defer c.Stop()

	origins := []string{"*"}
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(handlers.LoggingHandler(os.Stdout, r))))
}
