package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"hotspothub.io/platform/internal/config"
	"hotspothub.io/platform/internal/handlers"
	"hotspothub.io/platform/internal/middleware"
	"hotspothub.io/platform/pkg/crypto"
	"hotspothub.io/platform/pkg/database"
	"hotspothub.io/platform/pkg/logger"
	"hotspothub.io/platform/pkg/metrics"
	"hotspothub.io/platform/pkg/redis"
)

func main() {
	log := logger.New()
	log.Info("Starting HotspotHub API v1.0.0...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()
	log.Info("Database connected successfully")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	log.Info("Migrations completed")

	// Redis is optional; rate limiting and caching degrade gracefully.
	cache, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, rate limiting and caching disabled", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		log.Info("Redis connected successfully")
	}

	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Invalid encryption key", "error", err)
	}

	h := handlers.New(db, cache, log, cfg, cipher)
	limiter := middleware.NewRateLimiter(cache, cfg.RateLimit, cfg.RateWindow)

	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	// ============== PUBLIC ROUTES (No Auth) ==============
	r.HandleFunc("/api/health", h.HealthCheck).Methods("GET")
	r.Handle("/api/metrics", metrics.Handler()).Methods("GET")

	auth := r.PathPrefix("/api/v1/auth").Subrouter()
	auth.Use(limiter.Middleware)
	auth.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/register", h.Register).Methods("POST")

	// ============== PROTECTED ROUTES (JWT Auth) ==============
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(cfg.JWT.Secret))

	api.HandleFunc("/auth/refresh", h.RefreshToken).Methods("POST")

	// Platform-level resources
	api.HandleFunc("/users", h.GetUsers).Methods("GET")
	api.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}", h.UpdateUser).Methods("PUT")
	api.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")

	api.HandleFunc("/isps", h.GetISPs).Methods("GET")
	api.HandleFunc("/isps", h.CreateISP).Methods("POST")
	api.HandleFunc("/isps/{id}", h.GetISP).Methods("GET")
	api.HandleFunc("/isps/{id}", h.UpdateISP).Methods("PUT")
	api.HandleFunc("/isps/{id}", h.DeleteISP).Methods("DELETE")
	api.HandleFunc("/isps/{id}/suspend", h.SuspendISP).Methods("POST")
	api.HandleFunc("/isps/{id}/activate", h.ActivateISP).Methods("POST")

	api.HandleFunc("/audit", h.GetAuditLogs).Methods("GET")

	// ============== TENANT-SCOPED ROUTES ==============
	tenant := api.NewRoute().Subrouter()
	tenant.Use(middleware.Tenant)

	tenant.HandleFunc("/plans", h.GetPlans).Methods("GET")
	tenant.HandleFunc("/plans", h.CreatePlan).Methods("POST")
	tenant.HandleFunc("/plans/{id}", h.GetPlan).Methods("GET")
	tenant.HandleFunc("/plans/{id}", h.UpdatePlan).Methods("PUT")
	tenant.HandleFunc("/plans/{id}", h.DeletePlan).Methods("DELETE")
	tenant.HandleFunc("/plans/{id}/pricing-rules", h.CreatePricingRule).Methods("POST")
	tenant.HandleFunc("/plans/{id}/pricing-rules/{ruleId}", h.DeletePricingRule).Methods("DELETE")

	tenant.HandleFunc("/vouchers", h.GetVouchers).Methods("GET")
	tenant.HandleFunc("/vouchers", h.CreateVoucher).Methods("POST")
	tenant.HandleFunc("/vouchers/batch", h.CreateVoucherBatch).Methods("POST")
	tenant.HandleFunc("/vouchers/expire-sweep", h.ExpireVouchers).Methods("POST")
	tenant.HandleFunc("/vouchers/{code}", h.GetVoucher).Methods("GET")
	tenant.HandleFunc("/vouchers/{code}/redeem", h.RedeemVoucher).Methods("POST")
	tenant.HandleFunc("/vouchers/{code}/revoke", h.RevokeVoucher).Methods("POST")

	tenant.HandleFunc("/sessions", h.GetSessions).Methods("GET")
	tenant.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	tenant.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	tenant.HandleFunc("/sessions/{id}/terminate", h.TerminateSession).Methods("POST")

	tenant.HandleFunc("/metrics", h.GetMetrics).Methods("GET")
	tenant.HandleFunc("/metrics", h.CreateMetric).Methods("POST")

	tenant.HandleFunc("/payments", h.GetPayments).Methods("GET")
	tenant.HandleFunc("/payments", h.CreatePayment).Methods("POST")
	tenant.HandleFunc("/payments/{id}/complete", h.CompletePayment).Methods("POST")
	tenant.HandleFunc("/payments/{id}/fail", h.FailPayment).Methods("POST")

	tenant.HandleFunc("/dashboard/stats", h.GetDashboardStats).Methods("GET")

	tenant.HandleFunc("/notifications", h.GetNotifications).Methods("GET")
	tenant.HandleFunc("/notifications", h.CreateNotification).Methods("POST")
	tenant.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("POST")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.TenantHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Handler:      c.Handler(r),
		Addr:         ":" + cfg.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("Server starting", "port", cfg.Port)

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
