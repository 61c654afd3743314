// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/confreg/conference-registration/internal/clock"
	"github.com/confreg/conference-registration/internal/database"
	"github.com/confreg/conference-registration/internal/handler"
	"github.com/confreg/conference-registration/internal/repository"
	"github.com/confreg/conference-registration/internal/service"
	"github.com/confreg/conference-registration/migrations"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type serverConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

func main() {
	ctx := context.Background()

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	pool, err := database.NewPool(ctx, dbCfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to PostgreSQL")

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	log.Println("✓ Schema up to date")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	speakerRepo := repository.NewSpeakerRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)

	clk := clock.System()
	tracker := service.NewCapacityTracker(eventRepo, sessionRepo)
	detector := service.NewConflictDetector(regRepo)

	eventSvc := service.NewEventService(eventRepo, clk)
	sessionSvc := service.NewSessionService(sessionRepo, eventRepo, speakerRepo, clk)
	participantSvc := service.NewParticipantService(participantRepo, clk)
	speakerSvc := service.NewSpeakerService(speakerRepo, sessionRepo, clk)
	enrollmentSvc := service.NewRegistrationService(
		regRepo, participantRepo, eventRepo, sessionRepo, tracker, detector, clk)

	eventHandler := handler.NewEventHandler(eventSvc, sessionSvc, participantSvc, enrollmentSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, enrollmentSvc)
	participantHandler := handler.NewParticipantHandler(participantSvc, enrollmentSvc)
	speakerHandler := handler.NewSpeakerHandler(speakerSvc)
	registrationHandler := handler.NewRegistrationHandler(enrollmentSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for demo

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/events", eventHandler.Routes)
	r.Route("/sessions", sessionHandler.Routes)
	r.Route("/participants", participantHandler.Routes)
	r.Route("/speakers", speakerHandler.Routes)
	r.Route("/registrations", registrationHandler.Routes)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", srvCfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", srvCfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
