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

	"github.com/go-chi/chi/v5"
	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/container"
	"github.com/parkvault/pv-backend/internal/logging"
	"github.com/parkvault/pv-backend/internal/middleware"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	c, err := container.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	r := chi.NewMux()
	r.Use(middleware.NewCORSHandler(&cfg.CORS))
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/health", c.Server.HealthCheck)
	r.Get("/ready", c.Server.ReadinessCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", c.Server.Login)
		r.Post("/refresh", c.Server.RefreshToken)
		r.Post("/logout", c.Server.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(c.Authenticator.Middleware)

		r.Route("/spots", func(r chi.Router) {
			r.Get("/", c.Server.ListSpots)
			r.Post("/", c.Server.CreateSpot)
			r.Get("/{spotID}", c.Server.GetSpotByID)
			r.Patch("/{spotID}", c.Server.RenameSpot)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", c.Server.ListBookings)
			r.Post("/", c.Server.CreateBooking)
			r.Get("/{bookingID}", c.Server.GetBookingByID)
			r.Post("/{bookingID}/end", c.Server.EndBooking)
			r.Get("/{bookingID}/events", c.Server.GetBookingEvents)
			r.Delete("/{bookingID}", c.Server.DeleteBooking)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", c.Server.ListUsers)
			r.Post("/", c.Server.CreateUser)
			r.Get("/me", c.Server.GetMe)
			r.Get("/{userID}", c.Server.GetUserByID)
			r.Put("/{userID}/role", c.Server.AssignRole)
		})
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
		c.Cleanup()
		os.Exit(0)
	}()

	log.Printf("Server starting on %s", addr)
	log.Fatal(s.ListenAndServe())
}
