package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/smartextemp/extemp-backend/internal/auth/handler"
	"github.com/smartextemp/extemp-backend/internal/auth/jwt"
	authrepository "github.com/smartextemp/extemp-backend/internal/auth/repository"
	authservice "github.com/smartextemp/extemp-backend/internal/auth/service"
	"github.com/smartextemp/extemp-backend/internal/inventory/events"
	"github.com/smartextemp/extemp-backend/internal/inventory/handler"
	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
	"github.com/smartextemp/extemp-backend/internal/inventory/service"
	"github.com/smartextemp/extemp-backend/pkg/config"
	"github.com/smartextemp/extemp-backend/pkg/database"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
	"github.com/smartextemp/extemp-backend/pkg/i18n"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/messaging"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

const expiryAlertInterval = 6 * time.Hour

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("extemp-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("extemp-service", cfg.Server.Environment)
	log.Info().Str("backend", cfg.Store.Backend).Msg("starting Extemp Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the table store backend
	var store tablestore.Store
	switch cfg.Store.Backend {
	case "sheets":
		sheetsStore, err := tablestore.NewSheetsStore(ctx, &cfg.Sheets, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Google Sheets")
		}
		store = sheetsStore
	case "postgres":
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		pgStore := tablestore.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure table store schema")
		}
		store = pgStore
	case "memory":
		log.Warn().Msg("using in-memory store; all data is lost on restart")
		store = tablestore.NewMemoryStore()
	default:
		log.Fatal().Str("backend", cfg.Store.Backend).Msg("unknown store backend")
	}

	// Connect to RabbitMQ when configured. Event publishing is optional;
	// the service runs fine without a broker.
	var publisher *events.Publisher
	if cfg.RabbitMQ.URL != "" {
		rmq, err := messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Info().Msg("RabbitMQ not configured; event publishing disabled")
	}

	// Initialize repositories
	lotRepo := repository.NewLotRepository(store, cfg.Sheets.StockTab, cfg.Store.CacheTTL, log)
	drugRepo := repository.NewDrugRepository(store, cfg.Sheets.DrugsTab, cfg.Store.CacheTTL, log)
	locationRepo := repository.NewLocationRepository(store, cfg.Sheets.LocationsTab, cfg.Store.CacheTTL, log)
	userRepo := authrepository.NewUserRepository(store, cfg.Sheets.UsersTab, log)

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	authService := authservice.NewAuthService(userRepo, jwtManager, log)
	inventoryService := service.NewService(lotRepo, drugRepo, locationRepo, publisher, &cfg.Inventory, log)

	// Initialize handlers
	authHandler := authhandler.NewAuthHandler(authService, log)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, log)

	// Publish expiry alerts on a fixed schedule when a broker is attached
	if publisher != nil {
		go func() {
			ticker := time.NewTicker(expiryAlertInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := inventoryService.PublishExpiryAlerts(ctx); err != nil {
						log.Error().Err(err).Msg("expiry alert publish failed")
					}
				}
			}
		}()
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(i18n.Middleware)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "extemp-service",
			"backend": cfg.Store.Backend,
		})
	})

	authMiddleware := authhandler.Middleware(jwtManager)

	// Auth routes
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", authHandler.Me)
		})
	})

	// Inventory routes (all authenticated)
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/lots", func(r chi.Router) {
			r.Get("/", inventoryHandler.ListLots)
			r.Get("/summary", inventoryHandler.Summary)
			r.Post("/dispense", inventoryHandler.Dispense)
			r.Post("/transfer", inventoryHandler.Transfer)
			r.Post("/dispose", inventoryHandler.Dispose)
			r.Post("/{lotID}/thaw", inventoryHandler.Thaw)

			// Admin-only lot management
			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole("admin"))
				r.Post("/", inventoryHandler.Receive)
				r.Get("/raw", inventoryHandler.RawStock)
				r.Put("/raw", inventoryHandler.ReplaceRawStock)
			})
		})

		r.Route("/drugs", func(r chi.Router) {
			r.Get("/", inventoryHandler.Drugs)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole("admin"))
				r.Get("/raw", inventoryHandler.RawDrugs)
				r.Put("/raw", inventoryHandler.ReplaceRawDrugs)
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", inventoryHandler.Locations)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole("admin"))
				r.Get("/raw", inventoryHandler.RawLocations)
				r.Put("/raw", inventoryHandler.ReplaceRawLocations)
			})
		})

		// Alerts
		r.Get("/alerts/expiry", inventoryHandler.ExpiryAlerts)
		r.Get("/alerts/thaw", inventoryHandler.ThawCandidates)

		// Reports
		r.Get("/reports/value", inventoryHandler.ValueReport)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop background publishers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
