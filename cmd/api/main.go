package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/veridian/gatepass/internal/http/handlers"
	"github.com/veridian/gatepass/internal/mailer"
	"github.com/veridian/gatepass/internal/pass"
	"github.com/veridian/gatepass/internal/push"
	"github.com/veridian/gatepass/internal/repo/postgres"
	"github.com/veridian/gatepass/internal/service"
	"github.com/veridian/gatepass/pkg/auth"
	"github.com/veridian/gatepass/pkg/config"
	"github.com/veridian/gatepass/pkg/database"
	"github.com/veridian/gatepass/pkg/events"
	"github.com/veridian/gatepass/pkg/logger"
	mw "github.com/veridian/gatepass/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to parse redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Audit trail over the lifecycle events this process publishes. Queue
	// group so a scaled deployment records each event once.
	for _, subject := range []string{"visitor.>", "package.>", "reminder.>"} {
		if err := eventBus.QueueSubscribe(subject, "gatepass-audit", func(msg *events.Message) {
			logger.Info("Domain event", "subject", msg.Subject, "payload", string(msg.Data))
		}); err != nil {
			logger.Error("Failed to subscribe audit listener", "error", err, "subject", subject)
		}
	}

	// Repositories
	visitorRepo := postgres.NewVisitorRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	packageRepo := postgres.NewPackageRepository(pool)

	// Collaborators
	issuer := pass.NewIssuer(cfg.Pass)
	dispatcher := push.NewDispatcher(cfg.Push)

	var mailSvc mailer.Service
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mailSvc = mailer.NewDevMailer()
	} else {
		mailSvc = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	// Services
	visitorService := service.NewVisitorService(visitorRepo, userRepo, issuer, dispatcher, mailSvc, eventBus)
	packageService := service.NewPackageService(packageRepo, userRepo, dispatcher, mailSvc, eventBus)
	reminderService := service.NewReminderService(bookingRepo, dispatcher, eventBus)

	h := handlers.New(visitorService, packageService, reminderService, userRepo, cfg)

	scanLimiter := mw.NewRateLimiter(redisClient, mw.RateLimitConfig{
		Requests: 60,
		Window:   time.Minute,
	})
	idempotency := mw.IdempotencyMiddleware(mw.NewRedisIdempotencyStore(redisClient))

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("gatepass"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-cron-secret"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/visitors", func(r chi.Router) {
		r.With(h.RequireRole(auth.RoleResident)).Post("/", h.CreateVisitor)
		r.With(h.RequireRole(auth.RoleResident, auth.RoleGuard)).Get("/", h.ListVisitors)
		r.With(scanLimiter.Middleware(), h.RequireRole(auth.RoleGuard)).Get("/scan", h.ScanVisitor)
		r.With(idempotency, h.RequireRole(auth.RoleGuard)).Post("/update-status", h.UpdateVisitorStatus)
		r.With(h.RequireRole(auth.RoleAdmin)).Get("/stats", h.VisitorStats)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(h.RequireRole())
		r.Post("/token", h.SavePushToken)
		r.Delete("/token", h.DeletePushToken)
	})

	r.Route("/packages", func(r chi.Router) {
		r.With(idempotency, h.RequireRole(auth.RoleAdmin)).Post("/", h.CreatePackage)
		r.With(h.RequireRole()).Get("/", h.ListPackages)
		r.With(idempotency, h.RequireRole(auth.RoleAdmin)).Post("/{id}/pick", h.PickPackage)
	})

	r.Get("/cron/booking-reminder", h.BookingReminder)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gatepass service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Gatepass service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting gatepass service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Gatepass service error", "error", err)
		os.Exit(1)
	}
}
