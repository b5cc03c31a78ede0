// Package main is the entry point for the Sales Tracker API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/white/sales-tracker/config"
	"github.com/white/sales-tracker/internal/audit"
	"github.com/white/sales-tracker/internal/handlers"
	"github.com/white/sales-tracker/internal/middleware"
	"github.com/white/sales-tracker/internal/repositories"
	"github.com/white/sales-tracker/internal/services"
	"github.com/white/sales-tracker/internal/utils"
	"github.com/white/sales-tracker/pkg/kafka"
	"github.com/white/sales-tracker/pkg/mongodb"
	"github.com/white/sales-tracker/pkg/smtp"
)

func main() {
	// Load environment variables (ignore error in dev)
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// MongoDB
	mongoClient, err := mongodb.NewClient(mongodb.Config{
		URI:         cfg.MongoDB.URI,
		Database:    cfg.MongoDB.Database,
		MaxPoolSize: cfg.MongoDB.MaxPoolSize,
		MinPoolSize: cfg.MongoDB.MinPoolSize,
		MaxRetries:  cfg.MongoDB.MaxRetries,
	})
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Kafka is optional: without a broker, audit entries are persisted only
	// and reminder events are not mirrored.
	var producer *kafka.Producer
	if p, err := kafka.NewProducer(cfg.Kafka); err != nil {
		logrus.WithError(err).Warn("Kafka producer unavailable, continuing without event publishing")
	} else {
		producer = p
	}

	// Repositories
	activityRepo := repositories.NewActivityRepository(mongoClient)
	auditRepo := repositories.NewAuditLogRepository(mongoClient)
	userRepo := repositories.NewUserRepository(mongoClient)
	prospectRepo := repositories.NewProspectRepository(mongoClient)

	// Audit recorder: bounded queue, fire-and-forget
	var auditPublisher audit.Publisher
	if producer != nil {
		auditPublisher = producer
	}
	recorder := audit.NewRecorder(auditRepo, auditPublisher, cfg.Kafka.Topics.AuditEvents, 0)

	// Business calendar and reminder dispatch
	calendar := services.NewBusinessCalendar(cfg.Scheduler.TimezoneName, cfg.Scheduler.UTCOffsetMinutes)

	var reminderService *services.ReminderService
	if cfg.SMTP.Host != "" {
		smtpClient, err := smtp.NewClient(smtp.Config{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			FromEmail:  cfg.SMTP.FromEmail,
			ReplyTo:    cfg.SMTP.ReplyTo,
			TLSEnabled: cfg.SMTP.TLSEnabled,
		})
		if err != nil {
			logrus.Fatalf("Failed to configure SMTP client: %v", err)
		}
		notifier := services.NewEmailNotifier(smtpClient, calendar)

		var reminderEvents services.ReminderEventPublisher
		if producer != nil {
			reminderEvents = services.NewKafkaReminderEvents(producer, cfg.Kafka.Topics.ReminderSent)
		}
		reminderService = services.NewReminderService(
			activityRepo, userRepo, prospectRepo, notifier, reminderEvents,
			calendar, time.Duration(cfg.Scheduler.NotifyTimeoutSecs)*time.Second,
		)
	} else {
		logrus.Warn("SMTP not configured, reminder dispatch endpoint disabled")
	}

	// JWT auth
	jwtService, err := utils.NewJWTService(cfg.JWT)
	if err != nil {
		logrus.Fatalf("Failed to initialize JWT service: %v", err)
	}
	authMiddleware := middleware.JWTAuth(jwtService)

	// Handlers
	activityHandler := handlers.NewActivityHandler(activityRepo, recorder)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	healthHandler := handlers.NewHealthHandler(mongoClient, cfg.Server.Version)

	// Router
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/health", healthHandler.GetOverallHealth).Methods("GET", "OPTIONS")

	// Swagger UI endpoint - API documentation
	router.PathPrefix("/swagger").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+cfg.Server.Port+"/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Scheduler trigger, gated by its own static token
	if reminderService != nil {
		reminderHandler := handlers.NewReminderHandler(reminderService, cfg.Scheduler.JobToken)
		api.HandleFunc("/jobs/reminders", reminderHandler.RunDispatch).Methods("POST")
	}

	// Authenticated routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/activities", activityHandler.CreateActivity).Methods("POST")
	protected.HandleFunc("/activities", activityHandler.ListActivities).Methods("GET")
	protected.HandleFunc("/activities/{id}", activityHandler.GetActivity).Methods("GET")
	protected.HandleFunc("/activities/{id}", activityHandler.UpdateActivity).Methods("PATCH")
	protected.HandleFunc("/activities/{id}/next-action", activityHandler.SetNextAction).Methods("PUT")
	protected.HandleFunc("/activities/{id}/next-action/complete", activityHandler.CompleteNextAction).Methods("POST")
	protected.HandleFunc("/activities/{id}/next-action/cancel", activityHandler.CancelNextAction).Methods("POST")
	protected.HandleFunc("/audit-logs", auditHandler.ListEntityHistory).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Drain the audit queue before dropping connections.
	recorder.Close()
	if producer != nil {
		producer.Close()
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logrus.Errorf("MongoDB disconnect failed: %v", err)
	}

	logrus.Info("Server stopped")
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
