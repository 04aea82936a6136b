package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/vetclinic/internal/application"
	"github.com/example/vetclinic/internal/config"
	httptransport "github.com/example/vetclinic/internal/http"
	"github.com/example/vetclinic/internal/http/views"
	"github.com/example/vetclinic/internal/persistence/sqlite"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)
	petRepo := sqlite.NewPetRepository(pool)
	appointmentRepo := sqlite.NewAppointmentRepository(pool)
	recordRepo := sqlite.NewMedicalRecordRepository(pool)
	prescriptionRepo := sqlite.NewPrescriptionRepository(pool)
	invoiceRepo := sqlite.NewInvoiceRepository(pool)

	authService := application.NewAuthService(userRepo, sessionRepo, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)
	petService := application.NewPetService(petRepo, idGenerator, now, logger)
	appointmentService := application.NewAppointmentService(appointmentRepo, petRepo, idGenerator, now, logger)
	recordService := application.NewRecordService(recordRepo, prescriptionRepo, appointmentRepo, petRepo, idGenerator, now, logger)
	invoiceService := application.NewInvoiceService(invoiceRepo, appointmentRepo, idGenerator, now, logger)
	adminService := application.NewAdminService(userRepo, idGenerator, now, logger)

	if err := adminService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("failed to ensure bootstrap admin", "error", err)
		os.Exit(1)
	}

	renderer, err := views.New()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	authHandler := httptransport.NewAuthHandler(authService, renderer, logger)
	ownerHandler := httptransport.NewOwnerHandler(petService, appointmentService, recordService, invoiceService, renderer, logger)
	staffHandler := httptransport.NewStaffHandler(appointmentService, recordService, invoiceService, renderer, logger)
	adminHandler := httptransport.NewAdminHandler(adminService, renderer, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           authHandler,
		Owner:          ownerHandler,
		Staff:          staffHandler,
		Admin:          adminHandler,
		Sessions:       authService,
		Logger:         logger,
		LoginRateRPS:   cfg.LoginRateRPS,
		LoginRateBurst: cfg.LoginRateBurst,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("clinic server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
