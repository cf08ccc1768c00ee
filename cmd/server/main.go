// Command server runs the research-assistance platform backend: consultation
// intake with email notification, the statistical-test catalog, user profile
// upserts, and the wizard recommendation endpoint.
//
// The process boots in degraded mode when the database cannot be opened:
// intake keeps working (email is the record of truth) and the catalog serves
// its built-in defaults.
package main

// @title        Bahithi Platform API
// @version      1.0
// @description  Consultation intake, statistical-test catalog, user profiles,
// @description  and statistical-test recommendations.
// @BasePath     /api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/bahithi/platform-backend/internal/config"
	httpapi "github.com/bahithi/platform-backend/internal/http"
	"github.com/bahithi/platform-backend/internal/mail"
	"github.com/bahithi/platform-backend/internal/observability"
	"github.com/bahithi/platform-backend/internal/repo"
	"github.com/bahithi/platform-backend/internal/services"
	"github.com/bahithi/platform-backend/internal/sysutil"
	"github.com/bahithi/platform-backend/internal/upload"
)

func main() {
	// Local development convenience; absent .env files are not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = time.RFC3339
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	version := sysutil.FirstNonEmpty(os.Getenv("SERVICE_VERSION"), "dev")

	ctx := context.Background()
	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("opentelemetry setup failed")
	}

	// Degraded mode: a missing database downgrades persistence to
	// best-effort, it never prevents startup.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("database unavailable; running without persistence")
		db = nil
	}
	if db != nil {
		if err := repo.AutoMigrate(db); err != nil {
			log.Warn().Err(err).Msg("migration failed; running without persistence")
			db = nil
		}
	}
	if db != nil {
		if err := repo.SeedStatisticalTests(ctx, db); err != nil {
			log.Warn().Err(err).Msg("catalog seed failed")
		}
		if cfg.OTEL.Enabled {
			if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
				log.Warn().Err(err).Msg("database tracing not installed")
			}
		}
	}
	store := repo.NewStore(db)

	uploads, err := upload.New(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("upload directory not usable")
	}

	var mailer mail.Mailer
	if cfg.MailEnabled() {
		mailer = mail.NewSMTPMailer(cfg.Mail)
	} else {
		log.Warn().Msg("smtp credentials missing; notifications are logged only")
		mailer = mail.LogMailer{}
	}
	dispatcher := &mail.Dispatcher{Mailer: mailer, OperatorEmail: cfg.Mail.OperatorEmail}

	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatal().Err(err).Msg("submission id generator failed")
	}

	consultSvc := services.NewConsultationService(store, uploads, dispatcher, node, cfg.IdempotencyTTL)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, store, consultSvc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Bool("database", store.Ready()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("opentelemetry shutdown failed")
	}
}
