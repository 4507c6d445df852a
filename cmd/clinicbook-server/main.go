package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/config"
	v1 "github.com/clinicbook/clinicbook/internal/handler/v1"
	"github.com/clinicbook/clinicbook/internal/report"
	"github.com/clinicbook/clinicbook/internal/repository/postgres"
	"github.com/clinicbook/clinicbook/internal/service"
	"github.com/clinicbook/clinicbook/pkg/database"
	"github.com/clinicbook/clinicbook/pkg/logger"
	"github.com/clinicbook/clinicbook/pkg/metrics"
	"github.com/clinicbook/clinicbook/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	col := metrics.NewCollector("clinicbook")

	personRepo := postgres.NewPersonRepository(db)
	apptRepo := postgres.NewAppointmentRepository(db)
	activityRepo := postgres.NewActivityRepository(db)

	activity := service.NewActivityService(activityRepo, log)
	activity.SetDropCounter(col.ActivityBufferDropped)
	defer activity.Shutdown()

	personSvc := service.NewPersonService(personRepo, apptRepo, activity, cfg.Booking.MaxAge, log)
	apptSvc, err := service.NewAppointmentService(apptRepo, personRepo, activity, cfg.Booking, log)
	if err != nil {
		return fmt.Errorf("initializing appointment service: %w", err)
	}
	reportSvc := service.NewReportService(apptRepo, personRepo,
		cfg.Report.DefaultPageSize, cfg.Report.DefaultMinCancelled, log)

	pdfRenderer := report.NewPDFRenderer(report.PDFStyle{
		Title:          cfg.Report.Title,
		ColorPrimary:   cfg.Report.ColorPrimary,
		ColorPending:   cfg.Report.ColorPending,
		ColorConfirmed: cfg.Report.ColorConfirmed,
		ColorCancelled: cfg.Report.ColorCancelled,
		ColorAttended:  cfg.Report.ColorAttended,
		ColorEnabled:   cfg.Report.ColorEnabled,
		ColorDisabled:  cfg.Report.ColorDisabled,
	})

	router := v1.NewRouter(v1.RouterConfig{
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
		Logger:      log,
		Metrics:     col,
		Persons:     v1.NewPersonHandler(personSvc, col),
		Appts:       v1.NewAppointmentHandler(apptSvc, col),
		Reports:     v1.NewReportHandler(reportSvc, personSvc, pdfRenderer),
		DBHealthy: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
