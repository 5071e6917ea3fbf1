package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/apperror"
	"Mansoor88-6/timeclock/internal/approval"
	"Mansoor88-6/timeclock/internal/client"
	"Mansoor88-6/timeclock/internal/config"
	"Mansoor88-6/timeclock/internal/database"
	"Mansoor88-6/timeclock/internal/device"
	"Mansoor88-6/timeclock/internal/export"
	"Mansoor88-6/timeclock/internal/handler"
	"Mansoor88-6/timeclock/internal/logger"
	"Mansoor88-6/timeclock/internal/queue"
	"Mansoor88-6/timeclock/internal/repository"
	"Mansoor88-6/timeclock/internal/router"
	"Mansoor88-6/timeclock/internal/scheduler"
	"Mansoor88-6/timeclock/internal/service"
)

// App holds the wired components shared by every command.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	queue   *queue.SubmissionQueue
	backend *client.APIClient
	device  device.Identity
	service *service.TimecardService
}

// NewApp loads configuration and wires storage, the optional backend and
// the timecard service.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	calendar, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	events := repository.NewClockEventRepository(db.DB, log.Logger)
	settings := repository.NewSettingsRepository(db.DB)

	identity, err := device.NewManager(settings).Resolve(ctx, cfg.Device.ID, cfg.Device.Name)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get device ID: %w", err)
	}

	app := &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		queue:  queue.NewSubmissionQueue(db.DB, log.Logger),
		device: identity,
	}

	// Without a backend, the local store is its own approval collaborator.
	var (
		submitter approval.Submitter = events
		remote    service.Remote
	)
	if cfg.Backend.BaseURL != "" {
		app.backend = client.NewAPIClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, identity.ID, cfg.BackendTimeout(), log.Logger)
		submitter, remote = app.backend, app.backend
	}

	app.service = service.NewTimecardService(service.Dependencies{
		Store:    events,
		Contexts: settings,
		Machine:  approval.NewMachine(events, submitter, log.Logger),
		Outbox:   app.queue,
		Exporter: export.NewExporter(cfg.Export.Dir, log.Logger),
		Remote:   remote,
		Validate: apperror.NewValidator(),
		Policy:   policy,
		Calendar: calendar,
		DeviceID: identity.ID,
		Logger:   log.Logger,
	})

	log.Debug("Timeclock initialized",
		zap.String("env", cfg.Env),
		zap.String("config_path", configPath),
		zap.String("device_id", identity.ID),
		zap.Bool("backend", app.backend != nil),
	)
	return app, nil
}

func (a *App) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error("Failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// Serve runs the retry scheduler and, when enabled, the REST server until
// ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.backend != nil {
		if err := a.backend.HealthCheck(ctx); err != nil {
			a.log.Warn("Backend health check failed, submissions will be queued", zap.Error(err))
		}
	}

	sched := scheduler.New(a.cfg.Retry.Schedule, a.cfg.Retry.MaxAge, a.service, a.queue, a.log.Logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if !a.cfg.Server.Enabled {
		a.log.Info("HTTP server disabled in configuration")
		<-ctx.Done()
		return nil
	}

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.New(handler.NewTimecardHandler(a.service, a.log.Logger), a.log.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server",
			zap.String("address", addr),
			zap.String("device_id", a.device.ID),
			zap.String("device_name", a.device.Name),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("HTTP server shutdown error", zap.Error(err))
	}
	return nil
}
