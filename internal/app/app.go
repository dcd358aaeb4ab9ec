package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ppemonitor/internal/config"
	"ppemonitor/internal/logger"
	"ppemonitor/internal/repository/sqlite"
	"ppemonitor/internal/routes"
	"ppemonitor/internal/services"
	"ppemonitor/internal/services/ai"
	"ppemonitor/internal/services/camera"
	"ppemonitor/internal/services/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	repo       *sqlite.EventRepository
	camera     *camera.Camera
	detector   *ai.Detector
	hubService *websocket.HubService
	manager    *services.Manager
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogDirectory)

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	repo := sqlite.NewEventRepository(db)

	// Camera open failure at startup is fatal.
	cam, err := camera.Open(cfg.CameraDevice)
	if err != nil {
		return nil, err
	}

	detector, err := ai.NewDetector(cfg, log)
	if err != nil {
		cam.Close()
		return nil, err
	}

	recorder, err := services.NewRecorder(repo, log, cfg.StaticDir, cfg.SnapshotDir, time.Duration(cfg.SaveCooldown)*time.Second)
	if err != nil {
		cam.Close()
		return nil, err
	}

	live := services.NewLiveState()
	hub := websocket.NewHubService(log)
	manager := services.NewManager(cam, detector, live, hub, recorder, log)

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		repo:       repo,
		camera:     cam,
		detector:   detector,
		hubService: hub,
		manager:    manager,
	}, nil
}

// Run starts the hub and HTTP server, then blocks until SIGINT/SIGTERM and
// shuts down, releasing the camera and database.
func (a *App) Run() error {
	go a.hubService.Run()

	router := routes.SetupRoutes(a.manager, a.repo, a.config, a.logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("PPE monitor listening on http://localhost:%d", a.config.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.release()
		return err
	case sig := <-stop:
		a.logger.Info("Received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown: %v", err)
	}

	a.release()
	return nil
}

// release frees the camera, detector and database.
func (a *App) release() {
	a.logger.Info("Releasing camera resources...")
	if err := a.camera.Close(); err != nil {
		a.logger.Error("Camera close: %v", err)
	}
	a.detector.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Database close: %v", err)
	}
}
