package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mrlokans/legalshelf/internal/ai"
	"github.com/mrlokans/legalshelf/internal/auth"
	"github.com/mrlokans/legalshelf/internal/catalog"
	"github.com/mrlokans/legalshelf/internal/config"
	http_controllers "github.com/mrlokans/legalshelf/internal/http"
	"github.com/mrlokans/legalshelf/internal/scheduler"
	"github.com/mrlokans/legalshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log zerolog.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Dur("timeout", timeout).Msg("Shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown did not complete")
	}

	// Stop background work once no handler can enqueue more.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info().Msg("Server exiting")
	return nil
}

// Run builds every component, serves HTTP and tears everything down again.
func Run(cfg *config.Config, version string, log zerolog.Logger) error {
	log.Info().Str("version", version).Msg("Starting legalshelf")

	services, err := NewServices(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing services")
		}
	}()

	store := services.Store
	db := services.DB

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Warm the catalog so the first request does not pay for the fetch.
	go func() {
		books, err := store.Books(bgCtx)
		if err != nil {
			log.Warn().Err(err).Msg("Initial catalog load failed")
			return
		}
		state, _ := store.Status()
		log.Info().Int("books", len(books)).Str("state", string(state)).Msg("Catalog loaded")
	}()

	assistant := ai.NewClient(ai.Options{
		Endpoint:          cfg.AI.Endpoint,
		APIKey:            cfg.AI.APIKey,
		Timeout:           cfg.AI.Timeout,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Burst:             cfg.AI.Burst,
		Logger:            log,
	})
	if !assistant.Enabled() {
		log.Warn().Msg("AI_ENDPOINT is not set, the assistant endpoint will answer 503")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskLog := log.With().Str("component", "tasks").Logger()
		taskClient.Register(
			tasks.NewRefreshLibraryQueue(store, taskLog),
			tasks.NewCleanupOrphanNotesQueue(db, taskLog),
			tasks.NewSeedCatalogQueue(db, catalog.Sample, store, taskLog),
		)

		go taskClient.Start(bgCtx)
	}

	var queue taskEnqueuer
	if taskClient != nil {
		queue = taskClient
	}
	sched := scheduler.New(log)
	for _, job := range maintenanceJobs(cfg.Scheduler, store, db, queue) {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
	}
	sched.Start(bgCtx)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	var csrfKey []byte
	if cfg.Session.CSRFEnabled {
		secret := cfg.Session.Secret
		if secret == "" {
			secret, err = auth.GenerateSessionSecret()
			if err != nil {
				return fmt.Errorf("failed to generate session secret: %w", err)
			}
			log.Warn().Msg("Generated session secret (set SESSION_SECRET to persist CSRF tokens across restarts)")
		}
		csrfKey, err = auth.DeriveCSRFKey(secret)
		if err != nil {
			return err
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Library:        store,
		Inbox:          services.Inbox,
		Assistant:      assistant,
		Database:       db,
		SessionManager: sessionManager,
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.Session.SecureCookies,
		Version:        version,
		Logger:         log,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
	}

	return Serve(router, cfg, log, onShutdown)
}
