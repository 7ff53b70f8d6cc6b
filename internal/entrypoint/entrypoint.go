package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/bookdetail"
	"github.com/mrlokans/bookfinder/internal/booklist"
	"github.com/mrlokans/bookfinder/internal/books"
	"github.com/mrlokans/bookfinder/internal/config"
	"github.com/mrlokans/bookfinder/internal/covers"
	"github.com/mrlokans/bookfinder/internal/database"
	"github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/database/refresh"
	"github.com/mrlokans/bookfinder/internal/entities"
	http_controllers "github.com/mrlokans/bookfinder/internal/http"
	"github.com/mrlokans/bookfinder/internal/openlibrary"
	"github.com/mrlokans/bookfinder/internal/scheduler"
	"github.com/mrlokans/bookfinder/internal/sessions"
	"github.com/mrlokans/bookfinder/internal/tasks"
	"github.com/mrlokans/bookfinder/internal/websession"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Event streams only end when their sessions close, so sessions go
	// before the server drains connections.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// NewBookRepository opens the OpenLibrary client and the favorites store
// shared by the server and the CLI commands.
func NewBookRepository(cfg *config.Config, db *database.Database) *books.Repository {
	client := openlibrary.NewClient(openlibrary.Config{
		BaseURL:   cfg.OpenLibrary.BaseURL,
		UserAgent: cfg.OpenLibrary.UserAgent,
		Language:  cfg.OpenLibrary.Language,
		Timeout:   cfg.OpenLibrary.Timeout,
		RateLimit: cfg.OpenLibrary.RateLimit,
	})
	return books.NewRepository(client, favorites.NewRepository(db.DB), cfg.Search.ResultLimit)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting BookFinder v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := NewBookRepository(cfg, db)
	refreshProgress := refresh.NewRepository(db.DB, entities.RefreshTypeDescriptions)

	// Create cover cache for locally caching favorite covers
	coverCacheDir := cfg.Covers.Dir
	if coverCacheDir == "" {
		coverCacheDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	coverCache, err := covers.NewCache(coverCacheDir, cfg.OpenLibrary.UserAgent)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", coverCacheDir)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var refreshScheduler *scheduler.RefreshScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewFetchDescriptionQueue(bookRepo),
			tasks.NewRefreshFavoritesQueue(bookRepo, refreshProgress),
		)
		if coverCache != nil {
			taskClient.Register(tasks.NewCacheCoverQueue(bookRepo, coverCache))
		}

		// New favorites get their description and cover in the background
		var invalidator tasks.CoverInvalidator
		if coverCache != nil {
			invalidator = coverCache
		}
		bookRepo.SetFavoriteHook(tasks.NewFavoriteHook(taskClient, invalidator))

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Refresh.Enabled {
			refreshScheduler = scheduler.NewRefreshScheduler(taskClient, cfg.Refresh.Schedule)
			if err := refreshScheduler.Start(taskCtx); err != nil {
				log.Printf("WARNING: Failed to start refresh scheduler: %v", err)
				refreshScheduler = nil
			}
		}
	} else if coverCache != nil {
		bookRepo.SetFavoriteHook(tasks.NewFavoriteHook(nil, coverCache))
	}

	// Screen sessions
	sessionsCfg := sessions.Config{
		IdleTimeout:     cfg.Sessions.IdleTimeout,
		CleanupInterval: cfg.Sessions.CleanupInterval,
	}
	searchSessions := sessions.NewRegistry[*booklist.Model]("search", sessionsCfg)
	detailSessions := sessions.NewRegistry[*bookdetail.Model]("detail", sessionsCfg)

	// Cookie sessions remember the search session of a browser
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := websession.NewManager(sqlDB, cfg.Sessions)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	csrfSecret, generated, err := websession.CSRFSecret(cfg.Sessions.CSRFSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	if generated {
		log.Printf("Generated CSRF secret (set SESSION_CSRF_SECRET to persist)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Books:              bookRepo,
		Database:           db,
		DefaultResultLimit: cfg.Search.ResultLimit,
		MaxResultLimit:     cfg.Search.MaxResultLimit,
		SearchSessions:     searchSessions,
		DetailSessions:     detailSessions,
		SearchConfig: booklist.Config{
			Debounce:       cfg.Search.Debounce,
			MinQueryLength: cfg.Search.MinQueryLength,
			InitialQuery:   cfg.Search.InitialQuery,
		},
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Sessions.SecureCookies,
		Version:        version,
	}
	if coverCache != nil {
		routerCfg.CoverCache = coverCache
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
		routerCfg.RefreshProgress = refreshProgress
	}
	if refreshScheduler != nil {
		routerCfg.RefreshSchedule = refreshScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		searchSessions.Stop()
		detailSessions.Stop()
		if refreshScheduler != nil {
			refreshScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
