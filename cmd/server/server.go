package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yukikurage/issue-tracker-api/internal/config"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/handlers"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/repository/memory"
	"github.com/yukikurage/issue-tracker-api/internal/services"
)

// repositories groups the storage backend handed to the services.
type repositories struct {
	issues   repository.IssueRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	close    func() error
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

// openRepositories connects the configured backend and migrates it.
func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.DBDriver == "memory" {
		slog.Warn("using in-memory storage; data is lost on exit")
		store := memory.New()
		return &repositories{
			issues:   store.Issues(),
			projects: store.Projects(),
			users:    store.Users(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateDatabase(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	return &repositories{
		issues:   repository.NewIssueRepository(db),
		projects: repository.NewProjectRepository(db),
		users:    repository.NewUserRepository(db),
		close:    sqlDB.Close,
	}, nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost == "" {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	} else {
		redisAddr := net.JoinHostPort(cfg.RedisHost, cfg.RedisPort)
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func newNotifier(cfg *config.Config) services.Notifier {
	if cfg.SMTPHost == "" {
		return services.NewLogNotifier(slog.Default())
	}
	return services.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.AppBaseURL)
}

// newRouter wires services and handlers over repos.
func newRouter(cfg *config.Config, repos *repositories) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		middleware.RequestID(),
		middleware.RequestLogger(slog.Default()),
		middleware.Metrics(),
		sessions.Sessions(constants.SessionCookieName, store),
	)

	authService := services.NewAuthService(repos.users)
	issueService := services.NewIssueService(repos.issues, repos.projects, repos.users, newNotifier(cfg), slog.Default())
	projectService := services.NewProjectService(repos.projects, repos.issues)
	aiService := services.NewAIService(cfg.OpenAIAPIKey)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Issue Tracker API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(r,
		handlers.NewAuthHandler(authService),
		handlers.NewIssueHandler(issueService, aiService),
		handlers.NewProjectHandler(projectService),
	)

	return r, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	router, err := newRouter(cfg, repos)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "driver", cfg.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(cfg *config.Config) error {
	if cfg.DBDriver == "memory" {
		return errors.New("nothing to migrate for the memory driver")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	defer sqlDB.Close()

	if err := database.MigrateDatabase(db); err != nil {
		return err
	}
	slog.Info("migrations complete", "driver", cfg.DBDriver)
	return nil
}
