package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hxkterminal/taskboard-api/internal/config"
	"github.com/hxkterminal/taskboard-api/internal/database"
	"github.com/hxkterminal/taskboard-api/internal/feed"
	"github.com/hxkterminal/taskboard-api/internal/handlers"
	"github.com/hxkterminal/taskboard-api/internal/middleware"
	"github.com/hxkterminal/taskboard-api/internal/repository"
	"github.com/hxkterminal/taskboard-api/internal/services"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	taskService := services.NewTaskService(taskRepo)

	feedCache := feed.NewCache(cfg.FeedCacheFile, logger)
	feedFetcher := feed.NewFetcher(cfg, logger)
	feedService := feed.NewService(feedFetcher, feedCache, cfg.FeedInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feedService.Run(ctx)

	authHandler := handlers.NewAuthHandler(authService, tokenService)
	taskHandler := handlers.NewTaskHandler(taskService)
	feedHandler := handlers.NewFeedHandler(feedService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			me := auth.Group("")
			me.Use(middleware.RequireAuth(tokenService, authService))
			{
				me.GET("/me", authHandler.GetCurrentUser)
				me.PATCH("/me", authHandler.UpdateProfile)
				me.POST("/password", authHandler.ChangePassword)
			}
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(tokenService, authService))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/accept", taskHandler.AcceptTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.POST("/:id/abandon", taskHandler.AbandonTask)
		}

		api.GET("/feed/dynamics", feedHandler.GetDynamics)
	}

	logger.Info("server starting", slog.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
