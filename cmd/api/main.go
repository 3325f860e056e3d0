package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/repository/postgres"
	statusinmemory "taskBoard/internal/repository/status/inmemory"
	statuspostgres "taskBoard/internal/repository/status/postgres"
	taskinmemory "taskBoard/internal/repository/task/inmemory"
	taskpostgres "taskBoard/internal/repository/task/postgres"
	userinmemory "taskBoard/internal/repository/user/inmemory"
	userpostgres "taskBoard/internal/repository/user/postgres"
	"taskBoard/internal/seed"
	"taskBoard/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	seedData := flag.Bool("seed", false, "загрузить стартовые статусы и задачи")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.Logging.Development)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		taskRepo   service.TaskRepository
		statusRepo service.StatusRepository
		userRepo   service.UserRepository
	)

	switch cfg.Repository.Type {
	case "postgres":
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			logger.Error("Миграции не применились", err)
			os.Exit(1)
		}

		pool, err := postgres.NewPool(
			ctx,
			cfg.Database.URL,
			int32(cfg.Database.MaxConnections),
			int32(cfg.Database.MinConnections),
			cfg.Database.IdleTimeout,
		)
		if err != nil {
			logger.Error("Не удалось подключиться к базе", err)
			os.Exit(1)
		}
		defer pool.Close()

		taskRepo = taskpostgres.New(pool)
		statusRepo = statuspostgres.New(pool)
		userRepo = userpostgres.New(pool)

	case "inmemory":
		statusStorage := statusinmemory.NewStatusStorage()
		taskStorage := taskinmemory.NewTaskStorage(statusStorage)
		statusStorage.SetRefCounter(taskStorage.CountByStatus)

		taskRepo = taskStorage
		statusRepo = statusStorage
		userRepo = userinmemory.NewUserStorage()

	default:
		logger.Error("Неизвестный тип репозитория", nil, zap.String("type", cfg.Repository.Type))
		os.Exit(1)
	}

	taskService := service.NewTaskService(taskRepo, statusRepo)
	statusService := service.NewStatusService(statusRepo, taskRepo)
	authService := service.NewAuthService(userRepo, cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Error("Не удалось создать администратора", err)
		os.Exit(1)
	}

	if *seedData {
		if err := seed.Load(ctx, statusRepo, taskRepo); err != nil {
			logger.Error("Не удалось загрузить стартовые данные", err)
			os.Exit(1)
		}
	}

	taskHandler := handlers.NewTaskHandler(&taskService)
	statusHandler := handlers.NewStatusHandler(&statusService)
	authHandler := handlers.NewAuthHandler(&authService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(100))

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/auth/token", func(r chi.Router) {
		r.Post("/", authHandler.ObtainToken)
		r.Post("/refresh", authHandler.RefreshToken)
	})

	r.Group(func(r chi.Router) {
		if cfg.Auth.Enforce {
			r.Use(middleware.Auth(authService.Validate))
		}

		r.Route("/status", func(r chi.Router) {
			r.Get("/", statusHandler.ListStatuses)
			r.Post("/", statusHandler.PostStatus)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", statusHandler.GetStatusByID)
				r.Put("/", statusHandler.UpdateStatusByID)
				r.Patch("/", statusHandler.PatchStatusByID)
				r.Delete("/", statusHandler.DeleteStatusByID)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.PostTask)

			r.Post("/mark-as-complete", taskHandler.MarkTasksAsComplete)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)
				r.Put("/", taskHandler.UpdateTaskByID)
				r.Patch("/", taskHandler.PatchTaskByID)
				r.Delete("/", taskHandler.DeleteTaskByID)
			})
		})
	})

	server := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	go func() {
		logger.Info("Сервер запущен", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Сервер остановился с ошибкой", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Остановка сервера не завершилась корректно", err)
	}
	logger.Info("Сервер остановлен")
}
