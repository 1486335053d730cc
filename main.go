package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/api"
	"github.com/TWRT/taskboard/internal/config"
	"github.com/TWRT/taskboard/internal/logger"
	"github.com/TWRT/taskboard/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	logger, err := logger.New(cfg.LogLevel, !cfg.IsProduction())
	if err != nil {
		log.Fatal("Error creating logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskRepo, userRepo, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal("Error initialising database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer closeDB()

	logger.Info("database ready", zap.String("driver", cfg.DBDriver))

	router := api.SetupRouter(taskRepo, userRepo, api.RouterConfig{
		JWTSecret:     cfg.JWTSecret,
		SecureCookies: cfg.IsProduction(),
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (repository.TaskRepository, repository.UserRepository, func(), error) {
	if cfg.DBDriver == config.DriverMongo {
		client, db, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { client.Disconnect(context.Background()) }
		return repository.NewMongoTaskRepository(db), repository.NewMongoUserRepository(db), closeFn, nil
	}

	db, err := repository.InitDB(cfg.SQLitePath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() { db.Close() }
	return repository.NewTaskRepository(db), repository.NewUserRepository(db), closeFn, nil
}
