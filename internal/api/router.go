package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/api/handlers"
	"github.com/TWRT/taskboard/internal/repository"
	"github.com/TWRT/taskboard/internal/service"
)

type RouterConfig struct {
	JWTSecret     string
	SecureCookies bool
}

func SetupRouter(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	cfg RouterConfig,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	taskService := service.NewTaskService(taskRepo, logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, logger)

	taskHandler := handlers.NewTaskHandler(taskService, logger)
	authHandler := handlers.NewAuthHandler(authService, cfg.SecureCookies, logger)
	auth := authHandler.RequireAuth

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", auth(authHandler.Me))

	mux.HandleFunc("GET /api/tasks", auth(taskHandler.ListTasks))
	mux.HandleFunc("POST /api/tasks", auth(taskHandler.CreateTask))
	mux.HandleFunc("POST /api/tasks/reorder", auth(taskHandler.ReorderTasks))
	mux.HandleFunc("PUT /api/tasks/{id}", auth(taskHandler.UpdateTask))
	mux.HandleFunc("PATCH /api/tasks/{id}/toggle", auth(taskHandler.ToggleTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", auth(taskHandler.DeleteTask))

	return logRequests(logger, mux)
}
