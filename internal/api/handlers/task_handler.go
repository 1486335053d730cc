package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

func userID(r *http.Request) string {
	user, _ := CurrentUser(r.Context())
	return user.Id
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.CreateTaskInput
	if err := decodeBody(r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var in models.UpdateTaskInput
	if err := decodeBody(r, &in, true); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), userID(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, task)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	var in models.ToggleInput
	if err := decodeBody(r, &in, true); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.taskService.Toggle(r.Context(), userID(r), r.PathValue("id"), in.Completed)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, h.logger, http.StatusOK, "Task deleted successfully")
}

func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var in models.ReorderInput
	if err := decodeBody(r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.taskService.Reorder(r.Context(), userID(r), in.Tasks); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, h.logger, http.StatusOK, "Tasks reordered successfully")
}
