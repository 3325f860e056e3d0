package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

// id из пути, нечисловой id трактуется как несуществующий ресурс
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))

		responseWithJSON(w, http.StatusNotFound,
			toPayload("error", "NOT_FOUND"),
			toPayload("message", "ресурс с id '"+idParam+"' не найден"),
		)
		return 0, false
	}
	return id, true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(value string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// parseTaskFilter читает параметры фильтрации списка задач из query string
func parseTaskFilter(r *http.Request) (task.Filter, string) {
	filter := task.Filter{}
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		statusID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, "неверное значение status: " + raw
		}
		filter.StatusID = &statusID
	}

	timeParams := map[string]**time.Time{
		"created_at":      &filter.CreatedAt,
		"created_at__gte": &filter.CreatedAtGTE,
		"created_at__lte": &filter.CreatedAtLTE,
	}
	for param, dst := range timeParams {
		if raw := query.Get(param); raw != "" {
			t, err := parseTime(raw)
			if err != nil {
				return filter, "неверное значение " + param + ": " + raw
			}
			*dst = &t
		}
	}

	if raw := query.Get("created_at__range"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) != 2 {
			return filter, "created_at__range требует два значения через запятую"
		}
		from, err := parseTime(strings.TrimSpace(parts[0]))
		if err != nil {
			return filter, "неверное значение created_at__range: " + parts[0]
		}
		to, err := parseTime(strings.TrimSpace(parts[1]))
		if err != nil {
			return filter, "неверное значение created_at__range: " + parts[1]
		}
		filter.RangeFrom = &from
		filter.RangeTo = &to
	}

	filter.Search = query.Get("search")
	filter.Ordering = query.Get("ordering")
	return filter, ""
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, errMsg := parseTaskFilter(r)
	if errMsg != "" {
		logger.Warn("HTTP: Ошибка получения параметра",
			zap.String("error", errMsg),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, errMsg)
		return
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), filter)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "get_task"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.Status == nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "status"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "поле status обязательно")
		return
	}

	t, err := h.TaskService.CreateTask(r.Context(), request.Name, request.Content, *request.Status)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(t))
}

// updateTask обслуживает PUT (полное обновление) и PATCH (частичное)
func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request, partial bool) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	if !partial && (request.Name == nil || request.Content == nil || request.Status == nil) {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("error", "missing_fields"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "PUT требует поля name, content и status")
		return
	}

	options := []task.TaskOption{}
	if request.Name != nil {
		options = append(options, task.WithName(*request.Name))
	}
	if request.Content != nil {
		options = append(options, task.WithContent(*request.Content))
	}
	if request.Status != nil {
		options = append(options, task.WithStatusID(*request.Status))
	}

	t, err := h.TaskService.UpdateTask(r.Context(), id, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_task"),
			zap.String("client_addr", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	h.updateTask(w, r, false)
}

func (h *TaskHandler) PatchTaskByID(w http.ResponseWriter, r *http.Request) {
	h.updateTask(w, r, true)
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := h.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "delete_task"),
			zap.String("client_addr", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) MarkTasksAsComplete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.MarkTasksAsCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	summary, err := h.TaskService.MarkTasksAsComplete(r.Context(), request.TaskIDs)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "mark_tasks_as_complete"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := dto.MarkTasksAsCompleteResponse{
		Message:      strconv.Itoa(summary.UpdatedCount) + " task(s) marked as complete",
		UpdatedCount: summary.UpdatedCount,
		Tasks:        summary.Completed,
	}
	if len(summary.AlreadyCompleted) > 0 {
		response.Warning = strconv.Itoa(len(summary.AlreadyCompleted)) + " task(s) were already completed"
		response.AlreadyCompletedTasks = summary.AlreadyCompleted
	}

	logger.Info("HTTP_OUT: Массовое завершение выполнено",
		zap.Int("updated_count", summary.UpdatedCount),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, response)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithBody(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Message:  err.Error(),
		})
		return
	}

	responseWithBody(w, http.StatusOK, dto.HealthResponse{
		Status:   "healthy",
		Database: "connected",
		Message:  "Application is running correctly",
	})
}
