package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	rep "taskBoard/internal/repository"

	"go.uber.org/zap"
)

// имя статуса, в который переводит массовое завершение
const completedStatusName = "Completado"

var orderingFields = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"name":       {},
}

type TaskService struct {
	tasks    TaskRepository
	statuses StatusRepository
}

func NewTaskService(tasks TaskRepository, statuses StatusRepository) TaskService {
	return TaskService{
		tasks:    tasks,
		statuses: statuses,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func validateTask(name, content string) *BusinessError {
	if name == "" {
		return NewValidationError("name", "название не может быть пустым")
	}
	if utf8.RuneCountInString(name) > 200 {
		return NewValidationError("name", "название не может быть длиннее 200 символов")
	}
	if content == "" {
		return NewValidationError("content", "описание не может быть пустым")
	}
	return nil
}

// статус должен существовать, иначе это ошибка валидации, а не БД
func (s *TaskService) resolveStatus(ctx context.Context, statusID int64) (string, string, error) {
	st, err := s.statuses.GetByID(ctx, statusID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return "", "", NewValidationError("status", fmt.Sprintf("статус %d не существует", statusID))
		}
		return "", "", fmt.Errorf("проверка статуса: %w", err)
	}
	return st.Name, st.HexaColor, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	if filter.Ordering != "" {
		field := filter.Ordering
		if field[0] == '-' {
			field = field[1:]
		}
		// незнакомое поле сортировки молча заменяется сортировкой по умолчанию
		if _, ok := orderingFields[field]; !ok {
			logger.Warn("Service: Неизвестное поле сортировки", zap.String("ordering", filter.Ordering))
			filter.Ordering = ""
		}
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound("задача", id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, name, content string, statusID int64) (*task.Task, error) {
	if err := validateTask(name, content); err != nil {
		return nil, err
	}

	statusName, statusColor, err := s.resolveStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}

	t := &task.Task{
		Name:     name,
		Content:  content,
		StatusID: statusID,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	t.StatusName = statusName
	t.StatusColor = statusColor

	logger.Info("Service: Задача создана", zap.Int64("task_id", t.ID))
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound("задача", id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	for _, opt := range options {
		opt(t)
	}

	if err := validateTask(t.Name, t.Content); err != nil {
		return nil, err
	}

	statusName, statusColor, err := s.resolveStatus(ctx, t.StatusID)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("задача", id)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	t.StatusName = statusName
	t.StatusColor = statusColor
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return NewNotFound("задача", id)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

// MarkTasksAsComplete переводит перечисленные задачи в статус "Completado".
// Уже завершённые задачи не перезаписываются, отсутствующие id молча пропускаются.
func (s *TaskService) MarkTasksAsComplete(ctx context.Context, taskIDs []int64) (*task.CompletionSummary, error) {
	if len(taskIDs) == 0 {
		return nil, NewValidationError("task_ids", "список id не может быть пустым")
	}
	for _, id := range taskIDs {
		if id <= 0 {
			return nil, NewValidationError("task_ids", fmt.Sprintf("id должен быть положительным, получено %d", id))
		}
	}

	completed, err := s.statuses.GetByNameFold(ctx, completedStatusName)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Статус Completado не найден")
			return nil, NewBusinessError(CodeCompletedStatusNotFound,
				`Completado status not found. Please create a status with name "Completado".`)
		}
		return nil, fmt.Errorf("поиск статуса завершения: %w", err)
	}

	tasks, err := s.tasks.GetByIDs(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	summary := &task.CompletionSummary{
		Completed:        []task.CompletionItem{},
		AlreadyCompleted: []task.CompletionItem{},
	}

	toCompleteIDs := []int64{}
	for _, t := range tasks {
		item := task.CompletionItem{
			ID:     t.ID,
			Name:   t.Name,
			Status: t.StatusName,
		}
		if t.StatusID == completed.ID {
			summary.AlreadyCompleted = append(summary.AlreadyCompleted, item)
		} else {
			summary.Completed = append(summary.Completed, item)
			toCompleteIDs = append(toCompleteIDs, t.ID)
		}
	}

	if len(toCompleteIDs) > 0 {
		updated, err := s.tasks.UpdateStatusBulk(ctx, toCompleteIDs, completed.ID)
		if err != nil {
			return nil, fmt.Errorf("массовое завершение задач: %w", err)
		}
		summary.UpdatedCount = int(updated)

		for i := range summary.Completed {
			summary.Completed[i].Status = completed.Name
		}
	}

	logger.Info("Service: Массовое завершение задач",
		zap.Int("requested", len(taskIDs)),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("already_completed", len(summary.AlreadyCompleted)))

	return summary, nil
}
