package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/status"
	rep "taskBoard/internal/repository"

	"go.uber.org/zap"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type StatusService struct {
	statuses StatusRepository
	tasks    TaskRepository
}

func NewStatusService(statuses StatusRepository, tasks TaskRepository) StatusService {
	return StatusService{
		statuses: statuses,
		tasks:    tasks,
	}
}

func validateStatus(name, hexaColor string) *BusinessError {
	if name == "" {
		return NewValidationError("name", "название не может быть пустым")
	}
	if utf8.RuneCountInString(name) > 50 {
		return NewValidationError("name", "название не может быть длиннее 50 символов")
	}
	if !hexColorRe.MatchString(hexaColor) {
		return NewValidationError("hexa_color", "цвет должен иметь формат #RRGGBB")
	}
	return nil
}

func (s *StatusService) ListStatuses(ctx context.Context) ([]*status.Status, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение статусов: %w", err)
	}
	return statuses, nil
}

func (s *StatusService) GetStatusByID(ctx context.Context, id int64) (*status.Status, error) {
	st, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Статус не найден", zap.Int64("target_id", id))
			return nil, NewNotFound("статус", id)
		}
		return nil, fmt.Errorf("получение статуса: %w", err)
	}
	return st, nil
}

func (s *StatusService) CreateStatus(ctx context.Context, name, hexaColor string) (*status.Status, error) {
	if err := validateStatus(name, hexaColor); err != nil {
		return nil, err
	}

	st := &status.Status{
		Name:      name,
		HexaColor: hexaColor,
	}

	if err := s.statuses.Create(ctx, st); err != nil {
		if errors.Is(err, rep.ErrUniqueViolation) {
			return nil, NewValidationError("name", "статус с таким названием уже существует")
		}
		return nil, fmt.Errorf("создание статуса: %w", err)
	}

	logger.Info("Service: Статус создан", zap.Int64("status_id", st.ID), zap.String("name", st.Name))
	return st, nil
}

func (s *StatusService) UpdateStatus(ctx context.Context, id int64, options ...status.StatusOption) (*status.Status, error) {
	st, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Статус не найден", zap.Int64("target_id", id))
			return nil, NewNotFound("статус", id)
		}
		return nil, fmt.Errorf("получение статуса: %w", err)
	}

	for _, opt := range options {
		opt(st)
	}

	if err := validateStatus(st.Name, st.HexaColor); err != nil {
		return nil, err
	}

	if err := s.statuses.Update(ctx, st); err != nil {
		if errors.Is(err, rep.ErrUniqueViolation) {
			return nil, NewValidationError("name", "статус с таким названием уже существует")
		}
		return nil, fmt.Errorf("обновление статуса: %w", err)
	}
	return st, nil
}

// DeleteStatus удаляет статус, на который не ссылается ни одна задача
func (s *StatusService) DeleteStatus(ctx context.Context, id int64) error {
	if _, err := s.statuses.GetByID(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("статус", id)
		}
		return fmt.Errorf("получение статуса: %w", err)
	}

	count, err := s.tasks.CountByStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("подсчёт ссылающихся задач: %w", err)
	}
	if count > 0 {
		logger.Warn("Service: Попытка удалить защищённый статус",
			zap.Int64("status_id", id),
			zap.Int("referencing_tasks", count))
		return NewProtectedReference("статус", id)
	}

	if err := s.statuses.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound("статус", id)
		}
		// гонка между проверкой и удалением, БД подстраховала
		if errors.Is(err, rep.ErrProtected) {
			return NewProtectedReference("статус", id)
		}
		return fmt.Errorf("удаление статуса: %w", err)
	}
	return nil
}
