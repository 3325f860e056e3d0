package repository

import "errors"

var (
	ErrNotFound        = errors.New("запись не найдена")
	ErrUniqueViolation = errors.New("нарушение уникальности")
	ErrProtected       = errors.New("запись защищена внешними ссылками")
)
