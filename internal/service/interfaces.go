package service

import (
	"context"

	"taskBoard/internal/models/status"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
)

type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id int64) (*task.Task, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*task.Task, error)
	List(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context, statusID int64) (int, error)
	UpdateStatusBulk(ctx context.Context, ids []int64, statusID int64) (int64, error)
	HealthCheck(ctx context.Context) error
}

type StatusRepository interface {
	Create(ctx context.Context, s *status.Status) error
	Update(ctx context.Context, s *status.Status) error
	GetByID(ctx context.Context, id int64) (*status.Status, error)
	GetByNameFold(ctx context.Context, name string) (*status.Status, error)
	List(ctx context.Context) ([]*status.Status, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	HasAdmin(ctx context.Context) (bool, error)
}
