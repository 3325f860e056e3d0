package handlers

import (
	"context"

	"taskBoard/internal/models/status"
	"taskBoard/internal/models/task"
	"taskBoard/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*task.Task, error)
	CreateTask(ctx context.Context, name, content string, statusID int64) (*task.Task, error)
	UpdateTask(ctx context.Context, id int64, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	MarkTasksAsComplete(ctx context.Context, taskIDs []int64) (*task.CompletionSummary, error)
}

type StatusService interface {
	ListStatuses(ctx context.Context) ([]*status.Status, error)
	GetStatusByID(ctx context.Context, id int64) (*status.Status, error)
	CreateStatus(ctx context.Context, name, hexaColor string) (*status.Status, error)
	UpdateStatus(ctx context.Context, id int64, options ...status.StatusOption) (*status.Status, error)
	DeleteStatus(ctx context.Context, id int64) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
}
