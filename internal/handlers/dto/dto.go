package dto

import (
	"time"

	"taskBoard/internal/models/status"
	"taskBoard/internal/models/task"
)

type CreateStatusRequest struct {
	Name      string `json:"name"`
	HexaColor string `json:"hexa_color"`
}

type UpdateStatusRequest struct {
	Name      *string `json:"name,omitempty"`
	HexaColor *string `json:"hexa_color,omitempty"`
}

type StatusResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	HexaColor string    `json:"hexa_color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromStatus(s *status.Status) StatusResponse {
	return StatusResponse{
		ID:        s.ID,
		Name:      s.Name,
		HexaColor: s.HexaColor,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromStatusList(statuses []*status.Status) []StatusResponse {
	result := make([]StatusResponse, len(statuses))
	for i, s := range statuses {
		result[i] = FromStatus(s)
	}
	return result
}

type CreateTaskRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Status  *int64 `json:"status"`
}

type UpdateTaskRequest struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
	Status  *int64  `json:"status,omitempty"`
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Status      int64     `json:"status"`
	StatusName  string    `json:"status_name"`
	StatusColor string    `json:"status_color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Content:     t.Content,
		Status:      t.StatusID,
		StatusName:  t.StatusName,
		StatusColor: t.StatusColor,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type MarkTasksAsCompleteRequest struct {
	TaskIDs []int64 `json:"task_ids"`
}

type MarkTasksAsCompleteResponse struct {
	Message               string                `json:"message"`
	UpdatedCount          int                   `json:"updated_count"`
	Tasks                 []task.CompletionItem `json:"tasks"`
	Warning               string                `json:"warning,omitempty"`
	AlreadyCompletedTasks []task.CompletionItem `json:"already_completed_tasks,omitempty"`
}

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}
