package task

import (
	"time"
)

type Task struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Content  string `json:"content" db:"content"`
	StatusID int64  `json:"status" db:"status_id"`

	// денормализованные поля статуса, заполняются JOIN-ом при чтении
	StatusName  string `json:"status_name" db:"status_name"`
	StatusColor string `json:"status_color" db:"status_color"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Filter - параметры выборки списка задач
type Filter struct {
	StatusID     *int64
	CreatedAt    *time.Time
	CreatedAtGTE *time.Time
	CreatedAtLTE *time.Time
	RangeFrom    *time.Time
	RangeTo      *time.Time
	Search       string
	Ordering     string
}

// CompletionItem - задача в ответе массового завершения
type CompletionItem struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// CompletionSummary - итог массового завершения
type CompletionSummary struct {
	UpdatedCount     int
	Completed        []CompletionItem
	AlreadyCompleted []CompletionItem
}
