package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskBoard/internal/models/status"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"
)

// StatusSource - доступ к статусам для денормализации при чтении
type StatusSource interface {
	GetByID(ctx context.Context, id int64) (*status.Status, error)
}

type TaskStorage struct {
	storage  map[int64]*task.Task
	mtx      *sync.RWMutex
	nextID   int64
	statuses StatusSource
}

func NewTaskStorage(statuses StatusSource) *TaskStorage {
	return &TaskStorage{
		storage:  make(map[int64]*task.Task),
		mtx:      &sync.RWMutex{},
		nextID:   1,
		statuses: statuses,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

// возвращает копию с актуальными именем и цветом статуса
func (s *TaskStorage) denormalize(ctx context.Context, t *task.Task) *task.Task {
	copied := *t
	if st, err := s.statuses.GetByID(ctx, t.StatusID); err == nil {
		copied.StatusName = st.Name
		copied.StatusColor = st.HexaColor
	}
	return &copied
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	taskToCreate.ID = s.nextID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now
	s.nextID++

	copied := *taskToCreate
	s.storage[copied.ID] = &copied
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	existing.Name = taskToUpdate.Name
	existing.Content = taskToUpdate.Content
	existing.StatusID = taskToUpdate.StatusID
	existing.UpdatedAt = time.Now()
	taskToUpdate.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.denormalize(ctx, taskToGet), nil
}

func (s *TaskStorage) GetByIDs(ctx context.Context, ids []int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range ids {
		if taskToGet, ok := s.storage[id]; ok {
			res = append(res, s.denormalize(ctx, taskToGet))
		}
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func matches(t *task.Task, filter task.Filter) bool {
	if filter.StatusID != nil && t.StatusID != *filter.StatusID {
		return false
	}
	if filter.CreatedAt != nil && !t.CreatedAt.Equal(*filter.CreatedAt) {
		return false
	}
	if filter.CreatedAtGTE != nil && t.CreatedAt.Before(*filter.CreatedAtGTE) {
		return false
	}
	if filter.CreatedAtLTE != nil && t.CreatedAt.After(*filter.CreatedAtLTE) {
		return false
	}
	if filter.RangeFrom != nil && t.CreatedAt.Before(*filter.RangeFrom) {
		return false
	}
	if filter.RangeTo != nil && t.CreatedAt.After(*filter.RangeTo) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Name), needle) &&
			!strings.Contains(strings.ToLower(t.Content), needle) {
			return false
		}
	}
	return true
}

func sortTasks(tasks []*task.Task, ordering string) {
	if ordering == "" {
		ordering = "-created_at"
	}

	column := ordering
	desc := false
	if strings.HasPrefix(ordering, "-") {
		column = ordering[1:]
		desc = true
	}

	less := func(a, b *task.Task) bool {
		switch column {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "updated_at":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}

	sort.Slice(tasks, func(i, j int) bool {
		if desc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func (s *TaskStorage) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, taskToGet := range s.storage {
		if matches(taskToGet, filter) {
			res = append(res, s.denormalize(ctx, taskToGet))
		}
	}

	sortTasks(res, filter.Ordering)
	return res, nil
}

// Delete удаляет задачу навсегда, повторное удаление возвращает ErrNotFound
func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	return nil
}

func (s *TaskStorage) CountByStatus(ctx context.Context, statusID int64) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, t := range s.storage {
		if t.StatusID == statusID {
			count++
		}
	}
	return count, nil
}

func (s *TaskStorage) UpdateStatusBulk(ctx context.Context, ids []int64, statusID int64) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var updated int64
	now := time.Now()
	for _, id := range ids {
		if t, ok := s.storage[id]; ok {
			t.StatusID = statusID
			t.UpdatedAt = now
			updated++
		}
	}
	return updated, nil
}
