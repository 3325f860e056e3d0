package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskBoard/internal/models/status"
	repo "taskBoard/internal/repository"
)

type StatusStorage struct {
	storage map[int64]*status.Status
	mtx     *sync.RWMutex
	nextID  int64

	// проверка ссылок задач перед удалением, выставляется при сборке хранилищ
	refCount func(ctx context.Context, statusID int64) (int, error)
}

func NewStatusStorage() *StatusStorage {
	return &StatusStorage{
		storage: make(map[int64]*status.Status),
		mtx:     &sync.RWMutex{},
		nextID:  1,
	}
}

// SetRefCounter связывает хранилище со счётчиком ссылающихся задач
func (s *StatusStorage) SetRefCounter(refCount func(ctx context.Context, statusID int64) (int, error)) {
	s.refCount = refCount
}

func (s *StatusStorage) Create(ctx context.Context, statusToCreate *status.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.Name == statusToCreate.Name {
			return repo.ErrUniqueViolation
		}
	}

	now := time.Now()
	statusToCreate.ID = s.nextID
	statusToCreate.CreatedAt = now
	statusToCreate.UpdatedAt = now
	s.nextID++

	copied := *statusToCreate
	s.storage[copied.ID] = &copied
	return nil
}

func (s *StatusStorage) Update(ctx context.Context, statusToUpdate *status.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[statusToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	for _, other := range s.storage {
		if other.ID != statusToUpdate.ID && other.Name == statusToUpdate.Name {
			return repo.ErrUniqueViolation
		}
	}

	existing.Name = statusToUpdate.Name
	existing.HexaColor = statusToUpdate.HexaColor
	existing.UpdatedAt = time.Now()
	statusToUpdate.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *StatusStorage) GetByID(ctx context.Context, id int64) (*status.Status, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	statusToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *statusToGet
	return &copied, nil
}

func (s *StatusStorage) GetByNameFold(ctx context.Context, name string) (*status.Status, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, statusToGet := range s.storage {
		if strings.EqualFold(statusToGet.Name, name) {
			copied := *statusToGet
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *StatusStorage) List(ctx context.Context) ([]*status.Status, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*status.Status{}
	for _, statusToGet := range s.storage {
		copied := *statusToGet
		res = append(res, &copied)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res, nil
}

func (s *StatusStorage) Delete(ctx context.Context, id int64) error {
	if s.refCount != nil {
		count, err := s.refCount(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrProtected
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	return nil
}
