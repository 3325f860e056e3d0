package inmemory

import (
	"context"
	"sync"
	"time"

	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"
)

type UserStorage struct {
	storage map[string]*user.User
	mtx     *sync.RWMutex
	nextID  int64
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[string]*user.User),
		mtx:     &sync.RWMutex{},
		nextID:  1,
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[userToCreate.Username]; ok {
		return repo.ErrUniqueViolation
	}

	userToCreate.ID = s.nextID
	userToCreate.CreatedAt = time.Now()
	s.nextID++

	copied := *userToCreate
	s.storage[copied.Username] = &copied
	return nil
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[username]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *userToGet
	return &copied, nil
}

func (s *UserStorage) HasAdmin(ctx context.Context) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.storage {
		if u.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}
