package postgres

import (
	"context"
	"errors"
	"fmt"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	query := `INSERT INTO users (username, password_hash, is_admin)
				VALUES ($1, $2, $3)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.Username,
		userToCreate.PasswordHash,
		userToCreate.IsAdmin,
	).Scan(&userToCreate.ID, &userToCreate.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repo.ErrUniqueViolation
		}
		logger.Error("Repository: Не удалось добавить пользователя", err)
		return fmt.Errorf("добавление пользователя: %w", err)
	}
	return nil
}

func (s *Storage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT id, username, password_hash, is_admin, created_at
				FROM users
				WHERE username = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) HasAdmin(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE is_admin = TRUE)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query).Scan(&exists); err != nil {
		logger.Error("Repository: Не удалось проверить наличие администратора", err)
		return false, fmt.Errorf("проверка администратора: %w", err)
	}
	return exists, nil
}
