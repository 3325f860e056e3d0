package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/status"
	repo "taskBoard/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, statusToCreate *status.Status) error {
	start := time.Now()

	query := `INSERT INTO status (name, hexa_color)
				VALUES ($1, $2)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		statusToCreate.Name,
		statusToCreate.HexaColor,
	).Scan(&statusToCreate.ID, &statusToCreate.CreatedAt, &statusToCreate.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logger.Warn("Repository: Дубликат имени статуса",
				zap.String("name", statusToCreate.Name))
			return repo.ErrUniqueViolation
		}
		logger.Error("Repository: Не удалось добавить статус", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление статуса: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, statusToUpdate *status.Status) error {
	start := time.Now()

	query := `UPDATE status
				SET name = $1,
					hexa_color = $2,
					updated_at = NOW()
				WHERE id = $3
				RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		statusToUpdate.Name,
		statusToUpdate.HexaColor,
		statusToUpdate.ID,
	).Scan(&statusToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repo.ErrUniqueViolation
		}
		logger.Error("Repository: Не удалось обновить статус", err)
		return fmt.Errorf("обновление статуса: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*status.Status, error) {
	start := time.Now()

	query := `SELECT id, name, hexa_color, created_at, updated_at
				FROM status
				WHERE id = $1`

	st := &status.Status{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&st.ID,
		&st.Name,
		&st.HexaColor,
		&st.CreatedAt,
		&st.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить статус", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение статуса: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return st, nil
}

// GetByNameFold ищет статус по имени без учёта регистра
func (s *Storage) GetByNameFold(ctx context.Context, name string) (*status.Status, error) {
	query := `SELECT id, name, hexa_color, created_at, updated_at
				FROM status
				WHERE LOWER(name) = LOWER($1)`

	st := &status.Status{}
	err := s.pool.QueryRow(ctx, query, name).Scan(
		&st.ID,
		&st.Name,
		&st.HexaColor,
		&st.CreatedAt,
		&st.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить статус по имени", err)
		return nil, fmt.Errorf("получение статуса по имени: %w", err)
	}
	return st, nil
}

// List возвращает все статусы в алфавитном порядке
func (s *Storage) List(ctx context.Context) ([]*status.Status, error) {
	start := time.Now()

	query := `SELECT id, name, hexa_color, created_at, updated_at
				FROM status
				ORDER BY name ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить статусы", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение статусов: %w", err)
	}
	defer rows.Close()

	statuses := []*status.Status{}
	for rows.Next() {
		st := &status.Status{}
		err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.HexaColor,
			&st.CreatedAt,
			&st.UpdatedAt,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования статуса", zap.Error(err))
			continue
		}
		statuses = append(statuses, st)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return statuses, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	query := `DELETE FROM status WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			logger.Warn("Repository: Статус защищён ссылками задач", zap.Int64("status_id", id))
			return repo.ErrProtected
		}
		logger.Error("Repository: Не удалось удалить статус", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление статуса: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
