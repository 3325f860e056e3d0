package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

const taskColumns = `t.id, t.name, t.content, t.status_id, s.name, s.hexa_color, t.created_at, t.updated_at`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Content,
		&t.StatusID,
		&t.StatusName,
		&t.StatusColor,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO task (name, content, status_id)
				VALUES ($1, $2, $3)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Name,
		taskToCreate.Content,
		taskToCreate.StatusID,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE task
				SET name = $1,
					content = $2,
					status_id = $3,
					updated_at = NOW()
				WHERE id = $4
				RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Name,
		taskToUpdate.Content,
		taskToUpdate.StatusID,
		taskToUpdate.ID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM task t
				JOIN status s ON s.id = t.status_id
				WHERE t.id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// GetByIDs возвращает задачи с перечисленными id, отсутствующие id пропускаются
func (s *Storage) GetByIDs(ctx context.Context, ids []int64) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM task t
				JOIN status s ON s.id = t.status_id
				WHERE t.id = ANY($1)
				ORDER BY t.id`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// спецсимволы LIKE в поисковой строке ищутся буквально
var searchEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ordering из фильтра уже провалидирован сервисом
func orderClause(ordering string) string {
	column := ordering
	direction := "ASC"
	if strings.HasPrefix(ordering, "-") {
		column = ordering[1:]
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY t.%s %s, t.id %s", column, direction, direction)
}

func (s *Storage) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + `
				FROM task t
				JOIN status s ON s.id = t.status_id`)

	conditions := []string{}
	args := []any{}

	addArg := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, "$"+strconv.Itoa(len(args))))
	}

	if filter.StatusID != nil {
		addArg("t.status_id = %s", *filter.StatusID)
	}
	if filter.CreatedAt != nil {
		addArg("t.created_at = %s", *filter.CreatedAt)
	}
	if filter.CreatedAtGTE != nil {
		addArg("t.created_at >= %s", *filter.CreatedAtGTE)
	}
	if filter.CreatedAtLTE != nil {
		addArg("t.created_at <= %s", *filter.CreatedAtLTE)
	}
	if filter.RangeFrom != nil {
		addArg("t.created_at >= %s", *filter.RangeFrom)
	}
	if filter.RangeTo != nil {
		addArg("t.created_at <= %s", *filter.RangeTo)
	}
	if filter.Search != "" {
		pattern := "%" + searchEscaper.Replace(filter.Search) + "%"
		args = append(args, pattern)
		placeholder := "$" + strconv.Itoa(len(args))
		conditions = append(conditions, fmt.Sprintf("(t.name ILIKE %s OR t.content ILIKE %s)", placeholder, placeholder))
	}

	if len(conditions) > 0 {
		sb.WriteString("\n\t\t\tWHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = "-created_at"
	}
	sb.WriteString("\n\t\t\t" + orderClause(ordering))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

func collectTasks(rows pgx.Rows) ([]*task.Task, error) {
	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

// Delete удаляет задачу навсегда, повторное удаление возвращает ErrNotFound
func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	query := `DELETE FROM task WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) CountByStatus(ctx context.Context, statusID int64) (int, error) {
	query := `SELECT COUNT(*) FROM task WHERE status_id = $1`

	var count int
	err := s.pool.QueryRow(ctx, query, statusID).Scan(&count)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать задачи статуса", err)
		return 0, fmt.Errorf("подсчёт задач статуса: %w", err)
	}
	return count, nil
}

// UpdateStatusBulk одним запросом переводит перечисленные задачи в новый статус
func (s *Storage) UpdateStatusBulk(ctx context.Context, ids []int64, statusID int64) (int64, error) {
	start := time.Now()

	query := `UPDATE task
				SET status_id = $1,
					updated_at = NOW()
				WHERE id = ANY($2)`

	tag, err := s.pool.Exec(ctx, query, statusID, ids)
	if err != nil {
		logger.Error("Repository: Не удалось массово обновить статус", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("массовое обновление статуса: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tag.RowsAffected(), nil
}
