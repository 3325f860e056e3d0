package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/status"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	"taskBoard/internal/repository"
	pgdb "taskBoard/internal/repository/postgres"
	statuspostgres "taskBoard/internal/repository/status/postgres"
	taskpostgres "taskBoard/internal/repository/task/postgres"
	userpostgres "taskBoard/internal/repository/user/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	m.Run()
}

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	tasks     *taskpostgres.Storage
	statuses  *statuspostgres.Storage
	users     *userpostgres.Storage
	ctx       context.Context
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), pgdb.Migrate(connString))

	s.pool, err = pgdb.NewPool(s.ctx, connString, 5, 1, time.Minute)
	require.NoError(s.T(), err)

	s.tasks = taskpostgres.New(s.pool)
	s.statuses = statuspostgres.New(s.pool)
	s.users = userpostgres.New(s.pool)
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE task, status, users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) createStatus(name, color string) *status.Status {
	st := &status.Status{Name: name, HexaColor: color}
	require.NoError(s.T(), s.statuses.Create(s.ctx, st))
	return st
}

func (s *PostgresTestSuite) createTask(name, content string, statusID int64) *task.Task {
	t := &task.Task{Name: name, Content: content, StatusID: statusID}
	require.NoError(s.T(), s.tasks.Create(s.ctx, t))
	return t
}

// TestPostgresTestSuite запускает suite
func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) TestTaskStorage_CreateAndGet() {
	st := s.createStatus("Por Hacer", "#6B7280")
	created := s.createTask("Hacer commit en git", "Realizar un commit", st.ID)

	assert.NotZero(s.T(), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())

	got, err := s.tasks.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Hacer commit en git", got.Name)
	assert.Equal(s.T(), "Por Hacer", got.StatusName)
	assert.Equal(s.T(), "#6B7280", got.StatusColor)

	_, err = s.tasks.GetByID(s.ctx, 9999)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTaskStorage_Update() {
	todo := s.createStatus("Por Hacer", "#6B7280")
	done := s.createStatus("Completado", "#10B981")
	created := s.createTask("Tarea", "contenido", todo.ID)

	created.Name = "Tarea renombrada"
	created.StatusID = done.ID
	require.NoError(s.T(), s.tasks.Update(s.ctx, created))

	got, err := s.tasks.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Tarea renombrada", got.Name)
	assert.Equal(s.T(), "Completado", got.StatusName)
	assert.True(s.T(), got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	missing := &task.Task{ID: 9999, Name: "x", Content: "y", StatusID: todo.ID}
	assert.ErrorIs(s.T(), s.tasks.Update(s.ctx, missing), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTaskStorage_Delete() {
	st := s.createStatus("Por Hacer", "#6B7280")
	created := s.createTask("Tarea", "contenido", st.ID)

	require.NoError(s.T(), s.tasks.Delete(s.ctx, created.ID))
	assert.ErrorIs(s.T(), s.tasks.Delete(s.ctx, created.ID), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestTaskStorage_List_Filters() {
	todo := s.createStatus("Por Hacer", "#6B7280")
	progress := s.createStatus("En Progreso", "#3B82F6")

	s.createTask("Hacer commit en git", "Realizar un commit", todo.ID)
	s.createTask("Revisar pull request", "Revisar y aprobar el PR", progress.ID)
	s.createTask("Declarar variables", "Declarar variables de tipo COMMIT", todo.ID)

	s.Run("by status", func() {
		res, err := s.tasks.List(s.ctx, task.Filter{StatusID: &progress.ID})
		require.NoError(s.T(), err)
		require.Len(s.T(), res, 1)
		assert.Equal(s.T(), "Revisar pull request", res[0].Name)
	})

	s.Run("search matches name and content case-insensitively", func() {
		res, err := s.tasks.List(s.ctx, task.Filter{Search: "commit"})
		require.NoError(s.T(), err)
		assert.Len(s.T(), res, 2)
	})

	s.Run("created range", func() {
		from := time.Now().Add(-time.Hour)
		to := time.Now().Add(time.Hour)
		res, err := s.tasks.List(s.ctx, task.Filter{RangeFrom: &from, RangeTo: &to})
		require.NoError(s.T(), err)
		assert.Len(s.T(), res, 3)

		future := time.Now().Add(time.Hour)
		res, err = s.tasks.List(s.ctx, task.Filter{CreatedAtGTE: &future})
		require.NoError(s.T(), err)
		assert.Empty(s.T(), res)
	})

	s.Run("empty filter returns everything", func() {
		res, err := s.tasks.List(s.ctx, task.Filter{})
		require.NoError(s.T(), err)
		assert.Len(s.T(), res, 3)
	})

	s.Run("search treats LIKE metacharacters literally", func() {
		s.createTask("Avance 50%", "progreso de la tarea", todo.ID)
		s.createTask("Avance 505", "progreso de la tarea", todo.ID)
		s.createTask("estado_final", "revisar", todo.ID)
		s.createTask("estadoXfinal", "revisar", todo.ID)

		res, err := s.tasks.List(s.ctx, task.Filter{Search: "50%"})
		require.NoError(s.T(), err)
		require.Len(s.T(), res, 1)
		assert.Equal(s.T(), "Avance 50%", res[0].Name)

		res, err = s.tasks.List(s.ctx, task.Filter{Search: "estado_"})
		require.NoError(s.T(), err)
		require.Len(s.T(), res, 1)
		assert.Equal(s.T(), "estado_final", res[0].Name)
	})
}

func (s *PostgresTestSuite) TestTaskStorage_List_Ordering() {
	st := s.createStatus("Por Hacer", "#6B7280")
	s.createTask("banana", "contenido", st.ID)
	s.createTask("arándano", "contenido", st.ID)
	s.createTask("cereza", "contenido", st.ID)

	res, err := s.tasks.List(s.ctx, task.Filter{Ordering: "name"})
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 3)
	assert.Equal(s.T(), "arándano", res[0].Name)

	res, err = s.tasks.List(s.ctx, task.Filter{Ordering: "-name"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "cereza", res[0].Name)

	// по умолчанию новые сверху
	res, err = s.tasks.List(s.ctx, task.Filter{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "cereza", res[0].Name)
}

func (s *PostgresTestSuite) TestTaskStorage_UpdateStatusBulk() {
	todo := s.createStatus("Por Hacer", "#6B7280")
	done := s.createStatus("Completado", "#10B981")

	t1 := s.createTask("Tarea 1", "contenido", todo.ID)
	t2 := s.createTask("Tarea 2", "contenido", todo.ID)

	updated, err := s.tasks.UpdateStatusBulk(s.ctx, []int64{t1.ID, t2.ID, 9999}, done.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), updated)

	got, err := s.tasks.GetByID(s.ctx, t1.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Completado", got.StatusName)
}

func (s *PostgresTestSuite) TestTaskStorage_GetByIDs() {
	st := s.createStatus("Por Hacer", "#6B7280")
	t1 := s.createTask("Tarea 1", "contenido", st.ID)
	s.createTask("Tarea 2", "contenido", st.ID)
	t3 := s.createTask("Tarea 3", "contenido", st.ID)

	res, err := s.tasks.GetByIDs(s.ctx, []int64{t3.ID, t1.ID, 9999})
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 2)
	assert.Equal(s.T(), t1.ID, res[0].ID)
	assert.Equal(s.T(), t3.ID, res[1].ID)
}

func (s *PostgresTestSuite) TestTaskStorage_CountByStatus() {
	todo := s.createStatus("Por Hacer", "#6B7280")
	done := s.createStatus("Completado", "#10B981")
	s.createTask("Tarea 1", "contenido", todo.ID)
	s.createTask("Tarea 2", "contenido", todo.ID)

	count, err := s.tasks.CountByStatus(s.ctx, todo.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, count)

	count, err = s.tasks.CountByStatus(s.ctx, done.ID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), count)
}

func (s *PostgresTestSuite) TestTaskStorage_HealthCheck() {
	require.NoError(s.T(), s.tasks.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestStatusStorage_UniqueName() {
	s.createStatus("Por Hacer", "#6B7280")

	err := s.statuses.Create(s.ctx, &status.Status{Name: "Por Hacer", HexaColor: "#FFFFFF"})
	assert.ErrorIs(s.T(), err, repository.ErrUniqueViolation)
}

func (s *PostgresTestSuite) TestStatusStorage_GetByNameFold() {
	s.createStatus("Completado", "#10B981")

	got, err := s.statuses.GetByNameFold(s.ctx, "cOmPlEtAdO")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Completado", got.Name)

	_, err = s.statuses.GetByNameFold(s.ctx, "inexistente")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

// внешний ключ с RESTRICT защищает статус от удаления
func (s *PostgresTestSuite) TestStatusStorage_DeleteProtection() {
	st := s.createStatus("Por Hacer", "#6B7280")
	created := s.createTask("Tarea", "contenido", st.ID)

	err := s.statuses.Delete(s.ctx, st.ID)
	assert.ErrorIs(s.T(), err, repository.ErrProtected)

	require.NoError(s.T(), s.tasks.Delete(s.ctx, created.ID))
	require.NoError(s.T(), s.statuses.Delete(s.ctx, st.ID))

	assert.ErrorIs(s.T(), s.statuses.Delete(s.ctx, st.ID), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStatusStorage_List() {
	s.createStatus("Por Hacer", "#6B7280")
	s.createStatus("Completado", "#10B981")
	s.createStatus("En Progreso", "#3B82F6")

	res, err := s.statuses.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), res, 3)
	assert.Equal(s.T(), "Completado", res[0].Name)
	assert.Equal(s.T(), "Por Hacer", res[2].Name)
}

func (s *PostgresTestSuite) TestUserStorage() {
	admin := &user.User{Username: "admin", PasswordHash: "hash", IsAdmin: true}
	require.NoError(s.T(), s.users.Create(s.ctx, admin))
	assert.NotZero(s.T(), admin.ID)

	s.Run("duplicate username", func() {
		err := s.users.Create(s.ctx, &user.User{Username: "admin", PasswordHash: "other"})
		assert.ErrorIs(s.T(), err, repository.ErrUniqueViolation)
	})

	s.Run("get by username", func() {
		got, err := s.users.GetByUsername(s.ctx, "admin")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "hash", got.PasswordHash)
		assert.True(s.T(), got.IsAdmin)

		_, err = s.users.GetByUsername(s.ctx, "ghost")
		assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	})

	s.Run("has admin", func() {
		exists, err := s.users.HasAdmin(s.ctx)
		require.NoError(s.T(), err)
		assert.True(s.T(), exists)
	})
}
