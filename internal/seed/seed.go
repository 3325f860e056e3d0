package seed

import (
	"context"
	"errors"
	"fmt"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/status"
	"taskBoard/internal/models/task"
	"taskBoard/internal/repository"
	"taskBoard/internal/service"

	"go.uber.org/zap"
)

type seedStatus struct {
	name      string
	hexaColor string
}

type seedTask struct {
	name    string
	content string
	status  string
}

var initialStatuses = []seedStatus{
	{name: "Por Hacer", hexaColor: "#6B7280"},
	{name: "En Progreso", hexaColor: "#3B82F6"},
	{name: "Completado", hexaColor: "#10B981"},
	{name: "Bloqueado", hexaColor: "#EF4444"},
}

var initialTasks = []seedTask{
	{name: "Crear función de suma", content: "Implementar una función que sume dos números", status: "Por Hacer"},
	{name: "Implementar bucle for", content: "Crear un bucle for que itere sobre una lista de elementos", status: "Por Hacer"},
	{name: "Declarar variables", content: "Declarar variables de diferentes tipos: string, int, float y boolean", status: "En Progreso"},
	{name: "Crear clase Usuario", content: "Definir una clase Usuario con atributos nombre, email y edad", status: "En Progreso"},
	{name: "Escribir comentarios en código", content: "Agregar comentarios descriptivos a las funciones principales", status: "Completado"},
	{name: "Hacer commit en git", content: "Realizar un commit con los cambios recientes en el repositorio", status: "Completado"},
	{name: "Revisar pull request", content: "Revisar y aprobar el PR #123 del compañero de equipo", status: "Por Hacer"},
	{name: "Actualizar dependencias", content: "Actualizar las dependencias del proyecto a sus últimas versiones", status: "Bloqueado"},
	{name: "Corregir error de sintaxis", content: "Corregir el error de sintaxis en el archivo main.py línea 45", status: "En Progreso"},
	{name: "Agregar validación de datos", content: "Implementar validación de entrada de datos en el formulario de registro", status: "Por Hacer"},
}

// Load наполняет хранилище стартовыми статусами и задачами.
// Повторный запуск ничего не дублирует.
func Load(ctx context.Context, statuses service.StatusRepository, tasks service.TaskRepository) error {
	byName := make(map[string]*status.Status, len(initialStatuses))

	for _, ss := range initialStatuses {
		existing, err := statuses.GetByNameFold(ctx, ss.name)
		if err == nil {
			byName[ss.name] = existing
			logger.Info("SEED: Статус уже существует", zap.String("name", ss.name))
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("проверка статуса %q: %w", ss.name, err)
		}

		s := &status.Status{Name: ss.name, HexaColor: ss.hexaColor}
		if err := statuses.Create(ctx, s); err != nil {
			return fmt.Errorf("создание статуса %q: %w", ss.name, err)
		}
		byName[ss.name] = s
		logger.Info("SEED: Статус создан", zap.String("name", ss.name))
	}

	existingTasks, err := tasks.List(ctx, task.Filter{})
	if err != nil {
		return fmt.Errorf("чтение задач: %w", err)
	}
	taken := make(map[string]bool, len(existingTasks))
	for _, t := range existingTasks {
		taken[t.Name] = true
	}

	created := 0
	for _, st := range initialTasks {
		if taken[st.name] {
			continue
		}

		t := &task.Task{
			Name:     st.name,
			Content:  st.content,
			StatusID: byName[st.status].ID,
		}
		if err := tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("создание задачи %q: %w", st.name, err)
		}
		created++
	}

	logger.Info(
		"SEED: Стартовые данные загружены",
		zap.Int("statuses", len(byName)),
		zap.Int("tasks_created", created),
		zap.Int("tasks_existing", len(initialTasks)-created),
	)

	return nil
}
