package task

type TaskOption func(*Task)

func WithName(name string) TaskOption {
	return func(task *Task) {
		task.Name = name
	}
}

func WithContent(content string) TaskOption {
	return func(task *Task) {
		task.Content = content
	}
}

func WithStatusID(statusID int64) TaskOption {
	return func(task *Task) {
		task.StatusID = statusID
	}
}
