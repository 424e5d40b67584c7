package repositories

import "tasktrack/internal/models"

// TaskRepository defines the interface for task data access. Every lookup
// and mutation is scoped by the owning user's ID: a task that exists but
// belongs to someone else behaves exactly like a task that does not exist.
type TaskRepository interface {
	Create(task *models.Task) error
	GetByID(id, userID uint) (*models.Task, error)
	GetAllByUser(userID uint) ([]models.Task, error)
	UpdateStatus(id, userID uint, status string) (*models.Task, error)
	Delete(id, userID uint) (*models.Task, error)
}
