package repositories

import (
	"errors"
	"fmt"

	"tasktrack/internal/models"

	"gorm.io/gorm"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{
		db: db,
	}
}

// Create inserts a new task. The caller is expected to have set UserID.
func (r *GORMTaskRepository) Create(task *models.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by id, scoped to its owner.
func (r *GORMTaskRepository) GetByID(id, userID uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return &task, nil
}

// GetAllByUser retrieves every task owned by userID in insertion order.
func (r *GORMTaskRepository) GetAllByUser(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Order("id").Find(&tasks, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

// UpdateStatus replaces the status of an owned task in a single UPDATE,
// then returns the updated record.
func (r *GORMTaskRepository) UpdateStatus(id, userID uint, status string) (*models.Task, error) {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of task %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id, userID)
}

// Delete removes an owned task and returns its prior state.
func (r *GORMTaskRepository) Delete(id, userID uint) (*models.Task, error) {
	task, err := r.GetByID(id, userID)
	if err != nil {
		return nil, err
	}
	res := r.db.Delete(&models.Task{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete task %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return task, nil
}
