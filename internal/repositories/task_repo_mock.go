package repositories

import (
	"sync"

	"tasktrack/internal/models"
)

// MockTaskRepository is an in-memory implementation of TaskRepository.
type MockTaskRepository struct {
	tasks  map[uint]models.Task
	order  []uint
	nextID uint
	mu     sync.RWMutex
}

// NewMockTaskRepository creates a new instance of MockTaskRepository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		tasks:  make(map[uint]models.Task),
		nextID: 1,
	}
}

// Create adds a new task, assigning the next sequential ID.
func (r *MockTaskRepository) Create(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = r.nextID
	r.nextID++
	r.tasks[task.ID] = *task
	r.order = append(r.order, task.ID)
	return nil
}

// GetByID returns a task by its ID if it is owned by userID.
func (r *MockTaskRepository) GetByID(id, userID uint) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, ErrNotFound
	}
	return &task, nil
}

// GetAllByUser returns tasks owned by userID in insertion order.
func (r *MockTaskRepository) GetAllByUser(userID uint) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	taskList := make([]models.Task, 0)
	for _, id := range r.order {
		if task, ok := r.tasks[id]; ok && task.UserID == userID {
			taskList = append(taskList, task)
		}
	}
	return taskList, nil
}

// UpdateStatus updates the status of an owned task.
func (r *MockTaskRepository) UpdateStatus(id, userID uint, status string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, ErrNotFound
	}
	task.Status = status
	r.tasks[id] = task
	return &task, nil
}

// Delete removes an owned task and returns its prior state.
func (r *MockTaskRepository) Delete(id, userID uint) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, ErrNotFound
	}
	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &task, nil
}
