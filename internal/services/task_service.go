package services

import (
	"log"

	"tasktrack/internal/models"
	"tasktrack/internal/repositories"
)

// TaskEventPublisher publishes task lifecycle events to a message broker.
type TaskEventPublisher interface {
	PublishTaskEvent(event string, payload map[string]interface{}) error
}

// TaskService handles business logic related to tasks. Every operation is
// scoped to an owner ID resolved from the caller's token; client input
// never picks the owner.
type TaskService struct {
	taskRepo repositories.TaskRepository
	mq       TaskEventPublisher // optional, may be nil
}

// NewTaskService creates a new TaskService. mq may be nil, in which case
// no events are published.
func NewTaskService(taskRepo repositories.TaskRepository, mq TaskEventPublisher) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		mq:       mq,
	}
}

// CreateTask creates a task owned by ownerID.
func (s *TaskService) CreateTask(task *models.Task, ownerID uint) (*models.Task, error) {
	if !models.ValidStatus(task.Status) {
		return nil, ErrInvalidStatus
	}
	task.UserID = ownerID

	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}

	s.publishEvent("task.created", map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
		"status":  task.Status,
	})
	return task, nil
}

// GetTask retrieves a single task owned by ownerID.
func (s *TaskService) GetTask(id, ownerID uint) (*models.Task, error) {
	return s.taskRepo.GetByID(id, ownerID)
}

// ListTasks retrieves all tasks owned by ownerID.
func (s *TaskService) ListTasks(ownerID uint) ([]models.Task, error) {
	return s.taskRepo.GetAllByUser(ownerID)
}

// UpdateTaskStatus replaces the status of an owned task. Any status can
// follow any other; there is no transition graph.
func (s *TaskService) UpdateTaskStatus(id, ownerID uint, status string) (*models.Task, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	task, err := s.taskRepo.UpdateStatus(id, ownerID, status)
	if err != nil {
		return nil, err
	}

	s.publishEvent("task.status_updated", map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
		"status":  task.Status,
	})
	return task, nil
}

// DeleteTask removes an owned task and returns its prior state.
func (s *TaskService) DeleteTask(id, ownerID uint) (*models.Task, error) {
	task, err := s.taskRepo.Delete(id, ownerID)
	if err != nil {
		return nil, err
	}

	s.publishEvent("task.deleted", map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
	})
	return task, nil
}

// publishEvent sends a task event to the broker, best effort. A publish
// failure never fails the task operation itself.
func (s *TaskService) publishEvent(event string, payload map[string]interface{}) {
	if s.mq == nil {
		return
	}
	if err := s.mq.PublishTaskEvent(event, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", event, err)
	}
}
