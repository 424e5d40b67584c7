package handlers

import (
	"errors"
	"log"
	"time"

	"tasktrack/internal/middleware"
	"tasktrack/internal/models"
	"tasktrack/internal/repositories"
	"tasktrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles HTTP requests for tasks. All of its routes sit
// behind AuthRequired, so every operation runs against the caller's own
// tasks only.
type TaskHandler struct {
	service  *services.TaskService
	validate *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the task routes with the Fiber app.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	taskRoutes := router.Group("/tasks")
	taskRoutes.Get("/", h.HandleListTasks)
	taskRoutes.Post("/", h.HandleCreateTask)
	taskRoutes.Get("/:id", h.HandleGetTask)
	taskRoutes.Patch("/:id/status", h.HandleUpdateStatus)
	taskRoutes.Delete("/:id", h.HandleDeleteTask)
}

// TaskCreateRequest represents the request body for task creation. The
// owner is never part of it; it comes from the resolved token.
type TaskCreateRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"required,oneof=pending in_progress completed"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// HandleCreateTask creates a new task owned by the caller.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized",
		})
	}

	var req TaskCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create task request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	}
	created, err := h.service.CreateTask(task, user.ID)
	if err != nil {
		log.Printf("Error creating task for user %d: %v", user.ID, err)
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not create task",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create task",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleListTasks retrieves all of the caller's tasks.
func (h *TaskHandler) HandleListTasks(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized",
		})
	}

	tasks, err := h.service.ListTasks(user.ID)
	if err != nil {
		log.Printf("Error listing tasks for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve tasks",
		})
	}
	return c.JSON(tasks)
}

// HandleGetTask retrieves a single task. A task owned by someone else
// looks exactly like a task that does not exist.
func (h *TaskHandler) HandleGetTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized",
		})
	}

	taskID, err := c.ParamsInt("id")
	if err != nil || taskID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	task, err := h.service.GetTask(uint(taskID), user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Task not found",
			})
		}
		log.Printf("Error getting task %d for user %d: %v", taskID, user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve task",
		})
	}
	return c.JSON(task)
}

// StatusUpdateRequest represents the request body for a status change.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// HandleUpdateStatus replaces the status of one of the caller's tasks.
func (h *TaskHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized",
		})
	}

	taskID, err := c.ParamsInt("id")
	if err != nil || taskID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	task, err := h.service.UpdateTaskStatus(uint(taskID), user.ID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Task not found",
			})
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not update task status",
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating status of task %d for user %d: %v", taskID, user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update task status",
		})
	}
	return c.JSON(task)
}

// HandleDeleteTask deletes one of the caller's tasks and returns its
// prior state.
func (h *TaskHandler) HandleDeleteTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authorized",
		})
	}

	taskID, err := c.ParamsInt("id")
	if err != nil || taskID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	task, err := h.service.DeleteTask(uint(taskID), user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Task not found",
			})
		}
		log.Printf("Error deleting task %d for user %d: %v", taskID, user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete task",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Task deleted",
		"task":    task,
	})
}
