package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tasktrack/internal/handlers"
	"tasktrack/internal/middleware"
	"tasktrack/internal/models"
	"tasktrack/internal/repositories"
	"tasktrack/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over a named in-memory SQLite database so
// each test gets an isolated store.
func setupApp(name string) (*fiber.App, *services.AuthService, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	taskRepo := repositories.NewGORMTaskRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret", 0)
	taskService := services.NewTaskService(taskRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protectedRoutes)
	taskHandler.RegisterRoutes(protectedRoutes)

	return app, authService, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		// Task lists decode to arrays, not maps; callers re-decode those.
		_ = json.Unmarshal(raw, &decoded)
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, username, email, password string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := loginResp["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _, err := setupApp(t.Name())
	assert.NoError(t, err)

	// Registration
	resp, registerResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// The response exposes the user but never the hash
	user, ok := registerResp["user"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "testuser", user["username"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")

	// Duplicate username
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "different@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Duplicate email under a different username
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "otheruser",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Password below the policy floor
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "shortpw",
		"email":    "shortpw@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Login
	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsersMe(t *testing.T) {
	app, _, err := setupApp(t.Name())
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "meuser", "me@example.com", "password123")

	resp, me := doJSON(t, app, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "meuser", me["username"])
	assert.Equal(t, "me@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	// Without a token
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTasksRequireAuth(t *testing.T) {
	app, authService, err := setupApp(t.Name())
	assert.NoError(t, err)

	registerAndLogin(t, app, "authuser", "auth@example.com", "password123")

	// No token
	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/tasks/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/tasks/", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correctly signed but already expired
	expired, err := authService.IssueToken("authuser", -time.Minute)
	assert.NoError(t, err)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/tasks/", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid token whose subject was never registered
	unknown, err := authService.IssueToken("ghost", time.Hour)
	assert.NoError(t, err)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/tasks/", unknown, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskLifecycleAndOwnership(t *testing.T) {
	app, _, err := setupApp(t.Name())
	assert.NoError(t, err)

	aliceToken := registerAndLogin(t, app, "alice", "alice@x.com", "secret1")

	// Alice creates a task; the id is freshly assigned and she is the owner
	resp, created := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", aliceToken, map[string]interface{}{
		"title":    "T1",
		"status":   "pending",
		"due_date": "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "T1", created["title"])
	assert.Equal(t, "pending", created["status"])

	// Listing returns exactly her one task
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var tasks []models.Task
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	listResp.Body.Close()
	assert.Len(t, tasks, 1)
	assert.Equal(t, uint(1), tasks[0].ID)
	assert.Equal(t, "T1", tasks[0].Title)

	// Get round-trips the created fields
	resp, fetched := doJSON(t, app, http.MethodGet, "/api/v1/tasks/1", aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "T1", fetched["title"])
	assert.Equal(t, "pending", fetched["status"])

	// Status update reflects on the next read
	resp, updated := doJSON(t, app, http.MethodPatch, "/api/v1/tasks/1/status", aliceToken, map[string]string{
		"status": "completed",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", updated["status"])

	resp, fetched = doJSON(t, app, http.MethodGet, "/api/v1/tasks/1", aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", fetched["status"])

	// An unknown status is rejected
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/tasks/1/status", aliceToken, map[string]string{
		"status": "archived",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Bob cannot see, mutate, or delete Alice's task; every attempt looks
	// like the task does not exist
	bobToken := registerAndLogin(t, app, "bob", "bob@x.com", "secret2")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/tasks/1", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/tasks/1/status", bobToken, map[string]string{
		"status": "pending",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/tasks/1", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Bob's own list is empty
	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	listResp, err = app.Test(req, -1)
	assert.NoError(t, err)
	var bobTasks []models.Task
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&bobTasks))
	listResp.Body.Close()
	assert.Empty(t, bobTasks)

	// Alice's task is still intact after Bob's attempts
	resp, fetched = doJSON(t, app, http.MethodGet, "/api/v1/tasks/1", aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", fetched["status"])

	// Delete returns the prior state, then the task is gone
	resp, deleted := doJSON(t, app, http.MethodDelete, "/api/v1/tasks/1", aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deletedTask, ok := deleted["task"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "completed", deletedTask["status"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/tasks/1", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskValidation(t *testing.T) {
	app, _, err := setupApp(t.Name())
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "validator", "validator@example.com", "password123")

	// Missing title
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/tasks/", token, map[string]interface{}{
		"status":   "pending",
		"due_date": "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown status
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/tasks/", token, map[string]interface{}{
		"title":    "T",
		"status":   "someday",
		"due_date": "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-numeric task id
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/tasks/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
