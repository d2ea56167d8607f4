package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todoflow/core/internal/application/services"
	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/config"
	"github.com/todoflow/core/internal/infrastructure/logger"
	"github.com/todoflow/core/internal/ports"
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	todoService  *services.TodoService
	retentionCfg config.RetentionConfig
	logger       *logger.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService *services.TodoService, retentionCfg config.RetentionConfig, logger *logger.Logger) *TodoHandler {
	return &TodoHandler{
		todoService:  todoService,
		retentionCfg: retentionCfg,
		logger:       logger,
	}
}

// List handles listing the caller's todos
func (h *TodoHandler) List(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return Unauthorized()
	}

	todos, err := h.todoService.List(c.Request().Context(), user.ID)
	if err != nil {
		h.logger.Errorw("List todos failed", "error", err, "user_id", user.ID)
		return FromDomain(err)
	}

	return c.JSON(http.StatusOK, todos)
}

// Create handles todo creation
func (h *TodoHandler) Create(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return Unauthorized()
	}

	var req ports.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return NewAPIError(http.StatusBadRequest, CodeValidationError, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return NewAPIError(http.StatusBadRequest, CodeValidationError, err.Error())
	}

	todo, err := h.todoService.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		h.logger.Errorw("Create todo failed", "error", err, "user_id", user.ID)
		return FromDomain(err)
	}

	return c.JSON(http.StatusCreated, todo)
}

// Update handles partial updates of a todo
func (h *TodoHandler) Update(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return Unauthorized()
	}

	id := c.Param("id")

	var req ports.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return NewAPIError(http.StatusBadRequest, CodeValidationError, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return NewAPIError(http.StatusBadRequest, CodeValidationError, err.Error())
	}

	todo, err := h.todoService.Update(c.Request().Context(), user.ID, id, req)
	if err != nil {
		if err != entities.ErrTodoNotFound {
			h.logger.Errorw("Update todo failed", "error", err, "todo_id", id, "user_id", user.ID)
		}
		return FromDomain(err)
	}

	return c.JSON(http.StatusOK, todo)
}

// Delete handles todo deletion
func (h *TodoHandler) Delete(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return Unauthorized()
	}

	id := c.Param("id")

	if err := h.todoService.Delete(c.Request().Context(), user.ID, id); err != nil {
		if err != entities.ErrTodoNotFound {
			h.logger.Errorw("Delete todo failed", "error", err, "todo_id", id, "user_id", user.ID)
		}
		return FromDomain(err)
	}

	return c.JSON(http.StatusOK, DeleteResponse{Success: true})
}

// DeleteOld handles the retention sweep endpoint
func (h *TodoHandler) DeleteOld(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return Unauthorized()
	}

	deleted, err := h.todoService.DeleteOld(c.Request().Context(), h.retentionCfg.Window)
	if err != nil {
		h.logger.Errorw("Retention sweep failed", "error", err, "user_id", user.ID)
		return FromDomain(err)
	}

	return c.JSON(http.StatusOK, SweepResponse{DeletedCount: deleted, Success: true})
}

// DeleteResponse acknowledges a successful delete
type DeleteResponse struct {
	Success bool `json:"success"`
}

// SweepResponse reports the outcome of a retention sweep
type SweepResponse struct {
	DeletedCount int64 `json:"deletedCount"`
	Success      bool  `json:"success"`
}
