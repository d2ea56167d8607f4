package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todoflow/core/internal/application/services"
	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/logger"
	"github.com/todoflow/core/internal/ports"
)

// userContextKey is where the session middleware stashes the loaded user.
const userContextKey = "session_user"

// AuthHandler handles the identity provider callback
type AuthHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// Callback upserts the user record after a successful login at the
// identity provider. The provider posts the verified profile here.
func (h *AuthHandler) Callback(c echo.Context) error {
	var req ports.IdentityProfile
	if err := c.Bind(&req); err != nil {
		return NewAPIError(http.StatusBadRequest, CodeValidationError, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return NewAPIError(http.StatusBadRequest, CodeValidationError, err.Error())
	}

	user, err := h.userService.UpsertFromIdentity(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Auth callback upsert failed", "error", err, "user_id", req.ID)
		return FromDomain(err)
	}

	return c.JSON(http.StatusOK, user)
}

// Me returns the authenticated user's record.
func (h *AuthHandler) Me(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return Unauthorized()
	}

	return c.JSON(http.StatusOK, user)
}

// CurrentUser extracts the session user placed in the request context by
// the session middleware. Returns nil when the request is unauthenticated.
func CurrentUser(c echo.Context) *entities.User {
	user, ok := c.Get(userContextKey).(*entities.User)
	if !ok {
		return nil
	}
	return user
}

// SetCurrentUser stores the session user in the request context.
func SetCurrentUser(c echo.Context, user *entities.User) {
	c.Set(userContextKey, user)
}
