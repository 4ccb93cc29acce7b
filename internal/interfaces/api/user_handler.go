package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/logger"
)

// UserHandler exposes the users resource
type UserHandler struct {
	users *usecases.UserUseCase
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *usecases.UserUseCase) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes mounts the users resource on router
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/active", h.ListActiveUsers)
		users.GET("/telegram/:telegram_id", h.GetUserByTelegramID)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

// ListActiveUsers handles GET /users/active
func (h *UserHandler) ListActiveUsers(c *gin.Context) {
	users, err := h.users.ListActiveUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	u, err := h.users.GetUser(c.Request.Context(), user.ID(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// GetUserByTelegramID handles GET /users/telegram/:telegram_id
func (h *UserHandler) GetUserByTelegramID(c *gin.Context) {
	telegramID, ok := pathInt(c, "telegram_id")
	if !ok {
		return
	}

	u, err := h.users.GetUserByTelegramID(c.Request.Context(), user.TelegramID(telegramID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// CreateUser handles POST /users and answers 201 with the new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	u, err := h.users.CreateUser(c.Request.Context(), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	logger.Info().
		Str("request_id", getRequestID(c)).
		Int64("user_id", int64(u.ID())).
		Int64("telegram_id", int64(u.TelegramID())).
		Msg("User created")
	c.JSON(http.StatusCreated, toUserResponse(u))
}

// UpdateUser handles PUT /users/:id; absent fields are left unchanged
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	u, err := h.users.UpdateUser(c.Request.Context(), user.ID(id), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// DeleteUser answers 204 whether or not the user existed
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), user.ID(id)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathInt parses a positive integer path parameter, answering 422 otherwise
func pathInt(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			Detail: name + " must be a positive integer",
			Field:  name,
		})
		return 0, false
	}
	return value, true
}

// writeError maps the application error taxonomy onto status codes
func writeError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	detail := "Internal server error"
	field := ""
	if errors.As(err, &appErr) {
		detail = appErr.Message
		field = appErr.Field
	}

	switch {
	case apperror.IsValidation(err):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Detail: detail, Field: field})
	case apperror.IsNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Detail: detail})
	case apperror.IsConflict(err):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{Detail: detail})
	default:
		logger.Error().
			Err(err).
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
	}
}
