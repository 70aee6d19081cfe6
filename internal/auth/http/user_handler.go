package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/authserver/internal/auth/http/dto"
	authUseCase "github.com/allisson/authserver/internal/auth/usecase"
	"github.com/allisson/authserver/internal/httputil"
	customValidation "github.com/allisson/authserver/internal/validation"
)

// UserHandler handles HTTP requests for user administration.
type UserHandler struct {
	userUseCase       authUseCase.UserUseCase
	auditEventUseCase authUseCase.AuditEventUseCase
	logger            *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(
	userUseCase authUseCase.UserUseCase,
	auditEventUseCase authUseCase.AuditEventUseCase,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase:       userUseCase,
		auditEventUseCase: auditEventUseCase,
		logger:            logger,
	}
}

// CreateHandler creates a user.
// POST /v1/users - Requires the admin token. Returns 201 Created with the user.
func (h *UserHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// GetHandler retrieves a user.
// GET /v1/users/:user_id - Requires the admin token. Returns 200 OK with the user.
func (h *UserHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// SetPasswordHandler replaces the password of a user.
// PUT /v1/users/:user_id/password - Requires the admin token. Returns 204 No Content.
func (h *UserHandler) SetPasswordHandler(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.userUseCase.SetPassword(c.Request.Context(), id, req.Password); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAuditEventsHandler lists the audit events of a user, newest first.
// GET /v1/users/:user_id/audit-events?offset=0&limit=50 - Requires the admin token.
func (h *UserHandler) ListAuditEventsHandler(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.auditEventUseCase.ListBySubject(c.Request.Context(), id, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToListResponse(events))
}

func (h *UserHandler) parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid user_id format: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}
