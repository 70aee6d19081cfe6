// Package http provides the HTTP handlers and middleware for login and user administration.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	"github.com/allisson/authserver/internal/auth/http/dto"
	authUseCase "github.com/allisson/authserver/internal/auth/usecase"
	"github.com/allisson/authserver/internal/httputil"
)

// TenantIDParam is the route parameter holding the tenant id in multi-tenant mode.
const TenantIDParam = "tenant_id"

// InvalidBodyMessage is reported when the login body is not a JSON object.
const InvalidBodyMessage = "Request body must be a JSON object."

// LoginHandler handles password logins.
type LoginHandler struct {
	loginUseCase authUseCase.LoginUseCase
	logger       *slog.Logger
}

// NewLoginHandler creates a new login handler with required dependencies.
func NewLoginHandler(loginUseCase authUseCase.LoginUseCase, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		loginUseCase: loginUseCase,
		logger:       logger,
	}
}

// LoginHandler authenticates a user and issues a signed token.
// POST /v1/login or POST /v1/tenants/:tenant_id/login - No authentication required.
// Returns 200 OK with {token, expires_at}. Every rejection is 404 so that callers cannot
// tell which part of the request was wrong.
func (h *LoginHandler) LoginHandler(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		httputil.HandleInputErrorsGin(c, http.StatusNotFound, map[string]string{"body": InvalidBodyMessage}, h.logger)
		return
	}

	output, err := h.loginUseCase.Login(c.Request.Context(), authDomain.LoginInput{
		Body:     body,
		TenantID: c.Param(TenantIDParam),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: output.Token, ExpiresAt: output.ExpiresAt})
}

func (h *LoginHandler) handleError(c *gin.Context, err error) {
	var inputErrors *authDomain.InputErrors
	var lockedErr *authDomain.AccountLockedError
	var rejectedErr *authDomain.LoginRejectedError

	switch {
	case errors.As(err, &inputErrors):
		httputil.HandleInputErrorsGin(c, http.StatusNotFound, inputErrors.Fields, h.logger)
	case errors.As(err, &lockedErr):
		h.reject(c, lockedErr.Error(), err)
	case errors.As(err, &rejectedErr):
		h.reject(c, rejectedErr.Reason, err)
	case errors.Is(err, authDomain.ErrInvalidCredentials):
		h.reject(c, authDomain.InvalidCredentialsMessage, err)
	default:
		httputil.HandleErrorGin(c, err, h.logger)
	}
}

func (h *LoginHandler) reject(c *gin.Context, message string, err error) {
	h.logger.Info("login rejected", slog.String("outcome", authUseCase.LoginOutcome(err)))
	c.JSON(http.StatusNotFound, dto.LoginErrorResponse{Error: message})
}
