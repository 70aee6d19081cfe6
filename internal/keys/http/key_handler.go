// Package http provides HTTP handlers for signing key administration and the public JWKS.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/authserver/internal/errors"
	"github.com/allisson/authserver/internal/httputil"
	keysDomain "github.com/allisson/authserver/internal/keys/domain"
	"github.com/allisson/authserver/internal/keys/http/dto"
	keysUseCase "github.com/allisson/authserver/internal/keys/usecase"
)

// JWKSCacheControl is sent with the public key set.
const JWKSCacheControl = "public, max-age=300"

// KeyHandler handles HTTP requests for signing keys.
type KeyHandler struct {
	keyUseCase keysUseCase.KeyUseCase
	logger     *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(keyUseCase keysUseCase.KeyUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// CreateHandler generates a new signing key.
// POST /v1/keys - Requires the admin token.
// Returns 201 Created with the new key id.
func (h *KeyHandler) CreateHandler(c *gin.Context) {
	summary, err := h.keyUseCase.Create(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("signing key created", slog.String("key_id", summary.ID))
	c.JSON(http.StatusCreated, dto.KeyIDResponse{ID: summary.ID})
}

// ListHandler lists the published keys.
// GET /v1/keys - Requires the admin token.
func (h *KeyHandler) ListHandler(c *gin.Context) {
	summaries, err := h.keyUseCase.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapSummariesToListResponse(summaries))
}

// DeleteHandler removes the key named by the key_id route parameter.
// DELETE /v1/keys/:key_id - Requires the admin token.
func (h *KeyHandler) DeleteHandler(c *gin.Context) {
	keyID, err := h.keyUseCase.Delete(c.Request.Context(), c.Param("key_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("signing key deleted", slog.String("key_id", keyID))
	c.JSON(http.StatusOK, dto.KeyIDResponse{ID: keyID})
}

// DeleteOldestHandler removes the oldest key.
// DELETE /v1/keys - Requires the admin token.
func (h *KeyHandler) DeleteOldestHandler(c *gin.Context) {
	keyID, err := h.keyUseCase.DeleteOldest(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.logger.Info("oldest signing key deleted", slog.String("key_id", keyID))
	c.JSON(http.StatusOK, dto.KeyIDResponse{ID: keyID})
}

// JWKSHandler serves the public key set.
// GET /.well-known/jwks.json - Public.
func (h *KeyHandler) JWKSHandler(c *gin.Context) {
	jwks, err := h.keyUseCase.JWKS(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Cache-Control", JWKSCacheControl)
	c.JSON(http.StatusOK, jwks)
}

func (h *KeyHandler) handleError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, keysDomain.ErrLastKeyProtected):
		httputil.HandleInputErrorsGin(
			c,
			http.StatusUnprocessableEntity,
			map[string]string{"id": keysDomain.LastKeyProtectedMessage},
			h.logger,
		)
	case apperrors.Is(err, keysDomain.ErrKeyStoreCorrupt), apperrors.Is(err, keysDomain.ErrKeyStoreInconsistent):
		h.logger.Error("key store unusable", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, httputil.ErrorResponse{
			Error:   "key_store_error",
			Message: err.Error(),
		})
	default:
		httputil.HandleErrorGin(c, err, h.logger)
	}
}
