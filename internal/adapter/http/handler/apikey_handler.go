package handler

import (
	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/adapter/http/middleware"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIKeyHandler handles programmatic credential management. These routes
// only ever run behind session authentication.
type APIKeyHandler struct {
	keySvc ports.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(keySvc ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keySvc: keySvc}
}

// Create handles POST /api/v1/keys.
func (h *APIKeyHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	secret, key, err := h.keySvc.Issue(c.Request.Context(), user.ID, req.Name, req.Permissions, req.Expiry)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.IssuedAPIKeyResponse{
		Secret: secret,
		Key:    dto.ToAPIKeyResponse(key),
	})
}

// List handles GET /api/v1/keys.
func (h *APIKeyHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	keys, err := h.keySvc.List(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.APIKeyResponse, 0, len(keys))
	for i := range keys {
		out = append(out, dto.ToAPIKeyResponse(&keys[i]))
	}
	response.OK(c, out)
}

// Rollover handles POST /api/v1/keys/:id/rollover.
func (h *APIKeyHandler) Rollover(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrAPIKeyNotFound())
		return
	}

	var req dto.RolloverAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	secret, key, err := h.keySvc.Rollover(c.Request.Context(), user.ID, keyID, req.Expiry)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.IssuedAPIKeyResponse{
		Secret: secret,
		Key:    dto.ToAPIKeyResponse(key),
	})
}

// Revoke handles DELETE /api/v1/keys/:id.
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrAPIKeyNotFound())
		return
	}

	if err := h.keySvc.Revoke(c.Request.Context(), user.ID, keyID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"revoked": true})
}
