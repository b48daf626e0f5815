package handler

import (
	"net/http"

	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/adapter/http/middleware"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // seconds
)

// AuthHandler handles Google sign-in and account lifecycle endpoints.
type AuthHandler struct {
	authSvc   ports.AuthService
	ledgerSvc ports.LedgerService
	idp       ports.IdentityProvider
	log       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService, ledgerSvc ports.LedgerService, idp ports.IdentityProvider, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, ledgerSvc: ledgerSvc, idp: idp, log: log}
}

// GoogleLogin handles GET /api/v1/auth/google.
// It sets a CSRF state cookie and redirects to the consent page.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, h.idp.AuthURL(state))
}

// GoogleCallback handles GET /api/v1/auth/google/callback.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		response.Error(c, apperror.New("AUTH_002", "Identity provider denied the request", http.StatusUnauthorized))
		return
	}

	state := c.Query("state")
	cookieState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != cookieState {
		response.Error(c, apperror.ErrInvalidCredential())
		return
	}
	// State is single use.
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Error(c, apperror.Validation("missing authorization code"))
		return
	}

	identity, err := h.idp.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.Warn().Err(err).Msg("identity exchange failed")
		response.Error(c, apperror.Wrap("AUTH_002", "Invalid authentication credential", http.StatusUnauthorized, err))
		return
	}

	token, expiry, user, err := h.authSvc.LoginWithIdentity(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  token,
		Expiry: expiry.Unix(),
		User:   dto.ToUserResponse(user),
	})
}

// Me handles GET /api/v1/users/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}
	response.OK(c, dto.ToUserResponse(user))
}

// DeleteMe handles DELETE /api/v1/users/me. The account, its wallet,
// keys, and ledger rows are removed in one unit of work.
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperror.ErrMissingCredential())
		return
	}

	if err := h.ledgerSvc.DeleteUser(c.Request.Context(), user.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// HealthCheck handles GET /health, the deep check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
