package middleware

import (
	"net/http"
	"strings"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Header carrying the programmatic credential.
	HeaderAPIKey = "X-API-Key"
	// Header carrying the gateway webhook signature.
	HeaderSignature = "X-Signature"

	// Context keys
	CtxRequestID = "request_id"
	CtxUser      = "user"
	CtxAuthKind  = "auth_kind"
)

// RequestID assigns every request an id, echoed in responses and logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Authenticate resolves the request's credential. A Bearer session token
// and an X-API-Key header are both accepted; the session wins when both
// are present. requiredPermission is enforced only for API keys, "" skips
// the check entirely.
func Authenticate(authSvc ports.AuthService, requiredPermission domain.Permission, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := bearerToken(c.GetHeader("Authorization"))
		apiKey := c.GetHeader(HeaderAPIKey)

		user, kind, err := authSvc.Resolve(c.Request.Context(), sessionToken, apiKey, requiredPermission)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxAuthKind, kind)
		c.Next()
	}
}

// SessionOnly rejects requests that authenticated with an API key.
// Key management routes never accept the keys they manage.
func SessionOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if kind, ok := c.Get(CtxAuthKind); !ok || kind.(ports.AuthKind) != ports.AuthKindSession {
			response.Error(c, apperror.New("AUTH_001", "Session authentication required", http.StatusUnauthorized))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Authenticate.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(CtxRequestID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
