package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/core/ports/mocks"
	"wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(authSvc ports.AuthService, required domain.Permission) *gin.Engine {
	r := gin.New()
	r.GET("/test", Authenticate(authSvc, required, zerolog.Nop()), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		kind, _ := c.Get(CtxAuthKind)
		c.JSON(200, gin.H{"user_id": user.ID.String(), "kind": kind})
	})
	return r
}

func TestAuthenticate_NoCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authSvc := mocks.NewMockAuthService(ctrl)
	authSvc.EXPECT().Resolve(gomock.Any(), "", "", domain.Permission("")).
		Return(nil, ports.AuthKind(""), apperror.ErrMissingCredential())

	router := authRouter(authSvc, "")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestAuthenticate_SessionToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &domain.User{ID: uuid.New(), Email: "ada@example.com"}
	authSvc := mocks.NewMockAuthService(ctrl)
	authSvc.EXPECT().Resolve(gomock.Any(), "session-token", "", domain.Permission("")).
		Return(user, ports.AuthKindSession, nil)

	router := authRouter(authSvc, "")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
}

func TestAuthenticate_APIKeyWithPermission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &domain.User{ID: uuid.New()}
	authSvc := mocks.NewMockAuthService(ctrl)
	authSvc.EXPECT().Resolve(gomock.Any(), "", "wsk_secret", domain.PermissionTransfer).
		Return(user, ports.AuthKindAPIKey, nil)

	router := authRouter(authSvc, domain.PermissionTransfer)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAPIKey, "wsk_secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(ports.AuthKindAPIKey))
}

func TestAuthenticate_PermissionDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authSvc := mocks.NewMockAuthService(ctrl)
	authSvc.EXPECT().Resolve(gomock.Any(), "", "wsk_secret", domain.PermissionTransfer).
		Return(nil, ports.AuthKind(""), apperror.ErrMissingPermission("transfer"))

	router := authRouter(authSvc, domain.PermissionTransfer)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAPIKey, "wsk_secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}

func TestAuthenticate_MalformedBearerHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// A header that is not "Bearer ..." is treated as no session token.
	authSvc := mocks.NewMockAuthService(ctrl)
	authSvc.EXPECT().Resolve(gomock.Any(), "", "", domain.Permission("")).
		Return(nil, ports.AuthKind(""), apperror.ErrMissingCredential())

	router := authRouter(authSvc, "")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionOnly_RejectsAPIKeyAuth(t *testing.T) {
	r := gin.New()
	r.GET("/keys", func(c *gin.Context) {
		c.Set(CtxUser, &domain.User{ID: uuid.New()})
		c.Set(CtxAuthKind, ports.AuthKindAPIKey)
	}, SessionOnly(), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestSessionOnly_AllowsSessionAuth(t *testing.T) {
	r := gin.New()
	r.GET("/keys", func(c *gin.Context) {
		c.Set(CtxUser, &domain.User{ID: uuid.New()})
		c.Set(CtxAuthKind, ports.AuthKindSession)
	}, SessionOnly(), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"request_id": c.GetString(CtxRequestID)})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Contains(t, w.Body.String(), id)
}

func TestRequestID_PreservesInbound(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecovery_PanicRecovered(t *testing.T) {
	log := zerolog.Nop()

	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/panic", func(c *gin.Context) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SYS_001", resp["error_code"])
}
