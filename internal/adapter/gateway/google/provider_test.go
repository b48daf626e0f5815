package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wallet-service/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T, handler http.Handler) (*Provider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewProvider(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
	}, zerolog.Nop())
	p.oauth.Endpoint.AuthURL = srv.URL + "/auth"
	p.oauth.Endpoint.TokenURL = srv.URL + "/token"
	p.userinfoURL = srv.URL + "/userinfo"
	return p, srv
}

func TestProvider_AuthURL(t *testing.T) {
	p, srv := testProvider(t, http.NotFoundHandler())

	url := p.AuthURL("csrf-state")
	assert.True(t, strings.HasPrefix(url, srv.URL+"/auth"))
	assert.Contains(t, url, "state=csrf-state")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "scope=openid+email+profile")
}

func TestProvider_Exchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"google-sub-1","email":"ada@example.com","name":"Ada Lovelace"}`))
	})
	p, _ := testProvider(t, mux)

	identity, err := p.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", identity.SubjectID)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, "Ada Lovelace", identity.Name)
}

func TestProvider_Exchange_BadCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	p, _ := testProvider(t, mux)

	identity, err := p.Exchange(context.Background(), "stale-code")
	assert.Nil(t, identity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchanging authorization code")
}

func TestProvider_Exchange_UserinfoFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	p, _ := testProvider(t, mux)

	identity, err := p.Exchange(context.Background(), "auth-code")
	assert.Nil(t, identity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userinfo")
}

func TestProvider_Exchange_MissingSubject(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"ada@example.com"}`))
	})
	p, _ := testProvider(t, mux)

	_, err := p.Exchange(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subject id")
}
