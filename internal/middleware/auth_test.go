package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: uid, Claims: map[string]any{"email": uid + "@example.com"}}, nil
}

func protected(t *testing.T) http.Handler {
	t.Helper()
	return WithAuth(fakeVerifier{"good": "u1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		au, ok := GetAuthUser(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(au.UID + " " + au.Email))
	}))
}

func TestWithAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "bearer header", header: "Bearer good", status: http.StatusOK, body: "u1 u1@example.com"},
		{name: "lowercase scheme", header: "bearer good", status: http.StatusOK, body: "u1 u1@example.com"},
		{name: "query token", query: "?token=good", status: http.StatusOK, body: "u1 u1@example.com"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(map[string]any{"admin": true}))
	assert.True(t, IsAdmin(map[string]any{"role": "admin"}))
	assert.False(t, IsAdmin(map[string]any{"role": "player"}))
	assert.False(t, IsAdmin(nil))
}
