package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type staticAuth struct {
	token string
	user  uuid.UUID
}

func (s staticAuth) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	if token != s.token {
		return uuid.Nil, errors.New("bad token")
	}
	return s.user, nil
}

func newRouter(a Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).String())
	}
	r.GET("/api", AuthMiddleware(a), handler)
	r.GET("/ws", WSAuthMiddleware(a), handler)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	user := uuid.New()
	r := newRouter(staticAuth{token: "good", user: user})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/api", "", http.StatusUnauthorized},
		{"bad token", "/api", "Bearer bad", http.StatusUnauthorized},
		{"good header", "/api", "Bearer good", http.StatusOK},
		{"ws query", "/ws?token=good", "", http.StatusOK},
		{"ws header", "/ws", "Bearer good", http.StatusOK},
		{"ws missing", "/ws", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, user.String(), w.Body.String())
			}
		})
	}
}
