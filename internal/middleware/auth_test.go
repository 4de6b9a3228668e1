package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"grocery-mart/internal/auth"
	"grocery-mart/internal/auth/mocks"
	"grocery-mart/internal/models"
)

type stubResolver struct {
	role string
	err  error
}

func (r stubResolver) Resolve(_ context.Context, id *auth.Identity) (*models.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &models.Session{UserID: id.UID, Email: id.Email, Role: r.role}, nil
}

func newRouter(v auth.Verifier, r SessionResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Authenticate(v, r)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": SessionFrom(c).UserID})
	})
	router.GET("/me", handlers...)
	return router
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		header   string
		setup    func(m *mocks.MockVerifier)
		resolver stubResolver
		want     int
	}{
		{
			name:   "missing token",
			target: "/me",
			setup:  func(m *mocks.MockVerifier) {},
			want:   http.StatusUnauthorized,
		},
		{
			name:   "bearer header",
			target: "/me",
			header: "Bearer good",
			setup: func(m *mocks.MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), "good").Return(&auth.Identity{UID: "u1"}, nil)
			},
			resolver: stubResolver{role: models.RoleUser},
			want:     http.StatusOK,
		},
		{
			name:   "query token",
			target: "/me?token=good",
			setup: func(m *mocks.MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), "good").Return(&auth.Identity{UID: "u1"}, nil)
			},
			resolver: stubResolver{role: models.RoleUser},
			want:     http.StatusOK,
		},
		{
			name:   "rejected token",
			target: "/me",
			header: "Bearer bad",
			setup: func(m *mocks.MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), "bad").Return(nil, auth.ErrInvalidToken)
			},
			want: http.StatusUnauthorized,
		},
		{
			name:   "resolver failure",
			target: "/me",
			header: "Bearer good",
			setup: func(m *mocks.MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), "good").Return(&auth.Identity{UID: "u1"}, nil)
			},
			resolver: stubResolver{err: errors.New("db down")},
			want:     http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			v := mocks.NewMockVerifier(ctrl)
			tt.setup(v)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newRouter(v, tt.resolver).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := mocks.NewMockVerifier(ctrl)
	v.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(&auth.Identity{UID: "u1"}, nil).Times(2)

	for role, want := range map[string]int{
		models.RoleUser:  http.StatusForbidden,
		models.RoleAdmin: http.StatusOK,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer t")
		newRouter(v, stubResolver{role: role}, RequireRole(models.RoleAdmin)).ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}
