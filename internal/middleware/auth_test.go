package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/scooter-rental/internal/auth"
	"github.com/ukydev/scooter-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, svc *auth.Service, role models.Role) string {
	t.Helper()
	token, err := svc.GenerateToken(&models.User{ID: primitive.NewObjectID(), Email: "x@rental.test", Role: role})
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour, nil, nil)
	m := NewAuthMiddleware(svc)

	router := gin.New()
	router.GET("/protected", m.Authenticate(), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(claims.Role))
	})

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, svc, models.RoleStaff))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "staff", w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("foreign token", func(t *testing.T) {
		other := auth.NewService("other-secret", time.Hour, nil, nil)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, models.RoleAdmin))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour, nil, nil)
	m := NewAuthMiddleware(svc)

	router := gin.New()
	router.DELETE("/things/:id", m.Authenticate(), m.RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/bookings", m.Authenticate(), m.RequirePermission(models.ActionViewBookings), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		method string
		path   string
		role   models.Role
		want   int
	}{
		{"admin deletes", http.MethodDelete, "/things/1", models.RoleAdmin, http.StatusNoContent},
		{"staff cannot delete", http.MethodDelete, "/things/1", models.RoleStaff, http.StatusForbidden},
		{"staff views bookings", http.MethodGet, "/bookings", models.RoleStaff, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, svc, tt.role))
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, l.Allow("1.2.3.4", now))
	assert.True(t, l.Allow("1.2.3.4", now))
	assert.False(t, l.Allow("1.2.3.4", now))
	assert.True(t, l.Allow("5.6.7.8", now))
	assert.True(t, l.Allow("1.2.3.4", now.Add(61*time.Second)))
	assert.NotContains(t, l.requests, "5.6.7.8", "idle clients are forgotten")
	assert.Contains(t, l.requests, "1.2.3.4")

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), now.Add(2*time.Minute))
	}
	l.Allow("1.2.3.4", now.Add(4*time.Minute))
	assert.Len(t, l.requests, 1)

	router := gin.New()
	router.POST("/bookings", NewRateLimiter(1, time.Minute).Handler(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(RequestID(), Logger(logger), Recovery(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	out, _ := io.ReadAll(&buf)
	assert.Contains(t, string(out), "panic recovered")
}
