package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/auth"
	"github.com/eston/admissions/internal/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    dto.ErrorCode `json:"code"`
		Message string        `json:"message"`
		Field   string        `json:"field"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
		wantField   string
	}{
		{"duplicate application", apperrors.ErrApplicationAlreadyExists, http.StatusBadRequest, dto.ErrorCodeResourceAlreadyExists, "An application with this email already exists.", ""},
		{"decided application", apperrors.ErrApplicationDecided, http.StatusConflict, dto.ErrorCodeConflict, "Application has already been decided and can no longer change status", ""},
		{"course in use", apperrors.ErrCourseHasApplications, http.StatusConflict, dto.ErrorCodeConflict, "Cannot delete course with existing applications. Please deactivate it instead.", ""},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", ""},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired", ""},
		{"malformed token", auth.ErrInvalidToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", ""},
		{"disabled account", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "account is disabled", ""},
		{"not owner", apperrors.ErrNotApplicationOwner, http.StatusForbidden, dto.ErrorCodeForbidden, "You do not have access to this application", ""},
		{"not found", apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found", ""},
		{"field validation", apperrors.NewValidationError("status", "status must be one of pending, approved, rejected"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "status must be one of pending, approved, rejected", "status"},
		{"course unavailable", apperrors.ErrCourseUnavailable, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Selected course is not available", "courseId"},
		{"self delete", apperrors.ErrCannotDeleteSelf, http.StatusBadRequest, dto.ErrorCodeBadRequest, "You cannot delete your own account", ""},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/test", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.Equal(t, tt.wantField, body.Error.Field)
		})
	}
}

type fakeAuthenticator struct {
	users map[string]*models.AuthUser
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.AuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

func newAuthRouter(authenticator Authenticator) *gin.Engine {
	m := NewAuthMiddleware(authenticator)
	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "userID": c.GetInt64(UserIDKey)})
	})
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	authenticator := &fakeAuthenticator{users: map[string]*models.AuthUser{
		"student-token": {ID: 2, Email: "ama@example.com", Role: models.RoleStudent},
		"admin-token":   {ID: 1, Email: "admin@eston.edu.gh", Role: models.RoleAdmin},
	}}
	router := newAuthRouter(authenticator)

	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{name: "missing header", path: "/me", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeUnauthorized},
		{name: "wrong scheme", path: "/me", headers: map[string]string{"Authorization": "Basic abc"}, wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "unknown token", path: "/me", headers: map[string]string{"Authorization": "Bearer nope"}, wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "valid token", path: "/me", headers: map[string]string{"Authorization": "Bearer student-token"}, wantStatus: http.StatusOK},
		{name: "query token ignored on plain requests", path: "/me?token=student-token", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeUnauthorized},
		{name: "query token on upgrade", path: "/me?token=student-token", headers: map[string]string{"Upgrade": "websocket"}, wantStatus: http.StatusOK},
		{name: "student on admin route", path: "/admin", headers: map[string]string{"Authorization": "Bearer student-token"}, wantStatus: http.StatusForbidden, wantCode: dto.ErrorCodeForbidden},
		{name: "admin on admin route", path: "/admin", headers: map[string]string{"Authorization": "Bearer admin-token"}, wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestJWTAuth_ValidResponseCarriesCaller(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{users: map[string]*models.AuthUser{
		"t": {ID: 7, Role: models.RoleStudent},
	}})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"userID":7}`, w.Body.String())
}

func TestJWTAuth_DisabledAccount(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{err: apperrors.ErrAccountDisabled})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewKeyedLimiter(2, time.Minute)
	r := gin.New()
	r.POST("/login", RateLimit(limiter, "Too many login attempts, please try again later"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001").Code)

	w := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeTooManyRequests, body.Error.Code)
	assert.Equal(t, "Too many login attempts, please try again later", body.Error.Message)

	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code, "other clients keep their own budget")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"a":"b"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"a":"this body is far too long"}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000/, https://apply.eston.edu.gh"))
	r.GET("/api/courses", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", "https://apply.eston.edu.gh")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://apply.eston.edu.gh", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
