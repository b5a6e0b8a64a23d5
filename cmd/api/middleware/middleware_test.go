package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/auth"
	"yt-summary/cmd/api/services"
	"yt-summary/cmd/api/services/servicetest"
)

func TestRateLimiterPerClient(t *testing.T) {
	l := NewRateLimiter(1, 2)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per client")

	fixed = fixed.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refills per second")
}

func TestRateLimiterDropsIdleClients(t *testing.T) {
	l := NewRateLimiter(1, 1)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.Allow("a")
	fixed = fixed.Add(11 * time.Minute)
	l.Allow("b")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "b")
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(0.001, 1).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRequestTraceSetsHeadersAndRestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace())

	var seenBody, seenRequestID string
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		seenBody = string(b)
		seenRequestID = c.GetHeader(headerRequestID)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"youtube_video_url":"x"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, `{"youtube_video_url":"x"}`, seenBody)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
	assert.Equal(t, w.Header().Get(headerRequestID), seenRequestID)
	assert.Equal(t, "0", w.Header().Get(headerSpanID))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{}"))
	req.Header.Set(headerRequestID, "given-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get(headerRequestID))
}

func TestSnippetRedactsPasswords(t *testing.T) {
	assert.Equal(t, "[redacted]", snippet([]byte(`{"email":"a@b.c","Password":"secret"}`)))
	assert.Equal(t, "", snippet(nil))
	assert.Len(t, snippet([]byte(strings.Repeat("a", 2000))), maxBodyLog)
}

func TestUserAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	manager := auth.NewJWTManager("test-secret", "test", time.Hour)
	authSvc := services.NewAuthService(servicetest.NewDB().Users(), manager)

	r := gin.New()
	r.GET("/me", UserAuthMiddleware(authSvc), func(c *gin.Context) {
		id, ok := auth.UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.Hex())
	})

	userID := primitive.NewObjectID()
	token, err := manager.Sign(userID.Hex())
	require.NoError(t, err)

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "non object id subject", header: "Bearer " + mustSign(t, manager, "user-1"), wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: userID.Hex()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if testCase.header != "" {
				req.Header.Set("Authorization", testCase.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantStatus, w.Code)
			if testCase.wantBody != "" {
				assert.Equal(t, testCase.wantBody, w.Body.String())
			}
		})
	}
}

func mustSign(t *testing.T, m *auth.JWTManager, sub string) string {
	t.Helper()
	token, err := m.Sign(sub)
	require.NoError(t, err)
	return token
}
