package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRender(t *testing.T) {
	status, body := Render(errors.New(errors.ErrCodeEmptyFile, "Empty file."))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrorBody{Detail: "Empty file.", Code: string(errors.ErrCodeEmptyFile)}, body)

	status, body = Render(errors.New(errors.ErrCodeDatabaseError, "pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error.", body.Detail)

	status, _ = Render(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = Render(errors.Wrap(context.DeadlineExceeded, errors.ErrCodeSearchError, "search"))
	assert.Equal(t, http.StatusGatewayTimeout, status)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), logging.RequestIDFromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = perform(r, http.MethodGet, "/", nil)
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RequestID(), Recovery(logging.NewLoggerFromCore(core)))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error.","code":"COMMON_001"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestRequestLogging_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogging(logging.NewLoggerFromCore(core), DefaultLoggingConfig()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) {
		AbortWithError(c, errors.New(errors.ErrCodeNoText, "No text found in document."))
	})
	r.GET("/fail", func(c *gin.Context) { AbortWithError(c, errors.New(errors.ErrCodeDatabaseError, "down")) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/ok?x=1", nil)
	perform(r, http.MethodGet, "/bad", nil)
	perform(r, http.MethodGet, "/fail", nil)
	perform(r, http.MethodGet, "/healthz", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Contains(t, entries[2].ContextMap()["error"], "down")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/x", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = perform(r, http.MethodGet, "/x", nil)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://portal.example.com"}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://portal.example.com"})
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type stubVerifier struct {
	claims *token.Claims
	err    error
	raw    string
}

func (s *stubVerifier) VerifyToken(_ context.Context, raw string) (*token.Claims, error) {
	s.raw = raw
	return s.claims, s.err
}

func TestAuth(t *testing.T) {
	uid, tid := uuid.New(), uuid.New()
	claims := &token.Claims{TenantID: tid.String()}
	claims.Subject = uid.String()
	v := &stubVerifier{claims: claims}

	r := gin.New()
	r.Use(Auth(v))
	r.GET("/me", func(c *gin.Context) {
		id, err := IdentityFrom(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"user": id.UserID, "tenant": id.TenantID})
	})

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated","code":"COMMON_003"}`, w.Body.String())
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "bearer tok-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-1", v.raw)
	assert.Contains(t, w.Body.String(), tid.String())

	v.err = errors.New(errors.ErrCodeTokenExpired, "token has expired")
	w = perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer tok-2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeTokenExpired))
}

func TestIdentityFrom_NoClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := IdentityFrom(c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
}

type stubLimiter struct {
	res  redis.RateLimitResult
	err  error
	keys []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (redis.RateLimitResult, error) {
	s.keys = append(s.keys, key)
	return s.res, s.err
}

func TestRateLimit(t *testing.T) {
	l := &stubLimiter{res: redis.RateLimitResult{Allowed: true, Limit: 10, Remaining: 9}}
	r := gin.New()
	r.Use(RateLimit(l, logging.NewNopLogger()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "ip:192.0.2.1", l.keys[0])

	l.res = redis.RateLimitResult{Allowed: false, Limit: 10, ResetIn: 1500 * time.Millisecond}
	w = perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	l.err = assert.AnError
	w = perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_KeysByTenant(t *testing.T) {
	tid := uuid.New()
	claims := &token.Claims{TenantID: tid.String()}
	claims.Subject = uuid.NewString()
	l := &stubLimiter{res: redis.RateLimitResult{Allowed: true, Limit: 1, Remaining: 0}}

	r := gin.New()
	r.Use(Auth(&stubVerifier{claims: claims}), RateLimit(l, logging.NewNopLogger()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/x", map[string]string{"Authorization": "Bearer t"})
	require.Len(t, l.keys, 1)
	assert.Equal(t, "tenant:"+tid.String(), l.keys[0])
}

type recordingMetrics struct {
	paths  []string
	active int
}

func (m *recordingMetrics) RecordHTTPRequest(_, path string, _ int, _ time.Duration) {
	m.paths = append(m.paths, path)
}

func (m *recordingMetrics) TrackActive(string) func() {
	m.active++
	return func() { m.active-- }
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := &recordingMetrics{}
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/documents/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/documents/"+uuid.NewString(), nil)
	perform(r, http.MethodGet, "/nope", nil)
	assert.Equal(t, []string{"/documents/:id", "unmatched"}, m.paths)
	assert.Equal(t, 0, m.active)
}
