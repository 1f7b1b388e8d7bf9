package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklog/internal/handler"
	"worklog/internal/service"
	"worklog/internal/service/servicetest"
	"worklog/pkg/util"
)

const secret = "router-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type nopReplayer struct{}

func (nopReplayer) ReplayEvent(context.Context, int64) error            { return nil }
func (nopReplayer) ReplayFailedEvents(context.Context, int) (int, error) { return 0, nil }

func newTestRouter(opts Options) *Router {
	log := zap.NewNop()
	users := servicetest.NewUsers()
	projects := servicetest.NewProjects(1)
	phases := servicetest.NewPhases()
	logs := servicetest.NewWorkLogs()

	opts.JWTSecret = secret
	opts.Logger = log
	return NewRouter(Handlers{
		Auth:    handler.NewAuthHandler(service.NewAuthService(users, secret, 0, log), log),
		Project: handler.NewProjectHandler(service.NewProjectService(projects, servicetest.NewActivity(), nil, log), log),
		Phase:   handler.NewPhaseHandler(service.NewPhaseService(phases, projects, log), log),
		WorkLog: handler.NewWorkLogHandler(service.NewWorkLogService(logs, projects, phases, users, nil, log), log),
		Admin:   handler.NewAdminHandler(nopReplayer{}, log),
	}, opts)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(util.Identity{ID: 7, Email: "u@x.io", Role: role}, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(Options{}).Engine

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), handler.MsgNoToken)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("x-auth-token", "garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), handler.MsgInvalidToken)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "software_engineer"))
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Projects retrieved successfully")

}

func TestAdminRoutesRequireReplayPermission(t *testing.T) {
	r := newTestRouter(Options{}).Engine

	req := httptest.NewRequest(http.MethodPost, "/api/admin/outbox/replay?id=1", nil)
	req.Header.Set("x-auth-token", token(t, "project_manager"))
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/outbox/replay?id=1", nil)
	req.Header.Set("x-auth-token", token(t, "admin"))
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestViewerCannotWrite(t *testing.T) {
	r := newTestRouter(Options{}).Engine

	writes := []struct{ method, path, body string }{
		{http.MethodPost, "/api/projects", `{"name":"x"}`},
		{http.MethodPut, "/api/projects/1", `{"name":"y"}`},
		{http.MethodDelete, "/api/projects/1", ""},
		{http.MethodPost, "/api/phases", `{"project_id":1,"phase_name":"a","phase_order":1}`},
		{http.MethodPost, "/api/worklogs", `{"project_id":1,"work_description":"d"}`},
		{http.MethodDelete, "/api/worklogs/1", ""},
	}
	for _, tt := range writes {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-auth-token", token(t, "viewer"))
		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tt.method, tt.path)
		assert.Contains(t, w.Body.String(), handler.MsgPermissionDenied)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects/1", nil)
	req.Header.Set("x-auth-token", token(t, "viewer"))
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-auth-token", token(t, "software_engineer"))
	assert.Equal(t, http.StatusCreated, serve(r, req).Code)
}

func TestAuthRateLimit(t *testing.T) {
	r := newTestRouter(Options{AuthLimiter: NewRateLimiter(0.001, 2, zap.NewNop())}).Engine

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		codes = append(codes, serve(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	rl.getLimiter("a")
	rl.getLimiter("b")
	rl.limiters["a"].lastSeen = time.Now().Add(-2 * limiterIdleTTL)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Contains(t, rl.limiters, "b")
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(Options{DB: fakePinger{}}).Engine
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "Worklog API is running!")

	down := newTestRouter(Options{DB: fakePinger{err: errors.New("down")}}).Engine
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}

func TestTraceIDEchoed(t *testing.T) {
	r := newTestRouter(Options{}).Engine

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Header().Get("X-Trace-ID"))

	assert.NotEmpty(t, serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Header().Get("X-Trace-ID"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(Options{AllowedOrigins: []string{"http://app.test"}}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(h, req)

	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
}
