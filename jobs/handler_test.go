package jobs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/shared"
	"github.com/lossdesk/lossdesk/jobs"
)

func newJobsRouter(t *testing.T, client *jobs.Client) http.Handler {
	t.Helper()
	handler := jobs.NewHandler(nil, client, rbac.Middleware{}, nil)
	r := chi.NewRouter()
	r.Route("/jobs", func(jr chi.Router) {
		handler.MountRoutes(jr)
	})
	return r
}

func requestAs(t *testing.T, method, target, role, body string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("7", role)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestJobsHealthRequiresAuditView(t *testing.T) {
	router := newJobsRouter(t, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusForbidden, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, requestAs(t, http.MethodGet, "/jobs/health", "employee", ""))
	require.Equal(t, http.StatusForbidden, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, requestAs(t, http.MethodGet, "/jobs/health", "auditor", ""))
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"queue":"default"`)
}

func TestExportDigestTriggerRequiresSettingsManage(t *testing.T) {
	router := newJobsRouter(t, nil)

	for _, role := range []string{"employee", "manager", "auditor"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, requestAs(t, http.MethodPost, "/jobs/export-digest", role, ""))
		require.Equal(t, http.StatusForbidden, res.Code, "role %s", role)
	}
}

func TestExportDigestTriggerWithoutClient(t *testing.T) {
	router := newJobsRouter(t, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, requestAs(t, http.MethodPost, "/jobs/export-digest", "owner", ""))
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestExportDigestTriggerRejectsBadPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	router := newJobsRouter(t, client)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, requestAs(t, http.MethodPost, "/jobs/export-digest", "owner", `{"window_hours":`))
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, requestAs(t, http.MethodPost, "/jobs/export-digest", "owner", `{"window_hours":-6}`))
	require.Equal(t, http.StatusBadRequest, res.Code)
}
