package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/shared"
)

func requestWithRole(t *testing.T, role string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("7", role)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireDeniesMissingPermission(t *testing.T) {
	mw := rbac.Middleware{}
	called := false
	handler := mw.Require(rbac.PermEventsApprove)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithRole(t, "employee"))
	require.Equal(t, http.StatusForbidden, res.Code)
	require.False(t, called)
}

func TestRequireAllowsGrantedPermission(t *testing.T) {
	mw := rbac.Middleware{}
	called := false
	handler := mw.Require(rbac.PermEventsApprove)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithRole(t, "manager"))
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, called)
}

func TestRequireDeniesAnonymous(t *testing.T) {
	mw := rbac.Middleware{}
	handler := mw.Require(rbac.PermEventsCreate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyAcceptsEitherGrant(t *testing.T) {
	mw := rbac.Middleware{}
	handler := mw.RequireAny(rbac.PermEventsViewAll, rbac.PermEventsViewOwn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithRole(t, "employee"))
	require.Equal(t, http.StatusNoContent, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithRole(t, "auditor"))
	require.Equal(t, http.StatusNoContent, res.Code)
}
