package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lossdesk/lossdesk/internal/auth"
	"github.com/lossdesk/lossdesk/internal/shared"
	_ "github.com/lossdesk/lossdesk/testing"
)

type stubRepo struct {
	user            *auth.User
	sessionsCreated int
	sessionsDeleted int
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessionsCreated++
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.sessionsDeleted++
	return nil
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), sessions, csrf)
	return handler, sessions
}

func doLogin(t *testing.T, handler *auth.Handler, sessions *shared.SessionManager, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.Login(res, req)
	require.NoError(t, sessions.Commit(ctx, res, req, sess))
	return res
}

func TestLoginSuccessBindsRole(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 9, Email: "manager@store.local", Role: "manager", PasswordHash: string(hashed), IsActive: true}}
	handler, sessions := newHandler(t, repo)

	res := doLogin(t, handler, sessions, `{"email":"manager@store.local","password":"correctpass"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "manager", body["role"])
	require.NotEmpty(t, body["csrf_token"])
	require.Equal(t, 1, repo.sessionsCreated)
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 1, Email: "user@store.local", Role: "employee", PasswordHash: string(hashed), IsActive: true}}
	handler, sessions := newHandler(t, repo)

	res := doLogin(t, handler, sessions, `{"email":"user@store.local","password":"wrongpass"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 2, Email: "old@store.local", Role: "employee", PasswordHash: string(hashed), IsActive: false}}
	handler, sessions := newHandler(t, repo)

	res := doLogin(t, handler, sessions, `{"email":"old@store.local","password":"correctpass"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{})
	res := doLogin(t, handler, sessions, `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}
