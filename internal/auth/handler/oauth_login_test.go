package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tianea2160/discipline/internal/auth/provider"
	"github.com/Tianea2160/discipline/internal/session"
	"github.com/Tianea2160/discipline/internal/token"
	"github.com/Tianea2160/discipline/internal/user"
)

type fakeUserStore struct {
	nextID int64
	users  map[int64]user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]user.User{}}
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByProviderSubject(_ context.Context, prov, providerID string) (*user.User, error) {
	for _, u := range s.users {
		if u.Provider == prov && u.ProviderID == providerID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByEmailAndProvider(_ context.Context, email, prov string) (*user.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.Provider == prov {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) Create(_ context.Context, u user.User) (*user.User, error) {
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return &u, nil
}

func (s *fakeUserStore) Update(_ context.Context, u user.User) (*user.User, error) {
	s.users[u.ID] = u
	return &u, nil
}

type fakeSessionStore struct {
	sessions map[string]session.Session
	deleted  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]session.Session{}}
}

func (s *fakeSessionStore) Create(_ context.Context, sess session.Session) error {
	s.sessions[sess.SessionID] = sess
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, sessionID string) (*session.Session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	s.deleted = append(s.deleted, sessionID)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeUserStore, *fakeSessionStore, *token.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	userStore := newFakeUserStore()
	sessionStore := newFakeSessionStore()
	h := NewHandler(provider.NewRegistry(), sessionStore, user.NewService(userStore), codec)

	router := gin.New()
	h.RegisterRoutes(router)
	return router, userStore, sessionStore, codec
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuthLoginCreatesUserAndIssuesToken(t *testing.T) {
	router, userStore, _, codec := newTestRouter(t)

	w := postJSON(router, "/api/auth/oauth/login", `{
		"provider": "google",
		"providerId": "g-123",
		"email": "a@gmail.com",
		"name": "Alice",
		"picture": "https://img/p.png"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp oauthLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.True(t, resp.IsNewUser)
	assert.Equal(t, "new account created", resp.Message)
	assert.Equal(t, "a@gmail.com", resp.User.Email)
	assert.Equal(t, []string{"USER"}, resp.User.Roles)
	assert.False(t, resp.User.IsAdmin)
	require.Len(t, userStore.users, 1)

	claims, err := codec.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@gmail.com", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "google", claims.Provider)
	assert.Equal(t, "g-123", claims.ProviderID)
}

func TestOAuthLoginExistingUser(t *testing.T) {
	router, userStore, _, _ := newTestRouter(t)

	body := `{"provider": "google", "providerId": "g-123", "email": "a@gmail.com", "name": "Alice"}`
	require.Equal(t, http.StatusOK, postJSON(router, "/api/auth/oauth/login", body).Code)

	w := postJSON(router, "/api/auth/oauth/login", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp oauthLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsNewUser)
	assert.Equal(t, "login succeeded", resp.Message)
	assert.Len(t, userStore.users, 1)
}

func TestOAuthLoginValidation(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing provider", `{"providerId": "g-1", "email": "a@x.com", "name": "A"}`},
		{"invalid email", `{"provider": "google", "providerId": "g-1", "email": "nope", "name": "A"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/auth/oauth/login", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLoginUnknownProvider(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/login/github", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutDeletesSessionAndClearsCookie(t *testing.T) {
	router, _, sessionStore, _ := newTestRouter(t)
	require.NoError(t, sessionStore.Create(context.Background(), session.Session{
		SessionID: "sess-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sess-1"}, sessionStore.deleted)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestLogoutWithoutSessionStillSucceeds(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}
