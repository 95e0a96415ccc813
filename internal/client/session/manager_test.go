package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/credstore"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
	"github.com/dmitrijs2005/cidadefoco/internal/logging"
)

// memStore is an in-memory credstore.Store for tests.
type memStore struct {
	mu         sync.Mutex
	m          map[string]string
	clearCalls int
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStore) SetAll(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.m[k] = v
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	s.m = make(map[string]string)
	return nil
}

func (s *memStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key]
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func newManager(t *testing.T, srvURL string) (*Manager, *memStore, *api.Client) {
	t.Helper()
	c := api.New(srvURL, api.WithRetry(0, 0), api.WithLogger(testLogger()))
	store := newMemStore()
	return NewManager(c, store, testLogger()), store, c
}

func TestLogin_Success(t *testing.T) {
	user := models.User{ID: 1, Name: "Ana", Email: "a@b.com", Level: models.LevelCommon}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])
		require.Equal(t, "x", body["password"])
		json.NewEncoder(w).Encode(models.AuthResponse{Token: "t1", User: user})
	}))
	defer srv.Close()

	m, store, c := newManager(t, srv.URL)

	resp, err := m.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	require.Equal(t, "t1", resp.Token)
	require.Equal(t, user, resp.User)

	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, "t1", c.Token())
	require.Equal(t, "t1", store.get(credstore.KeyToken))
	require.NotEmpty(t, store.get(credstore.KeyUser))
	require.Equal(t, "Ana", m.CachedUser().Name)
}

func TestLogin_BackendRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"mensagem":"invalid credentials"}`))
	}))
	defer srv.Close()

	m, store, c := newManager(t, srv.URL)

	_, err := m.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	require.Equal(t, "invalid credentials", err.Error(), "backend message must surface verbatim")

	require.Equal(t, StateAnonymous, m.State())
	require.Empty(t, c.Token())
	require.Empty(t, store.get(credstore.KeyToken))
}

func TestCurrentUser_NotAuthenticated(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	m, _, _ := newManager(t, srv.URL)

	_, err := m.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Equal(t, int32(0), hits.Load(), "must fail fast without a network call")
}

func TestCurrentUser_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/me", r.URL.Path)
		require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.User{ID: 1, Name: "Ana", Email: "a@b.com"})
	}))
	defer srv.Close()

	m, store, c := newManager(t, srv.URL)
	c.SetToken("t1")

	u, err := m.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ana", u.Name)
	require.Contains(t, store.get(credstore.KeyUser), `"Ana"`)
}

func TestCurrentUser_ExpiredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m, store, c := newManager(t, srv.URL)
	c.SetToken("stale")
	require.NoError(t, store.Set(context.Background(), credstore.KeyToken, "stale"))

	_, err := m.CurrentUser(context.Background())
	require.ErrorIs(t, err, api.ErrSessionExpired)

	require.Equal(t, StateSessionExpired, m.State())
	require.Empty(t, c.Token())
	require.Empty(t, store.get(credstore.KeyToken))
	require.Equal(t, 1, store.clearCalls, "exactly one teardown per 401")
}

func TestUpdateProfile_ValidationBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	m, _, c := newManager(t, srv.URL)
	c.SetToken("t1")
	ctx := context.Background()

	_, err := m.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: "new", ConfirmPassword: "new"})
	require.ErrorIs(t, err, ErrCurrentPasswordRequired)
	require.ErrorIs(t, err, ErrValidation)

	_, err = m.UpdateProfile(ctx, models.ProfileUpdate{CurrentPassword: "old", NewPassword: "new", ConfirmPassword: "other"})
	require.ErrorIs(t, err, ErrPasswordConfirmation)

	require.Equal(t, int32(0), hits.Load(), "validation errors are never sent to the network")
}

func TestUpdateProfile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/user/profile", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Novo Nome", body["nome"])
		_, hasConfirm := body["confirmarSenha"]
		require.False(t, hasConfirm, "confirmation must never leave the client")

		json.NewEncoder(w).Encode(models.User{ID: 1, Name: "Novo Nome", Email: "a@b.com"})
	}))
	defer srv.Close()

	m, _, c := newManager(t, srv.URL)
	c.SetToken("t1")

	u, err := m.UpdateProfile(context.Background(), models.ProfileUpdate{Name: "Novo Nome"})
	require.NoError(t, err)
	require.Equal(t, "Novo Nome", u.Name)
	require.Equal(t, "Novo Nome", m.CachedUser().Name)
}

func TestUpdateProfileImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/profile-image", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "https://cdn.example/me.jpg", body["imageUrl"])
		json.NewEncoder(w).Encode(models.User{ID: 1, ProfileImage: body["imageUrl"]})
	}))
	defer srv.Close()

	m, _, c := newManager(t, srv.URL)
	c.SetToken("t1")

	u, err := m.UpdateProfileImage(context.Background(), "https://cdn.example/me.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/me.jpg", u.ProfileImage)
}

func TestLogout_PurgesAndIsIdempotent(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	m, store, c := newManager(t, srv.URL)
	c.SetToken("t1")
	require.NoError(t, store.Set(context.Background(), credstore.KeyToken, "t1"))

	ctx := context.Background()
	require.NoError(t, m.Logout(ctx))
	require.NoError(t, m.Logout(ctx), "second logout must not fail")

	require.Equal(t, StateAnonymous, m.State())
	require.Empty(t, store.get(credstore.KeyToken))
	require.Nil(t, m.CachedUser())

	require.NoError(t, c.GetJSON(ctx, "/publicacoes", nil))
	require.Equal(t, []string{""}, gotAuth, "no Authorization header after logout")
}

func TestRestore_OpaqueToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	m, store, c := newManager(t, srv.URL)
	ctx := context.Background()
	require.NoError(t, store.SetAll(ctx, map[string]string{
		credstore.KeyToken: "opaque-token",
		credstore.KeyUser:  `{"idUser":1,"nome":"Ana"}`,
	}))

	require.NoError(t, m.Restore(ctx))
	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, "opaque-token", c.Token())
	require.Equal(t, "Ana", m.CachedUser().Name)
}

func TestRestore_NoToken(t *testing.T) {
	m, _, c := newManager(t, "http://unused")

	require.NoError(t, m.Restore(context.Background()))
	require.Equal(t, StateAnonymous, m.State())
	require.Empty(t, c.Token())
}

func TestRestore_ExpiredJWTIsPurged(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	token, err := expired.SignedString([]byte("k"))
	require.NoError(t, err)

	m, store, c := newManager(t, "http://unused")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, credstore.KeyToken, token))

	require.NoError(t, m.Restore(ctx))
	require.Equal(t, StateAnonymous, m.State())
	require.Empty(t, c.Token())
	require.Empty(t, store.get(credstore.KeyToken))
}

func TestRestore_ValidJWTKept(t *testing.T) {
	valid := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := valid.SignedString([]byte("k"))
	require.NoError(t, err)

	m, store, c := newManager(t, "http://unused")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, credstore.KeyToken, token))

	require.NoError(t, m.Restore(ctx))
	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, token, c.Token())
}
