package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
	"github.com/dmitrijs2005/cidadefoco/internal/logging"
)

// fakeBackend routes the endpoints the services touch and records calls.
type fakeBackend struct {
	liked   []string
	unliked []string
	deleted []string
	reports int
}

func (f *fakeBackend) router(t *testing.T) http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		var in models.NewUser
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		json.NewEncoder(w).Encode(models.User{ID: 10, Name: in.Name, Email: in.Email, Level: in.Level})
	})
	r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]models.User{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bruno"}})
	})
	r.Get("/publicacoes", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]models.Publication{
			{ID: 1, Description: "streetlight out", Likes: 3, CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
			{ID: 2, Description: "pothole", Likes: 0},
		})
	})
	r.Post("/publicacoes", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		_, _, err := req.FormFile("photo")
		require.NoError(t, err)
		json.NewEncoder(w).Encode(models.Publication{ID: 3, Description: req.FormValue("description")})
	})
	r.Post("/publicacoes/{id}/curtir", func(w http.ResponseWriter, req *http.Request) {
		f.liked = append(f.liked, chi.URLParam(req, "id"))
	})
	r.Post("/publicacoes/{id}/descurtir", func(w http.ResponseWriter, req *http.Request) {
		f.unliked = append(f.unliked, chi.URLParam(req, "id"))
	})
	r.Post("/upload", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		_, _, err := req.FormFile("image")
		require.NoError(t, err)
		json.NewEncoder(w).Encode(models.UploadResult{URL: "https://cdn.example/img1"})
	})
	r.Delete("/upload/{publicId}", func(w http.ResponseWriter, req *http.Request) {
		f.deleted = append(f.deleted, chi.URLParam(req, "publicId"))
	})
	r.Post("/report-problem", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		_, _, err := req.FormFile("photo")
		require.NoError(t, err)
		require.NotEmpty(t, req.FormValue("description"))
		f.reports++
	})

	return r
}

func setup(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.router(t))
	t.Cleanup(srv.Close)

	c := api.New(srv.URL,
		api.WithRetry(0, 0),
		api.WithLogger(logging.NewTextLogger(io.Discard, slog.LevelError)))
	return backend, c
}

func tempPhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))
	return path
}

func TestUserService_Create(t *testing.T) {
	_, c := setup(t)
	svc := NewUserService(c)

	u, err := svc.Create(context.Background(), models.NewUser{
		Name: "Ana", Email: "a@b.com", Password: "x", Level: models.LevelCommon,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), u.ID)
	require.Equal(t, "Ana", u.Name)
}

func TestUserService_List(t *testing.T) {
	_, c := setup(t)
	svc := NewUserService(c)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "Bruno", users[1].Name)
}

func TestPublicationService_List(t *testing.T) {
	_, c := setup(t)
	svc := NewPublicationService(c)

	pubs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pubs, 2)
	require.Equal(t, "streetlight out", pubs[0].Description)
	require.Equal(t, 3, pubs[0].Likes)
}

func TestPublicationService_Create(t *testing.T) {
	_, c := setup(t)
	svc := NewPublicationService(c)

	pub, err := svc.Create(context.Background(), tempPhoto(t), "broken bench")
	require.NoError(t, err)
	require.Equal(t, int64(3), pub.ID)
	require.Equal(t, "broken bench", pub.Description)
}

func TestPublicationService_LikeUnlike(t *testing.T) {
	backend, c := setup(t)
	svc := NewPublicationService(c)
	ctx := context.Background()

	require.NoError(t, svc.Like(ctx, 42))
	require.NoError(t, svc.Unlike(ctx, 42))
	require.Equal(t, []string{"42"}, backend.liked)
	require.Equal(t, []string{"42"}, backend.unliked)
}

func TestUploadService(t *testing.T) {
	backend, c := setup(t)
	svc := NewUploadService(c)
	ctx := context.Background()

	res, err := svc.UploadImage(ctx, tempPhoto(t))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/img1", res.URL)

	require.NoError(t, svc.DeleteImage(ctx, "img1"))
	require.Equal(t, []string{"img1"}, backend.deleted)
}

func TestProblemService_Report(t *testing.T) {
	backend, c := setup(t)
	svc := NewProblemService(c)

	require.NoError(t, svc.Report(context.Background(), tempPhoto(t), "fallen tree blocking the road"))
	require.Equal(t, 1, backend.reports)
}

func TestDefaultMessagesApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{}`)) // failure without a backend message
	}))
	defer srv.Close()

	c := api.New(srv.URL, api.WithRetry(0, 0))

	_, err := NewUserService(c).Create(context.Background(), models.NewUser{})
	require.EqualError(t, err, "could not create user")

	_, err = NewPublicationService(c).List(context.Background())
	require.EqualError(t, err, "could not load publications")
}

func TestBackendMessageWinsOverDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"mensagem":"email já cadastrado"}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, api.WithRetry(0, 0))

	_, err := NewUserService(c).Create(context.Background(), models.NewUser{Email: "a@b.com"})
	require.EqualError(t, err, "email já cadastrado")
}
