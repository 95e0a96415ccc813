// Package cli implements the interactive Cidade em Foco client: a REPL over
// the session manager and the domain services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/config"
	"github.com/dmitrijs2005/cidadefoco/internal/client/credstore"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
	"github.com/dmitrijs2005/cidadefoco/internal/client/services"
	"github.com/dmitrijs2005/cidadefoco/internal/client/session"
	"github.com/dmitrijs2005/cidadefoco/internal/filex"
	"github.com/dmitrijs2005/cidadefoco/internal/logging"

	_ "modernc.org/sqlite"
)

// sessionManager is the slice of session.Manager the CLI needs; tests provide
// a lightweight stub.
type sessionManager interface {
	State() session.State
	CachedUser() *models.User
	Restore(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	UpdateProfileImage(ctx context.Context, imageURL string) (*models.User, error)
	Logout(ctx context.Context) error
}

type App struct {
	config  *config.Config
	log     logging.Logger
	session sessionManager

	users    services.UserService
	pubs     services.PublicationService
	uploads  services.UploadService
	problems services.ProblemService

	store  *credstore.SQLiteStore
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing credential store path: %w", err)
	}

	store, err := credstore.Open(context.Background(), cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error opening credential store: %w", err)
	}

	apiClient := api.New(cfg.BaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRetry(cfg.RetryCount, cfg.RetryDelay),
		api.WithLogger(log))

	return &App{
		config:   cfg,
		log:      log,
		session:  session.NewManager(apiClient, store, log),
		users:    services.NewUserService(apiClient),
		pubs:     services.NewPublicationService(apiClient),
		uploads:  services.NewUploadService(apiClient),
		problems: services.NewProblemService(apiClient),
		store:    store,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// Run restores a persisted session, waits for the backend to be reachable,
// and hands control to the REPL.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}

	if err := a.waitForServer(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	return nil
}

// waitForServer probes the feed endpoint at startup. While the backend
// reports itself unavailable the user is asked whether to re-check; any other
// outcome (success or a different failure) lets the REPL start.
func (a *App) waitForServer(ctx context.Context) error {
	for {
		_, err := a.pubs.List(ctx)
		if err == nil || !errors.Is(err, api.ErrServerUnavailable) {
			return nil
		}

		fmt.Fprintln(a.out, err)
		answer, rerr := getSimpleText(a.reader, "Try again? (y/n)", a.out)
		if rerr != nil {
			return rerr
		}
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			return err
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

// status feeds the REPL prompt.
func (a *App) status() string {
	if u := a.session.CachedUser(); u != nil {
		return u.Email
	}
	if a.session.State() == session.StateSessionExpired {
		return "session expired"
	}
	return "not logged in"
}
