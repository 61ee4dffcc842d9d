package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/authform"
	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/notes"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

type Screen string

const (
	ScreenAuth  Screen = "auth"
	ScreenNotes Screen = "notes"
)

type App struct {
	config *config.Config
	api    client.Client
	sess   session.Store
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer
	loc    *time.Location

	screen Screen
	auth   *authform.Controller
	notes  *notes.Controller
}

func NewApp(c *config.Config, api client.Client, sess session.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config: c,
		api:    api,
		sess:   sess,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
		loc:    time.Local,
		screen: ScreenAuth,
	}
	a.auth = authform.New(api, a.onLogin, log)
	return a
}

// Run routes to the screen matching the stored session and serves commands
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	a.println("Welcome to gophnotes (type 'help' for commands)")
	if err := a.Route(ctx); err != nil {
		return err
	}
	runREPL(ctx, a, a.prompt, a.reader, a.out)
	if a.notes != nil {
		a.notes.Close()
	}
	return nil
}

// Route shows the notes screen when a token is stored and the auth screen
// otherwise.
func (a *App) Route(ctx context.Context) error {
	_, ok, err := a.sess.Get(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if ok {
		a.showNotes(ctx)
	} else {
		a.showAuth()
	}
	return nil
}

func (a *App) Screen() Screen { return a.screen }

func (a *App) showAuth() {
	if a.notes != nil {
		a.notes.Close()
		a.notes = nil
	}
	a.auth.SetMode(authform.ModeSignIn)
	a.screen = ScreenAuth
	a.println("Sign in to your account. Type 'register' to create one.")
}

func (a *App) showNotes(ctx context.Context) {
	a.notes = notes.New(a.api, a.sess, a.onUnauthorized, a.log)
	a.screen = ScreenNotes

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.notes.Load(rctx); err != nil {
		if a.screen != ScreenNotes {
			return
		}
		a.println("Error fetching notes:", client.Message(err, authform.FallbackMessage))
	}
	a.printNotes()
}

// onLogin persists a fresh token and opens the notes screen.
func (a *App) onLogin(ctx context.Context, token string) error {
	if err := a.sess.Set(ctx, token, session.DefaultTTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.showNotes(ctx)
	return nil
}

// onUnauthorized ends a session the server no longer accepts.
func (a *App) onUnauthorized(ctx context.Context) {
	a.log.Warn(ctx, "session rejected by server, signing out")
	a.println("Your session has expired. Please sign in again.")
	a.signOut(ctx)
}

func (a *App) signOut(ctx context.Context) {
	if err := a.sess.Clear(ctx); err != nil {
		a.log.Error(ctx, "clear session", "error", err)
	}
	a.showAuth()
}

func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config != nil && a.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *App) prompt() string {
	if a.screen == ScreenAuth {
		return fmt.Sprintf("notes (%s)> ", a.auth.Mode())
	}
	if term := a.notes.Search(); term != "" {
		return fmt.Sprintf("notes [search: %s]> ", term)
	}
	return "notes> "
}

// Status checks that the API answers its health endpoint.
func (a *App) Status(ctx context.Context) error {
	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.api.Ping(rctx); err != nil {
		a.println("Server unavailable:", client.Message(err, err.Error()))
		return err
	}
	a.println("Server is up:", a.config.ServerBaseURL)
	return nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
