// Package notes owns the signed-in user's notes: the cached collection, the
// search term and the filtered view derived from them. Every change goes to
// the API first; the cache is updated only from server responses.
package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

const (
	EmptyCollectionMessage = "No notes yet"
	NoMatchesMessage       = "No notes found"
	DeletePrompt           = "Are you sure you want to delete this note?"
	SaveFailedMessage      = "Failed to save note. Please try again."
	DeleteFailedMessage    = "Failed to delete note. Please try again."
)

// ErrClosed is returned for calls made, or answered, after Close.
var ErrClosed = errors.New("notes controller closed")

// API is the part of client.Client the controller needs.
type API interface {
	ListNotes(ctx context.Context, token string) ([]models.Note, error)
	CreateNote(ctx context.Context, token, title, content string) (models.Note, error)
	UpdateNote(ctx context.Context, token string, id int64, title, content string) (models.Note, error)
	DeleteNote(ctx context.Context, token string, id int64) error
}

// LogoutFunc is invoked once the server rejects the session.
type LogoutFunc func(ctx context.Context)

type Controller struct {
	api      API
	sess     session.Store
	onLogout LogoutFunc
	log      logging.Logger

	life context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	all      []models.Note
	term     string
	filtered []models.Note
	loaded   bool
	closed   bool
}

func New(api API, sess session.Store, onLogout LogoutFunc, log logging.Logger) *Controller {
	life, stop := context.WithCancel(context.Background())
	return &Controller{
		api:      api,
		sess:     sess,
		onLogout: onLogout,
		log:      log,
		life:     life,
		stop:     stop,
		filtered: []models.Note{},
	}
}

// Close detaches the controller. In-flight requests are cancelled and any
// response that still arrives is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stop()
}

// bind ties ctx to the controller's lifetime.
func (c *Controller) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) token(ctx context.Context) (string, error) {
	tok, ok, err := c.sess.Get(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &client.APIError{Err: client.ErrUnauthorized, Detail: "not signed in"}
	}
	return tok, nil
}

// apply runs mutate under the lock unless the controller was closed or ctx
// was cancelled while the request was outstanding.
func (c *Controller) apply(ctx context.Context, mutate func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mutate()
	c.filtered = Filter(c.all, c.term)
	return nil
}

// fail logs err and, for a rejected session, hands control to the logout
// callback. Failures after Close are not reported.
func (c *Controller) fail(ctx context.Context, op string, err error) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	c.log.Error(ctx, "notes request failed", "op", op, "error", err)
	if errors.Is(err, client.ErrUnauthorized) {
		c.Close()
		if c.onLogout != nil {
			c.onLogout(context.WithoutCancel(ctx))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Load replaces the collection with the server's list. On failure other than
// a rejected session the collection is left empty.
func (c *Controller) Load(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	ctx, cancel := c.bind(ctx)
	defer cancel()

	tok, err := c.token(ctx)
	if err != nil {
		return c.fail(ctx, "load", err)
	}
	list, err := c.api.ListNotes(ctx, tok)
	if err != nil {
		_ = c.apply(ctx, func() { c.all = nil; c.loaded = true })
		return c.fail(ctx, "load", err)
	}

	err = c.apply(ctx, func() {
		c.all = append([]models.Note(nil), list...)
		c.loaded = true
	})
	if err == nil {
		c.log.Debug(ctx, "notes loaded", "count", len(list))
	}
	return err
}

// Create saves a new note and puts it at the head of the collection.
func (c *Controller) Create(ctx context.Context, title, content string) (models.Note, error) {
	if c.isClosed() {
		return models.Note{}, ErrClosed
	}
	ctx, cancel := c.bind(ctx)
	defer cancel()

	tok, err := c.token(ctx)
	if err != nil {
		return models.Note{}, c.fail(ctx, "create", err)
	}
	n, err := c.api.CreateNote(ctx, tok, title, content)
	if err != nil {
		return models.Note{}, c.fail(ctx, "create", err)
	}

	err = c.apply(ctx, func() {
		c.all = append([]models.Note{n}, c.all...)
	})
	return n, err
}

// Update saves an edit and replaces the note with the same id in place.
func (c *Controller) Update(ctx context.Context, id int64, title, content string) (models.Note, error) {
	if c.isClosed() {
		return models.Note{}, ErrClosed
	}
	ctx, cancel := c.bind(ctx)
	defer cancel()

	tok, err := c.token(ctx)
	if err != nil {
		return models.Note{}, c.fail(ctx, "update", err)
	}
	n, err := c.api.UpdateNote(ctx, tok, id, title, content)
	if err != nil {
		return models.Note{}, c.fail(ctx, "update", err)
	}

	err = c.apply(ctx, func() {
		for i := range c.all {
			if c.all[i].ID == id {
				c.all[i] = n
				return
			}
		}
	})
	return n, err
}

// Delete removes a note once confirm returns true. A nil confirm counts as
// declined. It reports whether the note was deleted.
func (c *Controller) Delete(ctx context.Context, id int64, confirm func() bool) (bool, error) {
	if c.isClosed() {
		return false, ErrClosed
	}
	if confirm == nil || !confirm() {
		return false, nil
	}
	ctx, cancel := c.bind(ctx)
	defer cancel()

	tok, err := c.token(ctx)
	if err != nil {
		return false, c.fail(ctx, "delete", err)
	}
	if err := c.api.DeleteNote(ctx, tok, id); err != nil {
		return false, c.fail(ctx, "delete", err)
	}

	err = c.apply(ctx, func() {
		for i := range c.all {
			if c.all[i].ID == id {
				c.all = append(c.all[:i:i], c.all[i+1:]...)
				return
			}
		}
	})
	return err == nil, err
}

// SetSearch updates the term and recomputes the filtered view locally.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
	c.filtered = Filter(c.all, term)
}

func (c *Controller) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term
}

// Filtered returns a copy of the current filtered view.
func (c *Controller) Filtered() []models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Note(nil), c.filtered...)
}

// Notes returns a copy of the whole collection.
func (c *Controller) Notes() []models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Note(nil), c.all...)
}

func (c *Controller) Get(id int64) (models.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.all {
		if n.ID == id {
			return n, true
		}
	}
	return models.Note{}, false
}

// EmptyMessage is the placeholder for an empty view, or "" when there is
// something to show.
func (c *Controller) EmptyMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case len(c.all) == 0:
		return EmptyCollectionMessage
	case len(c.filtered) == 0:
		return NoMatchesMessage
	default:
		return ""
	}
}

func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
