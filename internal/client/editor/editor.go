// Package editor captures the title and content of a note being created or
// edited and hands them to a caller-supplied save operation.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

// TitleRequiredMessage is shown when a blank title is submitted.
const TitleRequiredMessage = "Please enter a title for your note"

var (
	ErrTitleRequired = errors.New("note title is required")
	ErrBusy          = errors.New("save in progress")
	ErrClosed        = errors.New("editor is closed")
)

// SaveFunc persists the edited fields.
type SaveFunc func(ctx context.Context, title, content string) error

type Editor struct {
	mu      sync.Mutex
	note    *models.Note
	title   string
	content string
	busy    bool
	closed  bool
}

// New opens an editor. A nil note starts a new one; otherwise the fields are
// pre-populated from note, which is not modified.
func New(note *models.Note) *Editor {
	e := &Editor{}
	if note != nil {
		n := *note
		e.note = &n
		e.title, e.content = n.Title, n.Content
	}
	return e
}

// Editing reports whether the editor was opened on an existing note.
func (e *Editor) Editing() bool { return e.note != nil }

// NoteID is the id of the note being edited, 0 for a new one.
func (e *Editor) NoteID() int64 {
	if e.note == nil {
		return 0
	}
	return e.note.ID
}

func (e *Editor) Heading() string {
	if e.Editing() {
		return "Edit Note"
	}
	return "Create New Note"
}

func (e *Editor) SetTitle(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = s
}

func (e *Editor) SetContent(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = s
}

func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

func (e *Editor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Cancel closes the editor without saving.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Submit rejects a blank title without calling save. The editor closes once
// save succeeds and stays open with its fields intact when it fails.
func (e *Editor) Submit(ctx context.Context, save SaveFunc) error {
	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()
		return ErrClosed
	case e.busy:
		e.mu.Unlock()
		return ErrBusy
	case strings.TrimSpace(e.title) == "":
		e.mu.Unlock()
		return ErrTitleRequired
	}
	title, content := e.title, e.content
	e.busy = true
	e.mu.Unlock()

	err := save(ctx, title, content)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if err != nil {
		return err
	}
	e.closed = true
	return nil
}
