package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/editor"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/notes"
)

const (
	// cancelInput aborts the editor from any of its prompts.
	cancelInput = ":q"
	// clearInput empties the content of a note being edited.
	clearInput = ":clear"
)

// List prints the filtered view.
func (a *App) List(context.Context) error {
	a.printNotes()
	return nil
}

// Search sets the search term; an empty term shows every note.
func (a *App) Search(_ context.Context, term string) error {
	a.notes.SetSearch(term)
	a.printNotes()
	return nil
}

// Reload fetches the list from the server again.
func (a *App) Reload(ctx context.Context) error {
	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.notes.Load(rctx); err != nil {
		if a.screen == ScreenNotes {
			a.println("Error fetching notes:", client.Message(err, err.Error()))
		}
		return err
	}
	a.printNotes()
	return nil
}

// Show prints one note with its full content.
func (a *App) Show(_ context.Context, arg string) error {
	n, err := a.lookup(arg)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("[%d] %s", n.ID, n.Title))
	a.println("Updated:", models.FormatUpdatedAt(n.UpdatedAt, a.loc))
	a.println()
	a.println(n.Content)
	return nil
}

// New opens an empty editor and saves the result as a new note.
func (a *App) New(ctx context.Context) error {
	return a.edit(ctx, editor.New(nil), func(ctx context.Context, title, content string) error {
		_, err := a.notes.Create(ctx, title, content)
		return err
	})
}

// Edit opens the editor on an existing note.
func (a *App) Edit(ctx context.Context, arg string) error {
	n, err := a.lookup(arg)
	if err != nil {
		return err
	}
	return a.edit(ctx, editor.New(&n), func(ctx context.Context, title, content string) error {
		_, err := a.notes.Update(ctx, n.ID, title, content)
		return err
	})
}

// Delete removes a note after the user confirms.
func (a *App) Delete(ctx context.Context, arg string) error {
	n, err := a.lookup(arg)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	deleted, err := a.notes.Delete(rctx, n.ID, func() bool {
		return Confirm(a.reader, notes.DeletePrompt, a.out)
	})
	if err != nil {
		if a.screen == ScreenNotes {
			a.println(notes.DeleteFailedMessage)
		}
		return err
	}
	if deleted {
		a.println("Deleted:", n.Title)
	}
	return nil
}

// Logout clears the session and returns to the auth screen.
func (a *App) Logout(ctx context.Context) error {
	a.signOut(ctx)
	return nil
}

func (a *App) lookup(arg string) (models.Note, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		a.println("Please give a note id, e.g. 'edit 3'")
		return models.Note{}, fmt.Errorf("invalid note id %q: %w", arg, err)
	}
	n, ok := a.notes.Get(id)
	if !ok {
		a.println("Note not found")
		return models.Note{}, fmt.Errorf("note %d: %w", id, client.ErrNotFound)
	}
	return n, nil
}

var errEditCancelled = errors.New("edit cancelled")

// edit runs the terminal editor until it is saved or cancelled. A blank
// title is re-prompted; a failed save offers a retry.
func (a *App) edit(ctx context.Context, e *editor.Editor, save editor.SaveFunc) error {
	a.println(e.Heading(), fmt.Sprintf("(type %s at any prompt to cancel)", cancelInput))

	for !e.Closed() {
		if err := a.fillEditor(e); err != nil {
			if errors.Is(err, errEditCancelled) {
				e.Cancel()
				a.println("Cancelled")
				return nil
			}
			return err
		}

		rctx, cancel := a.requestContext(ctx)
		err := e.Submit(rctx, save)
		cancel()

		switch {
		case err == nil:
			a.println("Saved:", e.Title())
		case errors.Is(err, editor.ErrTitleRequired):
			a.println(editor.TitleRequiredMessage)
		case errors.Is(err, client.ErrUnauthorized), errors.Is(err, notes.ErrClosed):
			e.Cancel()
			return err
		default:
			a.println(notes.SaveFailedMessage)
			if !Confirm(a.reader, "Try again?", a.out) {
				e.Cancel()
				return err
			}
		}
	}
	return nil
}

// fillEditor prompts for title and content. For an existing note an empty
// answer keeps the current value.
func (a *App) fillEditor(e *editor.Editor) error {
	titlePrompt := "Title"
	if e.Editing() {
		titlePrompt = fmt.Sprintf("Title [%s]", e.Title())
	}
	title, err := getSimpleText(a.reader, titlePrompt, a.out)
	if err != nil {
		return err
	}
	if title == cancelInput {
		return errEditCancelled
	}
	if title != "" || !e.Editing() {
		e.SetTitle(title)
	}

	contentPrompt := "Content"
	if e.Editing() {
		contentPrompt = fmt.Sprintf("Content (empty keeps the current text, %s removes it)", clearInput)
	}
	content, err := GetMultiline(a.reader, contentPrompt, a.out)
	if err != nil {
		return err
	}
	switch {
	case content == cancelInput:
		return errEditCancelled
	case content == clearInput:
		e.SetContent("")
	case content != "" || !e.Editing():
		e.SetContent(content)
	}
	return nil
}

func (a *App) printNotes() {
	if a.notes == nil {
		return
	}
	if msg := a.notes.EmptyMessage(); msg != "" {
		a.println(msg)
		return
	}
	for _, n := range a.notes.Filtered() {
		a.println(fmt.Sprintf("[%d] %s", n.ID, n.Title))
		if n.Content != "" {
			a.println("    " + strings.ReplaceAll(models.Preview(n.Content), "\n", "\n    "))
		}
		a.println("    Updated:", models.FormatUpdatedAt(n.UpdatedAt, a.loc))
	}
}
