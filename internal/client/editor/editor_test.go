package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveRecorder struct {
	calls   int
	title   string
	content string
	err     error
}

func (r *saveRecorder) save(_ context.Context, title, content string) error {
	r.calls++
	r.title, r.content = title, content
	return r.err
}

func TestNew(t *testing.T) {
	e := New(nil)
	assert.False(t, e.Editing())
	assert.Zero(t, e.NoteID())
	assert.Equal(t, "Create New Note", e.Heading())
	assert.Empty(t, e.Title())

	n := &models.Note{ID: 7, Title: "t", Content: "c"}
	e = New(n)
	assert.True(t, e.Editing())
	assert.Equal(t, int64(7), e.NoteID())
	assert.Equal(t, "Edit Note", e.Heading())
	assert.Equal(t, "t", e.Title())
	assert.Equal(t, "c", e.Content())

	e.SetTitle("changed")
	assert.Equal(t, "t", n.Title)
}

func TestSubmit_BlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		e := New(nil)
		e.SetTitle(title)
		rec := &saveRecorder{}

		err := e.Submit(context.Background(), rec.save)

		require.ErrorIs(t, err, ErrTitleRequired)
		assert.Zero(t, rec.calls)
		assert.False(t, e.Closed())
	}
}

func TestSubmit_EmptyContentAllowed(t *testing.T) {
	e := New(nil)
	e.SetTitle("Todo")
	rec := &saveRecorder{}

	require.NoError(t, e.Submit(context.Background(), rec.save))
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "Todo", rec.title)
	assert.Empty(t, rec.content)
	assert.True(t, e.Closed())

	require.ErrorIs(t, e.Submit(context.Background(), rec.save), ErrClosed)
	assert.Equal(t, 1, rec.calls)
}

func TestSubmit_FailureKeepsEditorOpen(t *testing.T) {
	e := New(&models.Note{ID: 1, Title: "t", Content: "c"})
	e.SetContent("new body")
	rec := &saveRecorder{err: errors.New("boom")}

	require.Error(t, e.Submit(context.Background(), rec.save))
	assert.False(t, e.Closed())
	assert.False(t, e.Busy())
	assert.Equal(t, "new body", e.Content())

	rec.err = nil
	require.NoError(t, e.Submit(context.Background(), rec.save))
	assert.Equal(t, 2, rec.calls)
}

func TestSubmit_BusyWhileSaving(t *testing.T) {
	e := New(nil)
	e.SetTitle("t")
	gate := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- e.Submit(context.Background(), func(context.Context, string, string) error {
			<-gate
			return nil
		})
	}()

	require.Eventually(t, e.Busy, time.Second, time.Millisecond)
	require.ErrorIs(t, e.Submit(context.Background(), (&saveRecorder{}).save), ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.True(t, e.Closed())
}

func TestCancel(t *testing.T) {
	e := New(nil)
	e.Cancel()
	assert.True(t, e.Closed())
}
