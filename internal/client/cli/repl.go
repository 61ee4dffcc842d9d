package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Screen() Screen
	Status(ctx context.Context) error

	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	Submit(ctx context.Context) error
	ToggleMode()

	List(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Reload(ctx context.Context) error
	Show(ctx context.Context, id string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Logout(ctx context.Context) error
}

const (
	authHelp  = "Available commands: login, register, submit, mode, status, exit"
	notesHelp = "Available commands: (l)ist, search <text>, new, edit <id>, show <id>, delete <id>, reload, logout, status, exit"
)

// runREPL starts a simple read–eval–print loop for the notes client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Which commands are accepted depends on the
// screen a is showing. The loop exits on EOF, on a cancelled ctx, or when
// the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Auth screen:
//	  - login | signin     sign in with email and password
//	  - register | signup  create an account
//	  - submit             fill in the form of the current mode
//	  - mode               switch between sign in and sign up
//
//	Notes screen:
//	  - l | list           list notes matching the search
//	  - search [text]      filter notes; no text clears the filter
//	  - new                create a note
//	  - edit <id>          edit a note
//	  - show <id>          print a note in full
//	  - delete <id>        delete a note after confirmation
//	  - reload             fetch notes from the server again
//	  - logout             sign out
//
//	Both:
//	  - help, status, exit | quit
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors to the user.
func runREPL(ctx context.Context, a execIface, promptFn func() string, reader *bufio.Reader, w io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprint(w, promptFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		case "status":
			_ = a.Status(ctx)
			continue
		}

		if a.Screen() == ScreenAuth {
			runAuthCommand(ctx, a, cmd, w)
		} else {
			runNotesCommand(ctx, a, cmd, rest, w)
		}
	}
}

func runAuthCommand(ctx context.Context, a execIface, cmd string, w io.Writer) {
	switch cmd {
	case "help":
		fmt.Fprintln(w, authHelp)
	case "login", "signin":
		_ = a.SignIn(ctx)
	case "register", "signup":
		_ = a.SignUp(ctx)
	case "submit":
		_ = a.Submit(ctx)
	case "mode":
		a.ToggleMode()
	default:
		fmt.Fprintln(w, "Unknown command:", cmd)
	}
}

func runNotesCommand(ctx context.Context, a execIface, cmd, arg string, w io.Writer) {
	switch cmd {
	case "help":
		fmt.Fprintln(w, notesHelp)
	case "l", "list":
		_ = a.List(ctx)
	case "search":
		_ = a.Search(ctx, arg)
	case "reload":
		_ = a.Reload(ctx)
	case "new":
		_ = a.New(ctx)
	case "show", "edit", "delete":
		if arg == "" {
			fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
			return
		}
		switch cmd {
		case "show":
			_ = a.Show(ctx, arg)
		case "edit":
			_ = a.Edit(ctx, arg)
		default:
			_ = a.Delete(ctx, arg)
		}
	case "logout":
		_ = a.Logout(ctx)
	default:
		fmt.Fprintln(w, "Unknown command:", cmd)
	}
}
