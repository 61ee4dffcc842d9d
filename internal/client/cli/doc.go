// Package cli provides the interactive gophnotes terminal client.
//
// The client has two screens. The auth screen signs a user in or registers
// a new account; the notes screen lists, searches, creates, edits and deletes
// the user's notes. Which screen is shown depends only on the session store:
// a stored token opens the notes screen, and a token rejected by the server
// clears the session and returns to the auth screen.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
