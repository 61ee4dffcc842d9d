// Package client talks to the remote notes API.
//
// Client is the transport-agnostic contract used by the controllers;
// HTTPClient implements it with JSON over HTTP. Authenticated calls take the
// bearer token explicitly, so the package holds no session state.
//
// # Error Handling
//
// Failures are reported as *APIError values wrapping one of the sentinel
// errors, to be matched with errors.Is:
//
//   - ErrUnauthorized: 401/403. Callers must treat it as the end of the session.
//   - ErrNotFound:     the referenced note does not exist.
//   - ErrValidation:   the server rejected the input (e.g. duplicate email).
//   - ErrUnavailable:  transport failure or server error.
//
// APIError.Detail carries the server-provided message when there is one.
package client
