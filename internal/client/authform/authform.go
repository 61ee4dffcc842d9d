// Package authform drives the sign-in / sign-up form: mode switching, field
// validation and submission of credentials to the API.
package authform

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// MinPasswordLength applies to sign-up only.
const MinPasswordLength = 6

// FallbackMessage is shown when a failure carries no server detail.
const FallbackMessage = "An error occurred. Please try again."

const (
	msgCredentialsRequired = "Email and password are required"
	msgFullNameRequired    = "Full name is required"
	msgPasswordMismatch    = "Passwords do not match"
	msgPasswordTooShort    = "Password must be at least 6 characters long"
)

// ErrBusy is returned by Submit while another submission is in flight.
var ErrBusy = errors.New("submission in progress")

// ValidationError is a field check that failed before any request was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

func (m Mode) String() string {
	if m == ModeSignUp {
		return "sign up"
	}
	return "sign in"
}

// Form holds the transient credentials. FullName and ConfirmPassword are
// only used in sign-up mode.
type Form struct {
	Email           string
	Password        string
	FullName        string
	ConfirmPassword string
}

// Authenticator is the part of client.Client the form needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password, fullName string) (string, error)
}

// LoginFunc receives the token of a successful submission. Persisting it and
// switching screens is up to the caller.
type LoginFunc func(ctx context.Context, token string) error

type Controller struct {
	api     Authenticator
	onLogin LoginFunc
	log     logging.Logger

	mu     sync.Mutex
	mode   Mode
	form   Form
	errMsg string
	busy   bool
}

func New(api Authenticator, onLogin LoginFunc, log logging.Logger) *Controller {
	return &Controller{api: api, onLogin: onLogin, log: log}
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches mode and resets every field and the displayed error.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.form = Form{}
	c.errMsg = ""
}

func (c *Controller) Toggle() {
	if c.Mode() == ModeSignIn {
		c.SetMode(ModeSignUp)
	} else {
		c.SetMode(ModeSignIn)
	}
}

// SetForm replaces the field values. Editing a field clears the error.
func (c *Controller) SetForm(f Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = f
	c.errMsg = ""
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Error is the message currently displayed, or "".
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Validate reports the first failing check for the given mode.
func Validate(m Mode, f Form) error {
	if f.Email == "" || f.Password == "" {
		return &ValidationError{Message: msgCredentialsRequired}
	}
	if m != ModeSignUp {
		return nil
	}
	if f.FullName == "" {
		return &ValidationError{Message: msgFullNameRequired}
	}
	if f.Password != f.ConfirmPassword {
		return &ValidationError{Message: msgPasswordMismatch}
	}
	if len([]rune(f.Password)) < MinPasswordLength {
		return &ValidationError{Message: msgPasswordTooShort}
	}
	return nil
}

// Submit validates the form and exchanges it for a token. Validation failures
// never reach the API. On success the form is cleared and the token handed to
// the login callback.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	mode, form := c.mode, c.form
	if err := Validate(mode, form); err != nil {
		c.errMsg = err.Error()
		c.mu.Unlock()
		return err
	}
	c.busy = true
	c.errMsg = ""
	c.mu.Unlock()

	token, err := c.request(ctx, mode, form)
	if err == nil {
		err = c.onLogin(ctx, token)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.errMsg = client.Message(err, FallbackMessage)
		c.log.Warn(ctx, "authentication failed", "mode", mode.String(), "error", err)
		return err
	}

	c.form = Form{}
	c.log.Info(ctx, "authenticated", "mode", mode.String())
	return nil
}

func (c *Controller) request(ctx context.Context, mode Mode, f Form) (string, error) {
	if mode == ModeSignUp {
		return c.api.Register(ctx, f.Email, f.Password, f.FullName)
	}
	return c.api.Login(ctx, f.Email, f.Password)
}
