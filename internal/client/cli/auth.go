package cli

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/client/authform"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// SignIn switches the form to sign-in mode and submits it.
func (a *App) SignIn(ctx context.Context) error {
	if a.auth.Mode() != authform.ModeSignIn {
		a.auth.SetMode(authform.ModeSignIn)
	}
	return a.Submit(ctx)
}

// SignUp switches the form to sign-up mode and submits it.
func (a *App) SignUp(ctx context.Context) error {
	if a.auth.Mode() != authform.ModeSignUp {
		a.auth.SetMode(authform.ModeSignUp)
	}
	return a.Submit(ctx)
}

// ToggleMode flips between sign-in and sign-up, clearing the form.
func (a *App) ToggleMode() {
	a.auth.Toggle()
	a.println("Switched to", a.auth.Mode().String())
}

// Submit prompts for the fields of the current mode and submits the form.
// Passwords are wiped once the form has been submitted.
func (a *App) Submit(ctx context.Context) error {
	signUp := a.auth.Mode() == authform.ModeSignUp

	var f authform.Form
	var err error

	if signUp {
		if f.FullName, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
			return err
		}
	}
	if f.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}

	pw, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	f.Password = string(pw)

	if signUp {
		confirm, err := getPassword(a.reader, "Confirm password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(confirm)
		f.ConfirmPassword = string(confirm)
	}

	a.auth.SetForm(f)

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.auth.Submit(rctx); err != nil {
		a.println(a.auth.Error())
		return err
	}
	return nil
}
