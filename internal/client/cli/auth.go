package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vanguard/internal/client/flow"
	"github.com/dmitrijs2005/vanguard/internal/memx"
)

// getSimpleText, getPassword, getVisiblePassword and getYesNo are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getPassword        = GetPassword
	getVisiblePassword = GetVisiblePassword
	getYesNo           = GetYesNo
)

// SetEmail fills the email field of the login or register form, from args
// or by prompting.
func (a *App) SetEmail(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, "Email address")
	if err != nil {
		return err
	}
	switch a.step() {
	case flow.StepRegister:
		err = a.machine.SetRegisterEmail(email)
	default:
		err = a.machine.SetLoginEmail(email)
	}
	if err != nil {
		return err
	}
	a.printErrors()
	return nil
}

// SetName fills the optional name on the register form.
func (a *App) SetName(ctx context.Context, args []string) error {
	name, err := a.argOrPrompt(args, "Name (optional)")
	if err != nil {
		return err
	}
	return a.machine.SetRegisterName(name)
}

// ToggleRemember flips the "remember email" checkbox.
func (a *App) ToggleRemember(ctx context.Context) error {
	remember := !a.machine.Login().RememberEmail
	if err := a.machine.SetRememberEmail(remember); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Remember email: %s\n", checkbox(remember))
	return nil
}

// Continue submits the form of the current step. On welcome-back it asks
// for the master password first.
func (a *App) Continue(ctx context.Context) error {
	switch a.step() {
	case flow.StepLogin:
		return a.machine.SubmitLogin(ctx)
	case flow.StepRegister:
		return a.machine.SubmitRegister(ctx)
	case flow.StepWelcomeBack:
		pw, err := a.readMasterPassword()
		if err != nil {
			return err
		}
		err = a.machine.SetMasterPassword(pw)
		memx.Wipe(pw)
		if err != nil {
			return err
		}
		return a.machine.SubmitPassword(ctx)
	}
	return nil
}

func (a *App) readMasterPassword() ([]byte, error) {
	if a.machine.ShowPassword() {
		return getVisiblePassword(a.reader, a.out)
	}
	return getPassword(a.reader, a.out)
}

// SSO starts single sign-on for the login email.
func (a *App) SSO(ctx context.Context) error {
	return a.machine.RequestSSO(ctx)
}

// GoRegister switches to the register form.
func (a *App) GoRegister(ctx context.Context) error {
	return a.machine.GoToRegister(ctx)
}

// GoLogin returns to the login form.
func (a *App) GoLogin(ctx context.Context) error {
	return a.machine.GoToLogin(ctx)
}

// Back leaves the welcome-back step.
func (a *App) Back(ctx context.Context) error {
	return a.machine.Back(ctx)
}

// DeviceLogin asks another device to approve this login.
func (a *App) DeviceLogin(ctx context.Context) error {
	return a.machine.DeviceLogin(ctx)
}

// TogglePassword switches between hidden and visible master password input.
func (a *App) TogglePassword(ctx context.Context) error {
	if a.step() != flow.StepWelcomeBack {
		return fmt.Errorf("%w: %s", flow.ErrWrongStep, a.step())
	}
	shown := a.machine.ToggleShowPassword()
	if shown {
		fmt.Fprintln(a.out, "Master password will be shown while typing.")
	} else {
		fmt.Fprintln(a.out, "Master password will be hidden while typing.")
	}
	return nil
}

func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}
