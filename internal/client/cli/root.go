package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vanguard/internal/client/flow"
	"github.com/dmitrijs2005/vanguard/internal/logging"
)

func (a *App) getStatus() string {
	s := string(a.selector.Host()) + " " + string(a.step())
	if st := a.machine.State(); st.Email != "" {
		s += " " + logging.MaskEmail(st.Email)
	}
	if a.unlocked {
		s += " unlocked"
	}
	return fmt.Sprintf("(%s)", s)
}

// render prints the form of the current step.
func (a *App) render() {
	st := a.machine.State()
	switch st.Step {
	case flow.StepLogin:
		d := a.machine.Login()
		fmt.Fprintln(a.out, "Log in to Vanguard")
		fmt.Fprintf(a.out, "  Logging in on:  %s\n", a.selector.Host())
		fmt.Fprintf(a.out, "  Email address:  %s\n", d.Email)
		fmt.Fprintf(a.out, "  Remember email: %s\n", checkbox(d.RememberEmail))
		fmt.Fprintln(a.out, "New around here? Type 'register'.")
	case flow.StepRegister:
		d := a.machine.Register()
		fmt.Fprintln(a.out, "Create account")
		fmt.Fprintf(a.out, "  Email address: %s\n", d.Email)
		fmt.Fprintf(a.out, "  Name:          %s\n", d.Name)
		fmt.Fprintln(a.out, "Already have an account? Type 'login'.")
	case flow.StepWelcomeBack:
		fmt.Fprintln(a.out, "Welcome back")
		fmt.Fprintf(a.out, "  Logging in as %s on %s\n", st.Email, a.selector.Host())
		fmt.Fprintln(a.out, "Not you? Type 'back'.")
	}
}

// printErrors lists the field errors of the current form.
func (a *App) printErrors() {
	a.machine.Errors().Each(func(f flow.Field, msg string) {
		fmt.Fprintf(a.out, "  %s: %s\n", f, msg)
	})
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// Root loads the persisted host and email, shows the login form and runs
// the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Vanguard CLI (type 'help' for commands)")

	a.selector.Load(ctx)
	if err := a.machine.Start(ctx); err != nil {
		a.log.Error(ctx, "start", "error", err)
		return
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Show redraws the current step.
func (a *App) Show(context.Context) error {
	a.render()
	a.printErrors()
	return nil
}
