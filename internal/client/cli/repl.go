package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vanguard/internal/client/flow"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	step() flow.Step
	SelectHost(ctx context.Context, args []string) error
	EditServer(ctx context.Context) error
	SetEmail(ctx context.Context, args []string) error
	SetName(ctx context.Context, args []string) error
	ToggleRemember(ctx context.Context) error
	Continue(ctx context.Context) error
	SSO(ctx context.Context) error
	GoRegister(ctx context.Context) error
	GoLogin(ctx context.Context) error
	Back(ctx context.Context) error
	DeviceLogin(ctx context.Context) error
	TogglePassword(ctx context.Context) error
	Show(ctx context.Context) error
}

var helpByStep = map[flow.Step]string{
	flow.StepLogin:       "Available commands: host [name], server, email [address], remember, continue, sso, register, show, exit",
	flow.StepRegister:    "Available commands: email [address], name [name], continue, login, show, exit",
	flow.StepWelcomeBack: "Available commands: continue, device, password, register, back, show, exit",
}

// runREPL starts a simple read-eval-print loop for the Vanguard CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn). Commands depend on
// the step of the onboarding flow:
//
//	Login:
//	  - host [name]       list or choose the access host
//	  - server            edit the self-hosted environment
//	  - email [address]   set the email address
//	  - remember          toggle "remember email"
//	  - continue          go on to the master password
//	  - sso               log in with single sign-on
//	  - register          create an account instead
//
//	Register:
//	  - email, name       fill the form
//	  - continue          create the account
//	  - login             back to the login form
//
//	Welcome back:
//	  - continue          enter the master password and unlock
//	  - device            log in with another device
//	  - password          show/hide the password while typing
//	  - register          create an account instead
//	  - back              log in with another email
//
// Errors returned by command handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vg %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Vault unlocked. Available commands: exit")
			} else {
				printlnFn(helpByStep[a.step()])
			}
		case "host":
			report(a.SelectHost(ctx, args))
		case "server":
			report(a.EditServer(ctx))
		case "email":
			report(a.SetEmail(ctx, args))
		case "name":
			report(a.SetName(ctx, args))
		case "remember":
			report(a.ToggleRemember(ctx))
		case "continue", "c":
			report(a.Continue(ctx))
		case "sso":
			report(a.SSO(ctx))
		case "register":
			report(a.GoRegister(ctx))
		case "login":
			report(a.GoLogin(ctx))
		case "back":
			report(a.Back(ctx))
		case "device":
			report(a.DeviceLogin(ctx))
		case "password":
			report(a.TogglePassword(ctx))
		case "show":
			report(a.Show(ctx))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err == nil {
		return
	}
	var verr *flow.ValidationError
	if errors.As(err, &verr) {
		verr.Fields.Each(func(f flow.Field, msg string) {
			printlnFn(fmt.Sprintf("  %s: %s", f, msg))
		})
		return
	}
	printlnFn("error:", err)
}
