package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vanguard/internal/client/models"
	"github.com/dmitrijs2005/vanguard/internal/client/selfhosted"
)

// SelectHost changes the access host. Without args the choices are listed.
// Choosing self-hosted walks through the server settings dialog.
func (a *App) SelectHost(ctx context.Context, args []string) error {
	if len(args) == 0 {
		current := a.selector.Host()
		fmt.Fprintln(a.out, "Access hosts:")
		for _, h := range models.AccessHosts {
			mark := " "
			if h == current {
				mark = "*"
			}
			fmt.Fprintf(a.out, " %s %s\n", mark, h)
		}
		fmt.Fprintln(a.out, "Usage: host <name>")
		return nil
	}

	if _, ok := models.ParseAccessHost(args[0]); !ok {
		fmt.Fprintf(a.out, "Unknown host %q\n", args[0])
		return nil
	}
	if err := a.selector.Select(ctx, args[0]); err != nil {
		return err
	}
	if a.editor.State() == selfhosted.Open {
		return a.serverDialog(ctx)
	}
	return nil
}

// EditServer opens the self-hosted settings dialog directly.
func (a *App) EditServer(ctx context.Context) error {
	if err := a.editor.Open(ctx); err != nil {
		return err
	}
	return a.serverDialog(ctx)
}

// serverDialog prompts for every field until the settings are saved or the
// user cancels. An empty answer keeps the current value, "-" clears it.
func (a *App) serverDialog(ctx context.Context) error {
	fmt.Fprintln(a.out, "Self-hosted environment (empty keeps the value, '-' clears it)")
	for a.editor.State() == selfhosted.Open {
		values := a.editor.Values()
		for _, in := range selfhosted.FieldSpecs {
			text, err := getSimpleText(a.reader, fieldPrompt(in, values.Get(in.Field)), a.out)
			if err != nil {
				_ = a.editor.Cancel()
				return err
			}
			switch text {
			case "":
				continue
			case "-":
				text = ""
			}
			if err := a.editor.SetField(in.Field, text); err != nil {
				return err
			}
		}

		save, err := getYesNo(a.reader, "Save?", true, a.out)
		if err != nil {
			_ = a.editor.Cancel()
			return err
		}
		if !save {
			if err := a.editor.Cancel(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}

		err = a.editor.Submit(ctx)
		var verr *selfhosted.ValidationError
		switch {
		case errors.As(err, &verr):
			for _, in := range selfhosted.FieldSpecs {
				if msg, ok := verr.Fields[in.Field]; ok {
					fmt.Fprintf(a.out, "  %s: %s\n", in.Label, msg)
				}
			}
		case err != nil:
			return err
		default:
			fmt.Fprintln(a.out, "Saved.")
		}
	}
	return nil
}

func fieldPrompt(in selfhosted.FieldSpec, current string) string {
	p := in.Label
	if in.Optional {
		p += " (optional)"
	}
	if current != "" {
		return p + " [" + current + "]"
	}
	return p + ", e.g. " + in.Placeholder
}
