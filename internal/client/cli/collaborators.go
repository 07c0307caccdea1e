package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vanguard/internal/client/accesshost"
	"github.com/dmitrijs2005/vanguard/internal/client/flow"
)

// The functions below are the flow's collaborators. Each resolves the
// endpoints of the selected host before talking to the backend.

func (a *App) loginAndSync(ctx context.Context, email string, password []byte) error {
	ep, err := accesshost.Resolve(ctx, a.store)
	if err != nil {
		return err
	}
	if err := a.api.LoginAndSync(ctx, ep, email, password); err != nil {
		return err
	}
	a.unlocked = true
	fmt.Fprintf(a.out, "Vault unlocked and synced from %s.\n", ep.Base)
	return nil
}

func (a *App) startSSO(ctx context.Context, d flow.LoginDraft) error {
	ep, err := accesshost.Resolve(ctx, a.store)
	if err != nil {
		return err
	}
	u, err := a.api.StartSSO(ctx, ep, d.Email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Continue single sign-on in your browser:\n  %s\n", u)
	return nil
}

func (a *App) requestDeviceLogin(ctx context.Context, email string) error {
	ep, err := accesshost.Resolve(ctx, a.store)
	if err != nil {
		return err
	}
	req, err := a.api.RequestDeviceLogin(ctx, ep, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Login request sent. Approve it on another device.\n  Fingerprint phrase: %s\n", req.Fingerprint)
	return nil
}

func (a *App) createAccount(ctx context.Context, d flow.RegisterDraft) error {
	ep, err := accesshost.Resolve(ctx, a.store)
	if err != nil {
		return err
	}
	if err := a.api.Register(ctx, ep, d.Email, d.Name); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created. Type 'login' to sign in.\n", d.Email)
	return nil
}
