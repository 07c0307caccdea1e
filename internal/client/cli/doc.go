// Package cli provides the interactive Vanguard command-line client.
//
// It wires configuration, the local store, the backend connection and the
// onboarding components (access-host selector, self-hosted dialog and the
// login/register/welcome-back flow) behind a small REPL.
//
// Typical session: pick the access host (or configure a self-hosted server),
// enter the email, continue to welcome-back, type the master password. The
// vault is then unlocked and synced by the backend.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
