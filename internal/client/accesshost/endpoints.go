package accesshost

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vanguard/internal/client/models"
)

// ErrNoSelfHostedURL is returned when self-hosted is selected but no server
// URL was saved.
var ErrNoSelfHostedURL = errors.New("missing self-hosted server URL")

// Reader is the read side of the store used to resolve endpoints.
type Reader interface {
	ServerHost(ctx context.Context) (models.AccessHost, bool, error)
	SelfHosted(ctx context.Context) (models.SelfHostedConfig, bool, error)
}

// Endpoints are the service base URLs of one environment.
type Endpoints struct {
	Base          string
	WebVault      string
	API           string
	Identity      string
	Notifications string
	Icons         string
}

// Resolve reads the persisted host and returns its endpoints. Hosted
// providers use their fixed vault URL; self-hosted uses the stored record,
// where per-service overrides win over paths derived from the server URL.
func Resolve(ctx context.Context, r Reader) (Endpoints, error) {
	h, ok, err := r.ServerHost(ctx)
	if err != nil {
		return Endpoints{}, fmt.Errorf("read server host: %w", err)
	}
	if !ok || !h.Valid() {
		h = models.DefaultHost
	}

	if h != models.HostSelfHosted {
		return derive(h.VaultURL(), models.SelfHostedConfig{}), nil
	}

	cfg, ok, err := r.SelfHosted(ctx)
	if err != nil {
		return Endpoints{}, fmt.Errorf("read self-hosted config: %w", err)
	}
	base := strings.TrimSpace(cfg.ServerURL)
	if !ok || base == "" {
		return Endpoints{}, ErrNoSelfHostedURL
	}
	return derive(base, cfg.Trimmed()), nil
}

// ResolveServerURL is Resolve reduced to the base URL handed to login/sync.
func ResolveServerURL(ctx context.Context, r Reader) (string, error) {
	e, err := Resolve(ctx, r)
	if err != nil {
		return "", err
	}
	return e.Base, nil
}

func derive(base string, overrides models.SelfHostedConfig) Endpoints {
	base = strings.TrimRight(base, "/")
	pick := func(override, suffix string) string {
		if override != "" {
			return override
		}
		return base + suffix
	}
	return Endpoints{
		Base:          base,
		WebVault:      pick(overrides.WebVaultURL, ""),
		API:           pick(overrides.APIURL, "/api"),
		Identity:      pick(overrides.IdentityURL, "/identity"),
		Notifications: pick(overrides.NotificationsURL, "/notifications"),
		Icons:         pick(overrides.IconsURL, "/icons"),
	}
}
