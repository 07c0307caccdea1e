package backend

import (
	"context"

	"github.com/dmitrijs2005/vanguard/internal/client/accesshost"
)

// DeviceRequest identifies a pending login-with-device approval.
type DeviceRequest struct {
	ID string
	// Fingerprint is the phrase shown on both devices.
	Fingerprint string
}

// Client is the backend the auth flow talks to.
type Client interface {
	Close() error
	// LoginAndSync authenticates with the master password and performs the
	// first vault sync.
	LoginAndSync(ctx context.Context, ep accesshost.Endpoints, email string, password []byte) error
	// StartSSO returns the identity provider URL the user has to visit.
	StartSSO(ctx context.Context, ep accesshost.Endpoints, email string) (string, error)
	RequestDeviceLogin(ctx context.Context, ep accesshost.Endpoints, email string) (DeviceRequest, error)
	Register(ctx context.Context, ep accesshost.Endpoints, email, name string) error
}
