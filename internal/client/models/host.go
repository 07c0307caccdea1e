// Package models defines the client-side records persisted by the onboarding
// flow: the selected access host and the self-hosted environment.
package models

// AccessHost identifies the identity provider family the flow authenticates
// against. The string values are what the store file holds.
type AccessHost string

const (
	HostBitwardenCom AccessHost = "bitwarden.com"
	HostBitwardenEU  AccessHost = "bitwarden.eu"
	HostSelfHosted   AccessHost = "self-hosted"
)

// DefaultHost is used when nothing (or garbage) is persisted.
const DefaultHost = HostBitwardenCom

// AccessHosts lists the selectable hosts in display order.
var AccessHosts = []AccessHost{HostBitwardenCom, HostBitwardenEU, HostSelfHosted}

// Valid reports whether h is one of AccessHosts.
func (h AccessHost) Valid() bool {
	for _, known := range AccessHosts {
		if h == known {
			return true
		}
	}
	return false
}

// ParseAccessHost converts s into an AccessHost. ok is false for values
// outside the enumeration.
func ParseAccessHost(s string) (h AccessHost, ok bool) {
	h = AccessHost(s)
	return h, h.Valid()
}

// VaultURL returns the fixed base URL of a hosted provider. It returns ""
// for HostSelfHosted, whose URL comes from SelfHostedConfig.
func (h AccessHost) VaultURL() string {
	switch h {
	case HostBitwardenCom:
		return "https://vault.bitwarden.com"
	case HostBitwardenEU:
		return "https://vault.bitwarden.eu"
	default:
		return ""
	}
}
