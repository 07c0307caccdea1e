package models

import "strings"

// SelfHostedConfig is the persisted self-hosted environment. ServerURL is
// required; the remaining fields override individual services and are
// omitted from JSON when empty so that "empty" and "absent" read back alike.
type SelfHostedConfig struct {
	ServerURL        string `json:"serverUrl"`
	WebVaultURL      string `json:"webVaultUrl,omitempty"`
	APIURL           string `json:"apiUrl,omitempty"`
	IdentityURL      string `json:"identityUrl,omitempty"`
	NotificationsURL string `json:"notificationsUrl,omitempty"`
	IconsURL         string `json:"iconsUrl,omitempty"`
}

// Field names one URL of SelfHostedConfig.
type Field int

const (
	FieldServerURL Field = iota
	FieldWebVaultURL
	FieldAPIURL
	FieldIdentityURL
	FieldNotificationsURL
	FieldIconsURL
)

// Fields lists every field, required first.
var Fields = []Field{
	FieldServerURL,
	FieldWebVaultURL,
	FieldAPIURL,
	FieldIdentityURL,
	FieldNotificationsURL,
	FieldIconsURL,
}

func (f Field) String() string {
	switch f {
	case FieldServerURL:
		return "serverUrl"
	case FieldWebVaultURL:
		return "webVaultUrl"
	case FieldAPIURL:
		return "apiUrl"
	case FieldIdentityURL:
		return "identityUrl"
	case FieldNotificationsURL:
		return "notificationsUrl"
	case FieldIconsURL:
		return "iconsUrl"
	default:
		return "unknown"
	}
}

// Get returns the value of field f.
func (c SelfHostedConfig) Get(f Field) string {
	if p := c.ptr(f); p != nil {
		return *p
	}
	return ""
}

// With returns a copy of c with field f set to v.
func (c SelfHostedConfig) With(f Field, v string) SelfHostedConfig {
	if p := c.ptr(f); p != nil {
		*p = v
	}
	return c
}

func (c *SelfHostedConfig) ptr(f Field) *string {
	switch f {
	case FieldServerURL:
		return &c.ServerURL
	case FieldWebVaultURL:
		return &c.WebVaultURL
	case FieldAPIURL:
		return &c.APIURL
	case FieldIdentityURL:
		return &c.IdentityURL
	case FieldNotificationsURL:
		return &c.NotificationsURL
	case FieldIconsURL:
		return &c.IconsURL
	default:
		return nil
	}
}

// Trimmed returns c with surrounding whitespace removed from every field.
// Whitespace-only optional fields become empty and therefore absent.
func (c SelfHostedConfig) Trimmed() SelfHostedConfig {
	for _, f := range Fields {
		c = c.With(f, strings.TrimSpace(c.Get(f)))
	}
	return c
}
