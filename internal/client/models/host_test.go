package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccessHost(t *testing.T) {
	for _, h := range AccessHosts {
		got, ok := ParseAccessHost(string(h))
		assert.True(t, ok)
		assert.Equal(t, h, got)
	}

	_, ok := ParseAccessHost("bitwarden.org")
	assert.False(t, ok)
	_, ok = ParseAccessHost("")
	assert.False(t, ok)
}

func TestVaultURL(t *testing.T) {
	assert.Equal(t, "https://vault.bitwarden.com", HostBitwardenCom.VaultURL())
	assert.Equal(t, "https://vault.bitwarden.eu", HostBitwardenEU.VaultURL())
	assert.Empty(t, HostSelfHosted.VaultURL())
}

func TestSelfHostedConfig_EmptyOptionalFieldsAreOmitted(t *testing.T) {
	b, err := json.Marshal(SelfHostedConfig{ServerURL: "https://vault.example.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"serverUrl":"https://vault.example.com"}`, string(b))
}

func TestSelfHostedConfig_GetWith(t *testing.T) {
	var c SelfHostedConfig
	for _, f := range Fields {
		c = c.With(f, "https://"+f.String()+".example.com")
	}
	for _, f := range Fields {
		assert.Equal(t, "https://"+f.String()+".example.com", c.Get(f))
	}

	assert.Equal(t, "", c.Get(Field(99)))
	assert.Equal(t, c, c.With(Field(99), "x"))
}

func TestSelfHostedConfig_Trimmed(t *testing.T) {
	c := SelfHostedConfig{ServerURL: "  https://vault.example.com ", APIURL: "   "}.Trimmed()
	assert.Equal(t, SelfHostedConfig{ServerURL: "https://vault.example.com"}, c)
}
