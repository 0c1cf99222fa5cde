package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"one", []string{"one"}},
		{" one , two ", []string{"one", "two"}},
		{",,", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAPIKeys(tt.in), tt.in)
	}
}

func TestAppConfig_APIKeysReturnsCopy(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithAPIKeys([]string{"k"}))
	keys := cfg.APIKeys()
	keys[0] = "changed"

	assert.Equal(t, []string{"k"}, cfg.APIKeys())
}

func TestAppConfig_LogAttrsRedactsCredentials(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDBURL("postgres://user:secret@db:5432/compset"))

	attrs := cfg.LogAttrs()
	var db string
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == "db" {
			db = attrs[i+1].(string)
		}
	}
	assert.Equal(t, "postgres://***@db:5432/compset", db)
}

func TestAppConfig_Addr(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithHost("127.0.0.1"), WithPort(1234))
	assert.Equal(t, "127.0.0.1:1234", cfg.Addr())
}

func TestAppConfig_ApplyReturnsCopy(t *testing.T) {
	cfg := NewAppConfig()
	changed := cfg.Apply(WithPort(9090))

	assert.Equal(t, DefaultPort, cfg.Port())
	assert.Equal(t, 9090, changed.Port())
}
