package siports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("API_BASE_URL", "http://localhost:8000")

	cfg, corsConfigs, err := NewServerConfig()
	require.NoError(t, err)
	require.NotNil(t, corsConfigs.Public)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret, "dev falls back to the development secret")
	assert.False(t, cfg.IsProd())
}

func TestNewServerConfig_DefaultAPIBaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("API_BASE_URL", "")

	cfg, _, err := NewServerConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
}

func TestValidateConfig(t *testing.T) {
	valid := func() ServerEnvironment {
		return ServerEnvironment{
			Environment:    "prod",
			Port:           3000,
			APIBaseURL:     DefaultAPIBaseURL,
			APITimeout:     15 * time.Second,
			SessionSecret:  "0123456789abcdef0123456789abcdef",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			IdleTimeout:    time.Second,
			LoginRateRPS:   5,
			LoginRateBurst: 10,
			MaxFormSize:    65536,
			AllowedOrigins: []string{"https://siports.com"},
		}
	}

	tests := []struct {
		name    string
		modify  func(*ServerEnvironment)
		wantErr bool
	}{
		{name: "valid production config", modify: func(*ServerEnvironment) {}},
		{name: "unknown environment", modify: func(c *ServerEnvironment) { c.Environment = "qa" }, wantErr: true},
		{name: "port out of range", modify: func(c *ServerEnvironment) { c.Port = 70000 }, wantErr: true},
		{name: "zero read timeout", modify: func(c *ServerEnvironment) { c.ReadTimeout = 0 }, wantErr: true},
		{name: "negative api timeout", modify: func(c *ServerEnvironment) { c.APITimeout = -time.Second }, wantErr: true},
		{name: "api url without scheme", modify: func(c *ServerEnvironment) { c.APIBaseURL = "siports.example.com" }, wantErr: true},
		{name: "api url with ftp scheme", modify: func(c *ServerEnvironment) { c.APIBaseURL = "ftp://siports.example.com" }, wantErr: true},
		{name: "plain http in prod", modify: func(c *ServerEnvironment) { c.APIBaseURL = "http://siports.example.com" }, wantErr: true},
		{name: "short secret in prod", modify: func(c *ServerEnvironment) { c.SessionSecret = "short" }, wantErr: true},
		{name: "wildcard origin in prod", modify: func(c *ServerEnvironment) { c.AllowedOrigins = []string{"*"} }, wantErr: true},
		{name: "plain http allowed in dev", modify: func(c *ServerEnvironment) {
			c.Environment = "dev"
			c.APIBaseURL = "http://localhost:8000"
			c.SessionSecret = ""
		}},
		{name: "zero rate limit", modify: func(c *ServerEnvironment) { c.LoginRateRPS = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)

			err := validateConfig(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
