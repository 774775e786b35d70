package client

import (
	"context"
	"net/http"
)

// HealthStatus is returned by GET /health
type HealthStatus struct {
	Status       string         `json:"status"`
	Service      string         `json:"service,omitempty"`
	Version      string         `json:"version,omitempty"`
	Timestamp    string         `json:"timestamp,omitempty"`
	Environment  string         `json:"environment,omitempty"`
	DatabaseType string         `json:"database_type,omitempty"`
	Checks       map[string]any `json:"checks,omitempty"`
}

// APIStatus is returned by GET /
type APIStatus struct {
	Message     string   `json:"message"`
	Status      string   `json:"status"`
	Version     string   `json:"version,omitempty"`
	Environment string   `json:"environment,omitempty"`
	Features    []string `json:"features,omitempty"`
}

type ChatbotStatus struct {
	Status   string   `json:"status"`
	Service  string   `json:"service,omitempty"`
	Version  string   `json:"version,omitempty"`
	Features []string `json:"features,omitempty"`
	Contexts []string `json:"contexts,omitempty"`
}

type MobileConfig struct {
	AppVersion      string          `json:"app_version"`
	APIEndpoint     string          `json:"api_endpoint"`
	Features        map[string]bool `json:"features,omitempty"`
	UpdateRequired  bool            `json:"update_required"`
	MaintenanceMode bool            `json:"maintenance_mode"`
}

// Health fetches the backend liveness/status probe
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	res, err := Do[HealthStatus](ctx, c, Request{Method: http.MethodGet, Path: "/health"})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Status fetches the API banner served at the backend root
func (c *Client) Status(ctx context.Context) (*APIStatus, error) {
	res, err := Do[APIStatus](ctx, c, Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ChatbotHealth(ctx context.Context) (*ChatbotStatus, error) {
	res, err := Do[ChatbotStatus](ctx, c, Request{Method: http.MethodGet, Path: "/api/chatbot/health"})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) MobileConfig(ctx context.Context) (*MobileConfig, error) {
	res, err := Do[MobileConfig](ctx, c, Request{Method: http.MethodGet, Path: "/api/mobile/config"})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
