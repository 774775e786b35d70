package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Exhibitor is an entry of the exhibitor directory (the backend calls them "exposants")
type Exhibitor struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Stand       string   `json:"stand"`
	Hall        string   `json:"hall"`
	Description string   `json:"description"`
	Specialties []string `json:"specialties"`
	Website     string   `json:"website,omitempty"`
	Logo        string   `json:"logo,omitempty"`
}

type exhibitorList struct {
	Exposants []Exhibitor `json:"exposants"`
}

type Product struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MiniSite is an exhibitor's public page
type MiniSite struct {
	ID              ID              `json:"id"`
	CompanyName     string          `json:"company_name"`
	LogoURL         string          `json:"logo_url,omitempty"`
	Description     string          `json:"description,omitempty"`
	Website         string          `json:"website,omitempty"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	Products        []Product       `json:"products,omitempty"`
	Gallery         []string        `json:"gallery,omitempty"`
	PackageType     string          `json:"package_type,omitempty"`
	FeaturesEnabled map[string]bool `json:"features_enabled,omitempty"`
}

// ContactMessage is posted to an exhibitor's mini-site contact form
type ContactMessage struct {
	ExhibitorID ID     `json:"exhibitor_id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company,omitempty"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

// ListExhibitors returns the exhibitor directory (the inner "exposants" array)
func (c *Client) ListExhibitors(ctx context.Context) ([]Exhibitor, error) {
	res, err := Do[exhibitorList](ctx, c, Request{Method: http.MethodGet, Path: "/api/exposants"})
	if err != nil {
		return nil, err
	}
	return res.Exposants, nil
}

// GetExhibitor fetches a single exhibitor. Both a bare object and an {"exposant": {...}} envelope are accepted.
func (c *Client) GetExhibitor(ctx context.Context, id string) (*Exhibitor, error) {
	raw, err := Do[json.RawMessage](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/exposants/%s", url.PathEscape(id)),
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Exposant *Exhibitor `json:"exposant"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, NewDecodeError(err, raw)
	}
	if envelope.Exposant != nil {
		return envelope.Exposant, nil
	}

	var exhibitor Exhibitor
	if err := json.Unmarshal(raw, &exhibitor); err != nil {
		return nil, NewDecodeError(err, raw)
	}
	return &exhibitor, nil
}

func (c *Client) ExhibitorMiniSite(ctx context.Context, id string) (*MiniSite, error) {
	res, err := Do[MiniSite](ctx, c, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/exhibitor/%s/mini-site", url.PathEscape(id)),
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ContactExhibitor posts a contact payload. The payload is sent as-is so callers can add backend specific fields.
func (c *Client) ContactExhibitor(ctx context.Context, payload any) (*ActionResponse, error) {
	res, err := Do[ActionResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/exhibitor/mini-site/contact",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
