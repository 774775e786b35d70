package client

import (
	"context"
	"net/http"
)

// Package is a visitor or partner offer
type Package struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Features     []string `json:"features"`
	Limitations  []string `json:"limitations,omitempty"`
	Popular      bool     `json:"popular,omitempty"`
	MiniSite     bool     `json:"mini_site,omitempty"`
	MiniSiteType string   `json:"mini_site_type,omitempty"`
}

type packageList struct {
	Packages []Package `json:"packages"`
}

// VisitorPackages returns the inner "packages" array of GET /api/visitor-packages
func (c *Client) VisitorPackages(ctx context.Context) ([]Package, error) {
	return c.listPackages(ctx, "/api/visitor-packages")
}

// PartnerPackages returns the inner "packages" array of GET /api/partner-packages
func (c *Client) PartnerPackages(ctx context.Context) ([]Package, error) {
	return c.listPackages(ctx, "/api/partner-packages")
}

func (c *Client) listPackages(ctx context.Context, path string) ([]Package, error) {
	res, err := Do[packageList](ctx, c, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	return res.Packages, nil
}
