package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DashboardStats are the admin aggregate counters.
// Older backends prefix the per-type counters with "total_" - both spellings are accepted.
type DashboardStats struct {
	TotalUsers        int `json:"total_users"`
	Visitors          int `json:"visitors"`
	Exhibitors        int `json:"exhibitors"`
	Partners          int `json:"partners"`
	PendingAccounts   int `json:"pending_accounts,omitempty"`
	ValidatedAccounts int `json:"validated_accounts,omitempty"`
	RecentSignups     int `json:"recent_signups,omitempty"`
	ActiveSessions    int `json:"active_sessions,omitempty"`
}

func (s *DashboardStats) UnmarshalJSON(data []byte) error {
	type plain DashboardStats
	var aux struct {
		plain
		TotalVisitors   *int `json:"total_visitors"`
		TotalExhibitors *int `json:"total_exhibitors"`
		TotalPartners   *int `json:"total_partners"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*s = DashboardStats(aux.plain)
	if aux.TotalVisitors != nil && s.Visitors == 0 {
		s.Visitors = *aux.TotalVisitors
	}
	if aux.TotalExhibitors != nil && s.Exhibitors == 0 {
		s.Exhibitors = *aux.TotalExhibitors
	}
	if aux.TotalPartners != nil && s.Partners == 0 {
		s.Partners = *aux.TotalPartners
	}
	return nil
}

// UserSummary is a row of the admin user lists
type UserSummary struct {
	ID                 ID     `json:"id"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	UserType           string `json:"user_type,omitempty"`
	Company            string `json:"company,omitempty"`
	Status             string `json:"status,omitempty"`
	VisitorPackage     string `json:"visitor_package,omitempty"`
	PartnershipPackage string `json:"partnership_package,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// UserPage is a page of users. Pagination fields are zero when the backend does not paginate.
type UserPage struct {
	Users   []UserSummary `json:"users"`
	Total   int           `json:"total,omitempty"`
	Page    int           `json:"page,omitempty"`
	PerPage int           `json:"per_page,omitempty"`
}

// UserFilter selects users for ListUsers - zero values are not sent
type UserFilter struct {
	Page    int
	PerPage int
	Type    string // visitor, exhibitor, partner
	Status  string // pending, validated, rejected
	Search  string
}

func (f UserFilter) values() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

type validateUserRequest struct {
	AdminEmail string `json:"admin_email,omitempty"`
}

// RejectRequest carries the rejection reason ("raison") and an optional comment ("commentaire")
type RejectRequest struct {
	Reason     string `json:"raison"`
	Comment    string `json:"commentaire,omitempty"`
	AdminEmail string `json:"admin_email,omitempty"`
}

// DashboardStats fetches the admin aggregate statistics
func (c *Client) DashboardStats(ctx context.Context, accessToken string) (*DashboardStats, error) {
	res, err := Do[DashboardStats](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/admin/dashboard/stats",
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListUsers returns the users matching the filter
func (c *Client) ListUsers(ctx context.Context, accessToken string, filter UserFilter) (*UserPage, error) {
	res, err := Do[UserPage](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/admin/users",
		Query:  filter.values(),
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// PendingUsers returns the accounts waiting for validation
func (c *Client) PendingUsers(ctx context.Context, accessToken string, page, perPage int) (*UserPage, error) {
	res, err := Do[UserPage](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/admin/users/pending",
		Query:  UserFilter{Page: page, PerPage: perPage}.values(),
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateUser approves a pending account
func (c *Client) ValidateUser(ctx context.Context, accessToken, userID, adminEmail string) (*ActionResponse, error) {
	res, err := Do[ActionResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/admin/users/%s/validate", url.PathEscape(userID)),
		Body:   validateUserRequest{AdminEmail: adminEmail},
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RejectUser rejects a pending account
func (c *Client) RejectUser(ctx context.Context, accessToken, userID string, req RejectRequest) (*ActionResponse, error) {
	res, err := Do[ActionResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/admin/users/%s/reject", url.PathEscape(userID)),
		Body:   req,
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
