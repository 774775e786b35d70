package client

import (
	"context"
	"net/http"
)

// =============================================================================
// AUTHENTICATION TYPES
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by the login and visitor-login endpoints
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type,omitempty"`
	ExpiresIn   int      `json:"expires_in,omitempty"` // seconds
	User        *Profile `json:"user,omitempty"`
}

// Profile is the user record attached to a session.
// Depending on the backend version the role is sent as "role" or "user_type".
type Profile struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	UserType  string `json:"user_type,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
}

// EffectiveRole returns role, falling back to user_type
func (p *Profile) EffectiveRole() string {
	if p == nil {
		return ""
	}
	if p.Role != "" {
		return p.Role
	}
	return p.UserType
}

func (p *Profile) IsAdmin() bool {
	return p.EffectiveRole() == "admin"
}

// DisplayName returns "first last", or the email when no name is known
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.Email
	}
	return name
}

type Permissions struct {
	CanAccessAdmin     bool `json:"can_access_admin"`
	CanAccessDashboard bool `json:"can_access_dashboard"`
	CanCreateMinisite  bool `json:"can_create_minisite"`
}

// MeResponse is the current profile plus permissions when the backend sends them
type MeResponse struct {
	Profile
	Permissions *Permissions `json:"permissions,omitempty"`
}

// meEnvelope accepts both the bare profile and the {"user": ..., "permissions": ...} envelope
type meEnvelope struct {
	Profile
	User        *Profile     `json:"user"`
	Permissions *Permissions `json:"permissions"`
}

type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Company        string `json:"company,omitempty"`
	Phone          string `json:"phone,omitempty"`
	UserType       string `json:"user_type,omitempty"`
	VisitorPackage string `json:"visitor_package,omitempty"`
}

// Login authenticates a user with the SIPORTS API.
// The caller owns the returned token - the client does not keep it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	res, err := Do[LoginResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body: LoginRequest{
			Email:    email,
			Password: password,
		},
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// VisitorLogin opens an anonymous visitor session
func (c *Client) VisitorLogin(ctx context.Context) (*LoginResponse, error) {
	res, err := Do[LoginResponse](ctx, c, Request{Method: http.MethodPost, Path: "/api/auth/visitor-login"})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates a new account. New accounts are pending until an admin validates them.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*ActionResponse, error) {
	res, err := Do[ActionResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Me fetches the profile for the supplied token (an empty token falls back to the client's TokenProvider)
func (c *Client) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	env, err := Do[meEnvelope](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/api/auth/me",
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}

	me := &MeResponse{Profile: env.Profile, Permissions: env.Permissions}
	if env.User != nil {
		me.Profile = *env.User
	}
	return me, nil
}
