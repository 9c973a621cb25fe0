// Package api wraps the backend REST endpoints on top of the shared
// httputil client.
package api

import (
	"net/url"
	"strings"
	"sync"

	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
)

// Routes holds the auth endpoint paths, which vary between deployments.
type Routes struct {
	Login           string `yaml:"login"`
	Profile         string `yaml:"profile"`
	Register        string `yaml:"register"`
	VerifyOTP       string `yaml:"verify_otp"`
	ForgotPassword  string `yaml:"forgot_password"`
	VerifyResetOTP  string `yaml:"verify_reset_otp"`
	ResetPassword   string `yaml:"reset_password"`
	SetPassword     string `yaml:"set_password"`
	CompleteProfile string `yaml:"complete_profile"`
}

// DefaultRoutes returns the production auth paths.
func DefaultRoutes() Routes {
	return Routes{
		Login:           "/auth/login",
		Profile:         "/auth/profile",
		Register:        "/auth/register",
		VerifyOTP:       "/auth/verify-otp",
		ForgotPassword:  "/auth/forgot-password",
		VerifyResetOTP:  "/auth/verify-reset-otp",
		ResetPassword:   "/auth/reset-password",
		SetPassword:     "/auth/set-password",
		CompleteProfile: "/auth/complete-profile",
	}
}

// withDefaults fills empty routes from DefaultRoutes.
func (r Routes) withDefaults() Routes {
	d := DefaultRoutes()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&r.Login, d.Login)
	fill(&r.Profile, d.Profile)
	fill(&r.Register, d.Register)
	fill(&r.VerifyOTP, d.VerifyOTP)
	fill(&r.ForgotPassword, d.ForgotPassword)
	fill(&r.VerifyResetOTP, d.VerifyResetOTP)
	fill(&r.ResetPassword, d.ResetPassword)
	fill(&r.SetPassword, d.SetPassword)
	fill(&r.CompleteProfile, d.CompleteProfile)
	return r
}

// Client exposes the typed endpoints.
type Client struct {
	http   *httputil.Client
	routes Routes

	mu    sync.RWMutex
	scope func() string
}

// New creates a Client. Empty routes take their defaults.
func New(http *httputil.Client, routes Routes) *Client {
	return &Client{http: http, routes: routes.withDefaults()}
}

// HTTP returns the underlying shared client.
func (c *Client) HTTP() *httputil.Client {
	return c.http
}

// Routes returns the effective auth routes.
func (c *Client) Routes() Routes {
	return c.routes
}

// SetScope installs the active-store lookup used when a store-scoped call
// is given an empty id.
func (c *Client) SetScope(scope func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = scope
}

func (c *Client) storeID(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	c.mu.RLock()
	scope := c.scope
	c.mu.RUnlock()
	if scope != nil {
		if id := scope(); id != "" {
			return id, nil
		}
	}
	return "", apperrors.ErrNoActiveStore
}

// path joins escaped segments onto a route prefix.
func path(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
