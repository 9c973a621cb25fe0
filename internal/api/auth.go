package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
)

// Token and user locations seen across backend versions.
var (
	tokenPaths = []string{"token", "accessToken", "access_token", "data.token"}
	userPaths  = []string{"user", "vendor", "data.user", "data"}
)

// AuthResponse is the outcome of a credential exchange. It is returned for
// both accepted and rejected attempts; Raw holds the server reply verbatim.
type AuthResponse struct {
	StatusCode int
	Message    string
	Token      string
	User       *domain.User
	Raw        *httputil.Response
}

// OK reports whether the backend accepted the attempt and issued a token.
func (a *AuthResponse) OK() bool {
	return a != nil && a.Raw.OK() && a.Token != ""
}

// ProfileUpdate is the owner-onboarding payload.
type ProfileUpdate struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	BusinessName string `json:"businessName,omitempty"`
	StoreLink    string `json:"storeLink,omitempty"`
	Address      string `json:"address,omitempty"`
	Category     string `json:"category,omitempty"`
}

// PasswordSet is the first-password payload after OTP verification.
type PasswordSet struct {
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// Login posts credentials. A rejection returns the AuthResponse together
// with the server error; a 2xx reply without a token but with a message
// returns the AuthResponse alone. A transport failure returns only the error.
func (c *Client) Login(ctx context.Context, phone, password string) (*AuthResponse, error) {
	resp, err := c.http.Post(ctx, c.routes.Login, map[string]string{
		"phone":    phone,
		"password": password,
	})
	if resp == nil {
		return nil, err
	}
	auth, decodeErr := decodeAuth(resp)
	if err != nil {
		return auth, err
	}
	if decodeErr != nil {
		return auth, decodeErr
	}
	if auth.Token == "" {
		// A message-only reply is the server's answer; callers compare it.
		if auth.Message != "" {
			return auth, nil
		}
		return auth, apperrors.Malformed(fmt.Errorf("login response carried no token"))
	}
	return auth, nil
}

// Profile fetches the authenticated user with the current token.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	resp, err := c.http.Get(ctx, c.routes.Profile)
	if err != nil {
		return nil, err
	}
	user, err := decodeUser(resp)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Malformed(fmt.Errorf("profile response carried no user"))
	}
	return user, nil
}

// Register starts owner onboarding by sending an OTP to phone.
func (c *Client) Register(ctx context.Context, phone string) (*httputil.Response, error) {
	return c.passthrough(ctx, c.routes.Register, map[string]string{"phone": phone})
}

// VerifyOTP confirms an onboarding OTP. The reply may carry a token.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*AuthResponse, error) {
	resp, err := c.passthrough(ctx, c.routes.VerifyOTP, map[string]string{"phone": phone, "otp": otp})
	if err != nil {
		return nil, err
	}
	auth, _ := decodeAuth(resp)
	return auth, nil
}

// SendResetOTP requests a password-reset OTP.
func (c *Client) SendResetOTP(ctx context.Context, phone string) (*httputil.Response, error) {
	return c.passthrough(ctx, c.routes.ForgotPassword, map[string]string{"phone": phone})
}

// VerifyResetOTP checks a password-reset OTP.
func (c *Client) VerifyResetOTP(ctx context.Context, phone, otp string) (*httputil.Response, error) {
	return c.passthrough(ctx, c.routes.VerifyResetOTP, map[string]string{"phone": phone, "otp": otp})
}

// ResetPassword sets a new password using a verified OTP.
func (c *Client) ResetPassword(ctx context.Context, phone, otp, newPassword string) (*httputil.Response, error) {
	return c.passthrough(ctx, c.routes.ResetPassword, map[string]string{
		"phone":       phone,
		"otp":         otp,
		"newPassword": newPassword,
	})
}

// SetPassword sets the first password after onboarding.
func (c *Client) SetPassword(ctx context.Context, data PasswordSet) (*httputil.Response, error) {
	return c.passthrough(ctx, c.routes.SetPassword, data)
}

// CompleteOwnerProfile submits the owner's onboarding details.
func (c *Client) CompleteOwnerProfile(ctx context.Context, data ProfileUpdate) (*httputil.Response, error) {
	resp, err := c.http.Put(ctx, c.routes.CompleteProfile, data)
	return verbatim(resp, err)
}

func (c *Client) passthrough(ctx context.Context, route string, body interface{}) (*httputil.Response, error) {
	resp, err := c.http.Post(ctx, route, body)
	return verbatim(resp, err)
}

// verbatim drops server errors when a response exists, so the caller sees
// the reply as sent.
func verbatim(resp *httputil.Response, err error) (*httputil.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func decodeAuth(resp *httputil.Response) (*AuthResponse, error) {
	auth := &AuthResponse{
		StatusCode: resp.StatusCode,
		Message:    resp.Message(),
		Raw:        resp,
	}
	for _, p := range tokenPaths {
		if v := resp.Field(p); v.Exists() && v.String() != "" {
			auth.Token = v.String()
			break
		}
	}
	user, err := decodeUser(resp)
	if err != nil {
		return auth, err
	}
	auth.User = user
	return auth, nil
}

// decodeUser returns the first object found at userPaths that carries an id.
func decodeUser(resp *httputil.Response) (*domain.User, error) {
	candidates := make([]string, 0, len(userPaths)+1)
	for _, p := range userPaths {
		if v := resp.Field(p); v.Exists() && v.IsObject() {
			candidates = append(candidates, v.Raw)
		}
	}
	candidates = append(candidates, string(resp.Body))

	for _, raw := range candidates {
		var user domain.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, apperrors.Malformed(fmt.Errorf("decode user: %w", err))
		}
		if user.ID != "" {
			return &user, nil
		}
	}
	return nil, nil
}
