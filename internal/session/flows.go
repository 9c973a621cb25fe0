package session

import (
	"context"
	"strings"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/api"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
)

// The onboarding and password flows below do not touch session state. Each
// returns the server reply verbatim, non-2xx included; only a missing
// response is an error.

// Register sends an onboarding OTP to phone.
func (m *Manager) Register(ctx context.Context, phone string) (*httputil.Response, error) {
	return passthrough(m.api.Register(ctx, strings.TrimSpace(phone)))
}

// VerifyRegistrationOTP confirms an onboarding OTP. When the reply carries
// a token it is persisted, so the next CheckLoginStatus authenticates.
func (m *Manager) VerifyRegistrationOTP(ctx context.Context, phone, otp string) (*api.AuthResponse, error) {
	auth, err := m.api.VerifyOTP(ctx, strings.TrimSpace(phone), strings.TrimSpace(otp))
	if err != nil {
		return nil, apperrors.Normalize(err)
	}
	if auth != nil && auth.Raw.OK() && auth.Token != "" {
		_ = m.tokens.Save(ctx, auth.Token)
		m.logger.LogSecurityEvent(ctx, "registration_verified", map[string]interface{}{"phone": maskPhone(phone)})
	}
	return auth, nil
}

// SendResetOTP requests a password-reset OTP.
func (m *Manager) SendResetOTP(ctx context.Context, phone string) (*httputil.Response, error) {
	return passthrough(m.api.SendResetOTP(ctx, strings.TrimSpace(phone)))
}

// VerifyResetOTP checks a password-reset OTP.
func (m *Manager) VerifyResetOTP(ctx context.Context, phone, otp string) (*httputil.Response, error) {
	return passthrough(m.api.VerifyResetOTP(ctx, strings.TrimSpace(phone), strings.TrimSpace(otp)))
}

// ResetPassword sets a new password with a verified OTP.
func (m *Manager) ResetPassword(ctx context.Context, phone, otp, newPassword string) (*httputil.Response, error) {
	resp, err := passthrough(m.api.ResetPassword(ctx, strings.TrimSpace(phone), strings.TrimSpace(otp), newPassword))
	if resp != nil && resp.OK() {
		m.logger.LogSecurityEvent(ctx, "password_reset", map[string]interface{}{"phone": maskPhone(phone)})
	}
	return resp, err
}

// SetPassword sets the first password after onboarding.
func (m *Manager) SetPassword(ctx context.Context, data api.PasswordSet) (*httputil.Response, error) {
	data.Phone = strings.TrimSpace(data.Phone)
	return passthrough(m.api.SetPassword(ctx, data))
}

// CompleteOwnerProfile submits the owner's onboarding details.
func (m *Manager) CompleteOwnerProfile(ctx context.Context, data api.ProfileUpdate) (*httputil.Response, error) {
	return passthrough(m.api.CompleteOwnerProfile(ctx, data))
}

func passthrough(resp *httputil.Response, err error) (*httputil.Response, error) {
	if resp != nil || err == nil {
		return resp, nil
	}
	return nil, apperrors.Normalize(err)
}

// maskPhone keeps the last four digits for logs.
func maskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
