package session

// Messages the backend returns on the onboarding and reset flows. Callers
// compare httputil.Response.Message against these with MessageIs; the
// backend reports success through copy rather than a status enum.
const (
	MsgOTPSent              = "OTP sent successfully"
	MsgOTPVerified          = "OTP verified successfully"
	MsgInvalidOTP           = "Invalid or expired OTP"
	MsgPasswordReset        = "Password reset successfully"
	MsgPasswordSet          = "Password set successfully"
	MsgProfileCompleted     = "Profile completed successfully"
	MsgUserNotFound         = "User not found"
	MsgInvalidCredentials   = "Invalid credentials"
	MsgPhoneAlreadyVerified = "Phone number already verified"
)
