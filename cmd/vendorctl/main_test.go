package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/pkg/testutil"
)

func setupBackend(t *testing.T) *testutil.Backend {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)

	primary := domain.NewTopLevel("s-1", "Mama Put")
	primary.Branches = []domain.Store{domain.NewBranch("b-1", "Mama Put Ikeja", "s-1")}
	backend.AddUser(domain.User{
		ID:     "u-1",
		Name:   "Ada",
		Phone:  "2348000000000",
		Stores: []domain.Store{primary, domain.NewTopLevel("s-2", "Ada Fabrics")},
	}, "secret")
	backend.AddOrder("s-2", map[string]interface{}{"_id": "o-1", "orderNumber": "ORD-1", "status": "pending", "totalAmount": 4200})

	t.Setenv("VENDOR_API_BASE_URL", backend.URL())
	t.Setenv("VENDOR_STORAGE_BACKEND", "file")
	t.Setenv("VENDOR_STORAGE_DIR", t.TempDir())
	t.Setenv("VENDOR_LOG_LEVEL", "error")
	return backend
}

func vendorctl(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--env", ""}, args...), &stdout, &stderr)
	return code, stdout.String()
}

func TestVendorctl_SessionLifecycle(t *testing.T) {
	setupBackend(t)

	code, out := vendorctl(t, "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "not logged in")

	code, out = vendorctl(t, "login", "--phone", "2348000000000", "--password", "secret")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "logged in as Ada")

	code, out = vendorctl(t, "stores")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Mama Put Ikeja")

	code, out = vendorctl(t, "switch", "s-2")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Ada Fabrics (s-2)")

	code, out = vendorctl(t, "orders")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "ORD-1")

	code, _ = vendorctl(t, "logout")
	assert.Equal(t, 0, code)
	_, out = vendorctl(t, "status")
	assert.Contains(t, out, "not logged in")
}

func TestVendorctl_LoginRejected(t *testing.T) {
	setupBackend(t)

	code, out := vendorctl(t, "login", "--phone", "2348000000000", "--password", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Invalid credentials")
}

func TestVendorctl_SwitchUnknownStore(t *testing.T) {
	setupBackend(t)
	code, _ := vendorctl(t, "login", "--phone", "2348000000000", "--password", "secret")
	require.Equal(t, 0, code)

	code, out := vendorctl(t, "switch", "nonexistent-id")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "store not found")
}

func TestVendorctl_PasswordReset(t *testing.T) {
	setupBackend(t)

	code, out := vendorctl(t, "otp", "send", "--phone", "2348000000000")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "OTP sent successfully")

	code, out = vendorctl(t, "otp", "verify", "--phone", "2348000000000", "--otp", "000000")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Invalid or expired OTP")

	code, _ = vendorctl(t, "reset-password", "--phone", "2348000000000", "--otp", testutil.DefaultOTP, "--new-password", "fresh")
	require.Equal(t, 0, code)
	code, _ = vendorctl(t, "login", "--phone", "2348000000000", "--password", "fresh")
	assert.Equal(t, 0, code)
}

func TestVendorctl_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: vendorctl")

	code, out := vendorctl(t, "completion", "bash")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "complete -F _vendorctl_completion vendorctl")
}
