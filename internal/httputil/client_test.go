package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
)

// =============================================================================
// Construction
// =============================================================================

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"empty", "", true},
		{"no scheme", "api.tradeet.ng", true},
		{"bad scheme", "ftp://api.tradeet.ng", true},
		{"https", "https://api.tradeet.ng/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(Config{BaseURL: tt.baseURL})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://api.tradeet.ng", c.BaseURL())
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
	assert.Nil(t, c.limiter)
	assert.EqualValues(t, defaultMaxBodyBytes, c.maxBodyBytes)
}

// =============================================================================
// Requests
// =============================================================================

func TestClient_InjectsBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	token := "tok-1"
	c, err := New(Config{BaseURL: server.URL, TokenSource: func() string { return token }})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/auth/profile")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotRequestID)

	token = ""
	_, err = c.Get(context.Background(), "auth/profile")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_SetTokenSource(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	c.SetTokenSource(func() string { return "swapped" })

	_, err = c.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "Bearer swapped", gotAuth)
}

func TestClient_PostEncodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2348000000000", body["phone"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"OTP sent"}`))
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := c.Post(context.Background(), "/auth/forgot-password", map[string]string{"phone": "2348000000000"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.MessageIs("OTP sent"))
}

func TestClient_ServerErrorCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid phone number or password"}`))
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := c.Post(context.Background(), "/auth/login", map[string]string{})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, "Invalid phone number or password", apperrors.UserMessage(err))
}

func TestClient_ServerErrorWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/stores")
	require.Error(t, err)
	assert.Equal(t, apperrors.GenericMessage, apperrors.UserMessage(err))
	assert.Equal(t, http.StatusBadGateway, apperrors.StatusOf(err))
}

func TestClient_DoesNotRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/orders/store/s-1")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := New(Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), "/auth/profile")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork))
	assert.Equal(t, apperrors.GenericMessage, apperrors.UserMessage(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, "/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL, RequestsPerSecond: 1, Burst: 1})
	require.NoError(t, err)
	require.NotNil(t, c.limiter)

	_, err = c.Get(context.Background(), "/x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, "/x")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNetwork))
}

// =============================================================================
// Responses
// =============================================================================

func TestResponse_Message(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"Login successful"}`, "Login successful"},
		{`{"error":"Store not found"}`, "Store not found"},
		{`{"error":{"message":"nested"}}`, "nested"},
		{`{"message":42}`, ""},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		resp := &Response{StatusCode: http.StatusOK, Body: []byte(tt.body)}
		assert.Equal(t, tt.want, resp.Message(), "body %q", tt.body)
	}
}

func TestDecodeResponse(t *testing.T) {
	var user struct {
		ID string `json:"id"`
	}

	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{"user":{"id":"u-1"}}`)}
	require.NoError(t, DecodeResponse(resp, "user", &user))
	assert.Equal(t, "u-1", user.ID)

	resp = &Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"u-2"}`)}
	require.NoError(t, DecodeResponse(resp, "user", &user))
	assert.Equal(t, "u-2", user.ID)

	resp = &Response{StatusCode: http.StatusOK, Body: []byte(`{"id":`)}
	err := DecodeResponse(resp, "", &user)
	assert.True(t, apperrors.IsKind(err, apperrors.KindMalformed))

	resp = &Response{StatusCode: http.StatusNotFound, Body: []byte(`{"message":"gone"}`)}
	err = DecodeResponse(resp, "", &user)
	assert.Equal(t, "gone", apperrors.UserMessage(err))

	assert.NoError(t, DecodeResponse(&Response{StatusCode: http.StatusNoContent}, "", nil))
}
