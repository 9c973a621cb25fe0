// Package testutil provides a fake vendor backend and in-memory helpers for
// tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/session"
)

// DefaultOTP is accepted by every OTP endpoint.
const DefaultOTP = "123456"

var signingKey = []byte("testutil-signing-key")

type account struct {
	password string
	userID   string
}

// Backend is an httptest server that speaks the auth, store, order and
// product routes. It is safe for concurrent use.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	users    map[string]*domain.User
	tokens   map[string]string
	orders   map[string][]map[string]interface{}
	calls    map[string]int
	// lastRequestID is the X-Request-ID of the most recent request.
	lastRequestID string
	// profileGate, when set, blocks profile requests until it is closed.
	profileGate chan struct{}
	// failWith forces a status on the named route.
	failWith map[string]int
}

// NewBackend starts a fake backend. Call Close when done.
func NewBackend() *Backend {
	b := &Backend{
		accounts: make(map[string]account),
		users:    make(map[string]*domain.User),
		tokens:   make(map[string]string),
		orders:   make(map[string][]map[string]interface{}),
		calls:    make(map[string]int),
		failWith: make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(b.count)
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost).Name("login")
	auth.HandleFunc("/profile", b.handleProfile).Methods(http.MethodGet).Name("profile")
	auth.HandleFunc("/register", b.handleSendOTP).Methods(http.MethodPost).Name("register")
	auth.HandleFunc("/verify-otp", b.handleVerifyRegistration).Methods(http.MethodPost).Name("verify-otp")
	auth.HandleFunc("/forgot-password", b.handleSendOTP).Methods(http.MethodPost).Name("forgot-password")
	auth.HandleFunc("/verify-reset-otp", b.handleVerifyResetOTP).Methods(http.MethodPost).Name("verify-reset-otp")
	auth.HandleFunc("/reset-password", b.handleResetPassword).Methods(http.MethodPost).Name("reset-password")
	auth.HandleFunc("/set-password", b.handleSetPassword).Methods(http.MethodPost).Name("set-password")
	auth.HandleFunc("/complete-profile", b.handleCompleteProfile).Methods(http.MethodPut).Name("complete-profile")

	r.HandleFunc("/stores", b.handleListStores).Methods(http.MethodGet).Name("stores")
	r.HandleFunc("/orders/store/{storeId}", b.handleListOrders).Methods(http.MethodGet).Name("orders")
	r.HandleFunc("/products", b.handleCreateProduct).Methods(http.MethodPost).Name("products")

	b.Server = httptest.NewServer(r)
	return b
}

// URL is the backend's base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Close shuts the server down, releasing any held profile requests.
func (b *Backend) Close() {
	b.ReleaseProfile()
	b.Server.Close()
}

// AddUser registers an account that can log in with phone and password.
func (b *Backend) AddUser(user domain.User, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	u := user
	b.users[u.ID] = &u
	b.accounts[u.Phone] = account{password: password, userID: u.ID}
}

// SetStores replaces a user's store list, as an owner editing stores
// elsewhere would.
func (b *Backend) SetStores(userID string, stores []domain.Store) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[userID]; ok {
		u.Stores = stores
	}
}

// AddOrder records an order for storeID.
func (b *Backend) AddOrder(storeID string, order map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[storeID] = append(b.orders[storeID], order)
}

// IssueToken returns a valid token for userID without a login call.
func (b *Backend) IssueToken(userID string) string {
	token := SignedToken(userID, time.Now().Add(time.Hour))
	b.mu.Lock()
	b.tokens[token] = userID
	b.mu.Unlock()
	return token
}

// RevokeToken invalidates a token.
func (b *Backend) RevokeToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// FailRoute makes the named route answer with status until cleared with 0.
func (b *Backend) FailRoute(name string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failWith, name)
		return
	}
	b.failWith[name] = status
}

// HoldProfile blocks profile requests until ReleaseProfile is called.
func (b *Backend) HoldProfile() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.profileGate == nil {
		b.profileGate = make(chan struct{})
	}
}

// ReleaseProfile unblocks held profile requests.
func (b *Backend) ReleaseProfile() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.profileGate != nil {
		close(b.profileGate)
		b.profileGate = nil
	}
}

// Calls returns how many requests the named route has served.
func (b *Backend) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

// LastRequestID returns the request id header of the latest request.
func (b *Backend) LastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRequestID
}

// SignedToken mints an HS256 JWT for sub expiring at exp.
func SignedToken(sub string, exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		ID:        uuid.NewString(),
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("sign test token: %v", err))
	}
	return signed
}

// =============================================================================
// Handlers
// =============================================================================

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		b.mu.Lock()
		b.calls[name]++
		b.lastRequestID = r.Header.Get(httputil.RequestIDHeader)
		status := b.failWith[name]
		b.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	b.mu.Lock()
	acct, ok := b.accounts[req.Phone]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": session.MsgUserNotFound})
		return
	}
	if acct.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": session.MsgInvalidCredentials})
		return
	}

	token := b.IssueToken(acct.userID)
	b.mu.Lock()
	user := *b.users[acct.userID]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func (b *Backend) handleProfile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	gate := b.profileGate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	user, ok := b.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (b *Backend) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Phone number is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": session.MsgOTPSent})
}

func (b *Backend) handleVerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.OTP != DefaultOTP {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": session.MsgInvalidOTP})
		return
	}

	b.mu.Lock()
	acct, exists := b.accounts[req.Phone]
	b.mu.Unlock()
	if !exists {
		b.AddUser(domain.User{Phone: req.Phone}, "")
		b.mu.Lock()
		acct = b.accounts[req.Phone]
		b.mu.Unlock()
	}
	token := b.IssueToken(acct.userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": session.MsgOTPVerified, "token": token})
}

func (b *Backend) handleVerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OTP string `json:"otp"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.OTP != DefaultOTP {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": session.MsgInvalidOTP})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": session.MsgOTPVerified})
}

func (b *Backend) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone       string `json:"phone"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.OTP != DefaultOTP {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": session.MsgInvalidOTP})
		return
	}
	if !b.setPassword(req.Phone, req.NewPassword) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": session.MsgUserNotFound})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": session.MsgPasswordReset})
}

func (b *Backend) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if !b.setPassword(req.Phone, req.Password) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": session.MsgUserNotFound})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": session.MsgPasswordSet})
}

func (b *Backend) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := b.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	var req struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		BusinessName string `json:"businessName"`
		StoreLink    string `json:"storeLink"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	u := b.users[user.ID]
	u.Name, u.Email, u.ProfileCompleted = req.Name, req.Email, true
	if req.BusinessName != "" {
		store := domain.NewTopLevel(uuid.NewString(), req.BusinessName)
		store.StoreLink = req.StoreLink
		store.Owner = u.ID
		u.Stores = append(u.Stores, store)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": session.MsgProfileCompleted})
}

func (b *Backend) handleListStores(w http.ResponseWriter, r *http.Request) {
	user, ok := b.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stores": user.Stores})
}

func (b *Backend) handleListOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	storeID := mux.Vars(r)["storeId"]
	b.mu.Lock()
	orders := append([]map[string]interface{}{}, b.orders[storeID]...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (b *Backend) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	var product map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	product["_id"] = uuid.NewString()
	writeJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

func (b *Backend) authenticate(r *http.Request) (domain.User, bool) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return domain.User{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.tokens[token]
	if !ok {
		return domain.User{}, false
	}
	u, ok := b.users[userID]
	if !ok {
		return domain.User{}, false
	}
	return *u.Clone(), true
}

func (b *Backend) setPassword(phone, password string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[phone]
	if !ok {
		return false
	}
	acct.password = password
	b.accounts[phone] = acct
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
