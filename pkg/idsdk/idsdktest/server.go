// Package idsdktest provides an in-memory identity service for tests. It
// speaks the same wire format as the real service for the endpoints the SDK
// uses, and nothing more.
package idsdktest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
)

const (
	TenantKeyID     = "TENANTKEYID"
	TenantKeySecret = "tenant-key-secret-for-tests"
)

type account struct {
	idsdk.Account
	password string
}

// Server is a fake identity service backed by maps.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	app         idsdk.Application
	accounts    map[string]*account
	keys        map[string]*idsdk.APIKey
	keyOwner    map[string]string
	resetTokens map[string]string
	seq         int

	// APIKeyLookups counts GET {app}/apiKeys calls.
	APIKeyLookups atomic.Int64
	// LastAPIKeyQuery is the raw query of the most recent lookup.
	LastAPIKeyQuery atomic.Value
}

// NewServer starts a fake service that is closed with the test.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts:    make(map[string]*account),
		keys:        make(map[string]*idsdk.APIKey),
		keyOwner:    make(map[string]string),
		resetTokens: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/applications/app", s.handleGetApplication)
	mux.HandleFunc("GET /v1/applications/app/apiKeys", s.handleListAPIKeys)
	mux.HandleFunc("POST /v1/applications/app/accounts", s.handleCreateAccount)
	mux.HandleFunc("POST /v1/applications/app/loginAttempts", s.handleLoginAttempt)
	mux.HandleFunc("POST /v1/applications/app/passwordResetTokens", s.handleCreateResetToken)
	mux.HandleFunc("GET /v1/applications/app/passwordResetTokens/{token}", s.handleGetResetToken)
	mux.HandleFunc("POST /v1/applications/app/passwordResetTokens/{token}", s.handleConsumeResetToken)
	mux.HandleFunc("GET /v1/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("POST /v1/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("POST /v1/accounts/{id}/apiKeys", s.handleCreateAPIKey)
	mux.HandleFunc("POST /v1/apiKeys/{id}", s.handleUpdateAPIKey)

	s.Server = httptest.NewServer(requireTenant(mux))
	s.app = idsdk.Application{
		Href:                s.URL + "/v1/applications/app",
		Name:                "test-app",
		Status:              idsdk.ApplicationStatusEnabled,
		DefaultAccountStore: &idsdk.Link{Href: s.URL + "/v1/directories/dir"},
	}
	t.Cleanup(s.Close)
	return s
}

// Client returns an SDK client authenticated as the tenant.
func (s *Server) Client() *idsdk.Client {
	return idsdk.NewClient(s.URL, Credentials(), idsdk.WithHTTPClient(s.Server.Client()))
}

// Credentials returns the tenant API key the fake accepts.
func Credentials() idsdk.Credentials {
	return idsdk.Credentials{ID: TenantKeyID, Secret: TenantKeySecret}
}

// AppHref is the href of the single application.
func (s *Server) AppHref() string { return s.app.Href }

// AddAccount stores an account and returns a copy of it.
func (s *Server) AddAccount(username, email, password string, status idsdk.AccountStatus) idsdk.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(username, email, password, status)
}

func (s *Server) addAccountLocked(username, email, password string, status idsdk.AccountStatus) idsdk.Account {
	s.seq++
	id := fmt.Sprintf("acct%d", s.seq)
	a := &account{
		Account: idsdk.Account{
			Href:      s.URL + "/v1/accounts/" + id,
			Username:  username,
			Email:     email,
			GivenName: strings.ToUpper(username[:1]) + username[1:],
			Status:    status,
			Directory: s.app.DefaultAccountStore,
		},
		password: password,
	}
	s.accounts[id] = a
	return a.Account
}

// AddAPIKey creates a key owned by the account at accountHref.
func (s *Server) AddAPIKey(accountHref string, status idsdk.APIKeyStatus) idsdk.APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addKeyLocked(idFromHref(accountHref), status)
}

func (s *Server) addKeyLocked(accountID string, status idsdk.APIKeyStatus) idsdk.APIKey {
	s.seq++
	id := fmt.Sprintf("KEY%d", s.seq)
	k := &idsdk.APIKey{
		Href:   s.URL + "/v1/apiKeys/" + id,
		ID:     id,
		Secret: fmt.Sprintf("secret-%d-for-%s", s.seq, accountID),
		Status: status,
	}
	s.keys[id] = k
	s.keyOwner[id] = accountID
	return *k
}

// SetAccountStatus changes an account's status directly.
func (s *Server) SetAccountStatus(accountHref string, status idsdk.AccountStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[idFromHref(accountHref)]; ok {
		a.Status = status
	}
}

// ResetTokenFor returns the outstanding reset token for email, if any.
func (s *Server) ResetTokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, id := range s.resetTokens {
		if s.accounts[id].Email == email {
			return tok
		}
	}
	return ""
}

// PasswordOf returns the current password of an account.
func (s *Server) PasswordOf(accountHref string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[idFromHref(accountHref)].password
}

func requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != TenantKeyID || secret != TenantKeySecret {
			writeError(w, http.StatusUnauthorized, 401, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app)
}

func (s *Server) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	s.APIKeyLookups.Add(1)
	s.LastAPIKeyQuery.Store(r.URL.RawQuery)

	s.mu.Lock()
	defer s.mu.Unlock()

	page := idsdk.Collection[idsdk.APIKey]{Href: s.app.Href + "/apiKeys", Limit: 25, Items: []idsdk.APIKey{}}
	if k, ok := s.keys[r.URL.Query().Get("id")]; ok {
		page.Items = append(page.Items, s.renderKeyLocked(k, r.URL.Query().Get("expand") == "account"))
		page.Size = 1
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) renderKeyLocked(k *idsdk.APIKey, expand bool) idsdk.APIKey {
	out := *k
	owner := s.accounts[s.keyOwner[k.ID]]
	if expand {
		acct := owner.Account
		out.Account = &acct
	} else {
		out.Account = &idsdk.Account{Href: owner.Href}
	}
	return out
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req idsdk.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "invalid account")
		return
	}
	status := req.Status
	if status == "" {
		status = idsdk.AccountStatusEnabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == req.Username {
			writeError(w, http.StatusConflict, idsdk.CodeDuplicateUsername, "username taken")
			return
		}
	}
	acct := s.addAccountLocked(req.Username, req.Email, req.Password, status)
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleLoginAttempt(w http.ResponseWriter, r *http.Request) {
	var req idsdk.LoginAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type != "basic" {
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "invalid login attempt")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "invalid login attempt")
		return
	}
	username, password, _ := strings.Cut(string(raw), ":")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if (a.Username == username || a.Email == username) && a.password == password {
			if a.Status != idsdk.AccountStatusEnabled {
				writeError(w, http.StatusBadRequest, idsdk.CodeAccountDisabled, "account is not enabled")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"account": map[string]string{"href": a.Href}})
			return
		}
	}
	writeError(w, http.StatusBadRequest, idsdk.CodeInvalidLogin, "invalid username or password")
}

func (s *Server) handleCreateResetToken(w http.ResponseWriter, r *http.Request) {
	var req idsdk.PasswordResetRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.accounts {
		if a.Email == req.Email {
			s.seq++
			tok := fmt.Sprintf("rst%d", s.seq)
			s.resetTokens[tok] = id
			writeJSON(w, http.StatusOK, idsdk.PasswordResetToken{
				Href:    s.app.Href + "/passwordResetTokens/" + tok,
				Email:   a.Email,
				Account: &idsdk.Account{Href: a.Href},
			})
			return
		}
	}
	writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "no account with that email")
}

func (s *Server) handleGetResetToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := r.PathValue("token")
	id, ok := s.resetTokens[tok]
	if !ok {
		writeError(w, http.StatusNotFound, idsdk.CodeInvalidResetToken, "token not found")
		return
	}
	a := s.accounts[id]
	writeJSON(w, http.StatusOK, idsdk.PasswordResetToken{
		Href:    s.app.Href + "/passwordResetTokens/" + tok,
		Email:   a.Email,
		Account: &idsdk.Account{Href: a.Href},
	})
}

func (s *Server) handleConsumeResetToken(w http.ResponseWriter, r *http.Request) {
	var req idsdk.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "password required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tok := r.PathValue("token")
	id, ok := s.resetTokens[tok]
	if !ok {
		writeError(w, http.StatusNotFound, idsdk.CodeInvalidResetToken, "token not found")
		return
	}
	delete(s.resetTokens, tok)
	a := s.accounts[id]
	a.password = req.Password
	writeJSON(w, http.StatusOK, idsdk.PasswordResetToken{
		Href:    s.app.Href + "/passwordResetTokens/" + tok,
		Email:   a.Email,
		Account: &idsdk.Account{Href: a.Href},
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, idsdk.CodeResourceNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, a.Account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req idsdk.StatusUpdateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, idsdk.CodeResourceNotFound, "account not found")
		return
	}
	a.Status = idsdk.AccountStatus(req.Status)
	writeJSON(w, http.StatusOK, a.Account)
}

func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := s.accounts[id]; !ok {
		writeError(w, http.StatusNotFound, idsdk.CodeResourceNotFound, "account not found")
		return
	}
	k := s.addKeyLocked(id, idsdk.APIKeyStatusEnabled)
	writeJSON(w, http.StatusCreated, s.renderKeyLocked(s.keys[k.ID], false))
}

func (s *Server) handleUpdateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req idsdk.StatusUpdateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, idsdk.CodeResourceNotFound, "api key not found")
		return
	}
	k.Status = idsdk.APIKeyStatus(req.Status)
	out := s.renderKeyLocked(k, false)
	out.Secret = ""
	writeJSON(w, http.StatusOK, out)
}

func idFromHref(href string) string {
	return href[strings.LastIndex(href, "/")+1:]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, idsdk.ResourceError{Status: status, Code: code, Message: msg})
}
