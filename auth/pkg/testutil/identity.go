// Package testutil provides an in-process identity service for tests.
package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ErrInvalidToken is returned by ValidateToken for bad or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

type account struct {
	uid      string
	email    string
	password string
	name     string
	photo    string
}

// Identity is a fake identity-toolkit service issuing HS256 tokens.
type Identity struct {
	*httptest.Server

	mu        sync.Mutex
	secret    []byte
	accounts  map[string]*account // by email
	federated map[string]*account // by provider id token
	refresh   map[string]string   // refresh token -> email
	// TTL is the lifetime of issued id tokens.
	TTL time.Duration
	// Now is the clock used to sign tokens.
	Now func() time.Time
}

// NewIdentity starts a fake identity service. Close it when done.
func NewIdentity() *Identity {
	id := &Identity{
		secret:    []byte("test-secrets"),
		accounts:  map[string]*account{},
		federated: map[string]*account{},
		refresh:   map[string]string{},
		TTL:       time.Hour,
		Now:       time.Now,
	}
	r := mux.NewRouter()
	r.HandleFunc("/v1/accounts:signUp", id.signUp).Methods(http.MethodPost)
	r.HandleFunc("/v1/accounts:signInWithPassword", id.signInWithPassword).Methods(http.MethodPost)
	r.HandleFunc("/v1/accounts:signInWithIdp", id.signInWithIdp).Methods(http.MethodPost)
	r.HandleFunc("/v1/accounts:update", id.update).Methods(http.MethodPost)
	r.HandleFunc("/v1/token", id.token).Methods(http.MethodPost)
	id.Server = httptest.NewServer(r)
	return id
}

// AddAccount registers an email/password account.
func (id *Identity) AddAccount(email, password, name string) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.accounts[email] = &account{uid: uuid.NewString(), email: email, password: password, name: name}
}

// AddGoogleAccount makes idToken a valid federated credential for email.
func (id *Identity) AddGoogleAccount(idToken, email, name, photo string) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.federated[idToken] = &account{uid: uuid.NewString(), email: email, name: name, photo: photo}
}

// IssueToken signs an id token for email that expires after ttl.
func (id *Identity) IssueToken(email string, ttl time.Duration) (string, error) {
	now := id.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString(id.secret)
}

// ValidateToken returns the email of a valid token.
func (id *Identity) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return id.secret, nil
		},
		jwt.WithTimeFunc(id.Now),
	)
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return email, nil
}

type authResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
}

func (id *Identity) signUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, "MISSING_EMAIL")
		return
	}
	id.mu.Lock()
	if _, ok := id.accounts[req.Email]; ok {
		id.mu.Unlock()
		writeError(w, "EMAIL_EXISTS")
		return
	}
	acc := &account{uid: uuid.NewString(), email: req.Email, password: req.Password}
	id.accounts[req.Email] = acc
	id.mu.Unlock()
	id.writeAuth(w, acc)
}

func (id *Identity) signInWithPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "INVALID_LOGIN_CREDENTIALS")
		return
	}
	id.mu.Lock()
	acc, ok := id.accounts[req.Email]
	id.mu.Unlock()
	if !ok || acc.password != req.Password {
		writeError(w, "INVALID_LOGIN_CREDENTIALS")
		return
	}
	id.writeAuth(w, acc)
}

func (id *Identity) signInWithIdp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostBody string `json:"postBody"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "INVALID_IDP_RESPONSE")
		return
	}
	form, err := url.ParseQuery(req.PostBody)
	if err != nil {
		writeError(w, "INVALID_IDP_RESPONSE")
		return
	}
	id.mu.Lock()
	acc, ok := id.federated[form.Get("id_token")]
	id.mu.Unlock()
	if !ok {
		writeError(w, "INVALID_IDP_RESPONSE")
		return
	}
	id.writeAuth(w, acc)
}

func (id *Identity) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken     string `json:"idToken"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "INVALID_ID_TOKEN")
		return
	}
	email, err := id.ValidateToken(req.IDToken)
	if err != nil {
		writeError(w, "INVALID_ID_TOKEN")
		return
	}
	id.mu.Lock()
	acc, ok := id.accounts[email]
	if ok {
		acc.name, acc.photo = req.DisplayName, req.PhotoURL
	}
	id.mu.Unlock()
	if !ok {
		writeError(w, "USER_NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"localId":     acc.uid,
		"email":       acc.email,
		"displayName": acc.name,
		"photoUrl":    acc.photo,
	})
}

func (id *Identity) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "refresh_token" {
		writeError(w, "INVALID_GRANT_TYPE")
		return
	}
	id.mu.Lock()
	email, ok := id.refresh[r.PostForm.Get("refresh_token")]
	id.mu.Unlock()
	if !ok {
		writeError(w, "INVALID_REFRESH_TOKEN")
		return
	}
	idToken, err := id.IssueToken(email, id.TTL)
	if err != nil {
		writeError(w, "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id_token":      idToken,
		"refresh_token": r.PostForm.Get("refresh_token"),
		"expires_in":    strconv.Itoa(int(id.TTL.Seconds())),
	})
}

func (id *Identity) writeAuth(w http.ResponseWriter, acc *account) {
	idToken, err := id.IssueToken(acc.email, id.TTL)
	if err != nil {
		writeError(w, "INTERNAL")
		return
	}
	refresh := uuid.NewString()
	id.mu.Lock()
	id.refresh[refresh] = acc.email
	id.mu.Unlock()
	writeJSON(w, http.StatusOK, authResponse{
		IDToken:      idToken,
		RefreshToken: refresh,
		ExpiresIn:    strconv.Itoa(int(id.TTL.Seconds())),
		LocalID:      acc.uid,
		Email:        acc.email,
		DisplayName:  acc.name,
		PhotoURL:     acc.photo,
	})
}

func writeError(w http.ResponseWriter, code string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{"code": http.StatusBadRequest, "message": code},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
