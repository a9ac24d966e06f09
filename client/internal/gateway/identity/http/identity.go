package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/abhishek622/foodreview/auth/pkg/model"
	"github.com/abhishek622/foodreview/auth/pkg/session"
	"go.opentelemetry.io/otel"
)

const tracerID = "identity-gateway"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrSessionExpired     = fmt.Errorf("session expired: %w", session.ErrRefreshRejected)
	ErrProvider           = errors.New("identity provider error")
)

// Config holds the identity service endpoints.
type Config struct {
	Endpoint      string // e.g. https://identitytoolkit.googleapis.com
	TokenEndpoint string // e.g. https://securetoken.googleapis.com
	APIKey        string
}

// Gateway defines an HTTP gateway for the identity service.
type Gateway struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a new identity gateway.
func New(cfg Config, httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = cfg.Endpoint
	}
	return &Gateway{cfg: cfg, httpClient: httpClient}
}

type authResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
}

func (r authResponse) session() *model.Session {
	return &model.Session{
		UID:          r.LocalID,
		Token:        r.IDToken,
		RefreshToken: r.RefreshToken,
		DisplayName:  r.DisplayName,
		PhotoURL:     r.PhotoURL,
		Email:        r.Email,
	}
}

// SignUp creates an email/password account and signs it in.
func (g *Gateway) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	var resp authResponse
	err := g.postJSON(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return resp.session(), nil
}

// SignInWithPassword signs in an email/password account.
func (g *Gateway) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	var resp authResponse
	err := g.postJSON(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return resp.session(), nil
}

// SignInWithGoogle exchanges a Google id token for a session.
func (g *Gateway) SignInWithGoogle(ctx context.Context, googleIDToken string) (*model.Session, error) {
	postBody := url.Values{"id_token": {googleIDToken}, "providerId": {"google.com"}}
	var resp authResponse
	err := g.postJSON(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":          postBody.Encode(),
		"requestUri":        "http://localhost",
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("google sign in: %w", err)
	}
	return resp.session(), nil
}

// UpdateProfile sets the display name and photo of the account behind idToken.
func (g *Gateway) UpdateProfile(ctx context.Context, idToken, name, photo string) error {
	err := g.postJSON(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"displayName":       name,
		"photoUrl":          photo,
		"returnSecureToken": false,
	}, nil)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a new id token.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/Refresh")
	defer span.End()

	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(g.cfg.TokenEndpoint, "token"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		UserID       string `json:"user_id"`
	}
	if err := g.do(req, &resp); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &model.Session{UID: resp.UserID, Token: resp.IDToken, RefreshToken: resp.RefreshToken}, nil
}

func (g *Gateway) postJSON(ctx context.Context, method string, payload any, out any) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/"+method)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(g.cfg.Endpoint, method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *Gateway) endpoint(base, method string) string {
	u := strings.TrimRight(base, "/") + "/v1/" + method
	if g.cfg.APIKey != "" {
		u += "?key=" + url.QueryEscape(g.cfg.APIKey)
	}
	return u
}

func (g *Gateway) do(req *http.Request, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return providerError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// providerError maps the service's error code to one of the package errors.
// Codes may carry a detail suffix such as "WEAK_PASSWORD : Password should be at least 6 characters".
func providerError(status int, data []byte) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Message == "" {
		return fmt.Errorf("%w: status %d", ErrProvider, status)
	}
	code, _, _ := strings.Cut(body.Error.Message, " ")
	switch code {
	case "EMAIL_EXISTS":
		return fmt.Errorf("%w: %s", ErrEmailExists, body.Error.Message)
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, body.Error.Message)
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "INVALID_ID_TOKEN", "USER_NOT_FOUND":
		return fmt.Errorf("%w: %s", ErrSessionExpired, body.Error.Message)
	}
	return fmt.Errorf("%w: %s", ErrProvider, body.Error.Message)
}
